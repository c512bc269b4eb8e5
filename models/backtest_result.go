package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MonthlyPerformance is one month's bucket inside a backtest breakdown.
type MonthlyPerformance struct {
	Month       string  `json:"month"`
	SignalCount int     `json:"signal_count"`
	WinRate     float64 `json:"win_rate"`
	Pnl         float64 `json:"pnl"`
}

// BacktestResult is the aggregate snapshot for one category and period. It is
// a materialized view: recomputing the same key replaces the previous row.
type BacktestResult struct {
	gorm.Model
	Category           SignalCategory `gorm:"uniqueIndex:idx_backtest_period"`
	PeriodStart        time.Time      `gorm:"uniqueIndex:idx_backtest_period"`
	PeriodEnd          time.Time      `gorm:"uniqueIndex:idx_backtest_period"`
	TotalSignals       int
	WinningSignals     int
	WinRate            float64
	AvgProfitPercent   float64
	AvgLossPercent     float64
	MaxDrawdownPercent float64
	ProfitFactor       float64
	TotalPnlPercent    float64
	MonthlyBreakdown   datatypes.JSON
}

func (br *BacktestResult) SetMonthlyBreakdown(months []MonthlyPerformance) error {
	raw, err := json.Marshal(months)
	if err != nil {
		return err
	}
	br.MonthlyBreakdown = datatypes.JSON(raw)
	return nil
}

func (br *BacktestResult) GetMonthlyBreakdown() ([]MonthlyPerformance, error) {
	var months []MonthlyPerformance
	if len(br.MonthlyBreakdown) == 0 {
		return months, nil
	}
	err := json.Unmarshal(br.MonthlyBreakdown, &months)
	return months, err
}
