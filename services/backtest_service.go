package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gitlab.com/vantagelabs/SignalVantage/helpers"
	"gitlab.com/vantagelabs/SignalVantage/interfaces"
	"gitlab.com/vantagelabs/SignalVantage/metrics"
	"gitlab.com/vantagelabs/SignalVantage/models"
)

// ErrNoClosedSignals means a category has nothing to aggregate yet. Callers
// present it as an explicit "no data" answer, not as a zeroed result.
var ErrNoClosedSignals = errors.New("no closed signals")

// Profit factor when there are wins and not a single losing percent to divide
// by. Large and finite so it survives JSON and sorting.
const profitFactorCap = 999.99

// BacktestService recomputes the published performance statistics from the
// resolved signal population. Each run is a full recompute upserted over the
// previous snapshot for the same category and period.
type BacktestService struct {
	store interfaces.SignalStore
}

func NewBacktestService(store interfaces.SignalStore) *BacktestService {
	return &BacktestService{
		store: store,
	}
}

func (bs *BacktestService) ComputeBacktest(category models.SignalCategory) (*models.BacktestResult, error) {
	signals, err := bs.store.GetResolvedSignals(category, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("error reading resolved signals: %w", err)
	}
	if len(signals) == 0 {
		return nil, ErrNoClosedSignals
	}

	var wins []float64
	var losses []float64
	var cumulative, peak, maxDrawdown float64
	monthlyBuckets := map[string]*models.MonthlyPerformance{}
	monthlyWins := map[string]int{}
	periodEnd := dayOf(signals[0].CreatedAt)

	// Signals arrive in creation order; the drawdown walk depends on it.
	for i := range signals {
		signal := &signals[i]
		var pnl float64
		if signal.ResultPnlPercent != nil {
			pnl = *signal.ResultPnlPercent
		}

		if pnl > 0 {
			wins = append(wins, pnl)
		} else if pnl < 0 {
			losses = append(losses, pnl)
		}

		cumulative += pnl
		if cumulative > peak {
			peak = cumulative
		}
		if drawdown := peak - cumulative; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}

		closeTime := signal.CreatedAt
		if signal.ClosedAt != nil {
			closeTime = *signal.ClosedAt
		}
		if day := dayOf(closeTime); day.After(periodEnd) {
			periodEnd = day
		}

		month := closeTime.Format("2006-01")
		bucket, ok := monthlyBuckets[month]
		if !ok {
			bucket = &models.MonthlyPerformance{Month: month}
			monthlyBuckets[month] = bucket
		}
		bucket.SignalCount++
		bucket.Pnl += pnl
		if pnl > 0 {
			monthlyWins[month]++
		}
	}

	result := &models.BacktestResult{
		Category:           category,
		PeriodStart:        dayOf(signals[0].CreatedAt),
		PeriodEnd:          periodEnd,
		TotalSignals:       len(signals),
		WinningSignals:     len(wins),
		WinRate:            helpers.Round2(float64(len(wins)) / float64(len(signals)) * 100),
		AvgProfitPercent:   helpers.Round2(helpers.Mean(wins)),
		AvgLossPercent:     helpers.Round2(helpers.Mean(losses)),
		MaxDrawdownPercent: helpers.Round2(maxDrawdown),
		ProfitFactor:       profitFactor(wins, losses),
		TotalPnlPercent:    helpers.Round2(cumulative),
	}

	months := make([]models.MonthlyPerformance, 0, len(monthlyBuckets))
	monthKeys := make([]string, 0, len(monthlyBuckets))
	for month := range monthlyBuckets {
		monthKeys = append(monthKeys, month)
	}
	sort.Strings(monthKeys)
	for _, month := range monthKeys {
		bucket := monthlyBuckets[month]
		bucket.WinRate = helpers.Round2(float64(monthlyWins[month]) / float64(bucket.SignalCount) * 100)
		bucket.Pnl = helpers.Round2(bucket.Pnl)
		months = append(months, *bucket)
	}
	if err := result.SetMonthlyBreakdown(months); err != nil {
		return nil, err
	}

	if err := bs.store.UpsertBacktestResult(result); err != nil {
		return nil, fmt.Errorf("error upserting backtest result: %w", err)
	}
	metrics.BacktestRuns.WithLabelValues(string(category)).Inc()

	return result, nil
}

// ComputeAllBacktests runs every category, treating empty ones as a skip.
func (bs *BacktestService) ComputeAllBacktests() error {
	for _, category := range models.Categories {
		result, err := bs.ComputeBacktest(category)
		if errors.Is(err, ErrNoClosedSignals) {
			helpers.Logger.Debugln(fmt.Sprintf("backtest: %s has no closed signals", category))
			continue
		}
		if err != nil {
			return err
		}
		helpers.Logger.Infoln(fmt.Sprintf("backtest: %s recomputed over %d signals, win rate %.2f%%",
			category, result.TotalSignals, result.WinRate))
	}
	return nil
}

func profitFactor(wins []float64, losses []float64) float64 {
	grossProfit := helpers.Sum(wins)
	grossLoss := math.Abs(helpers.Sum(losses))
	if grossLoss == 0 {
		if grossProfit > 0 {
			return profitFactorCap
		}
		return 0
	}
	return helpers.Round2(grossProfit / grossLoss)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
