package services

import (
	"github.com/sdcoffey/big"
	"gitlab.com/vantagelabs/SignalVantage/models"
)

// SignalEvaluatorService decides, from a single price sample, which terminal
// state a signal has reached, if any. It holds no state and never mutates its
// inputs.
type SignalEvaluatorService struct {
}

func NewSignalEvaluatorService() *SignalEvaluatorService {
	return &SignalEvaluatorService{}
}

// Evaluate checks the sample against the signal's levels, most favorable
// first. Price is sampled at intervals, so one sample can clear several
// levels at once: a gap straight through TP1 and TP2 must resolve as TP3 when
// TP3 is also cleared, never as the first configured level.
func (ses *SignalEvaluatorService) Evaluate(signal *models.Signal, price float64) (models.SignalStatus, bool) {
	currentPrice := big.NewDecimal(price)

	if signal.Direction == models.DirectionLong {
		if signal.TakeProfit3 != nil && currentPrice.GTE(big.NewDecimal(*signal.TakeProfit3)) {
			return models.SignalStatusHitTP3, true
		}
		if signal.TakeProfit2 != nil && currentPrice.GTE(big.NewDecimal(*signal.TakeProfit2)) {
			return models.SignalStatusHitTP2, true
		}
		if signal.TakeProfit1 != nil && currentPrice.GTE(big.NewDecimal(*signal.TakeProfit1)) {
			return models.SignalStatusHitTP1, true
		}
		if signal.StopLoss != nil && currentPrice.LTE(big.NewDecimal(*signal.StopLoss)) {
			return models.SignalStatusHitSL, true
		}
		return models.SignalStatusActive, false
	}

	if signal.TakeProfit3 != nil && currentPrice.LTE(big.NewDecimal(*signal.TakeProfit3)) {
		return models.SignalStatusHitTP3, true
	}
	if signal.TakeProfit2 != nil && currentPrice.LTE(big.NewDecimal(*signal.TakeProfit2)) {
		return models.SignalStatusHitTP2, true
	}
	if signal.TakeProfit1 != nil && currentPrice.LTE(big.NewDecimal(*signal.TakeProfit1)) {
		return models.SignalStatusHitTP1, true
	}
	if signal.StopLoss != nil && currentPrice.GTE(big.NewDecimal(*signal.StopLoss)) {
		return models.SignalStatusHitSL, true
	}
	return models.SignalStatusActive, false
}

// PnlPercent returns the running profit of the signal at the given price:
// (price - entry) / entry for longs, inverted for shorts, as a percentage.
func (ses *SignalEvaluatorService) PnlPercent(signal *models.Signal, price float64) float64 {
	currentPrice := big.NewDecimal(price)
	entryPrice := big.NewDecimal(signal.EntryPrice)

	var pnl big.Decimal
	if signal.Direction == models.DirectionLong {
		pnl = currentPrice.Sub(entryPrice).Div(entryPrice).Mul(big.NewDecimal(100))
	} else {
		pnl = entryPrice.Sub(currentPrice).Div(entryPrice).Mul(big.NewDecimal(100))
	}
	return pnl.Float()
}
