package services

import (
	"time"

	"gitlab.com/vantagelabs/SignalVantage/models"
)

// DisclosureService maps a full signal to what a subscription tier is allowed
// to see. It is pure: no signal or tier state is touched, and quota
// consumption is the caller's bookkeeping — the filter only reports it.
type DisclosureService struct {
}

func NewDisclosureService() *DisclosureService {
	return &DisclosureService{}
}

// FilterForTier redacts the signal for the given tier. Withheld numeric
// fields come back absent, never zeroed, so "not configured" and "configured
// but locked" stay distinguishable; the disclosure info names each withheld
// field and the reason.
func (ds *DisclosureService) FilterForTier(signal *models.Signal, tier models.TierLevel,
	quotaExhausted bool) models.RedactedSignal {

	entitlements := models.EntitlementsFor(tier)
	view := models.RedactedSignal{
		ID:        signal.ID,
		Category:  signal.Category,
		Symbol:    signal.Symbol,
		Status:    signal.Status,
		CreatedAt: signal.CreatedAt,
		DisclosureInfo: models.DisclosureInfo{
			Tier: tier.String(),
		},
	}

	if !entitlements.CanSeeCategory(signal.Category) {
		view.DisclosureInfo.Hidden = true
		ds.withholdAll(signal, &view, models.WithheldLocked)
		return view
	}

	// A fresh signal stays invisible until the tier's delay elapses, but a
	// resolved one is always shown: the published track record cannot lag.
	if !signal.IsResolved() && time.Since(signal.CreatedAt) < time.Duration(entitlements.DelayMinutes)*time.Minute {
		view.DisclosureInfo.Hidden = true
		ds.withholdAll(signal, &view, models.WithheldDelayed)
		return view
	}

	view.Direction = signal.Direction
	view.Action = signal.Action()
	view.ValidUntil = signal.ValidUntil
	view.Confidence = signal.Confidence
	view.Rationale = signal.Rationale
	view.ResultPnlPercent = copyLevel(signal.ResultPnlPercent)
	if signal.ClosedAt != nil {
		closedAt := *signal.ClosedAt
		view.ClosedAt = &closedAt
	}

	if quotaExhausted {
		ds.withholdAll(signal, &view, models.WithheldQuotaExhausted)
		return view
	}
	if tier < signal.MinTier {
		ds.withholdAll(signal, &view, models.WithheldLocked)
		return view
	}

	// Entry and TP1 come with every visible signal; the rest of the levels
	// follow the ladder.
	entryPrice := signal.EntryPrice
	view.EntryPrice = &entryPrice
	view.TakeProfit1 = copyLevel(signal.TakeProfit1)
	ds.revealOrWithhold(&view, "stop_loss", signal.StopLoss, entitlements.RevealStopLoss, &view.StopLoss)
	ds.revealOrWithhold(&view, "take_profit_2", signal.TakeProfit2, entitlements.RevealTakeProfit2, &view.TakeProfit2)
	ds.revealOrWithhold(&view, "take_profit_3", signal.TakeProfit3, entitlements.RevealTakeProfit3, &view.TakeProfit3)
	ds.revealOrWithhold(&view, "leverage_conservative", signal.LeverageConservative, entitlements.RevealLeverage, &view.LeverageConservative)
	ds.revealOrWithhold(&view, "leverage_aggressive", signal.LeverageAggressive, entitlements.RevealLeverage, &view.LeverageAggressive)

	return view
}

// withholdAll marks every configured numeric field as withheld. Fields the
// issuer never configured are not reported: there is nothing to unlock.
func (ds *DisclosureService) withholdAll(signal *models.Signal, view *models.RedactedSignal,
	reason models.WithheldReason) {

	withhold := func(field string, configured bool) {
		if !configured {
			return
		}
		view.DisclosureInfo.Withheld = append(view.DisclosureInfo.Withheld,
			models.WithheldField{Field: field, Reason: reason})
	}
	withhold("entry_price", true)
	withhold("stop_loss", signal.StopLoss != nil)
	withhold("take_profit_1", signal.TakeProfit1 != nil)
	withhold("take_profit_2", signal.TakeProfit2 != nil)
	withhold("take_profit_3", signal.TakeProfit3 != nil)
	withhold("leverage_conservative", signal.LeverageConservative != nil)
	withhold("leverage_aggressive", signal.LeverageAggressive != nil)
}

func (ds *DisclosureService) revealOrWithhold(view *models.RedactedSignal, field string,
	level *float64, entitled bool, target **float64) {

	if level == nil {
		return
	}
	if !entitled {
		view.DisclosureInfo.Withheld = append(view.DisclosureInfo.Withheld,
			models.WithheldField{Field: field, Reason: models.WithheldLocked})
		return
	}
	*target = copyLevel(level)
}

func copyLevel(level *float64) *float64 {
	if level == nil {
		return nil
	}
	value := *level
	return &value
}
