package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type SignalCategory string

const (
	CategoryCrypto      SignalCategory = "crypto"
	CategoryForex       SignalCategory = "forex"
	CategoryStocks      SignalCategory = "stocks"
	CategoryCommodities SignalCategory = "commodities"
)

// Categories lists every supported market, in display order.
var Categories = []SignalCategory{CategoryCrypto, CategoryForex, CategoryStocks, CategoryCommodities}

// CategoryHasLiveFeed reports whether signals of this category are matched
// against a live price feed on every tracking pass. Categories without a feed
// only ever resolve through expiry.
func CategoryHasLiveFeed(category SignalCategory) bool {
	return category == CategoryCrypto
}

type SignalDirection string

const (
	DirectionLong  SignalDirection = "long"
	DirectionShort SignalDirection = "short"
)

type SignalStatus string

const (
	SignalStatusActive    SignalStatus = "active"
	SignalStatusHitTP1    SignalStatus = "hit_tp1"
	SignalStatusHitTP2    SignalStatus = "hit_tp2"
	SignalStatusHitTP3    SignalStatus = "hit_tp3"
	SignalStatusHitSL     SignalStatus = "hit_sl"
	SignalStatusExpired   SignalStatus = "expired"
	SignalStatusCancelled SignalStatus = "cancelled"
)

// Signal is one issued trading call. Entry and level fields are fixed at
// creation; only Status, ResultPnlPercent and ClosedAt change afterwards, all
// three together and exactly once, when the signal leaves active.
type Signal struct {
	gorm.Model
	Category             SignalCategory `gorm:"index"`
	Symbol               string         `gorm:"index"`
	Direction            SignalDirection
	EntryPrice           float64
	StopLoss             *float64
	TakeProfit1          *float64
	TakeProfit2          *float64
	TakeProfit3          *float64
	LeverageConservative *float64
	LeverageAggressive   *float64
	Status               SignalStatus `gorm:"index;default:active"`
	ResultPnlPercent     *float64
	ClosedAt             *time.Time
	ValidUntil           time.Time
	Confidence           int
	Rationale            string
	ModelIdentifiers     string
	MinTier              TierLevel
}

func (s *Signal) IsResolved() bool {
	return s.Status != SignalStatusActive
}

func (s *Signal) IsWin() bool {
	return s.ResultPnlPercent != nil && *s.ResultPnlPercent > 0
}

// HasThresholds reports whether any price level can resolve the signal. A
// signal without thresholds can only close through expiry or cancellation.
func (s *Signal) HasThresholds() bool {
	return s.StopLoss != nil || s.TakeProfit1 != nil || s.TakeProfit2 != nil || s.TakeProfit3 != nil
}

func (s *Signal) IsExpired(now time.Time) bool {
	return now.After(s.ValidUntil)
}

// Action surfaces the direction as buy/sell for the categories that present
// signals in broker terms. Semantics are identical to long/short.
func (s *Signal) Action() string {
	if s.Direction == DirectionShort {
		return "sell"
	}
	return "buy"
}

func (s *Signal) Validate() error {
	validCategory := false
	for _, category := range Categories {
		if s.Category == category {
			validCategory = true
			break
		}
	}
	if !validCategory {
		return fmt.Errorf("error: unknown category %s", s.Category)
	}
	if s.Symbol == "" {
		return fmt.Errorf("error: signal needs a symbol")
	}
	if s.Direction != DirectionLong && s.Direction != DirectionShort {
		return fmt.Errorf("error: unknown direction %s", s.Direction)
	}
	if s.EntryPrice <= 0 {
		return fmt.Errorf("error: entry price must be positive")
	}
	if s.Confidence < 1 || s.Confidence > 5 {
		return fmt.Errorf("error: confidence must be between 1 and 5")
	}
	if s.ValidUntil.IsZero() {
		return fmt.Errorf("error: signal needs a validity window")
	}
	return s.validateLevelOrdering()
}

// Take profits must be increasingly favorable: above each other for longs,
// below each other for shorts. Missing levels are fine.
func (s *Signal) validateLevelOrdering() error {
	levels := []*float64{s.TakeProfit1, s.TakeProfit2, s.TakeProfit3}
	previous := s.EntryPrice
	for i, level := range levels {
		if level == nil {
			continue
		}
		if s.Direction == DirectionLong && *level <= previous {
			return fmt.Errorf("error: TP%d must be above entry and lower take profits", i+1)
		}
		if s.Direction == DirectionShort && *level >= previous {
			return fmt.Errorf("error: TP%d must be below entry and higher take profits", i+1)
		}
		previous = *level
	}
	if s.StopLoss != nil {
		if s.Direction == DirectionLong && *s.StopLoss >= s.EntryPrice {
			return fmt.Errorf("error: stop loss must be below entry for a long")
		}
		if s.Direction == DirectionShort && *s.StopLoss <= s.EntryPrice {
			return fmt.Errorf("error: stop loss must be above entry for a short")
		}
	}
	return nil
}
