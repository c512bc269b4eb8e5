package models

import (
	"fmt"
	"strings"
)

type TierLevel int

const (
	TierFree TierLevel = iota
	TierBasic
	TierPro
	TierElite
)

func (t TierLevel) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierPro:
		return "pro"
	case TierElite:
		return "elite"
	default:
		return "free"
	}
}

func ParseTierLevel(s string) (TierLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return TierFree, nil
	case "basic":
		return TierBasic, nil
	case "pro":
		return TierPro, nil
	case "elite":
		return TierElite, nil
	}
	return TierFree, fmt.Errorf("error: unknown tier %s", s)
}

// TierEntitlements is one rung of the subscription ladder. The ladder is plain
// configuration data: adding a tier means adding a row, not a type.
type TierEntitlements struct {
	Level             TierLevel
	VisibleCategories []SignalCategory
	RevealStopLoss    bool
	RevealTakeProfit2 bool
	RevealTakeProfit3 bool
	RevealLeverage    bool
	DelayMinutes      int
	// DailyQuota of -1 means unlimited.
	DailyQuota int
}

var tierLadder = []TierEntitlements{
	{
		Level:             TierFree,
		VisibleCategories: []SignalCategory{CategoryCrypto},
		DelayMinutes:      60,
		DailyQuota:        3,
	},
	{
		Level:             TierBasic,
		VisibleCategories: []SignalCategory{CategoryCrypto, CategoryForex},
		RevealStopLoss:    true,
		RevealTakeProfit2: true,
		DelayMinutes:      15,
		DailyQuota:        20,
	},
	{
		Level:             TierPro,
		VisibleCategories: Categories,
		RevealStopLoss:    true,
		RevealTakeProfit2: true,
		RevealTakeProfit3: true,
		DelayMinutes:      5,
		DailyQuota:        100,
	},
	{
		Level:             TierElite,
		VisibleCategories: Categories,
		RevealStopLoss:    true,
		RevealTakeProfit2: true,
		RevealTakeProfit3: true,
		RevealLeverage:    true,
		DelayMinutes:      0,
		DailyQuota:        -1,
	},
}

// EntitlementsFor returns the ladder rung for the given level. Unknown levels
// fall back to the free rung.
func EntitlementsFor(level TierLevel) TierEntitlements {
	for _, entitlements := range tierLadder {
		if entitlements.Level == level {
			return entitlements
		}
	}
	return tierLadder[0]
}

func (te TierEntitlements) CanSeeCategory(category SignalCategory) bool {
	for _, visible := range te.VisibleCategories {
		if visible == category {
			return true
		}
	}
	return false
}
