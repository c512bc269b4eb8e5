package models

import "time"

type WithheldReason string

const (
	WithheldLocked         WithheldReason = "locked"
	WithheldDelayed        WithheldReason = "delayed"
	WithheldQuotaExhausted WithheldReason = "quota_exhausted"
)

type WithheldField struct {
	Field  string         `json:"field"`
	Reason WithheldReason `json:"reason"`
}

// DisclosureInfo tells the caller what was withheld and why, so the
// presentation layer can render locks and upsell prompts without guessing.
type DisclosureInfo struct {
	Tier     string          `json:"tier"`
	Hidden   bool            `json:"hidden"`
	Withheld []WithheldField `json:"withheld,omitempty"`
}

// RedactedSignal is a tier view of a signal. Numeric levels the tier is not
// entitled to are nil, never zeroed, so an absent field still means "not
// configured" and a locked field never leaks a fabricated number.
type RedactedSignal struct {
	ID                   uint            `json:"id"`
	Category             SignalCategory  `json:"category"`
	Symbol               string          `json:"symbol"`
	Direction            SignalDirection `json:"direction"`
	Action               string          `json:"action"`
	EntryPrice           *float64        `json:"entry_price,omitempty"`
	StopLoss             *float64        `json:"stop_loss,omitempty"`
	TakeProfit1          *float64        `json:"take_profit_1,omitempty"`
	TakeProfit2          *float64        `json:"take_profit_2,omitempty"`
	TakeProfit3          *float64        `json:"take_profit_3,omitempty"`
	LeverageConservative *float64        `json:"leverage_conservative,omitempty"`
	LeverageAggressive   *float64        `json:"leverage_aggressive,omitempty"`
	Status               SignalStatus    `json:"status"`
	ResultPnlPercent     *float64        `json:"result_pnl_percent,omitempty"`
	ClosedAt             *time.Time      `json:"closed_at,omitempty"`
	ValidUntil           time.Time       `json:"valid_until"`
	Confidence           int             `json:"confidence"`
	Rationale            string          `json:"rationale,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	DisclosureInfo       DisclosureInfo  `json:"_disclosure_info"`
}
