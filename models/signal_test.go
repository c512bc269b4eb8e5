package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func f64(value float64) *float64 {
	return &value
}

func validLong() *Signal {
	return &Signal{
		Category:    CategoryCrypto,
		Symbol:      "BTCUSDT",
		Direction:   DirectionLong,
		EntryPrice:  100,
		StopLoss:    f64(97),
		TakeProfit1: f64(103),
		TakeProfit2: f64(107),
		TakeProfit3: f64(112),
		Confidence:  3,
		ValidUntil:  time.Now().Add(24 * time.Hour),
	}
}

func TestValidateAcceptsWellFormedSignal(t *testing.T) {
	assert.Nil(t, validLong().Validate())
}

func TestValidateRejectsUnorderedTakeProfits(t *testing.T) {
	signal := validLong()
	signal.TakeProfit2 = f64(102)
	assert.NotNil(t, signal.Validate())

	short := validLong()
	short.Direction = DirectionShort
	short.StopLoss = f64(103)
	short.TakeProfit1 = f64(97)
	short.TakeProfit2 = f64(93)
	short.TakeProfit3 = f64(95)
	assert.NotNil(t, short.Validate())
}

func TestValidateAllowsSparseLevels(t *testing.T) {
	signal := validLong()
	signal.StopLoss = nil
	signal.TakeProfit2 = nil
	signal.TakeProfit3 = nil
	assert.Nil(t, signal.Validate())

	signal.TakeProfit1 = nil
	assert.Nil(t, signal.Validate())
	assert.False(t, signal.HasThresholds())
}

func TestValidateRejectsWrongSideStopLoss(t *testing.T) {
	signal := validLong()
	signal.StopLoss = f64(105)
	assert.NotNil(t, signal.Validate())
}

func TestValidateRejectsBadConfidence(t *testing.T) {
	signal := validLong()
	signal.Confidence = 0
	assert.NotNil(t, signal.Validate())
	signal.Confidence = 6
	assert.NotNil(t, signal.Validate())
}

func TestActionAliasesDirection(t *testing.T) {
	signal := validLong()
	assert.Equal(t, "buy", signal.Action())
	signal.Direction = DirectionShort
	assert.Equal(t, "sell", signal.Action())
}
