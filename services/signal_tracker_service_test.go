package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"gitlab.com/vantagelabs/SignalVantage/models"
)

func activeSignal(id uint, symbol string) models.Signal {
	signal := longSignal()
	signal.Model = gorm.Model{ID: id, CreatedAt: time.Now().Add(-time.Hour)}
	signal.Symbol = symbol
	signal.ValidUntil = time.Now().Add(24 * time.Hour)
	return *signal
}

func TestTrackingPassRecordsWithoutTransition(t *testing.T) {
	store := newMockStore()
	store.active = []models.Signal{activeSignal(1, "BTCUSDT")}
	feed := &mockFeed{prices: map[string]float64{"BTCUSDT": 101}}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 1, report.Tracked)
	assert.Equal(t, 0, report.Updated)
	// The audit trail gets a row even when nothing resolves.
	assert.Len(t, store.trackings, 1)
	assert.Equal(t, models.SignalStatusActive, store.trackings[0].StatusAtCheck)
	assert.Equal(t, 101.0, store.trackings[0].Price)
	assert.Equal(t, 1.00, store.trackings[0].PnlPercent)
	assert.Empty(t, store.closed)
}

func TestTrackingPassAppliesTerminalTransition(t *testing.T) {
	store := newMockStore()
	store.active = []models.Signal{activeSignal(7, "BTCUSDT")}
	feed := &mockFeed{prices: map[string]float64{"BTCUSDT": 108}}
	notifier := newMockNotifier()

	tracker := NewSignalTrackerService(store, feed, notifier, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 1, report.Tracked)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, models.SignalStatusHitTP2, report.Updates[0].Status)
	assert.Equal(t, 8.00, report.Updates[0].PnlPercent)
	assert.Equal(t, models.SignalStatusHitTP2, store.closed[7])
	assert.Equal(t, 8.00, store.closedPnl[7])
	assert.Equal(t, models.SignalStatusHitTP2, store.trackings[0].StatusAtCheck)

	select {
	case status := <-notifier.notifications:
		assert.Equal(t, models.SignalStatusHitTP2, status)
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}
}

func TestTrackingPassBatchesOneFeedCallPerPass(t *testing.T) {
	store := newMockStore()
	store.active = []models.Signal{
		activeSignal(1, "BTCUSDT"),
		activeSignal(2, "BTCUSDT"),
		activeSignal(3, "ETHUSDT"),
	}
	feed := &mockFeed{prices: map[string]float64{"BTCUSDT": 101, "ETHUSDT": 101}}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 1, feed.calls)
	assert.Equal(t, 3, report.Tracked)
}

func TestTrackingPassIdempotencyGuard(t *testing.T) {
	store := newMockStore()
	store.active = []models.Signal{activeSignal(9, "BTCUSDT")}
	// Simulate an overlapping pass having already closed the signal.
	store.closeApplied = func(id uint) bool { return false }
	feed := &mockFeed{prices: map[string]float64{"BTCUSDT": 108}}
	notifier := newMockNotifier()

	tracker := NewSignalTrackerService(store, feed, notifier, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 0, report.Updated)
	assert.Empty(t, store.closed)
	// The pass still records its observation, but stays silent.
	assert.Len(t, store.trackings, 1)
	select {
	case <-notifier.notifications:
		t.Fatal("no notification expected when the guard rejects the write")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTrackingPassMissingPriceOnlyChecksExpiry(t *testing.T) {
	store := newMockStore()
	fresh := activeSignal(1, "UNLISTED")
	stale := activeSignal(2, "UNLISTED")
	stale.ValidUntil = time.Now().Add(-time.Minute)
	store.active = []models.Signal{fresh, stale}
	feed := &mockFeed{prices: map[string]float64{}}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 0, report.Tracked)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, models.SignalStatusExpired, store.closed[2])
	assert.Equal(t, 0.0, store.closedPnl[2])
	assert.Empty(t, store.trackings)
}

func TestTrackingPassFeedlessCategoryExpiresOnly(t *testing.T) {
	store := newMockStore()
	signal := activeSignal(4, "EURUSD")
	signal.Category = models.CategoryForex
	signal.ValidUntil = time.Now().Add(-time.Minute)
	store.active = []models.Signal{signal}
	// The quote exists, but forex has no live feed wired: expiry only.
	feed := &mockFeed{prices: map[string]float64{"EURUSD": 200}}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 0, feed.calls)
	assert.Equal(t, 0, report.Tracked)
	assert.Equal(t, models.SignalStatusExpired, store.closed[4])
}

func TestTrackingPassFeedFailureDegradesToExpiryChecks(t *testing.T) {
	store := newMockStore()
	healthy := activeSignal(1, "BTCUSDT")
	expired := activeSignal(2, "BTCUSDT")
	expired.ValidUntil = time.Now().Add(-time.Minute)
	store.active = []models.Signal{healthy, expired}
	feed := &mockFeed{err: fmt.Errorf("exchange unreachable")}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 1, report.FeedErrors)
	assert.Equal(t, 0, report.Tracked)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, models.SignalStatusExpired, store.closed[2])
	assert.NotContains(t, store.closed, uint(1))
}

func TestTrackingPassExpiredSignalGetsZeroResult(t *testing.T) {
	store := newMockStore()
	signal := activeSignal(5, "BTCUSDT")
	signal.StopLoss = nil
	signal.TakeProfit1 = nil
	signal.TakeProfit2 = nil
	signal.TakeProfit3 = nil
	signal.ValidUntil = time.Now().Add(-time.Minute)
	store.active = []models.Signal{signal}
	feed := &mockFeed{prices: map[string]float64{"BTCUSDT": 102}}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 1, report.Tracked)
	assert.Equal(t, models.SignalStatusExpired, store.closed[5])
	assert.Equal(t, 0.00, store.closedPnl[5])
	// The audit row still carries what was actually observed.
	assert.Equal(t, models.SignalStatusExpired, store.trackings[0].StatusAtCheck)
	assert.Equal(t, 2.00, store.trackings[0].PnlPercent)
}

func TestTrackingPassSurvivesTrackingBatchFailure(t *testing.T) {
	store := newMockStore()
	store.active = []models.Signal{activeSignal(1, "BTCUSDT")}
	store.trackingsErr = fmt.Errorf("insert failed")
	feed := &mockFeed{prices: map[string]float64{"BTCUSDT": 101}}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	report, err := tracker.RunTrackingPass(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 1, report.PersistErrors)
	// The candidate signal was evaluated, but nothing was durably recorded,
	// so the count must fall short of the candidate set.
	assert.Equal(t, 0, report.Tracked)
	assert.Empty(t, store.trackings)
}

func TestCancelSignalWithdrawsActiveSignal(t *testing.T) {
	store := newMockStore()
	store.active = []models.Signal{activeSignal(3, "BTCUSDT")}

	tracker := NewSignalTrackerService(store, &mockFeed{}, nil, time.Second)
	applied, err := tracker.CancelSignal(3)

	assert.Nil(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.SignalStatusCancelled, store.closed[3])
	assert.Equal(t, 0.00, store.closedPnl[3])
}

func TestCancelSignalGuardKeepsResolvedResult(t *testing.T) {
	store := newMockStore()
	// Already resolved: the guard must reject the cancel.
	store.closed[3] = models.SignalStatusHitTP2
	store.closedPnl[3] = 8.00

	tracker := NewSignalTrackerService(store, &mockFeed{}, nil, time.Second)
	applied, err := tracker.CancelSignal(3)

	assert.Nil(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.SignalStatusHitTP2, store.closed[3])
	assert.Equal(t, 8.00, store.closedPnl[3])
}

func TestTrackingPassActiveReadFailureFailsPass(t *testing.T) {
	store := newMockStore()
	store.activeErr = fmt.Errorf("connection refused")
	feed := &mockFeed{}

	tracker := NewSignalTrackerService(store, feed, nil, time.Second)
	_, err := tracker.RunTrackingPass(context.Background())

	assert.NotNil(t, err)
}
