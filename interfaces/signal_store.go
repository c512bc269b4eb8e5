package interfaces

import (
	"time"

	"gitlab.com/vantagelabs/SignalVantage/models"
)

// SignalStore is the persistence surface the tracking and backtest services
// run against. There is deliberately no update path for tracking rows or for
// a signal's creation timestamp.
type SignalStore interface {
	CreateSignal(signal *models.Signal) error
	GetSignal(id uint) (*models.Signal, error)
	GetActiveSignals() ([]models.Signal, error)
	// CloseSignal applies a terminal transition guarded on the signal still
	// being active. It reports whether the write was applied.
	CloseSignal(id uint, status models.SignalStatus, pnlPercent float64, closedAt time.Time) (bool, error)
	// CancelSignal withdraws a still-active signal, with the same guard.
	CancelSignal(id uint) (bool, error)
	AddTrackings(trackings []models.SignalTracking) error
	// GetResolvedSignals returns non-active, non-cancelled signals of a
	// category within [start, end], ordered by creation time.
	GetResolvedSignals(category models.SignalCategory, start time.Time, end time.Time) ([]models.Signal, error)
	UpsertBacktestResult(result *models.BacktestResult) error
}
