package interfaces

import "gitlab.com/vantagelabs/SignalVantage/models"

// Notifier delivers best-effort alerts when a signal resolves. Errors are
// logged by the caller and never retried.
type Notifier interface {
	NotifySignalResolved(signal *models.Signal, newStatus models.SignalStatus, pnlPercent float64) error
}
