package services

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/vantagelabs/SignalVantage/helpers"
	"gitlab.com/vantagelabs/SignalVantage/interfaces"
	"gitlab.com/vantagelabs/SignalVantage/metrics"
	"gitlab.com/vantagelabs/SignalVantage/models"
)

const trackingBatchSize = 100

// TrackedUpdate is one terminal transition applied during a pass.
type TrackedUpdate struct {
	ID         uint                `json:"id"`
	Status     models.SignalStatus `json:"status"`
	PnlPercent float64             `json:"pnl"`
}

// TrackingPassReport summarizes one pass for observability. Tracked counts
// signals whose price check was durably recorded, so a failed tracking batch
// shows up as Tracked falling short of the candidate count; Updated counts
// applied transitions.
type TrackingPassReport struct {
	Tracked       int             `json:"tracked"`
	Updated       int             `json:"updated"`
	Updates       []TrackedUpdate `json:"updates"`
	FeedErrors    int             `json:"feed_errors"`
	PersistErrors int             `json:"persist_errors"`
}

// SignalTrackerService runs the evaluation pass over every active signal:
// fetch prices, evaluate thresholds, append the audit trail, apply guarded
// terminal transitions and alert subscribers.
type SignalTrackerService struct {
	store       interfaces.SignalStore
	feed        interfaces.PriceFeed
	notifier    interfaces.Notifier
	evaluator   *SignalEvaluatorService
	feedTimeout time.Duration
}

func NewSignalTrackerService(store interfaces.SignalStore, feed interfaces.PriceFeed,
	notifier interfaces.Notifier, feedTimeout time.Duration) *SignalTrackerService {

	if feedTimeout <= 0 {
		feedTimeout = 10 * time.Second
	}
	return &SignalTrackerService{
		store:       store,
		feed:        feed,
		notifier:    notifier,
		evaluator:   NewSignalEvaluatorService(),
		feedTimeout: feedTimeout,
	}
}

// RunTrackingPass reads the active set fresh, batches one feed call for all
// distinct live symbols and walks the signals sequentially. Every failure
// mode degrades to skipping the affected signal; the pass itself only fails
// when the active set cannot be read at all.
func (sts *SignalTrackerService) RunTrackingPass(ctx context.Context) (TrackingPassReport, error) {
	report := TrackingPassReport{Updates: []TrackedUpdate{}}

	signals, err := sts.store.GetActiveSignals()
	if err != nil {
		return report, fmt.Errorf("error reading active signals: %w", err)
	}
	if len(signals) == 0 {
		return report, nil
	}

	prices := sts.fetchPrices(ctx, signals, &report)
	now := time.Now()

	var trackings []models.SignalTracking
	for i := range signals {
		signal := &signals[i]

		price, hasPrice := prices[signal.Symbol]
		if !models.CategoryHasLiveFeed(signal.Category) {
			hasPrice = false
		}

		if !hasPrice {
			// Feedless category or missing quote: only the validity
			// window can close the signal this pass.
			if signal.IsExpired(now) {
				sts.applyTransition(signal, models.SignalStatusExpired, 0, now, &report)
			}
			continue
		}

		pnl := helpers.Round2(sts.evaluator.PnlPercent(signal, price))
		status, resolved := sts.evaluator.Evaluate(signal, price)
		expired := !resolved && signal.IsExpired(now)

		statusAtCheck := status
		if expired {
			statusAtCheck = models.SignalStatusExpired
		}
		trackings = append(trackings, models.SignalTracking{
			SignalID:      signal.ID,
			Price:         price,
			PnlPercent:    pnl,
			StatusAtCheck: statusAtCheck,
			CheckedAt:     now,
		})

		if resolved {
			sts.applyTransition(signal, status, pnl, now, &report)
		} else if expired {
			// Expiry is a non-result: the trail keeps the observed pnl,
			// the permanent result stays zero.
			sts.applyTransition(signal, models.SignalStatusExpired, 0, now, &report)
		}
	}

	sts.persistTrackings(trackings, &report)
	return report, nil
}

// CancelSignal withdraws an issued signal before it resolves. The write is
// guarded the same way as price transitions, so a signal that already hit a
// level or expired keeps its result. Cancellations are silent: they never
// reach the notifier and the backtest excludes them.
func (sts *SignalTrackerService) CancelSignal(id uint) (bool, error) {
	applied, err := sts.store.CancelSignal(id)
	if err != nil {
		return false, err
	}
	if !applied {
		helpers.Logger.Debugln(fmt.Sprintf("signal %d no longer active, cancel skipped", id))
		return false, nil
	}
	helpers.Logger.Infoln(fmt.Sprintf("signal %d cancelled", id))
	metrics.SignalsTransitioned.WithLabelValues(string(models.SignalStatusCancelled)).Inc()
	return true, nil
}

// fetchPrices batches one feed call for the distinct symbols of feed-enabled
// categories. A failed fetch downgrades the whole pass to expiry checks.
func (sts *SignalTrackerService) fetchPrices(ctx context.Context, signals []models.Signal,
	report *TrackingPassReport) map[string]float64 {

	symbolSet := map[string]bool{}
	var symbols []string
	for _, signal := range signals {
		if !models.CategoryHasLiveFeed(signal.Category) || symbolSet[signal.Symbol] {
			continue
		}
		symbolSet[signal.Symbol] = true
		symbols = append(symbols, signal.Symbol)
	}
	if len(symbols) == 0 {
		return map[string]float64{}
	}

	feedCtx, cancel := context.WithTimeout(ctx, sts.feedTimeout)
	defer cancel()

	prices, err := sts.feed.GetPrices(feedCtx, symbols)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("tracking pass: price fetch failed: %v", err))
		metrics.PassErrors.WithLabelValues("feed").Inc()
		report.FeedErrors++
		return map[string]float64{}
	}
	return prices
}

func (sts *SignalTrackerService) applyTransition(signal *models.Signal, status models.SignalStatus,
	pnl float64, closedAt time.Time, report *TrackingPassReport) {

	applied, err := sts.store.CloseSignal(signal.ID, status, pnl, closedAt)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("tracking pass: close signal %d as %s failed: %v", signal.ID, status, err))
		metrics.PassErrors.WithLabelValues("persist").Inc()
		report.PersistErrors++
		return
	}
	if !applied {
		// An overlapping pass got there first. Nothing to do.
		helpers.Logger.Debugln(fmt.Sprintf("tracking pass: signal %d no longer active, skipping %s", signal.ID, status))
		return
	}

	report.Updated++
	report.Updates = append(report.Updates, TrackedUpdate{ID: signal.ID, Status: status, PnlPercent: pnl})
	metrics.SignalsTransitioned.WithLabelValues(string(status)).Inc()

	// Expiries resolve silently. Everything else goes out to subscribers,
	// best effort, off the pass's critical path.
	if status == models.SignalStatusExpired || sts.notifier == nil {
		return
	}
	notifiedSignal := *signal
	go func() {
		if err := sts.notifier.NotifySignalResolved(&notifiedSignal, status, pnl); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("tracking pass: notify for signal %d failed: %v", notifiedSignal.ID, err))
		}
	}()
}

// persistTrackings writes the trail in chunks. Only durably written rows count
// towards Tracked: a lost batch leaves the report short of the candidate set.
func (sts *SignalTrackerService) persistTrackings(trackings []models.SignalTracking, report *TrackingPassReport) {
	for start := 0; start < len(trackings); start += trackingBatchSize {
		end := start + trackingBatchSize
		if end > len(trackings) {
			end = len(trackings)
		}
		batch := trackings[start:end]
		if err := sts.store.AddTrackings(batch); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("tracking pass: tracking batch failed: %v", err))
			metrics.PassErrors.WithLabelValues("tracking").Inc()
			report.PersistErrors++
			continue
		}
		report.Tracked += len(batch)
		metrics.SignalsTracked.Add(float64(len(batch)))
	}
}
