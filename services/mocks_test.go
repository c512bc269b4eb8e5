package services

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/vantagelabs/SignalVantage/models"
)

type mockStore struct {
	active       []models.Signal
	resolved     []models.Signal
	trackings    []models.SignalTracking
	closed       map[uint]models.SignalStatus
	closedPnl    map[uint]float64
	upserted     []*models.BacktestResult
	activeErr    error
	trackingsErr error
	// closeApplied lets a test simulate an overlapping pass having already
	// closed the signal. Defaults to "this pass wins".
	closeApplied func(id uint) bool
}

func newMockStore() *mockStore {
	return &mockStore{
		closed:    map[uint]models.SignalStatus{},
		closedPnl: map[uint]float64{},
	}
}

func (m *mockStore) CreateSignal(signal *models.Signal) error {
	m.active = append(m.active, *signal)
	return nil
}

func (m *mockStore) GetSignal(id uint) (*models.Signal, error) {
	for i := range m.active {
		if m.active[i].ID == id {
			return &m.active[i], nil
		}
	}
	return nil, fmt.Errorf("signal %d not found", id)
}

func (m *mockStore) GetActiveSignals() ([]models.Signal, error) {
	if m.activeErr != nil {
		return nil, m.activeErr
	}
	return m.active, nil
}

func (m *mockStore) CloseSignal(id uint, status models.SignalStatus, pnlPercent float64, closedAt time.Time) (bool, error) {
	if m.closeApplied != nil && !m.closeApplied(id) {
		return false, nil
	}
	if _, alreadyClosed := m.closed[id]; alreadyClosed {
		return false, nil
	}
	m.closed[id] = status
	m.closedPnl[id] = pnlPercent
	return true, nil
}

func (m *mockStore) CancelSignal(id uint) (bool, error) {
	return m.CloseSignal(id, models.SignalStatusCancelled, 0, time.Now())
}

func (m *mockStore) AddTrackings(trackings []models.SignalTracking) error {
	if m.trackingsErr != nil {
		return m.trackingsErr
	}
	m.trackings = append(m.trackings, trackings...)
	return nil
}

func (m *mockStore) GetResolvedSignals(category models.SignalCategory, start time.Time, end time.Time) ([]models.Signal, error) {
	var signals []models.Signal
	for _, signal := range m.resolved {
		if signal.Category == category {
			signals = append(signals, signal)
		}
	}
	return signals, nil
}

func (m *mockStore) UpsertBacktestResult(result *models.BacktestResult) error {
	m.upserted = append(m.upserted, result)
	return nil
}

type mockFeed struct {
	prices map[string]float64
	err    error
	calls  int
}

func (m *mockFeed) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

func (m *mockFeed) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	prices := map[string]float64{}
	for _, symbol := range symbols {
		if price, ok := m.prices[symbol]; ok {
			prices[symbol] = price
		}
	}
	return prices, nil
}

type mockNotifier struct {
	notifications chan models.SignalStatus
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{notifications: make(chan models.SignalStatus, 16)}
}

func (m *mockNotifier) NotifySignalResolved(signal *models.Signal, newStatus models.SignalStatus, pnlPercent float64) error {
	m.notifications <- newStatus
	return nil
}

func f64(value float64) *float64 {
	return &value
}
