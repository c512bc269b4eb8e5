package paper

import (
	"context"
	"fmt"
	"sync"
)

// PaperService is a deterministic in-memory feed used for dry runs and tests.
type PaperService struct {
	pricesMutex *sync.Mutex
	prices      map[string]float64
}

func NewPaperService() *PaperService {
	return &PaperService{
		pricesMutex: &sync.Mutex{},
		prices: map[string]float64{
			"BTCUSDT": 43250.00,
			"ETHUSDT": 2280.50,
			"SOLUSDT": 98.73,
		},
	}
}

func (paperService *PaperService) SetPrice(symbol string, price float64) {
	paperService.pricesMutex.Lock()
	paperService.prices[symbol] = price
	paperService.pricesMutex.Unlock()
}

func (paperService *PaperService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	paperService.pricesMutex.Lock()
	defer paperService.pricesMutex.Unlock()
	price, ok := paperService.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("error: no paper price for %s", symbol)
	}
	return price, nil
}

func (paperService *PaperService) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	paperService.pricesMutex.Lock()
	defer paperService.pricesMutex.Unlock()
	prices := map[string]float64{}
	for _, symbol := range symbols {
		if price, ok := paperService.prices[symbol]; ok {
			prices[symbol] = price
		}
	}
	return prices, nil
}
