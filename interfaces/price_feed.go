package interfaces

import "context"

// PriceFeed supplies current prices for a market. A missing price for one
// symbol is reported per symbol, not as a feed failure: GetPrices returns
// whatever it could fetch and simply omits the rest.
type PriceFeed interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
	GetPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}
