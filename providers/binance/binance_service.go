package binance

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/joho/godotenv"
)

// BinanceService answers spot price lookups for the crypto category.
type BinanceService struct {
	binanceClient *binance.Client
	apiKey        string
	apiSecret     string
}

func NewBinanceService() *BinanceService {
	binanceService := BinanceService{}
	binanceService.apiKey = os.Getenv("binanceAPIKey")
	binanceService.apiSecret = os.Getenv("binanceAPISecret")
	binanceService.binanceClient = binance.NewClient(binanceService.apiKey, binanceService.apiSecret)
	return &binanceService
}

func init() {
	cwd, _ := os.Getwd()
	confFile := os.Getenv("CONF_FILE")
	if confFile == "" {
		confFile = "/conf.env"
	}
	_ = godotenv.Load(cwd + confFile)
}

func (binanceService *BinanceService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := binanceService.binanceClient.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("error: no price returned for %s", symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, err
	}
	return price, nil
}

// GetPrices resolves a batch of symbols with a single exchange call. Symbols
// the exchange doesn't quote are left out of the returned map.
func (binanceService *BinanceService) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := map[string]float64{}
	if len(symbols) == 0 {
		return prices, nil
	}

	listedPrices, err := binanceService.binanceClient.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, symbol := range symbols {
		wanted[symbol] = true
	}

	for _, listedPrice := range listedPrices {
		if !wanted[listedPrice.Symbol] {
			continue
		}
		price, err := strconv.ParseFloat(listedPrice.Price, 64)
		if err != nil {
			continue
		}
		prices[listedPrice.Symbol] = price
	}

	return prices, nil
}
