package sources

import (
	"context"
	"fmt"
	"log/slog"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// watched symbols: broad indexes first, then large holdings
var defaultWatchlist = []string{"SPY", "QQQ", "DIA", "AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "TSLA"}

// FinnhubClient fetches real-time quotes for a fixed watchlist.
type FinnhubClient struct {
	client  *finnhub.DefaultApiService
	symbols []string
}

func NewFinnhubClient(apiKey string) *FinnhubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnhubClient{client: client, symbols: defaultWatchlist}
}

func (c *FinnhubClient) Name() string {
	return "finnhub_markets"
}

// Fetch returns one quote item per watchlist symbol. Individual symbol
// failures are logged and skipped; Fetch errors only when every quote failed.
func (c *FinnhubClient) Fetch(ctx context.Context) ([]Item, error) {
	var items []Item
	var failures int

	for _, symbol := range c.symbols {
		quote, _, err := c.client.Quote(ctx).Symbol(symbol).Execute()
		if err != nil {
			slog.Error("error fetching quote", "symbol", symbol, "error", err)
			failures++
			continue
		}

		price := float64(quote.GetC())
		change := float64(quote.GetD())
		changePercent := float64(quote.GetDp())

		items = append(items, Item{
			Source:        "finnhub",
			Symbol:        symbol,
			Title:         symbol,
			Summary:       fmt.Sprintf("%.2f (%+.2f, %+.2f%%)", price, change, changePercent),
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
		})
	}

	if failures == len(c.symbols) {
		return nil, fmt.Errorf("all %d quote lookups failed", failures)
	}

	return items, nil
}
