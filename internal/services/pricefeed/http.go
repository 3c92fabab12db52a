package pricefeed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"swapdesk/internal/domain"
	"swapdesk/pkg/retrier"
)

const (
	defaultTimeout = 10 * time.Second
	pricesPath     = "/prices.json"
	maxAttempts    = 3
)

// HTTPFeed fetches prices from a JSON endpoint serving
// [{currency, date, price}, ...] rows.
type HTTPFeed struct {
	baseURL string
	client  *http.Client
	retrier *retrier.Retrier
}

// NewHTTPFeed creates a feed for the given base URL.
func NewHTTPFeed(baseURL string) *HTTPFeed {
	return &HTTPFeed{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		retrier: retrier.New(retrier.WithMaxRetries(maxAttempts - 1)),
	}
}

// FetchPrices downloads the price list, retrying transient failures, and
// returns it deduplicated by currency keeping the first occurrence.
func (f *HTTPFeed) FetchPrices(ctx context.Context) ([]domain.PricePoint, error) {
	points, err := retrier.DoWithData(f.retrier, ctx, f.fetch)
	if err != nil {
		return nil, errors.Wrap(err, "fetch token prices")
	}

	return Dedupe(points), nil
}

func (f *HTTPFeed) fetch(ctx context.Context) ([]domain.PricePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+pricesPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build price request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request price feed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, errors.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var points []domain.PricePoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, errors.Wrap(err, "decode price feed response")
	}

	return points, nil
}
