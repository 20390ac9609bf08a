// Package provider implements the market data boundary against a Yahoo
// chart-style HTTP API, with optional Redis caching in front of it.
package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/config"
	"github.com/rmorand/sciquant/pkg/httputil"
	"github.com/rmorand/sciquant/pkg/logger"
	"github.com/rmorand/sciquant/pkg/redis"
)

// avgVolumeBars is the trailing window used to derive average daily volume
// when the provider does not report one.
const avgVolumeBars = 30

var requestHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
}

// Client fetches snapshots and histories from the chart API.
type Client struct {
	http     *httputil.Client
	baseURL  string
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// New creates a provider client. cache may be backed by a disabled Redis
// client, in which case every lookup goes straight to the API.
func New(cfg config.ProviderConfig, http *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		http:     http,
		baseURL:  cfg.BaseURL,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		logger:   log,
	}
}

// FetchStockData implements contracts.MarketData.
func (c *Client) FetchStockData(ctx context.Context, symbol string) (*contracts.StockSnapshot, error) {
	var cached contracts.StockSnapshot
	if c.cache != nil {
		if hit, _ := c.cache.Get(ctx, redis.SnapshotKey(symbol), &cached); hit {
			return &cached, nil
		}
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d", c.baseURL, symbol)

	var resp chartResponse
	if err := c.http.GetJSON(ctx, url, requestHeaders, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contracts.ErrDataUnavailable, symbol, err)
	}

	snap, err := resp.toSnapshot(symbol)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, redis.SnapshotKey(symbol), snap, c.cacheTTL)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  snap.Price,
		"bars":   len(snap.History),
	}).Debug("Fetched snapshot")

	return snap, nil
}

// FetchMultipleStocks implements contracts.MarketData. Failures are
// skipped; the inter-request pacing lives in the HTTP client's limiter.
func (c *Client) FetchMultipleStocks(ctx context.Context, symbols []string) []*contracts.StockSnapshot {
	snapshots := make([]*contracts.StockSnapshot, 0, len(symbols))
	for _, symbol := range symbols {
		snap, err := c.FetchStockData(ctx, symbol)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"error":  err.Error(),
			}).Warn("Skipping symbol, snapshot unavailable")
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// FetchHistory implements contracts.MarketData.
func (c *Client) FetchHistory(ctx context.Context, symbol string, from time.Time) ([]contracts.PriceBar, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, symbol, from.Unix(), time.Now().Unix())

	var resp chartResponse
	if err := c.http.GetJSON(ctx, url, requestHeaders, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contracts.ErrDataUnavailable, symbol, err)
	}

	result, err := resp.result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contracts.ErrDataUnavailable, symbol)
	}

	bars := result.bars()
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s: empty history", contracts.ErrDataUnavailable, symbol)
	}
	return bars, nil
}

// chartResponse mirrors the chart API JSON shape.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		ShortName          string  `json:"shortName"`
		LongName           string  `json:"longName"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		PreviousClose      float64 `json:"chartPreviousClose"`
		RegularMarketVol   int64   `json:"regularMarketVolume"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close  []float64 `json:"close"`
			High   []float64 `json:"high"`
			Low    []float64 `json:"low"`
			Volume []int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (r *chartResponse) result() (*chartResult, error) {
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s", r.Chart.Error.Code)
	}
	if len(r.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result")
	}
	return &r.Chart.Result[0], nil
}

// bars converts the parallel arrays into ordered, deduplicated bars with
// valid closes only.
func (r *chartResult) bars() []contracts.PriceBar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	quote := r.Indicators.Quote[0]

	bars := make([]contracts.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] <= 0 {
			continue
		}

		bar := contracts.PriceBar{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: quote.Close[i],
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	// Stable sort so same-day bars keep their feed order and the dedupe
	// below reliably keeps the latest one.
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	// Deduplicate on date, keeping the last bar seen for a day.
	deduped := bars[:0]
	for _, bar := range bars {
		if len(deduped) > 0 && deduped[len(deduped)-1].Date.Equal(bar.Date) {
			deduped[len(deduped)-1] = bar
			continue
		}
		deduped = append(deduped, bar)
	}
	return deduped
}

// toSnapshot builds a StockSnapshot from a chart response.
func (r *chartResponse) toSnapshot(symbol string) (*contracts.StockSnapshot, error) {
	result, err := r.result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contracts.ErrDataUnavailable, symbol)
	}

	bars := result.bars()
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s: no valid bars", contracts.ErrInsufficientHistory, symbol)
	}

	price := result.Meta.RegularMarketPrice
	if price <= 0 {
		price = bars[len(bars)-1].Close
	}

	prevClose := result.Meta.PreviousClose
	if prevClose <= 0 && len(bars) > 1 {
		prevClose = bars[len(bars)-2].Close
	}

	var change, changePercent float64
	if prevClose > 0 {
		change = price - prevClose
		changePercent = change / prevClose * 100.0
	}

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}
	if name == "" {
		name = symbol
	}

	volume := result.Meta.RegularMarketVol
	if volume == 0 {
		volume = bars[len(bars)-1].Volume
	}

	return &contracts.StockSnapshot{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		AvgVolume:     averageVolume(bars, avgVolumeBars),
		History:       bars,
	}, nil
}

// averageVolume is the mean volume of the trailing n bars.
func averageVolume(bars []contracts.PriceBar, n int) int64 {
	if len(bars) == 0 {
		return 0
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}

	var sum int64
	for _, bar := range bars {
		sum += bar.Volume
	}
	return sum / int64(len(bars))
}
