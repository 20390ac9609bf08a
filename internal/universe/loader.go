// Package universe resolves the symbol set a scan run operates on: either
// the statically configured list or index membership scraped on demand.
package universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/httputil"
	"github.com/rmorand/sciquant/pkg/logger"
)

// membershipURL lists S&P 500 constituents in a plain HTML table.
const membershipURL = "https://www.slickcharts.com/sp500"

// maxScrapedSymbols caps an auto-loaded universe so one scan run stays
// inside the provider politeness budget.
const maxScrapedSymbols = 100

// Loader resolves the run universe.
type Loader struct {
	http   *httputil.Client
	url    string
	logger *logger.Logger
}

// NewLoader creates a universe loader.
func NewLoader(http *httputil.Client, log *logger.Logger) *Loader {
	return &Loader{http: http, url: membershipURL, logger: log}
}

// Load returns the configured symbols, or scrapes index membership when
// none are configured. An empty result is process-fatal for the caller.
func (l *Loader) Load(ctx context.Context, configured []string) ([]string, error) {
	if len(configured) > 0 {
		return dedupe(configured), nil
	}

	symbols, err := l.scrapeMembership(ctx)
	if err != nil {
		return nil, fmt.Errorf("universe auto-load failed: %w", err)
	}
	if len(symbols) == 0 {
		return nil, contracts.ErrEmptyUniverse
	}

	l.logger.WithField("count", len(symbols)).Info("Universe loaded from index membership")
	return symbols, nil
}

// scrapeMembership pulls constituent symbols out of the membership table.
func (l *Loader) scrapeMembership(ctx context.Context) ([]string, error) {
	resp, err := l.http.Get(ctx, l.url, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("membership page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse membership page failed: %w", err)
	}

	var symbols []string
	doc.Find("table tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}

		symbol := strings.TrimSpace(cells.Eq(2).Text())
		if symbol == "" {
			return true
		}

		// Share-class dots use dashes on the chart API (BRK.B -> BRK-B).
		symbols = append(symbols, strings.ReplaceAll(strings.ToUpper(symbol), ".", "-"))
		return len(symbols) < maxScrapedSymbols
	})

	return dedupe(symbols), nil
}

// dedupe removes duplicates preserving order.
func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
