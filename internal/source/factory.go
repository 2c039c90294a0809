package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedSource marks a source URL no adapter claims. Unmatched
// locations fail fast at configuration time; guessing an adapter would
// produce garbage records instead of an actionable error.
var ErrUnsupportedSource = errors.New("unsupported source URL")

// New selects the adapter for a source URL by host fragment.
func New(investor, url string, fetcher Fetcher) (Source, error) {
	switch {
	case strings.Contains(url, "screener.in"):
		return &ScreenerSource{Investor: investor, URL: url, Fetcher: fetcher}, nil
	case strings.Contains(url, "trendlyne.com"):
		return &TrendlyneSource{Investor: investor, URL: url, Fetcher: fetcher}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, url)
}
