package source

import (
	"context"
	"fmt"
	"strings"
)

// TrendlyneSource scrapes Trendlyne superstar-shareholder pages.
type TrendlyneSource struct {
	Investor string
	URL      string
	Fetcher  Fetcher
}

func (t *TrendlyneSource) FetchHoldings(ctx context.Context) ([]Holding, error) {
	page, err := t.Fetcher.Fetch(ctx, t.URL)
	if err != nil {
		return nil, err
	}

	var out []Holding
	for _, table := range page.Tables {
		if !trendlyneHoldingsTable(table.Header) {
			continue
		}
		for _, row := range table.Rows {
			if len(row) == 0 {
				continue
			}
			ticker := row[0].Text
			if link := row[0].FirstLink(""); link != nil {
				ticker = link.Text
			}
			ticker = strings.ToUpper(strings.TrimSpace(ticker))
			reported, err := ParseDate(cellText(row, 3))
			if err != nil {
				return nil, fmt.Errorf("holdings row for %s: %w", ticker, err)
			}
			out = append(out, Holding{
				Investor:       t.Investor,
				Ticker:         ticker,
				SourceURL:      t.URL,
				PercentHolding: ParseFloat(cellText(row, 1)),
				Shares:         ParseInt(cellText(row, 2)),
				ReportedDate:   reported,
			})
		}
		break
	}
	return out, nil
}

func (t *TrendlyneSource) FetchDeals(ctx context.Context) ([]Deal, error) {
	page, err := t.Fetcher.Fetch(ctx, t.URL)
	if err != nil {
		return nil, err
	}

	var out []Deal
	for _, table := range page.Tables {
		kind, ok := trendlyneDealKind(table.Heading)
		if !ok {
			continue
		}
		for _, row := range table.Rows {
			if len(row) == 0 {
				continue
			}
			side, ok := dealSide(cellText(row, 2))
			if !ok {
				continue
			}
			dealDate, err := ParseDate(cellText(row, 1))
			if err != nil || dealDate == nil {
				continue
			}
			out = append(out, Deal{
				Investor:  t.Investor,
				Ticker:    strings.ToUpper(strings.TrimSpace(row[0].Text)),
				SourceURL: t.URL,
				DealDate:  *dealDate,
				Quantity:  ParseInt(cellText(row, 3)),
				Price:     ParseFloat(cellText(row, 4)),
				Kind:      kind,
				Side:      side,
			})
		}
	}
	return out, nil
}

// trendlyneHoldingsTable matches on the first header cell only; Trendlyne
// labels the company column "Stock" on portfolio pages.
func trendlyneHoldingsTable(header []string) bool {
	if len(header) == 0 {
		return false
	}
	return strings.Contains(header[0], "stock") || strings.Contains(header[0], "company")
}

func trendlyneDealKind(heading string) (DealKind, bool) {
	switch {
	case strings.Contains(heading, "bulk"):
		return DealKindBulk, true
	case strings.Contains(heading, "block"):
		return DealKindBlock, true
	}
	return "", false
}
