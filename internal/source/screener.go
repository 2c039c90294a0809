package source

import (
	"context"
	"fmt"
	"strings"
)

// ScreenerSource scrapes screener.in investor pages.
type ScreenerSource struct {
	Investor string
	URL      string
	Fetcher  Fetcher
}

func (s *ScreenerSource) FetchHoldings(ctx context.Context) ([]Holding, error) {
	page, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, err
	}

	var out []Holding
	for _, table := range page.Tables {
		if !screenerHoldingsTable(table.Header) {
			continue
		}
		for _, row := range table.Rows {
			if len(row) == 0 {
				continue
			}
			link := row[0].FirstLink("/company/")
			if link == nil {
				continue
			}
			ticker := strings.ToUpper(lastPathSegment(link.Href))
			reported, err := ParseDate(cellText(row, 3))
			if err != nil {
				return nil, fmt.Errorf("holdings row for %s: %w", ticker, err)
			}
			out = append(out, Holding{
				Investor:       s.Investor,
				Ticker:         ticker,
				SourceURL:      s.URL,
				PercentHolding: ParseFloat(cellText(row, 1)),
				Shares:         ParseInt(cellText(row, 2)),
				ReportedDate:   reported,
			})
		}
		// first matching table only
		break
	}
	return out, nil
}

func (s *ScreenerSource) FetchDeals(ctx context.Context) ([]Deal, error) {
	page, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, err
	}

	var out []Deal
	for _, table := range page.Tables {
		kind, ok := dealKindFromHeading(table.Heading)
		if !ok {
			continue
		}
		for _, row := range table.Rows {
			if len(row) == 0 {
				continue
			}
			link := row[0].FirstLink("")
			if link == nil {
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
				Investor:  s.Investor,
				Ticker:    strings.ToUpper(strings.TrimSpace(link.Text)),
				SourceURL: s.URL,
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

// screenerHoldingsTable reports whether a header row looks like the holdings
// table: a company column next to a holding-percentage or share-count column.
func screenerHoldingsTable(header []string) bool {
	if len(header) == 0 {
		return false
	}
	hasCompany := false
	hasShares := false
	for _, h := range header {
		switch h {
		case "company":
			hasCompany = true
		case "shares":
			hasShares = true
		}
	}
	return hasCompany && (hasShares || strings.Contains(strings.Join(header, " "), "holding"))
}

func dealKindFromHeading(heading string) (DealKind, bool) {
	switch {
	case strings.Contains(heading, "bulk deals"):
		return DealKindBulk, true
	case strings.Contains(heading, "block deals"):
		return DealKindBlock, true
	}
	return "", false
}

func dealSide(raw string) (DealSide, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy":
		return SideBuy, true
	case "sell":
		return SideSell, true
	}
	return "", false
}

func cellText(row []Cell, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i].Text
}

func lastPathSegment(href string) string {
	trimmed := strings.Trim(href, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
