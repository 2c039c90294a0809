package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nonNumeric = regexp.MustCompile(`[^0-9.]`)
	nonDigit   = regexp.MustCompile(`[^0-9]`)
)

// ParseFloat parses a human-readable percentage or price. A trailing percent
// sign is stripped; if the direct parse fails, everything that is not a digit
// or decimal point is removed and the parse retried. Returns nil when nothing
// numeric remains.
func ParseFloat(raw string) *decimal.Decimal {
	cleaned := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if cleaned == "" {
		return nil
	}
	if d, err := decimal.NewFromString(cleaned); err == nil {
		return &d
	}
	cleaned = nonNumeric.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// ParseInt parses a human-readable count, tolerating thousands separators and
// currency symbols. Returns nil when no digits remain.
func ParseInt(raw string) *int64 {
	cleaned := nonDigit.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// dateLayouts prefer day-before-month for ambiguous numeric dates.
var dateLayouts = []string{
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2006",
	"January 2006",
	"2006-01-02",
}

// ParseDate parses a reported or deal date. Empty input yields (nil, nil);
// a non-empty string that matches no known layout is an error, because a
// silently dropped deal date would corrupt the identity key.
func ParseDate(raw string) (*time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparsable date %q", raw)
}
