package source

import (
	"context"
	"strings"
)

// Page is the semi-structured view of a fetched investor page: every table,
// in document order, tagged with the nearest preceding heading. Adapters
// select tables by header keywords or heading keywords and never touch raw
// HTML themselves.
type Page struct {
	Tables []Table
}

type Table struct {
	// Heading is the text of the closest h1/h2/h3 preceding the table in
	// document order, lowercased by the decoder. Empty when none precedes it.
	Heading string
	// Header holds the th cell texts of the table's header row.
	Header []string
	Rows   [][]Cell
}

type Cell struct {
	Text  string
	Links []Link
}

type Link struct {
	Text string
	Href string
}

// Fetcher retrieves and decodes one page. Every call performs a network
// fetch; results are not cached.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// FirstLink returns the first link whose href contains fragment, or nil.
// An empty fragment matches any link.
func (c Cell) FirstLink(fragment string) *Link {
	for i := range c.Links {
		if fragment == "" || strings.Contains(c.Links[i].Href, fragment) {
			return &c.Links[i]
		}
	}
	return nil
}
