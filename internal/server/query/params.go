// Package query turns the optional list/search parameters of the items API
// into an execution plan for each storage backend.
//
// Parsing never fails: malformed numeric bounds are dropped, malformed
// paging falls back to defaults and an unknown sort field is ignored.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 20

	// TextSearchLimit caps the dedicated text search endpoint.
	TextSearchLimit int64 = 50
)

type Direction int

const (
	Asc  Direction = 1
	Desc Direction = -1
)

// Sort is an explicit ordering requested by the client. Field is one of the
// API field names accepted by ParseSort.
type Sort struct {
	Field     string
	Direction Direction
}

// Params is the parsed form of a list request.
type Params struct {
	// Text enables relevance-ranked full-text search when non-empty.
	Text     string
	Category *string
	MinQty   *float64
	MaxQty   *float64
	Page     int64
	Limit    int64
	Sort     *Sort
}

// sortable lists the API field names that may be used for ordering.
var sortable = map[string]struct{}{
	"id":          {},
	"name":        {},
	"category":    {},
	"qty":         {},
	"price":       {},
	"description": {},
	"createdAt":   {},
}

// FromValues parses q, category, minQty, maxQty, page, limit and sort.
func FromValues(v url.Values) Params {
	p := Params{
		Text:   strings.TrimSpace(v.Get("q")),
		MinQty: parseBound(v.Get("minQty")),
		MaxQty: parseBound(v.Get("maxQty")),
		Page:   parsePositive(v.Get("page"), DefaultPage),
		Limit:  parsePositive(v.Get("limit"), DefaultLimit),
		Sort:   ParseSort(v.Get("sort")),
	}
	if c := v.Get("category"); c != "" {
		p.Category = &c
	}
	return p
}

// ParseSort parses "field:direction". The direction is desc when the token
// is "desc" (any case) and asc otherwise. It returns nil for an empty or
// unknown field.
func ParseSort(s string) *Sort {
	field, dir, _ := strings.Cut(strings.TrimSpace(s), ":")
	field = strings.TrimSpace(field)
	if _, ok := sortable[field]; !ok {
		return nil
	}

	sort := &Sort{Field: field, Direction: Asc}
	if strings.EqualFold(strings.TrimSpace(dir), "desc") {
		sort.Direction = Desc
	}
	return sort
}

// Skip is the number of matching records before the requested page.
func (p Params) Skip() int64 {
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return (page - 1) * limit
}

// PageSize is Limit with the default applied.
func (p Params) PageSize() int64 {
	if p.Limit < 1 {
		return DefaultLimit
	}
	return p.Limit
}

// HasText reports whether the plan includes a full-text predicate.
func (p Params) HasText() bool {
	return p.Text != ""
}

// TextSearch returns the parameters of the dedicated text search endpoint.
func TextSearch(q string) Params {
	return Params{Text: strings.TrimSpace(q), Page: DefaultPage, Limit: TextSearchLimit}
}

func parseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parsePositive(s string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}
