// Package models defines the item shapes exchanged with the inventory API.
package models

import "time"

type Item struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Category    *string   `json:"category,omitempty" yaml:"category,omitempty"`
	Qty         int64     `json:"qty" yaml:"qty"`
	Price       float64   `json:"price" yaml:"price"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string  `json:"tags" yaml:"tags"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

type ListResult struct {
	Total int64   `json:"total" yaml:"total"`
	Page  int64   `json:"page" yaml:"page"`
	Limit int64   `json:"limit" yaml:"limit"`
	Docs  []*Item `json:"docs" yaml:"docs"`
}

// CategoryCount is one category group. A nil Category groups items without one.
type CategoryCount struct {
	Category *string `json:"category" yaml:"category"`
	Count    int64   `json:"count" yaml:"count"`
}

type BulkUpdateResult struct {
	MatchedCount  int64 `json:"matchedCount" yaml:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount" yaml:"modifiedCount"`
}

type ExportResult struct {
	Key   string `json:"key" yaml:"key"`
	URL   string `json:"url" yaml:"url"`
	Count int    `json:"count" yaml:"count"`
}

// ListOptions are the optional filters of a list request. Zero values are
// not sent.
type ListOptions struct {
	Q        string
	Category string
	MinQty   *float64
	MaxQty   *float64
	Page     int
	Limit    int
	Sort     string
}
