// Package models defines the inventory item record, its validated input form
// and the result shapes returned by list, bulk and aggregation operations.
package models

import (
	"strings"
	"time"
)

// Item is a single inventory record.
//
// Category and Description are optional; a nil pointer means the field is
// unset (and groups under the null key in category aggregation). Qty is not
// floored at zero: bulk delta updates may push it negative.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    *string   `json:"category,omitempty"`
	Qty         int64     `json:"qty"`
	Price       float64   `json:"price"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewItem validates in for creation and returns an Item with defaults
// applied and CreatedAt stamped with now. The ID is left empty: it is
// assigned by the repository.
func NewItem(in ItemInput, now time.Time) (*Item, error) {
	if err := in.validateForCreate(); err != nil {
		return nil, err
	}

	item := &Item{
		Name:        *in.Name,
		Category:    cloneString(in.Category),
		Description: cloneString(in.Description),
		Tags:        []string{},
		CreatedAt:   now,
	}
	if in.Qty != nil {
		item.Qty = *in.Qty
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Tags != nil {
		item.Tags = append(item.Tags, (*in.Tags)...)
	}

	return item, nil
}

// Apply merges the fields present in in over it. ID and CreatedAt are never
// touched.
func (it *Item) Apply(in ItemInput) {
	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Category != nil || in.ClearCategory {
		it.Category = cloneString(in.Category)
	}
	if in.Qty != nil {
		it.Qty = *in.Qty
	}
	if in.Price != nil {
		it.Price = *in.Price
	}
	if in.Description != nil || in.ClearDescription {
		it.Description = cloneString(in.Description)
	}
	if in.Tags != nil {
		it.Tags = append([]string{}, (*in.Tags)...)
	}
}

// Clone returns a deep copy of it.
func (it *Item) Clone() *Item {
	c := *it
	c.Category = cloneString(it.Category)
	c.Description = cloneString(it.Description)
	c.Tags = append([]string{}, it.Tags...)
	return &c
}

// CategoryValue returns the category or "" when unset.
func (it *Item) CategoryValue() string {
	if it.Category == nil {
		return ""
	}
	return *it.Category
}

// DescriptionValue returns the description or "" when unset.
func (it *Item) DescriptionValue() string {
	if it.Description == nil {
		return ""
	}
	return *it.Description
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
