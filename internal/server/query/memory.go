package query

import (
	"cmp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/inventory/internal/server/models"
)

// Matches evaluates the structural filter of p against it.
func (p Params) Matches(it *models.Item) bool {
	if p.Category != nil && (it.Category == nil || *it.Category != *p.Category) {
		return false
	}
	if p.MinQty != nil && float64(it.Qty) < *p.MinQty {
		return false
	}
	if p.MaxQty != nil && float64(it.Qty) > *p.MaxQty {
		return false
	}
	return true
}

// TextScore counts how many tokens of name, description and tags equal one
// of the terms of text, case-insensitively. Zero means no match.
func TextScore(text string, it *models.Item) float64 {
	terms := make(map[string]struct{})
	for _, t := range tokenize(text) {
		terms[t] = struct{}{}
	}
	if len(terms) == 0 {
		return 0
	}

	body := tokenize(it.Name)
	body = append(body, tokenize(it.DescriptionValue())...)
	for _, tag := range it.Tags {
		body = append(body, tokenize(tag)...)
	}

	var score float64
	for _, tok := range body {
		if _, ok := terms[tok]; ok {
			score++
		}
	}
	return score
}

// Compare orders a and b by the API field name. Unset optional strings sort
// before any value.
func Compare(field string, a, b *models.Item) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "name":
		return cmp.Compare(a.Name, b.Name)
	case "category":
		return compareOptional(a.Category, b.Category)
	case "qty":
		return cmp.Compare(a.Qty, b.Qty)
	case "price":
		return cmp.Compare(a.Price, b.Price)
	case "description":
		return compareOptional(a.Description, b.Description)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func compareOptional(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
