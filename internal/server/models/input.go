package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/inventory/internal/common"
)

// ItemInput holds the candidate fields of an item as supplied by a client.
// A nil pointer means the field was absent (or JSON null).
//
// ClearCategory and ClearDescription record an explicit JSON null for the
// optional string fields, which a partial update turns into an unset.
type ItemInput struct {
	Name        *string
	Category    *string
	Qty         *int64
	Price       *float64
	Description *string
	Tags        *[]string

	ClearCategory    bool
	ClearDescription bool
}

// IsEmpty reports whether no field is present.
func (in ItemInput) IsEmpty() bool {
	return in.Name == nil && in.Category == nil && in.Qty == nil &&
		in.Price == nil && in.Description == nil && in.Tags == nil &&
		!in.ClearCategory && !in.ClearDescription
}

// ValidatePatch checks the fields present in a partial update. Name may be
// absent but, when present, must not be blank.
func (in ItemInput) ValidatePatch() error {
	if in.Name != nil && isBlank(*in.Name) {
		return &ValidationError{Fields: []FieldError{{Field: "name", Message: "must not be empty"}}}
	}
	return nil
}

func (in ItemInput) validateForCreate() error {
	if in.Name == nil || isBlank(*in.Name) {
		return &ValidationError{Fields: []FieldError{{Field: "name", Message: "is required"}}}
	}
	return nil
}

// FieldError is the failed outcome of validating one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the per-field failures of one document.
// It matches common.ErrorValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return common.ErrorValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrorValidation
}

// NewValidationError returns a single-field ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ParseItemInput decodes a JSON object into an ItemInput, validating the type
// of every known field. Unknown fields and the server-owned fields id, _id
// and createdAt are ignored. All field failures are reported together.
//
// Numeric fields accept JSON numbers or numeric strings; qty must be
// integral. tags accepts an array of strings or a single string.
func ParseItemInput(data []byte) (ItemInput, error) {
	var in ItemInput

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return in, NewValidationError("", "document must be a JSON object")
	}

	var fields []FieldError
	fail := func(field string, err error) {
		fields = append(fields, FieldError{Field: field, Message: err.Error()})
	}

	if v, ok := raw["name"]; ok {
		s, err := parseString(v)
		if err != nil {
			fail("name", err)
		}
		in.Name = s
	}
	if v, ok := raw["category"]; ok {
		s, err := parseString(v)
		if err != nil {
			fail("category", err)
		}
		in.Category = s
		in.ClearCategory = isNull(v)
	}
	if v, ok := raw["description"]; ok {
		s, err := parseString(v)
		if err != nil {
			fail("description", err)
		}
		in.Description = s
		in.ClearDescription = isNull(v)
	}
	if v, ok := raw["qty"]; ok {
		n, err := ParseInteger(v)
		if err != nil {
			fail("qty", err)
		}
		in.Qty = n
	}
	if v, ok := raw["price"]; ok {
		f, err := parseNumber(v)
		if err != nil {
			fail("price", err)
		}
		in.Price = f
	}
	if v, ok := raw["tags"]; ok {
		tags, err := parseTags(v)
		if err != nil {
			fail("tags", err)
		}
		in.Tags = tags
	}

	if len(fields) > 0 {
		return ItemInput{}, &ValidationError{Fields: fields}
	}
	return in, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func parseString(v json.RawMessage) (*string, error) {
	if isNull(v) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("must be a string")
	}
	return &s, nil
}

var errNotInteger = errors.New("must be an integer")

// ParseInteger decodes an integral JSON number or numeric string.
// JSON null yields nil.
func ParseInteger(v json.RawMessage) (*int64, error) {
	f, err := parseNumber(v)
	if err != nil {
		return nil, errNotInteger
	}
	if f == nil {
		return nil, nil
	}
	if *f != math.Trunc(*f) || *f >= math.MaxInt64 || *f < math.MinInt64 {
		return nil, errNotInteger
	}
	n := int64(*f)
	return &n, nil
}

func parseNumber(v json.RawMessage) (*float64, error) {
	if isNull(v) {
		return nil, nil
	}

	var x any
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&x); err != nil {
		return nil, fmt.Errorf("must be a number")
	}

	var text string
	switch t := x.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		return nil, fmt.Errorf("must be a number")
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("must be a number")
	}
	return &f, nil
}

func parseTags(v json.RawMessage) (*[]string, error) {
	if isNull(v) {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(v, &single); err == nil {
		return &[]string{single}, nil
	}

	var tags []string
	if err := json.Unmarshal(v, &tags); err != nil {
		return nil, fmt.Errorf("must be an array of strings")
	}
	if tags == nil {
		tags = []string{}
	}
	return &tags, nil
}
