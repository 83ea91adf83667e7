package query

import (
	"fmt"
	"strings"
)

// ItemColumns is the projection shared by every items query. Tags are read
// back as JSON text.
const ItemColumns = "id::text, name, category, qty, price, description, tags::text, created_at"

// SQLPlan is a paged select plus the count of the structural filter.
// When Scored is true the select yields one extra trailing score column.
type SQLPlan struct {
	Query      string
	Args       []any
	CountQuery string
	CountArgs  []any
	Scored     bool
}

var sqlColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"category":    "category",
	"qty":         "qty",
	"price":       "price",
	"description": "description",
	"createdAt":   "created_at",
}

// tsQuery ORs the normalised terms of the search text so that any term
// matches, like a MongoDB $text search.
const tsQuery = "replace(plainto_tsquery('english', %s)::text, '&', '|')::tsquery"

// Postgres builds the SQL plan for p against the items table.
func Postgres(p Params) SQLPlan {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Category != nil {
		where = append(where, "category = "+arg(*p.Category))
	}
	// Bounds may be fractional and must not be coerced to bigint.
	if p.MinQty != nil {
		where = append(where, "qty >= "+arg(*p.MinQty)+"::float8")
	}
	if p.MaxQty != nil {
		where = append(where, "qty <= "+arg(*p.MaxQty)+"::float8")
	}

	plan := SQLPlan{
		CountQuery: "SELECT COUNT(*) FROM items" + whereClause(where),
		CountArgs:  append([]any(nil), args...),
	}

	from := "items"
	order := "created_at ASC, id ASC"
	selectCols := ItemColumns

	if p.HasText() {
		from = "items CROSS JOIN (SELECT " + fmt.Sprintf(tsQuery, arg(p.Text)) + " AS q) AS tsq"
		where = append(where, "search_vector @@ tsq.q")
		selectCols += ", ts_rank(search_vector, tsq.q) AS score"
		order = "score DESC, id ASC"
		plan.Scored = true
	}

	if p.Sort != nil {
		dir := "ASC"
		if p.Sort.Direction == Desc {
			dir = "DESC"
		}
		order = fmt.Sprintf("%s %s, id ASC", sqlColumns[p.Sort.Field], dir)
		if p.Sort.Field == "id" {
			order = "id " + dir
		}
	}

	limit := arg(p.PageSize())
	offset := arg(p.Skip())

	plan.Query = fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %s OFFSET %s",
		selectCols, from, whereClause(where), order, limit, offset)
	plan.Args = args

	return plan
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
