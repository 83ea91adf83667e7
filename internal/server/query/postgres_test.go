package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgres_NoFilter(t *testing.T) {
	plan := Postgres(Params{})

	assert.Equal(t, "SELECT COUNT(*) FROM items", plan.CountQuery)
	assert.Empty(t, plan.CountArgs)
	assert.Equal(t,
		"SELECT "+ItemColumns+" FROM items ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2",
		plan.Query)
	assert.Equal(t, []any{DefaultLimit, int64(0)}, plan.Args)
	assert.False(t, plan.Scored)
}

func TestPostgres_Structural(t *testing.T) {
	p := Params{Category: ptr("Tools"), MinQty: ptr(1.0), MaxQty: ptr(9.0), Page: 3, Limit: 4,
		Sort: &Sort{Field: "createdAt", Direction: Desc}}

	plan := Postgres(p)

	assert.Equal(t, "SELECT COUNT(*) FROM items WHERE category = $1 AND qty >= $2::float8 AND qty <= $3::float8", plan.CountQuery)
	assert.Equal(t, []any{"Tools", 1.0, 9.0}, plan.CountArgs)
	assert.Equal(t,
		"SELECT "+ItemColumns+" FROM items WHERE category = $1 AND qty >= $2::float8 AND qty <= $3::float8"+
			" ORDER BY created_at DESC, id ASC LIMIT $4 OFFSET $5",
		plan.Query)
	assert.Equal(t, []any{"Tools", 1.0, 9.0, int64(4), int64(8)}, plan.Args)
}

func TestPostgres_FractionalBounds(t *testing.T) {
	plan := Postgres(Params{MinQty: ptr(2.5), MaxQty: ptr(-1.5)})

	assert.Equal(t, "SELECT COUNT(*) FROM items WHERE qty >= $1::float8 AND qty <= $2::float8", plan.CountQuery)
	assert.Equal(t, []any{2.5, -1.5}, plan.CountArgs, "bounds are bound unchanged")
}

func TestPostgres_Text(t *testing.T) {
	plan := Postgres(Params{Text: "red apple", Category: ptr("Fruit")})

	assert.True(t, plan.Scored)
	assert.Equal(t, "SELECT COUNT(*) FROM items WHERE category = $1", plan.CountQuery)
	assert.Equal(t, []any{"Fruit"}, plan.CountArgs)
	assert.Equal(t,
		"SELECT "+ItemColumns+", ts_rank(search_vector, tsq.q) AS score"+
			" FROM items CROSS JOIN (SELECT replace(plainto_tsquery('english', $2)::text, '&', '|')::tsquery AS q) AS tsq"+
			" WHERE category = $1 AND search_vector @@ tsq.q ORDER BY score DESC, id ASC LIMIT $3 OFFSET $4",
		plan.Query)
	assert.Equal(t, []any{"Fruit", "red apple", DefaultLimit, int64(0)}, plan.Args)
}

func TestPostgres_SortByID(t *testing.T) {
	plan := Postgres(Params{Sort: &Sort{Field: "id", Direction: Asc}})

	assert.Contains(t, plan.Query, "ORDER BY id ASC LIMIT")
}
