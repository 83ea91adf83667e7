package items

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	id1 = "6f1c2c36-6a57-4f4b-9a55-0d8a6f7a1b01"
	id2 = "6f1c2c36-6a57-4f4b-9a55-0d8a6f7a1b02"
)

var itemCols = []string{"id", "name", "category", "qty", "price", "description", "tags", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func ts() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
}

func TestPostgres_Insert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO items .* RETURNING id::text`).
		WithArgs(sqlmock.AnyArg(), "Apple", "Fruit", int64(5), 0.5, nil, `["fresh"]`, ts()).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "Apple", "Fruit", int64(5), 0.5, nil, `["fresh"]`, ts()))

	cat := "Fruit"
	got, err := repo.Insert(context.Background(), &models.Item{
		Name: "Apple", Category: &cat, Qty: 5, Price: 0.5, Tags: []string{"fresh"}, CreatedAt: ts(),
	})
	require.NoError(t, err)
	assert.Equal(t, id1, got.ID)
	assert.Equal(t, "Fruit", got.CategoryValue())
	assert.Nil(t, got.Description)
	assert.Equal(t, []string{"fresh"}, got.Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertMany_PartialFailure(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "a", nil, int64(0), 0.0, nil, `[]`, ts()))
	mock.ExpectQuery(`INSERT INTO items`).WillReturnError(errors.New("value too long"))
	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id2, "c", nil, int64(0), 0.0, nil, `[]`, ts()))

	got, err := repo.InsertMany(context.Background(), []*models.Item{{Name: "a"}, {Name: "b"}, {Name: "c"}})

	var ime *InsertManyError
	require.True(t, errors.As(err, &ime))
	assert.Equal(t, []models.BulkFailure{{Index: 1, Error: "value too long"}}, ime.Failures)
	require.Len(t, got, 2)
	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, id2, got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertMany_KeepsRowsBeforeConnectionLoss(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "a", nil, int64(0), 0.0, nil, `[]`, ts()))
	mock.ExpectQuery(`INSERT INTO items`).WillReturnError(errors.New("connection reset"))

	got, err := repo.InsertMany(context.Background(), []*models.Item{{Name: "a"}, {Name: "b"}})

	var ime *InsertManyError
	require.True(t, errors.As(err, &ime))
	assert.Equal(t, []models.BulkFailure{{Index: 1, Error: "connection reset"}}, ime.Failures)
	require.Len(t, got, 1, "the stored row must be reported")
	assert.Equal(t, id1, got[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertMany_NoTransaction(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "a", nil, int64(0), 0.0, nil, `[]`, ts()))

	got, err := repo.InsertMany(context.Background(), []*models.Item{{Name: "a"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NoError(t, mock.ExpectationsWereMet(), "no BEGIN or COMMIT is expected")
}

func TestPostgres_FindByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM items WHERE id = \$1`).
		WithArgs(id1).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "Apple", nil, int64(1), 1.0, "red", `["x"]`, ts()))
	mock.ExpectQuery(`SELECT .* FROM items WHERE id = \$1`).
		WithArgs(id2).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindByID(context.Background(), id1)
	require.NoError(t, err)
	assert.Equal(t, "red", got.DescriptionValue())
	assert.Nil(t, got.Category)

	_, err = repo.FindByID(context.Background(), id2)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.FindByID(context.Background(), "42")
	assert.ErrorIs(t, err, common.ErrorInvalidID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_List(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cat := "Fruit"
	p := query.Params{Category: &cat, Page: 2, Limit: 1}
	plan := query.Postgres(p)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(plan.Query)).
		WithArgs("Fruit", int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id2, "Banana", "Fruit", int64(80), 0.3, nil, `["yellow"]`, ts()))
	mock.ExpectQuery(regexp.QuoteMeta(plan.CountQuery)).
		WithArgs("Fruit").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectCommit()

	docs, total, err := repo.List(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, docs, 1)
	assert.Equal(t, "Banana", docs[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_List_Scored(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	p := query.TextSearch("apple")
	plan := query.Postgres(p)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(plan.Query)).
		WillReturnRows(sqlmock.NewRows(append(itemCols, "score")).
			AddRow(id1, "Apple", nil, int64(1), 1.0, nil, `[]`, ts(), 0.6))
	mock.ExpectQuery(regexp.QuoteMeta(plan.CountQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectCommit()

	docs, total, err := repo.List(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, docs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_List_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	_, _, err := repo.List(context.Background(), query.Params{})
	assert.ErrorIs(t, err, common.ErrorQuery)
	assert.Contains(t, err.Error(), "syntax error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_List_BeginError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	_, _, err := repo.List(context.Background(), query.Params{})
	assert.ErrorIs(t, err, common.ErrorQuery)
}

func TestPostgres_CountByCategory(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT category, COUNT\(\*\) AS n FROM items GROUP BY category ORDER BY n DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "n"}).
			AddRow("A", int64(2)).
			AddRow(nil, int64(1)))

	got, err := repo.CountByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", *got[0].Category)
	assert.Equal(t, int64(2), got[0].Count)
	assert.Nil(t, got[1].Category)
}

func TestPostgres_Count(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestPostgres_Replace(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE items\s+SET name = \$2, category = \$3, qty = \$4, price = \$5, description = \$6, tags = \$7::jsonb\s+WHERE id = \$1`).
		WithArgs(id1, "Pear", nil, int64(0), 0.0, nil, `[]`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "Pear", nil, int64(0), 0.0, nil, `[]`, ts()))
	mock.ExpectQuery(`UPDATE items`).
		WithArgs(id2, "Pear", nil, int64(0), 0.0, nil, `[]`).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Replace(context.Background(), id1, &models.Item{Name: "Pear"})
	require.NoError(t, err)
	assert.Equal(t, ts(), got.CreatedAt)

	_, err = repo.Replace(context.Background(), id2, &models.Item{Name: "Pear"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Patch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE items SET qty = \$2, tags = \$3 WHERE id = \$1 RETURNING`).
		WithArgs(id1, int64(7), `["a","b"]`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "Apple", nil, int64(7), 0.0, nil, `["a","b"]`, ts()))

	qty := int64(7)
	tags := []string{"a", "b"}
	got, err := repo.Patch(context.Background(), id1, models.ItemInput{Qty: &qty, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Qty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PatchClearsCategory(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE items SET category = \$2 WHERE id = \$1 RETURNING`).
		WithArgs(id1, nil).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "Apple", nil, int64(7), 0.0, nil, `[]`, ts()))

	got, err := repo.Patch(context.Background(), id1, models.ItemInput{ClearCategory: true})
	require.NoError(t, err)
	assert.Nil(t, got.Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Upsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO items .* ON CONFLICT \(id\) DO UPDATE SET name = EXCLUDED\.name, price = EXCLUDED\.price\s+RETURNING`).
		WithArgs(id1, "Saw", nil, int64(0), 12.5, nil, `[]`, ts()).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(id1, "Saw", nil, int64(0), 12.5, nil, `[]`, ts()))

	name, price := "Saw", 12.5
	got, err := repo.Upsert(context.Background(), id1, models.ItemInput{Name: &name, Price: &price}, ts())
	require.NoError(t, err)
	assert.Equal(t, id1, got.ID)
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.Upsert(context.Background(), id1, models.ItemInput{}, ts())
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestPostgres_Delete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM items WHERE id = \$1`).WithArgs(id1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM items WHERE id = \$1`).WithArgs(id2).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), id1))
	assert.ErrorIs(t, repo.Delete(context.Background(), id2), common.ErrorNotFound)
}

func TestPostgres_DeleteMany(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM items WHERE id IN \(\$1, \$2\)`).
		WithArgs(id1, id2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteMany(context.Background(), []string{id1, id2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.DeleteMany(context.Background(), []string{id1, "bad"})
	assert.ErrorIs(t, err, common.ErrorInvalidID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_IncrementQty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE items SET qty = qty \+ \$1 WHERE id IN \(\$2, \$3\)`).
		WithArgs(int64(-5), id1, id2).
		WillReturnResult(sqlmock.NewResult(0, 2))

	matched, modified, err := repo.IncrementQty(context.Background(), []string{id1, id2}, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), matched)
	assert.Equal(t, int64(2), modified)
}

func TestPostgres_IncrementQty_ZeroDelta(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE items SET qty = qty \+ \$1`).
		WithArgs(int64(0), id1, id2).
		WillReturnResult(sqlmock.NewResult(0, 2))

	matched, modified, err := repo.IncrementQty(context.Background(), []string{id1, id2}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), matched)
	assert.Equal(t, int64(0), modified, "adding zero changes nothing")
}

func TestPostgres_IncrementQty_ExecError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE items`).WillReturnError(errors.New("db is down"))

	_, _, err := repo.IncrementQty(context.Background(), []string{id1}, 1)
	assert.ErrorIs(t, err, common.ErrorPersistence)
	assert.Contains(t, err.Error(), "db is down")
}

func TestPostgres_All(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM items ORDER BY created_at ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(id1, "a", nil, int64(0), 0.0, nil, `[]`, ts()).
			AddRow(id2, "b", nil, int64(0), 0.0, nil, `null`, ts()))

	got, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{}, got[1].Tags)
}
