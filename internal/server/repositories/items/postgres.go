package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/dbx"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/query"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over the items table. Ids are
// UUIDs and tags are stored as a JSONB array.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, extra ...any) (*models.Item, error) {
	var (
		item        models.Item
		category    sql.NullString
		description sql.NullString
		tags        string
	)
	dest := []any{&item.ID, &item.Name, &category, &item.Qty, &item.Price, &description, &tags, &item.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if category.Valid {
		item.Category = &category.String
	}
	if description.Valid {
		item.Description = &description.String
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return &item, nil
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func validUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorInvalidID
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	stored, err := insertItem(ctx, r.db, item)
	if err != nil {
		return nil, persistenceError(err)
	}
	return stored, nil
}

func insertItem(ctx context.Context, db dbx.DBTX, item *models.Item) (*models.Item, error) {
	stmt := `INSERT INTO items (id, name, category, qty, price, description, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		RETURNING ` + query.ItemColumns

	row := db.QueryRowContext(ctx, stmt,
		uuid.NewString(), item.Name, item.Category, item.Qty, item.Price, item.Description,
		encodeTags(item.Tags), item.CreatedAt)
	return scanItem(row)
}

// InsertMany stores each item with its own statement. A failing row is
// reported in an InsertManyError and does not undo the rows before it.
func (r *PostgresRepository) InsertMany(ctx context.Context, items []*models.Item) ([]*models.Item, error) {
	var (
		out      = make([]*models.Item, 0, len(items))
		failures []models.BulkFailure
	)

	for i, item := range items {
		stored, err := insertItem(ctx, r.db, item)
		if err != nil {
			failures = append(failures, models.BulkFailure{Index: i, Error: err.Error()})
			continue
		}
		out = append(out, stored)
	}

	if len(failures) > 0 {
		return out, &InsertManyError{Failures: failures}
	}
	return out, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, "SELECT "+query.ItemColumns+" FROM items WHERE id = $1", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, queryError(err)
	}
	return item, nil
}

// List reads the page and the total from one read-only snapshot.
func (r *PostgresRepository) List(ctx context.Context, p query.Params) ([]*models.Item, int64, error) {
	plan := query.Postgres(p)

	var (
		docs  []*models.Item
		total int64
	)
	err := dbx.WithTx(ctx, r.db, snapshotTx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if docs, err = listPage(ctx, tx, plan); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, plan.CountQuery, plan.CountArgs...).Scan(&total)
	})
	if err != nil {
		return nil, 0, queryError(err)
	}
	return docs, total, nil
}

var snapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func listPage(ctx context.Context, db dbx.DBTX, plan query.SQLPlan) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, plan.Query, plan.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*models.Item{}
	for rows.Next() {
		var (
			item  *models.Item
			score float64
		)
		if plan.Scored {
			item, err = scanItem(rows, &score)
		} else {
			item, err = scanItem(rows)
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, item)
	}
	return docs, rows.Err()
}

func (r *PostgresRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) AS n FROM items GROUP BY category ORDER BY n DESC`)
	if err != nil {
		return nil, queryError(err)
	}
	defer rows.Close()

	out := []models.CategoryCount{}
	for rows.Next() {
		var (
			category sql.NullString
			cc       models.CategoryCount
		)
		if err := rows.Scan(&category, &cc.Count); err != nil {
			return nil, queryError(err)
		}
		if category.Valid {
			cc.Category = &category.String
		}
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, queryError(err)
	}
	return n, nil
}

func (r *PostgresRepository) Replace(ctx context.Context, id string, item *models.Item) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}

	stmt := `UPDATE items
		SET name = $2, category = $3, qty = $4, price = $5, description = $6, tags = $7::jsonb
		WHERE id = $1
		RETURNING ` + query.ItemColumns

	row := r.db.QueryRowContext(ctx, stmt,
		id, item.Name, item.Category, item.Qty, item.Price, item.Description, encodeTags(item.Tags))
	return updated(scanItem(row))
}

func (r *PostgresRepository) Patch(ctx context.Context, id string, in models.ItemInput) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	cols, args := assignments(in)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+2)
	}

	stmt := "UPDATE items SET " + strings.Join(sets, ", ") +
		" WHERE id = $1 RETURNING " + query.ItemColumns

	row := r.db.QueryRowContext(ctx, stmt, append([]any{id}, args...)...)
	return updated(scanItem(row))
}

func (r *PostgresRepository) Upsert(ctx context.Context, id string, in models.ItemInput, now time.Time) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}
	fresh, err := models.NewItem(in, now)
	if err != nil {
		return nil, err
	}

	cols, _ := assignments(in)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}

	stmt := `INSERT INTO items (id, name, category, qty, price, description, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		ON CONFLICT (id) DO UPDATE SET ` + strings.Join(sets, ", ") + `
		RETURNING ` + query.ItemColumns

	row := r.db.QueryRowContext(ctx, stmt,
		id, fresh.Name, fresh.Category, fresh.Qty, fresh.Price, fresh.Description,
		encodeTags(fresh.Tags), fresh.CreatedAt)
	item, err := scanItem(row)
	if err != nil {
		return nil, persistenceError(err)
	}
	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if err := validUUID(id); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return persistenceError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistenceError(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	in, args, err := idList(ids, 1)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id IN ("+in+")", args...)
	if err != nil {
		return 0, persistenceError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, persistenceError(err)
	}
	return n, nil
}

func (r *PostgresRepository) IncrementQty(ctx context.Context, ids []string, delta int64) (int64, int64, error) {
	in, args, err := idList(ids, 2)
	if err != nil {
		return 0, 0, err
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE items SET qty = qty + $1 WHERE id IN ("+in+")", append([]any{delta}, args...)...)
	if err != nil {
		return 0, 0, persistenceError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, 0, persistenceError(err)
	}
	if delta == 0 {
		return n, 0, nil
	}
	return n, n, nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+query.ItemColumns+" FROM items ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, queryError(err)
	}
	defer rows.Close()

	out := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, queryError(err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(err)
	}
	return out, nil
}

func updated(item *models.Item, err error) (*models.Item, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	return item, nil
}

// assignments lists the columns of the fields present in in together with
// their values, in table order.
func assignments(in models.ItemInput) ([]string, []any) {
	var (
		cols []string
		args []any
	)
	if in.Name != nil {
		cols, args = append(cols, "name"), append(args, *in.Name)
	}
	if in.Category != nil || in.ClearCategory {
		cols, args = append(cols, "category"), append(args, nullable(in.Category))
	}
	if in.Qty != nil {
		cols, args = append(cols, "qty"), append(args, *in.Qty)
	}
	if in.Price != nil {
		cols, args = append(cols, "price"), append(args, *in.Price)
	}
	if in.Description != nil || in.ClearDescription {
		cols, args = append(cols, "description"), append(args, nullable(in.Description))
	}
	if in.Tags != nil {
		cols, args = append(cols, "tags"), append(args, encodeTags(*in.Tags))
	}
	return cols, args
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// idList validates ids and renders them as placeholders numbered from first.
func idList(ids []string, first int) (string, []any, error) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		if err := validUUID(id); err != nil {
			return "", nil, err
		}
		marks[i] = fmt.Sprintf("$%d", first+i)
		args[i] = id
	}
	return strings.Join(marks, ", "), args, nil
}
