// Package items provides the storage backends for inventory items: MongoDB,
// PostgreSQL and an in-memory store. All of them report failures with the
// sentinel errors of package common.
package items

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/query"
)

type Repository interface {
	// Insert stores item under a new id and returns the stored record.
	Insert(ctx context.Context, item *models.Item) (*models.Item, error)
	// InsertMany stores items unordered. When some documents fail the
	// stored ones are still returned together with an *InsertManyError.
	InsertMany(ctx context.Context, items []*models.Item) ([]*models.Item, error)
	FindByID(ctx context.Context, id string) (*models.Item, error)
	// List returns one page of the records matching p and the number of
	// records matching its structural filter.
	List(ctx context.Context, p query.Params) ([]*models.Item, int64, error)
	// CountByCategory groups all records by category, largest group first.
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	Count(ctx context.Context) (int64, error)
	// Replace overwrites every mutable field of the record with those of
	// item, keeping its id and creation time.
	Replace(ctx context.Context, id string, item *models.Item) (*models.Item, error)
	// Patch sets the fields present in in.
	Patch(ctx context.Context, id string, in models.ItemInput) (*models.Item, error)
	// Upsert patches the record with the given id or creates it with
	// defaults for the absent fields. in.Name must be set.
	Upsert(ctx context.Context, id string, in models.ItemInput, now time.Time) (*models.Item, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	// IncrementQty adds delta to qty of every listed record.
	IncrementQty(ctx context.Context, ids []string, delta int64) (matched, modified int64, err error)
	All(ctx context.Context) ([]*models.Item, error)
}

// InsertManyError reports the documents of a bulk insert that were not
// stored. Indexes refer to the slice passed to InsertMany.
type InsertManyError struct {
	Failures []models.BulkFailure
}

func (e *InsertManyError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, fmt.Sprintf("#%d: %s", f.Index, f.Error))
	}
	return fmt.Sprintf("%s: %d documents failed: %s",
		common.ErrorPersistence, len(e.Failures), strings.Join(msgs, "; "))
}

func (e *InsertManyError) Unwrap() error {
	return common.ErrorPersistence
}

func queryError(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorQuery, err)
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
}

func sortCounts(counts []models.CategoryCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
}
