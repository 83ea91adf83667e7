// Package services implements the inventory use cases on top of the item
// repository: validation, bulk execution, aggregation and exports.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/logging"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/query"
	"github.com/dmitrijs2005/inventory/internal/server/repositories/items"
)

type ItemService struct {
	repo   items.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewItemService(repo items.Repository, logger logging.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger.With("module", "items"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in and stores a new item.
func (s *ItemService) Create(ctx context.Context, in models.ItemInput) (*models.Item, error) {
	item, err := models.NewItem(in, s.now())
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Insert(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "item created", "id", stored.ID)
	return stored, nil
}

// BulkInsert validates every document on its own and inserts the valid ones
// unordered. Documents that fail validation or storage are reported in
// Failed by their position in docs; they never abort the rest.
func (s *ItemService) BulkInsert(ctx context.Context, docs []json.RawMessage) (*models.BulkInsertResult, error) {
	res := &models.BulkInsertResult{Docs: []*models.Item{}, Failed: []models.BulkFailure{}}

	var (
		valid     []*models.Item
		positions []int
		now       = s.now()
	)
	for i, raw := range docs {
		in, err := models.ParseItemInput(raw)
		if err == nil {
			var item *models.Item
			if item, err = models.NewItem(in, now); err == nil {
				valid = append(valid, item)
				positions = append(positions, i)
				continue
			}
		}
		res.Failed = append(res.Failed, models.BulkFailure{Index: i, Error: err.Error()})
	}

	if len(valid) > 0 {
		stored, err := s.repo.InsertMany(ctx, valid)
		var ime *items.InsertManyError
		switch {
		case errors.As(err, &ime):
			for _, f := range ime.Failures {
				res.Failed = append(res.Failed, models.BulkFailure{Index: positions[f.Index], Error: f.Error})
			}
		case err != nil:
			return nil, err
		}
		res.Docs = append(res.Docs, stored...)
	}

	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].Index < res.Failed[j].Index })
	res.Inserted = len(res.Docs)

	s.logger.Info(ctx, "bulk insert", "inserted", res.Inserted, "failed", len(res.Failed))
	return res, nil
}

// List returns one page of items matching p.
func (s *ItemService) List(ctx context.Context, p query.Params) (*models.ListResult, error) {
	docs, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	page := p.Page
	if page < 1 {
		page = query.DefaultPage
	}
	if docs == nil {
		docs = []*models.Item{}
	}
	return &models.ListResult{Total: total, Page: page, Limit: p.PageSize(), Docs: docs}, nil
}

func (s *ItemService) Get(ctx context.Context, id string) (*models.Item, error) {
	return s.repo.FindByID(ctx, id)
}

// Search returns up to query.TextSearchLimit items ranked by relevance.
// A blank q yields an empty result.
func (s *ItemService) Search(ctx context.Context, q string) ([]*models.Item, error) {
	if strings.TrimSpace(q) == "" {
		return []*models.Item{}, nil
	}

	docs, _, err := s.repo.List(ctx, query.TextSearch(q))
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*models.Item{}
	}
	return docs, nil
}

// CategoryCounts groups items by category, largest group first. The order
// of groups with equal counts is whatever the store yields.
func (s *ItemService) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []models.CategoryCount{}
	}
	return counts, nil
}

func (s *ItemService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Replace overwrites the item with a record built from in. Fields absent
// from in fall back to their defaults.
func (s *ItemService) Replace(ctx context.Context, id string, in models.ItemInput) (*models.Item, error) {
	item, err := models.NewItem(in, s.now())
	if err != nil {
		return nil, err
	}
	return s.repo.Replace(ctx, id, item)
}

// Patch merges the fields present in in into the item.
func (s *ItemService) Patch(ctx context.Context, id string, in models.ItemInput) (*models.Item, error) {
	if err := in.ValidatePatch(); err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.Patch(ctx, id, in)
}

// Upsert patches the item with the given id or creates it. Creation needs a
// name, so without one the call only succeeds when the item already exists.
func (s *ItemService) Upsert(ctx context.Context, id string, in models.ItemInput) (*models.Item, error) {
	if err := in.ValidatePatch(); err != nil {
		return nil, err
	}

	if in.Name == nil {
		item, err := s.Patch(ctx, id, in)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, models.NewValidationError("name", "is required")
		}
		return item, err
	}

	item, err := s.repo.Upsert(ctx, id, in, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "item upserted", "id", item.ID)
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "item deleted", "id", id)
	return nil
}

// BulkDelete removes the listed items and returns how many existed.
func (s *ItemService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "bulk delete", "requested", len(ids), "deleted", n)
	return n, nil
}

// BulkUpdate adds delta to qty of every listed item. qty is not clamped.
func (s *ItemService) BulkUpdate(ctx context.Context, ids []string, delta int64) (*models.BulkUpdateResult, error) {
	if len(ids) == 0 {
		return &models.BulkUpdateResult{}, nil
	}

	matched, modified, err := s.repo.IncrementQty(ctx, ids, delta)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "bulk update", "matched", matched, "modified", modified, "delta", delta)
	return &models.BulkUpdateResult{MatchedCount: matched, ModifiedCount: modified}, nil
}

// SampleItems is the demonstration set stored by ImportSample.
func SampleItems() []models.ItemInput {
	fruit, tools := "Fruit", "Tools"
	sample := func(name string, category *string, qty int64, price float64, tags ...string) models.ItemInput {
		return models.ItemInput{Name: &name, Category: category, Qty: &qty, Price: &price, Tags: &tags}
	}
	return []models.ItemInput{
		sample("Apple", &fruit, 50, 0.5, "fresh", "food"),
		sample("Banana", &fruit, 80, 0.3, "yellow"),
		sample("Hammer", &tools, 15, 9.99, "hardware"),
	}
}

// ImportSample inserts SampleItems and returns how many were stored.
func (s *ItemService) ImportSample(ctx context.Context) (int, error) {
	now := s.now()
	sample := SampleItems()

	batch := make([]*models.Item, 0, len(sample))
	for _, in := range sample {
		item, err := models.NewItem(in, now)
		if err != nil {
			return 0, err
		}
		batch = append(batch, item)
	}

	stored, err := s.repo.InsertMany(ctx, batch)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "sample imported", "inserted", len(stored))
	return len(stored), nil
}
