package items

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/query"
	"github.com/google/uuid"
)

// MemoryRepository keeps items in process memory in insertion order. It is
// safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]*models.Item
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*models.Item)}
}

func (r *MemoryRepository) Insert(_ context.Context, item *models.Item) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(uuid.NewString(), item), nil
}

func (r *MemoryRepository) insertLocked(id string, item *models.Item) *models.Item {
	stored := item.Clone()
	stored.ID = id
	r.items[id] = stored
	r.order = append(r.order, id)
	return stored.Clone()
}

func (r *MemoryRepository) InsertMany(_ context.Context, items []*models.Item) ([]*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Item, 0, len(items))
	for _, it := range items {
		out = append(out, r.insertLocked(uuid.NewString(), it))
	}
	return out, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return it.Clone(), nil
}

type scored struct {
	item  *models.Item
	score float64
}

func (r *MemoryRepository) List(_ context.Context, p query.Params) ([]*models.Item, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		total   int64
		matches []scored
	)
	for _, id := range r.order {
		it := r.items[id]
		if !p.Matches(it) {
			continue
		}
		total++

		s := scored{item: it}
		if p.HasText() {
			s.score = query.TextScore(p.Text, it)
			if s.score == 0 {
				continue
			}
		}
		matches = append(matches, s)
	}

	switch {
	case p.Sort != nil:
		sort.SliceStable(matches, func(i, j int) bool {
			c := query.Compare(p.Sort.Field, matches[i].item, matches[j].item)
			if p.Sort.Direction == query.Desc {
				c = -c
			}
			return c < 0
		})
	case p.HasText():
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].score > matches[j].score
		})
	}

	skip := p.Skip()
	if skip >= int64(len(matches)) {
		return []*models.Item{}, total, nil
	}
	end := min(skip+p.PageSize(), int64(len(matches)))

	docs := make([]*models.Item, 0, end-skip)
	for _, m := range matches[skip:end] {
		docs = append(docs, m.item.Clone())
	}
	return docs, total, nil
}

func (r *MemoryRepository) CountByCategory(_ context.Context) ([]models.CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		out   []models.CategoryCount
		index = make(map[string]int)
		none  = -1
	)
	for _, id := range r.order {
		it := r.items[id]
		if it.Category == nil {
			if none < 0 {
				none = len(out)
				out = append(out, models.CategoryCount{})
			}
			out[none].Count++
			continue
		}

		i, ok := index[*it.Category]
		if !ok {
			i = len(out)
			index[*it.Category] = i
			cat := *it.Category
			out = append(out, models.CategoryCount{Category: &cat})
		}
		out[i].Count++
	}

	if out == nil {
		out = []models.CategoryCount{}
	}
	sortCounts(out)
	return out, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}

func (r *MemoryRepository) Replace(_ context.Context, id string, item *models.Item) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	next := item.Clone()
	next.ID = id
	next.CreatedAt = cur.CreatedAt
	r.items[id] = next
	return next.Clone(), nil
}

func (r *MemoryRepository) Patch(_ context.Context, id string, in models.ItemInput) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Apply(in)
	return cur.Clone(), nil
}

func (r *MemoryRepository) Upsert(_ context.Context, id string, in models.ItemInput, now time.Time) (*models.Item, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.items[id]; ok {
		cur.Apply(in)
		return cur.Clone(), nil
	}

	fresh, err := models.NewItem(in, now)
	if err != nil {
		return nil, err
	}
	return r.insertLocked(id, fresh), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	if err := validUUID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.deleteLocked(id) {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MemoryRepository) deleteLocked(id string) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *MemoryRepository) DeleteMany(_ context.Context, ids []string) (int64, error) {
	for _, id := range ids {
		if err := validUUID(id); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range ids {
		if r.deleteLocked(id) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) IncrementQty(_ context.Context, ids []string, delta int64) (int64, int64, error) {
	for _, id := range ids {
		if err := validUUID(id); err != nil {
			return 0, 0, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var matched, modified int64
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		it, ok := r.items[id]
		if !ok {
			continue
		}
		matched++
		if delta != 0 {
			it.Qty += delta
			modified++
		}
	}
	return matched, modified, nil
}

func (r *MemoryRepository) All(_ context.Context) ([]*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Item, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}
