package items

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding item documents.
const CollectionName = "items"

type itemDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Category    *string            `bson:"category,omitempty"`
	Qty         int64              `bson:"qty"`
	Price       float64            `bson:"price"`
	Description *string            `bson:"description,omitempty"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Score       float64            `bson:"score,omitempty"`
}

func newItemDocument(it *models.Item, id primitive.ObjectID) itemDocument {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return itemDocument{
		ID:          id,
		Name:        it.Name,
		Category:    it.Category,
		Qty:         it.Qty,
		Price:       it.Price,
		Description: it.Description,
		Tags:        tags,
		CreatedAt:   it.CreatedAt,
	}
}

func (d *itemDocument) item() *models.Item {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Item{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Qty:         d.Qty,
		Price:       d.Price,
		Description: d.Description,
		Tags:        tags,
		CreatedAt:   d.CreatedAt,
	}
}

// MongoRepository implements Repository over a MongoDB collection. Ids are
// ObjectIDs in hex form.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the category and name indexes and the text index
// used for relevance search.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("items_text"),
		},
	})
	if err != nil {
		return persistenceError(err)
	}
	return nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrorInvalidID
	}
	return oid, nil
}

func parseObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := parseObjectID(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func (r *MongoRepository) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	doc := newItemDocument(item, primitive.NewObjectID())
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, persistenceError(err)
	}
	return doc.item(), nil
}

func (r *MongoRepository) InsertMany(ctx context.Context, items []*models.Item) ([]*models.Item, error) {
	if len(items) == 0 {
		return []*models.Item{}, nil
	}

	docs := make([]any, len(items))
	stored := make([]itemDocument, len(items))
	for i, it := range items {
		stored[i] = newItemDocument(it, primitive.NewObjectID())
		docs[i] = stored[i]
	}

	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		out := make([]*models.Item, len(stored))
		for i := range stored {
			out[i] = stored[i].item()
		}
		return out, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return nil, persistenceError(err)
	}
	if len(bwe.WriteErrors) == 0 {
		// Only the write concern failed; the documents may already be stored.
		out := make([]*models.Item, len(stored))
		for i := range stored {
			out[i] = stored[i].item()
		}
		return out, persistenceError(err)
	}

	failed := make(map[int]string, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		failed[we.Index] = we.Message
	}

	var (
		out      []*models.Item
		failures []models.BulkFailure
	)
	for i := range stored {
		if msg, ok := failed[i]; ok {
			failures = append(failures, models.BulkFailure{Index: i, Error: msg})
			continue
		}
		out = append(out, stored[i].item())
	}
	return out, &InsertManyError{Failures: failures}
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc itemDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, queryError(err)
	}
	return doc.item(), nil
}

func (r *MongoRepository) List(ctx context.Context, p query.Params) ([]*models.Item, int64, error) {
	plan := query.Mongo(p)

	docs, err := r.find(ctx, plan.Filter, plan.Options)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, plan.CountFilter)
	if err != nil {
		return nil, 0, queryError(err)
	}
	return docs, total, nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*models.Item, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, queryError(err)
	}

	var docs []itemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, queryError(err)
	}

	out := make([]*models.Item, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].item())
	}
	return out, nil
}

func (r *MongoRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, queryError(err)
	}

	var groups []struct {
		Category *string `bson:"_id"`
		Count    int64   `bson:"count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, queryError(err)
	}

	out := make([]models.CategoryCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.CategoryCount{Category: g.Category, Count: g.Count})
	}
	return out, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, queryError(err)
	}
	return n, nil
}

func (r *MongoRepository) Replace(ctx context.Context, id string, item *models.Item) (*models.Item, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{
		{Key: "name", Value: item.Name},
		{Key: "qty", Value: item.Qty},
		{Key: "price", Value: item.Price},
		{Key: "tags", Value: nonNilTags(item.Tags)},
	}
	var unset bson.D
	optional := func(key string, v *string) {
		if v == nil {
			unset = append(unset, bson.E{Key: key, Value: ""})
			return
		}
		set = append(set, bson.E{Key: key, Value: *v})
	}
	optional("category", item.Category)
	optional("description", item.Description)

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return r.findOneAndUpdate(ctx, oid, update, options.FindOneAndUpdate())
}

func (r *MongoRepository) Patch(ctx context.Context, id string, in models.ItemInput) (*models.Item, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	return r.findOneAndUpdate(ctx, oid, patchUpdate(in), options.FindOneAndUpdate())
}

func (r *MongoRepository) Upsert(ctx context.Context, id string, in models.ItemInput, now time.Time) (*models.Item, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, models.NewValidationError("name", "is required")
	}

	onInsert := bson.D{{Key: "createdAt", Value: now}}
	if in.Qty == nil {
		onInsert = append(onInsert, bson.E{Key: "qty", Value: int64(0)})
	}
	if in.Price == nil {
		onInsert = append(onInsert, bson.E{Key: "price", Value: 0.0})
	}
	if in.Tags == nil {
		onInsert = append(onInsert, bson.E{Key: "tags", Value: []string{}})
	}

	update := append(patchUpdate(in), bson.E{Key: "$setOnInsert", Value: onInsert})
	return r.findOneAndUpdate(ctx, oid, update, options.FindOneAndUpdate().SetUpsert(true))
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.D, opts *options.FindOneAndUpdateOptions) (*models.Item, error) {
	opts.SetReturnDocument(options.After)

	var doc itemDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	return doc.item(), nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return persistenceError(err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	oids, err := parseObjectIDs(ids)
	if err != nil {
		return 0, err
	}

	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return 0, persistenceError(err)
	}
	return res.DeletedCount, nil
}

func (r *MongoRepository) IncrementQty(ctx context.Context, ids []string, delta int64) (int64, int64, error) {
	oids, err := parseObjectIDs(ids)
	if err != nil {
		return 0, 0, err
	}

	res, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "qty", Value: delta}}}},
	)
	if err != nil {
		return 0, 0, persistenceError(err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

func (r *MongoRepository) All(ctx context.Context) ([]*models.Item, error) {
	return r.find(ctx, bson.D{}, options.Find())
}

// patchUpdate sets the present fields and unsets the optional fields sent
// as null. Empty operators are left out.
func patchUpdate(in models.ItemInput) bson.D {
	update := bson.D{}
	if set := setFields(in); len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}

	var unset bson.D
	if in.ClearCategory {
		unset = append(unset, bson.E{Key: "category", Value: ""})
	}
	if in.ClearDescription {
		unset = append(unset, bson.E{Key: "description", Value: ""})
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

func setFields(in models.ItemInput) bson.D {
	set := bson.D{}
	if in.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *in.Name})
	}
	if in.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *in.Category})
	}
	if in.Qty != nil {
		set = append(set, bson.E{Key: "qty", Value: *in.Qty})
	}
	if in.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *in.Price})
	}
	if in.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *in.Description})
	}
	if in.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: nonNilTags(*in.Tags)})
	}
	return set
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
