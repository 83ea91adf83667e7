package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPlan is a single find against the items collection.
//
// CountFilter is Filter without the $text predicate.
type MongoPlan struct {
	Filter      bson.D
	CountFilter bson.D
	Options     *options.FindOptions
}

var mongoFields = map[string]string{
	"id":          "_id",
	"name":        "name",
	"category":    "category",
	"qty":         "qty",
	"price":       "price",
	"description": "description",
	"createdAt":   "createdAt",
}

var textScore = bson.D{{Key: "$meta", Value: "textScore"}}

// Mongo builds the find plan for p.
func Mongo(p Params) MongoPlan {
	structural := MongoFilter(p)

	plan := MongoPlan{
		Filter:      structural,
		CountFilter: structural,
		Options:     options.Find().SetSkip(p.Skip()).SetLimit(p.PageSize()),
	}

	if p.HasText() {
		filter := bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: p.Text}}}}
		plan.Filter = append(filter, structural...)
		plan.Options.SetProjection(bson.D{{Key: "score", Value: textScore}})
		plan.Options.SetSort(bson.D{{Key: "score", Value: textScore}})
	}

	if p.Sort != nil {
		plan.Options.SetSort(bson.D{{Key: mongoFields[p.Sort.Field], Value: int(p.Sort.Direction)}})
	}

	return plan
}

// MongoFilter returns the structural filter (category and qty bounds).
func MongoFilter(p Params) bson.D {
	filter := bson.D{}
	if p.Category != nil {
		filter = append(filter, bson.E{Key: "category", Value: *p.Category})
	}

	var qty bson.D
	if p.MinQty != nil {
		qty = append(qty, bson.E{Key: "$gte", Value: *p.MinQty})
	}
	if p.MaxQty != nil {
		qty = append(qty, bson.E{Key: "$lte", Value: *p.MaxQty})
	}
	if len(qty) > 0 {
		filter = append(filter, bson.E{Key: "qty", Value: qty})
	}

	return filter
}
