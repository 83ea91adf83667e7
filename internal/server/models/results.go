package models

// ListResult is one page of a filtered listing. Total counts every record
// matching the structural filter, regardless of text search.
type ListResult struct {
	Total int64   `json:"total"`
	Page  int64   `json:"page"`
	Limit int64   `json:"limit"`
	Docs  []*Item `json:"docs"`
}

// CategoryCount is one group of the category aggregation. A nil Category is
// the group of items without a category.
type CategoryCount struct {
	Category *string `json:"category"`
	Count    int64   `json:"count"`
}

// BulkFailure identifies a document of a bulk insert that was not stored.
// Index refers to the position in the submitted list.
type BulkFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BulkInsertResult struct {
	Inserted int           `json:"inserted"`
	Docs     []*Item       `json:"docs"`
	Failed   []BulkFailure `json:"failed"`
}

type BulkUpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// ExportResult describes a snapshot written to object storage.
type ExportResult struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}
