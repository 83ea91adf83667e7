package client

import (
	"context"

	"github.com/dmitrijs2005/inventory/internal/client/models"
)

type Client interface {
	Health(ctx context.Context) error
	ImportSample(ctx context.Context) (int, error)
	List(ctx context.Context, opts models.ListOptions) (*models.ListResult, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Count(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
	Search(ctx context.Context, q string) ([]*models.Item, error)
	Delete(ctx context.Context, id string) error
	Adjust(ctx context.Context, ids []string, delta int64) (*models.BulkUpdateResult, error)
	Export(ctx context.Context) (*models.ExportResult, error)
}
