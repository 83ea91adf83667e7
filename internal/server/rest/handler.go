package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/logging"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/query"
	"github.com/labstack/echo"
)

// ItemService is the part of services.ItemService the API depends on.
type ItemService interface {
	Create(ctx context.Context, in models.ItemInput) (*models.Item, error)
	BulkInsert(ctx context.Context, docs []json.RawMessage) (*models.BulkInsertResult, error)
	List(ctx context.Context, p query.Params) (*models.ListResult, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Search(ctx context.Context, q string) ([]*models.Item, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
	Count(ctx context.Context) (int64, error)
	Replace(ctx context.Context, id string, in models.ItemInput) (*models.Item, error)
	Patch(ctx context.Context, id string, in models.ItemInput) (*models.Item, error)
	Upsert(ctx context.Context, id string, in models.ItemInput) (*models.Item, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	BulkUpdate(ctx context.Context, ids []string, delta int64) (*models.BulkUpdateResult, error)
	ImportSample(ctx context.Context) (int, error)
}

type ExportService interface {
	Export(ctx context.Context) (*models.ExportResult, error)
}

type ItemHandler struct {
	items   ItemService
	exports ExportService
	logger  logging.Logger
}

// NewItemHandler registers the items API on g.
func NewItemHandler(g *echo.Group, logger logging.Logger, items ItemService, exports ExportService) {
	h := &ItemHandler{items: items, exports: exports, logger: logger}

	g.POST("/items", h.create)
	g.POST("/items/bulk", h.bulkInsert)
	g.GET("/items", h.list)
	g.GET("/items/search/text", h.search)
	g.GET("/items/aggregate/category-count", h.categoryCount)
	g.GET("/items/meta/count", h.count)
	g.PATCH("/items/bulk-update", h.bulkUpdate)
	g.POST("/items/import-sample", h.importSample)
	g.POST("/items/export", h.export)
	g.DELETE("/items", h.bulkDelete)
	g.GET("/items/:id", h.get)
	g.PUT("/items/:id", h.replace)
	g.PATCH("/items/:id", h.patch)
	g.PUT("/items/:id/upsert", h.upsert)
	g.DELETE("/items/:id", h.delete)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, models.NewValidationError("", "cannot read request body")
	}
	return body, nil
}

func readItemInput(c echo.Context) (models.ItemInput, error) {
	body, err := readBody(c)
	if err != nil {
		return models.ItemInput{}, err
	}
	return models.ParseItemInput(body)
}

// readFields decodes a JSON object body. An empty body is an empty object.
func readFields(c echo.Context) (map[string]json.RawMessage, error) {
	body, err := readBody(c)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, models.NewValidationError("", "body must be a JSON object")
	}
	return fields, nil
}

// listField decodes fields[name] as a JSON array. Absent or null yields an
// empty list.
func listField(fields map[string]json.RawMessage, name string) ([]json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, models.NewValidationError("", name+" must be an array")
	}
	return list, nil
}

func readIDs(fields map[string]json.RawMessage) ([]string, error) {
	raw, err := listField(fields, "ids")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		var id string
		if err := json.Unmarshal(r, &id); err != nil {
			return nil, common.ErrorInvalidID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *ItemHandler) create(c echo.Context) error {
	in, err := readItemInput(c)
	if err != nil {
		return err
	}

	item, err := h.items.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) bulkInsert(c echo.Context) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	docs, err := listField(fields, "items")
	if err != nil {
		return err
	}

	res, err := h.items.BulkInsert(c.Request().Context(), docs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ItemHandler) list(c echo.Context) error {
	res, err := h.items.List(c.Request().Context(), query.FromValues(c.QueryParams()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ItemHandler) get(c echo.Context) error {
	item, err := h.items.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) search(c echo.Context) error {
	docs, err := h.items.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *ItemHandler) categoryCount(c echo.Context) error {
	counts, err := h.items.CategoryCounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *ItemHandler) count(c echo.Context) error {
	n, err := h.items.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *ItemHandler) replace(c echo.Context) error {
	in, err := readItemInput(c)
	if err != nil {
		return err
	}

	item, err := h.items.Replace(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) patch(c echo.Context) error {
	in, err := readItemInput(c)
	if err != nil {
		return err
	}

	item, err := h.items.Patch(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) upsert(c echo.Context) error {
	in, err := readItemInput(c)
	if err != nil {
		return err
	}

	item, err := h.items.Upsert(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.items.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"deletedId": id})
}

func (h *ItemHandler) bulkDelete(c echo.Context) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	ids, err := readIDs(fields)
	if err != nil {
		return err
	}

	n, err := h.items.BulkDelete(c.Request().Context(), ids)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"deletedCount": n})
}

func (h *ItemHandler) bulkUpdate(c echo.Context) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	ids, err := readIDs(fields)
	if err != nil {
		return err
	}

	var delta int64
	if raw, ok := fields["delta"]; ok {
		d, err := models.ParseInteger(raw)
		if err != nil {
			return models.NewValidationError("delta", err.Error())
		}
		if d != nil {
			delta = *d
		}
	}

	res, err := h.items.BulkUpdate(c.Request().Context(), ids, delta)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ItemHandler) importSample(c echo.Context) error {
	n, err := h.items.ImportSample(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"inserted": n})
}

func (h *ItemHandler) export(c echo.Context) error {
	res, err := h.exports.Export(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
