package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/inventory/internal/client/models"
)

// HTTPClient implements Client against the REST API rooted at baseURL.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// do sends body as JSON (when not nil) and decodes a 2xx response into out
// (when not nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *HTTPClient) ImportSample(ctx context.Context) (int, error) {
	var res struct {
		Inserted int `json:"inserted"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/items/import-sample", nil, &res); err != nil {
		return 0, err
	}
	return res.Inserted, nil
}

func listQuery(opts models.ListOptions) url.Values {
	v := url.Values{}
	if opts.Q != "" {
		v.Set("q", opts.Q)
	}
	if opts.Category != "" {
		v.Set("category", opts.Category)
	}
	if opts.MinQty != nil {
		v.Set("minQty", strconv.FormatFloat(*opts.MinQty, 'f', -1, 64))
	}
	if opts.MaxQty != nil {
		v.Set("maxQty", strconv.FormatFloat(*opts.MaxQty, 'f', -1, 64))
	}
	if opts.Page > 0 {
		v.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		v.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Sort != "" {
		v.Set("sort", opts.Sort)
	}
	return v
}

func (c *HTTPClient) List(ctx context.Context, opts models.ListOptions) (*models.ListResult, error) {
	path := "/api/items"
	if q := listQuery(opts).Encode(); q != "" {
		path += "?" + q
	}

	var res models.ListResult
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Get(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := c.do(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) Count(ctx context.Context) (int64, error) {
	var res struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/items/meta/count", nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

func (c *HTTPClient) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	var res []models.CategoryCount
	if err := c.do(ctx, http.MethodGet, "/api/items/aggregate/category-count", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) Search(ctx context.Context, q string) ([]*models.Item, error) {
	var res []*models.Item
	path := "/api/items/search/text?" + url.Values{"q": {q}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) Adjust(ctx context.Context, ids []string, delta int64) (*models.BulkUpdateResult, error) {
	body := struct {
		IDs   []string `json:"ids"`
		Delta int64    `json:"delta"`
	}{IDs: ids, Delta: delta}

	var res models.BulkUpdateResult
	if err := c.do(ctx, http.MethodPatch, "/api/items/bulk-update", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Export(ctx context.Context) (*models.ExportResult, error) {
	var res models.ExportResult
	if err := c.do(ctx, http.MethodPost, "/api/items/export", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
