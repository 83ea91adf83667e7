package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/logging"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/dmitrijs2005/inventory/internal/server/repositories/items"
	"github.com/dmitrijs2005/inventory/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeExporter struct {
	res *models.ExportResult
	err error
}

func (f fakeExporter) Export(context.Context) (*models.ExportResult, error) { return f.res, f.err }

func newTestServer(t *testing.T, pinger Pinger, exports ExportService) *Server {
	t.Helper()
	svc := services.NewItemService(items.NewMemoryRepository(), nopLogger{})
	s, err := NewServer("127.0.0.1:0", time.Second, nopLogger{}, pinger, svc, exports)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	ok := newTestServer(t, fakePinger{}, fakeExporter{})
	rec := do(t, ok.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := newTestServer(t, fakePinger{err: errors.New("no route to host")}, fakeExporter{})
	rec = do(t, down.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no route to host")
}

func TestServesWebUI(t *testing.T) {
	s := newTestServer(t, fakePinger{}, fakeExporter{})

	rec := do(t, s.Handler(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Inventory</title>")

	rec = do(t, s.Handler(), http.MethodGet, "/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/items")
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(t, fakePinger{}, fakeExporter{})

	req := httptest.NewRequest(http.MethodGet, "/api/items/meta/count", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", models.NewValidationError("name", "is required"), http.StatusBadRequest, "validation error: name: is required"},
		{"invalid id", fmt.Errorf("%w: %q", common.ErrorInvalidID, "abc"), http.StatusBadRequest, "invalid id"},
		{"not found", fmt.Errorf("%w: item", common.ErrorNotFound), http.StatusNotFound, "Not found"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := statusFor(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, fakePinger{}, fakeExporter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	svc := services.NewItemService(items.NewMemoryRepository(), nopLogger{})
	s, err := NewServer("127.0.0.1:99999", time.Second, nopLogger{}, fakePinger{}, svc, fakeExporter{})
	require.NoError(t, err)

	assert.Error(t, s.Run(context.Background()))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
