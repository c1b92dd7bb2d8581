package routes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/infra/memory"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

func newMemoryRouter(ready func(context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore(domain.PolicyDefaults{Timezone: "UTC"})
	store.AddBarbershop(models.Barbershop{Name: "Navalha", Slug: "navalha", Timezone: "UTC"})

	r := gin.New()
	RegisterRoutes(r, Deps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:    store,
		Policies: store,
		Locker:   lock.NewLocalLocker(),
		Clock:    timezone.SystemClock{},
		Ready:    ready,
	})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestMemoryRoutes(t *testing.T) {
	r := newMemoryRouter(nil)

	tests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/api/public/navalha/services", http.StatusOK},
		{"/api/public/unknown/services", http.StatusNotFound},
		{"/api/me", http.StatusNotFound},
	}

	for _, tt := range tests {
		if w := get(r, tt.path); w.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.status)
		}
	}
}

func TestReadyReportsBackingFailure(t *testing.T) {
	r := newMemoryRouter(func(context.Context) error { return errors.New("db: refused") })

	w := get(r, "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newMemoryRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}
