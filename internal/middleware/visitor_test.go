package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/repository"
	"github.com/jagatstore/jagat-backend/internal/service"
	"github.com/jagatstore/jagat-backend/internal/store"
)

type visitorFixture struct {
	e        *echo.Echo
	visitors *repository.VisitorRepo
	lookups  atomic.Int64
}

func newVisitorFixture(t *testing.T) *visitorFixture {
	t.Helper()
	f := &visitorFixture{}

	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lookups.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"country_name":"Indonesia"}`))
	}))
	t.Cleanup(geoSrv.Close)

	st := store.New(zap.NewNop())
	st.Sleep = func(time.Duration) {}
	f.visitors = repository.NewVisitorRepo(st, t.TempDir())

	f.e = echo.New()
	f.e.Use(VisitorTracker("/visitor-info.html",
		f.visitors, service.NewGeoIPClient(geoSrv.URL, zap.NewNop()), zap.NewNop()))
	f.e.GET("/*", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return f
}

func (f *visitorFixture) get(path, ip string) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.Header.Set(echo.HeaderXRealIP, ip)
	}
	f.e.ServeHTTP(httptest.NewRecorder(), req)
}

func TestVisitorTrackerRecordsTrackedPathOnly(t *testing.T) {
	f := newVisitorFixture(t)

	f.get("/", "203.0.113.9")
	f.get("/products.html", "203.0.113.9")
	require.Empty(t, f.visitors.All())

	f.get("/visitor-info.html", "203.0.113.9")
	recorded := f.visitors.All()
	require.Len(t, recorded, 1)
	require.Equal(t, "203.0.113.9", recorded[0].IP)
	require.Equal(t, "Indonesia", recorded[0].Country)
}

func TestVisitorTrackerCollapsesRepeatVisits(t *testing.T) {
	f := newVisitorFixture(t)

	f.get("/visitor-info.html", "203.0.113.9")
	f.get("/visitor-info.html", "203.0.113.9")
	require.Len(t, f.visitors.All(), 1)
	require.Equal(t, int64(1), f.lookups.Load()) // dedup happens before the lookup

	// A different caller inside the window is still a new visitor.
	f.get("/visitor-info.html", "198.51.100.4")
	require.Len(t, f.visitors.All(), 2)
}

func TestVisitorTrackerRecordsAgainAfterWindow(t *testing.T) {
	f := newVisitorFixture(t)

	_, err := f.visitors.Create(model.Visitor{
		IP:        "203.0.113.9",
		Country:   "Indonesia",
		VisitedAt: time.Now().UTC().Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	f.get("/visitor-info.html", "203.0.113.9")
	require.Len(t, f.visitors.All(), 2)
}

func TestVisitorTrackerSkipsLoopback(t *testing.T) {
	f := newVisitorFixture(t)

	f.get("/visitor-info.html", "127.0.0.1")
	f.get("/visitor-info.html", "::1")
	require.Empty(t, f.visitors.All())
}

func TestVisitorTrackerUnwrapsMappedIPv6(t *testing.T) {
	f := newVisitorFixture(t)

	f.get("/visitor-info.html", "::ffff:203.0.113.9")
	recorded := f.visitors.All()
	require.Len(t, recorded, 1)
	require.Equal(t, "203.0.113.9", recorded[0].IP)
}
