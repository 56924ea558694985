package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/config"
	"github.com/jagatstore/jagat-backend/internal/handler"
	"github.com/jagatstore/jagat-backend/internal/middleware"
	"github.com/jagatstore/jagat-backend/internal/repository"
	"github.com/jagatstore/jagat-backend/internal/service"
	"github.com/jagatstore/jagat-backend/internal/store"
)

type apiFixture struct {
	e       *echo.Echo
	ledger  *repository.LedgerRepo
	dataDir string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := config.Config{
		Env:        "test",
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: 4, // keep hashing fast in tests
		DataDir:    t.TempDir(),
	}

	log := zap.NewNop()
	st := store.New(log)
	st.Sleep = func(time.Duration) {}

	users := repository.NewUserRepo(st, cfg.DataDir)
	payments := repository.NewPaymentRepo(st, cfg.DataDir)
	ledger := repository.NewLedgerRepo(st, cfg.DataDir)
	visitors := repository.NewVisitorRepo(st, cfg.DataDir)
	newsletter := repository.NewNewsletterRepo(st, cfg.DataDir)
	contacts := repository.NewContactRepo(st, cfg.DataDir)

	rec := service.NewReconciler(payments, users, ledger, log)

	e := echo.New()
	api := API{
		Auth:       handler.NewAuthHandler(cfg, users, log),
		Payments:   handler.NewPaymentHandler(cfg, payments, users, rec, log),
		Visitors:   handler.NewVisitorHandler(visitors, log),
		Engagement: handler.NewEngagementHandler(newsletter, contacts, log),
	}
	limiter := middleware.RateLimit(config.RateLimitConfig{Enabled: false}, nil)
	Register(e, api, cfg, limiter)

	return &apiFixture{e: e, ledger: ledger, dataDir: cfg.DataDir}
}

func (f *apiFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.e.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, f *apiFixture, email string) string {
	t.Helper()
	rr := f.do(http.MethodPost, "/api/register", "", fmt.Sprintf(
		`{"fullName":"Budi Santoso","email":%q,"phone":"081234567890","password":"rahasia123"}`, email))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)
	rr := f.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "OK", decodeBody(t, rr)["status"])
}

func TestRegisterLoginFlow(t *testing.T) {
	f := newAPIFixture(t)

	token := registerUser(t, f, "budi@example.com")

	// The registration token is immediately usable.
	rr := f.do(http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decodeBody(t, rr)
	require.Equal(t, "budi@example.com", profile["email"])
	require.NotContains(t, profile, "password")

	// Same email again, any casing, is refused.
	rr = f.do(http.MethodPost, "/api/register", "",
		`{"fullName":"Budi S","email":"BUDI@example.com","phone":"08123","password":"rahasia123"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Email already exists", decodeBody(t, rr)["error"])

	// The login form posts the email under "username".
	rr = f.do(http.MethodPost, "/api/login", "",
		`{"username":"budi@example.com","password":"rahasia123"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, decodeBody(t, rr)["token"])

	rr = f.do(http.MethodPost, "/api/login", "",
		`{"username":"budi@example.com","password":"salah"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid password", decodeBody(t, rr)["error"])

	rr = f.do(http.MethodPost, "/api/login", "",
		`{"username":"nobody@example.com","password":"rahasia123"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "User not found", decodeBody(t, rr)["error"])
}

func TestRegisterValidation(t *testing.T) {
	f := newAPIFixture(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing fields", `{"fullName":"Budi"}`, "All fields are required"},
		{"short name", `{"fullName":"B","email":"b@x.co","phone":"08","password":"rahasia1"}`, "Full name must be at least 2 characters"},
		{"bad email", `{"fullName":"Budi","email":"not-an-email","phone":"08","password":"rahasia1"}`, "Invalid email format"},
		{"short password", `{"fullName":"Budi","email":"b@x.co","phone":"08","password":"abc"}`, "Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(http.MethodPost, "/api/register", "", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tc.want, decodeBody(t, rr)["error"])
		})
	}
}

func TestAuthGuard(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(http.MethodPost, "/api/payment", "", `{"amount":100}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Access token required", decodeBody(t, rr)["error"])

	rr = f.do(http.MethodGet, "/api/payments", "not.a.token", "")
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "Invalid or expired token", decodeBody(t, rr)["error"])
}

func TestPaymentFlow(t *testing.T) {
	f := newAPIFixture(t)
	token := registerUser(t, f, "budi@example.com")

	body := `{
		"amount": 250000,
		"items": [{"name":"Kaos Polos","price":125000,"quantity":2}],
		"paymentMethod": "transfer",
		"bankName": "BCA",
		"shippingAddress": {"fullName":"Budi Santoso","phone":"08123","address":"Jl. Merdeka 17","postalCode":"40115","shippingDays":3}
	}`
	rr := f.do(http.MethodPost, "/api/payment", token, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeBody(t, rr)
	require.Equal(t, "JGT-000001", created["orderNumber"])
	require.Equal(t, float64(3), created["deliveryDays"]) // caller-chosen, not randomized
	require.Contains(t, created["message"], "Pembayaran berhasil")

	// The synchronous reconcile already copied it into the ledger.
	entries := f.ledger.All()
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].PaymentID)
	require.Equal(t, "Budi Santoso", entries[0].FullName)

	rr = f.do(http.MethodGet, "/api/payments", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, float64(250000), list[0]["amount"])

	rr = f.do(http.MethodGet, "/api/receipt/1", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	receipt := decodeBody(t, rr)
	require.Equal(t, "JGT-000001", receipt["orderNumber"])
	require.Equal(t, "budi@example.com", receipt["customerEmail"])

	rr = f.do(http.MethodGet, "/api/receipt/99", token, "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	// Another account must not see this customer's data.
	other := registerUser(t, f, "sari@example.com")
	rr = f.do(http.MethodGet, "/api/receipt/1", other, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	rr = f.do(http.MethodGet, "/api/payments", other, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestPaymentValidation(t *testing.T) {
	f := newAPIFixture(t)
	token := registerUser(t, f, "budi@example.com")

	for _, body := range []string{
		`{"amount":0,"items":[{"name":"x","price":1,"quantity":1}],"paymentMethod":"transfer"}`,
		`{"amount":100,"items":[],"paymentMethod":"transfer"}`,
		`{"amount":100,"items":[{"name":"x","price":1,"quantity":1}]}`,
	} {
		rr := f.do(http.MethodPost, "/api/payment", token, body)
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
		require.Equal(t, "Amount, items, and payment method are required", decodeBody(t, rr)["error"])
	}
}

func TestPaymentSucceedsWhenLedgerWriteFails(t *testing.T) {
	f := newAPIFixture(t)
	token := registerUser(t, f, "budi@example.com")

	// Block the ledger's temp path so its save exhausts every retry.
	require.NoError(t, os.Mkdir(filepath.Join(f.dataDir, "lunas.xlsx.tmp"), 0o755))

	rr := f.do(http.MethodPost, "/api/payment", token,
		`{"amount":50000,"items":[{"name":"Topi","price":50000,"quantity":1}],"paymentMethod":"transfer"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, "JGT-000001", decodeBody(t, rr)["orderNumber"])

	// The payment itself committed; only the ledger copy was lost.
	rr = f.do(http.MethodGet, "/api/payments", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestExportDownload(t *testing.T) {
	f := newAPIFixture(t)
	token := registerUser(t, f, "budi@example.com")

	rr := f.do(http.MethodPost, "/api/payment", token,
		`{"amount":50000,"items":[{"name":"Topi","price":50000,"quantity":1}],"paymentMethod":"transfer"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(http.MethodGet, "/api/export", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rr.Header().Get(echo.HeaderContentType))
	require.Contains(t, rr.Header().Get(echo.HeaderContentDisposition), "payments.xlsx")
	// xlsx files are zip archives.
	require.True(t, strings.HasPrefix(rr.Body.String(), "PK"))
}

func TestNewsletterAndContact(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(http.MethodPost, "/api/newsletter", "", `{"email":"budi@example.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(http.MethodPost, "/api/newsletter", "", `{"email":"budi@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Email already subscribed", decodeBody(t, rr)["error"])

	rr = f.do(http.MethodPost, "/api/newsletter", "", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/api/contact", "",
		`{"name":"Budi","email":"budi@example.com","subject":"Halo","message":"Pesan saya"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(http.MethodPost, "/api/contact", "", `{"name":"Budi"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "All fields are required", decodeBody(t, rr)["error"])
}

func TestVisitorCountIsPublic(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(http.MethodGet, "/api/visitor-count", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, float64(0), decodeBody(t, rr)["totalVisitors"])

	// The stats breakdown stays behind auth.
	rr = f.do(http.MethodGet, "/api/visitors", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
