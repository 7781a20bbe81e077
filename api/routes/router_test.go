package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/lovepage-app/lovepage-backend/pkg/auth"
	"github.com/lovepage-app/lovepage-backend/pkg/config"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

func testRouterParams() Params {
	return Params{
		Config: &config.Config{
			App: config.AppConfig{Env: "test"},
			JWT: config.JWTConfig{Secret: "test-secret", Issuer: "lovepage", ExpirationMinutes: 60},
		},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestRouter_HealthLiveIsPublic(t *testing.T) {
	router := NewRouter(testRouterParams())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouter_APIRoutesRequireAuth(t *testing.T) {
	router := NewRouter(testRouterParams())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/drafts"},
		{http.MethodGet, "/api/v1/pages"},
		{http.MethodPost, "/api/v1/checkout/sessions"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/charges"},
		{http.MethodPost, "/api/admin/v1/drafts/" + uuid.NewString() + "/finalize"},
	}
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without a token, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRouter_AuthedRequestReachesHandler(t *testing.T) {
	params := testRouterParams()
	router := NewRouter(params)

	token, err := pkgAuth.MintAccessToken(params.Config.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	// No pages repository is wired, so the handler itself panics or errors
	// only if it is reached; a 401 here would mean auth rejected the token.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected handler-level 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouter_PayPalWebhookIsPublic(t *testing.T) {
	router := NewRouter(testRouterParams())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paypal", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
