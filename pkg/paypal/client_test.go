package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
)

func TestNormalizeEnv(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", sandboxEnv, false},
		{"sandbox", sandboxEnv, false},
		{" Production ", productionEnv, false},
		{"live", "", true},
	}
	for _, tc := range cases {
		got, err := normalizeEnv(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("normalizeEnv(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("normalizeEnv(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := formatAmount(1999); got != "19.99" {
		t.Fatalf("formatAmount(1999) = %q, want 19.99", got)
	}
	if got := formatAmount(500); got != "5.00" {
		t.Fatalf("formatAmount(500) = %q, want 5.00", got)
	}
	if got := formatAmount(7); got != "0.07" {
		t.Fatalf("formatAmount(7) = %q, want 0.07", got)
	}
}

func TestTokenSourceCachesUntilNearExpiry(t *testing.T) {
	calls := 0
	ts := &tokenSource{
		fetch: func(ctx context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		if _, err := ts.Token(context.Background()); err != nil {
			t.Fatalf("Token: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}

	ts.expiry = time.Now().Add(30 * time.Second)
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token after expiry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch near expiry, got %d calls", calls)
	}
}

func testClient(t *testing.T, handler http.Handler) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := &Client{
		httpClient:  srv.Client(),
		baseURL:     srv.URL,
		environment: sandboxEnv,
		currency:    "USD",
		brandName:   "LovePage",
		tokens: &tokenSource{
			fetch: func(ctx context.Context) (string, time.Time, error) {
				return "test-token", time.Now().Add(time.Hour), nil
			},
		},
	}
	return c, srv.Close
}

func TestCreateOrderSendsServerSideAmount(t *testing.T) {
	var captured map[string]any
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/checkout/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORD-1","status":"CREATED","purchase_units":[{"custom_id":"draft-1"}]}`))
	}))
	defer done()

	order, err := client.CreateOrder(context.Background(), "draft-1", 1999, "memories plan")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "ORD-1" || order.DraftID != "draft-1" {
		t.Fatalf("unexpected order %+v", order)
	}

	units := captured["purchase_units"].([]any)
	unit := units[0].(map[string]any)
	if unit["custom_id"] != "draft-1" {
		t.Fatalf("expected custom_id draft-1, got %v", unit["custom_id"])
	}
	amount := unit["amount"].(map[string]any)
	if amount["value"] != "19.99" || amount["currency_code"] != "USD" {
		t.Fatalf("unexpected amount %v", amount)
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer done()

	if _, err := client.CreateOrder(context.Background(), "", 1999, ""); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing draft id, got %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), "draft-1", 0, ""); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestCaptureOrderReturnsProof(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/checkout/orders/ORD-1/capture" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "ORD-1",
			"status": "COMPLETED",
			"purchase_units": [{
				"payments": {"captures": [{"id": "CAP-9", "status": "COMPLETED", "custom_id": "draft-1"}]}
			}]
		}`))
	}))
	defer done()

	order, err := client.CaptureOrder(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("CaptureOrder: %v", err)
	}
	if !order.Approved() {
		t.Fatalf("expected approved order, status %q", order.Status)
	}
	if order.CaptureID != "CAP-9" || order.DraftID != "draft-1" {
		t.Fatalf("unexpected capture %+v", order)
	}
}

func TestProviderErrorCarriesCode(t *testing.T) {
	client, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"ORDER_ALREADY_CAPTURED","message":"Order already captured."}`))
	}))
	defer done()

	_, err := client.CaptureOrder(context.Background(), "ORD-1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["provider_code"] != "ORDER_ALREADY_CAPTURED" {
		t.Fatalf("expected provider code in details, got %v", typed.Details())
	}
}
