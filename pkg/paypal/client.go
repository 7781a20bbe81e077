package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/pkg/config"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errCredentialsRequired = errors.New("paypal client id and secret are required")
	errInvalidPayPalEnv    = fmt.Errorf("paypal environment must be %q or %q", sandboxEnv, productionEnv)
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://api-m.sandbox.paypal.com",
	productionEnv: "https://api-m.paypal.com",
}

// Client talks to PayPal's Orders v2 API with centralized auth and error mapping.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	environment string
	currency    string
	brandName   string
	tokens      *tokenSource
	logger      *logger.Logger
}

// NewClient validates the credentials and prepares the OAuth token source.
func NewClient(ctx context.Context, cfg config.PayPalConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Env)
	if err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	secret := strings.TrimSpace(cfg.Secret)
	if clientID == "" || secret == "" {
		return nil, errCredentialsRequired
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     baseURLs[env],
		environment: env,
		currency:    strings.ToUpper(cfg.Currency),
		brandName:   cfg.BrandName,
		tokens: &tokenSource{
			fetch: func(ctx context.Context) (string, time.Time, error) {
				return fetchAccessToken(ctx, httpClient, baseURLs[env], clientID, secret)
			},
		},
		logger: logg,
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("paypal client initialized (%s)", env))
	}
	return c, nil
}

// Environment reports the normalized PayPal environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Order is the subset of an Orders v2 response callers need.
type Order struct {
	ID     string
	Status string
	// DraftID echoes purchase_units[0].custom_id.
	DraftID string
	// CaptureID is the capture transaction id, set after CaptureOrder.
	CaptureID string
	// Raw preserves the provider body for diagnostics.
	Raw json.RawMessage
}

// Approved reports whether the order reached a terminal paid state.
func (o *Order) Approved() bool {
	return o != nil && strings.EqualFold(o.Status, "COMPLETED")
}

// CreateOrder opens an order with a server-side amount and the draft id in
// custom_id. The returned order id goes back to the client for approval.
func (c *Client) CreateOrder(ctx context.Context, draftID string, amountCents int64, description string) (*Order, error) {
	if strings.TrimSpace(draftID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft id is required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"custom_id":   draftID,
				"description": description,
				"amount": map[string]any{
					"currency_code": c.currency,
					"value":         formatAmount(amountCents),
				},
			},
		},
		"application_context": map[string]any{
			"brand_name":          c.brandName,
			"shipping_preference": "NO_SHIPPING",
		},
	}

	raw, err := c.post(ctx, "/v2/checkout/orders", body)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// CaptureOrder captures an approved order. The synchronous response is the
// proof of payment for this provider; no webhook round trip is required.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID))
	raw, err := c.post(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paypal auth").WithDetails(map[string]any{"provider": "paypal"})
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode paypal request")
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build paypal request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("PayPal-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paypal request").WithDetails(map[string]any{"provider": "paypal"})
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read paypal response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, providerError(resp.StatusCode, raw)
	}
	return raw, nil
}

func providerError(status int, raw []byte) error {
	var detail struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &detail)
	return pkgerrors.New(pkgerrors.CodeDependency, "paypal call failed").WithDetails(map[string]any{
		"provider":      "paypal",
		"provider_code": detail.Name,
		"provider_msg":  detail.Message,
		"http_status":   status,
	})
}

func decodeOrder(raw json.RawMessage) (*Order, error) {
	var parsed struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			CustomID string `json:"custom_id"`
			Payments struct {
				Captures []struct {
					ID       string `json:"id"`
					Status   string `json:"status"`
					CustomID string `json:"custom_id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paypal order")
	}

	order := &Order{ID: parsed.ID, Status: parsed.Status, Raw: raw}
	if len(parsed.PurchaseUnits) > 0 {
		unit := parsed.PurchaseUnits[0]
		order.DraftID = unit.CustomID
		if len(unit.Payments.Captures) > 0 {
			order.CaptureID = unit.Payments.Captures[0].ID
			if order.DraftID == "" {
				order.DraftID = unit.Payments.Captures[0].CustomID
			}
		}
	}
	return order, nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidPayPalEnv
	}
}

type tokenSource struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
	fetch  func(context.Context) (string, time.Time, error)
}

func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Until(t.expiry) > time.Minute {
		return t.token, nil
	}

	token, expiry, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}
	t.token = token
	t.expiry = expiry
	return token, nil
}

func fetchAccessToken(ctx context.Context, client *http.Client, baseURL, clientID, secret string) (string, time.Time, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.SetBasicAuth(clientID, secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", time.Time{}, err
	}

	return tokenResp.AccessToken, time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second), nil
}
