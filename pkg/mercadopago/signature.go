package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignatureHeader carries the raw values a notification arrives with.
type SignatureHeader struct {
	// XSignature is the "x-signature" header, "ts=<unix>,v1=<hex>".
	XSignature string
	// XRequestID is the "x-request-id" header.
	XRequestID string
	// DataID is the "data.id" query parameter of the notification URL.
	DataID string
}

// VerifySignature checks a notification signature against the shared secret.
// The signed manifest is "id:<dataId>;request-id:<requestId>;ts:<ts>;" and the
// comparison is constant time. Any parse failure or mismatch returns false;
// callers respond with a generic rejection either way.
func VerifySignature(secret string, header SignatureHeader) bool {
	if secret == "" {
		return false
	}

	ts, v1, ok := parseXSignature(header.XSignature)
	if !ok {
		return false
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", header.DataID, header.XRequestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(v1))) == 1
}

func parseXSignature(raw string) (ts, v1 string, ok bool) {
	for _, part := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	if ts == "" || v1 == "" {
		return "", "", false
	}
	return ts, v1, true
}
