package content

import (
	"math"
	"time"
)

// Sanitize walks a free-form payload and replaces every value the destination
// store would reject (missing leaves, NaN/Inf numbers, unsupported types) with
// an explicit null, preserving map structure and array order. Date-like values
// pass through untouched.
func Sanitize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = Sanitize(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = Sanitize(inner)
		}
		return out
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil
		}
		return v
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		time.Time, FlexTime:
		return v
	default:
		// Pointers and exotic types are not representable in the stored JSON.
		return nil
	}
}

// SanitizeExtra applies Sanitize to the content's free-form settings in place.
func SanitizeExtra(c *PageContent) {
	if c == nil || c.Extra == nil {
		return
	}
	sanitized, _ := Sanitize(c.Extra).(map[string]any)
	c.Extra = sanitized
}
