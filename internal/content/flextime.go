package content

import (
	"encoding/json"
	"strings"
	"time"
)

// FlexTime tolerates the date shapes clients actually send: RFC 3339 strings,
// date-only strings, epoch seconds or milliseconds, and {seconds,nanos}
// objects. Anything unparseable decodes to null instead of failing the whole
// payload.
type FlexTime struct {
	t *time.Time
}

// NewFlexTime wraps a concrete time.
func NewFlexTime(t time.Time) FlexTime {
	u := t.UTC()
	return FlexTime{t: &u}
}

// Time returns the wrapped time and whether one is present.
func (f FlexTime) Time() (time.Time, bool) {
	if f.t == nil {
		return time.Time{}, false
	}
	return *f.t, true
}

// IsZero reports whether no valid date was captured.
func (f FlexTime) IsZero() bool { return f.t == nil }

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.t == nil {
		return []byte("null"), nil
	}
	return json.Marshal(f.t.Format(time.RFC3339Nano))
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		f.t = nil
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		f.t = parseTimeString(asString)
		return nil
	}

	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		f.t = parseEpoch(asNumber)
		return nil
	}

	var asObject struct {
		Seconds     *int64 `json:"seconds"`
		Nanos       int64  `json:"nanos"`
		USSeconds   *int64 `json:"_seconds"`
		USNanos     int64  `json:"_nanoseconds"`
		Nanoseconds int64  `json:"nanoseconds"`
	}
	if err := json.Unmarshal(data, &asObject); err == nil {
		secs := asObject.Seconds
		nanos := asObject.Nanos
		if secs == nil {
			secs = asObject.USSeconds
			nanos = asObject.USNanos
		}
		if nanos == 0 {
			nanos = asObject.Nanoseconds
		}
		if secs != nil {
			parsed := time.Unix(*secs, nanos).UTC()
			f.t = &parsed
			return nil
		}
	}

	// Unparseable dates become null rather than erroring.
	f.t = nil
	return nil
}

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

func parseTimeString(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range stringLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

// parseEpoch treats values past the year ~33658 as milliseconds.
func parseEpoch(value float64) *time.Time {
	if value <= 0 {
		return nil
	}
	secs := int64(value)
	var parsed time.Time
	if secs > 1e12 {
		parsed = time.UnixMilli(secs).UTC()
	} else {
		parsed = time.Unix(secs, 0).UTC()
	}
	return &parsed
}

// NormalizeDates rewrites every date-shaped field on the content to either a
// valid UTC instant or null. It is total: invalid input never raises.
func NormalizeDates(c *PageContent) {
	if c == nil {
		return
	}
	if c.SpecialDate != nil && c.SpecialDate.IsZero() {
		c.SpecialDate = nil
	}
	for i := range c.Timeline {
		if t, ok := c.Timeline[i].Date.Time(); ok {
			c.Timeline[i].Date = NewFlexTime(t)
		} else {
			c.Timeline[i].Date = FlexTime{}
		}
	}
}
