package content

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexTime_UnmarshalShapes(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
		null  bool
	}{
		{name: "rfc3339", input: `"2026-02-14T12:00:00Z"`, want: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)},
		{name: "date only", input: `"2026-02-14"`, want: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)},
		{name: "epoch seconds", input: `1700000000`, want: time.Unix(1700000000, 0).UTC()},
		{name: "epoch millis", input: `1700000000000`, want: time.UnixMilli(1700000000000).UTC()},
		{name: "seconds object", input: `{"seconds":1700000000,"nanos":0}`, want: time.Unix(1700000000, 0).UTC()},
		{name: "underscore object", input: `{"_seconds":1700000000,"_nanoseconds":0}`, want: time.Unix(1700000000, 0).UTC()},
		{name: "null", input: `null`, null: true},
		{name: "garbage string", input: `"not a date"`, null: true},
		{name: "garbage object", input: `{"x":1}`, null: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ft FlexTime
			if err := json.Unmarshal([]byte(tc.input), &ft); err != nil {
				t.Fatalf("unmarshal must never fail, got %v", err)
			}
			got, ok := ft.Time()
			if tc.null {
				if ok {
					t.Fatalf("expected null, got %v", got)
				}
				return
			}
			if !ok || !got.Equal(tc.want) {
				t.Fatalf("got %v (ok=%v), want %v", got, ok, tc.want)
			}
		})
	}
}

func TestFlexTime_MarshalRoundTrip(t *testing.T) {
	ft := NewFlexTime(time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ft)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back FlexTime
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	orig, _ := ft.Time()
	got, ok := back.Time()
	if !ok || !got.Equal(orig) {
		t.Fatalf("round trip mismatch: %v vs %v", got, orig)
	}

	var null FlexTime
	data, err = json.Marshal(null)
	if err != nil {
		t.Fatalf("marshal null: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("zero FlexTime must marshal to null, got %s", data)
	}
}

func TestNormalizeDates(t *testing.T) {
	var invalid FlexTime
	_ = json.Unmarshal([]byte(`"garbage"`), &invalid)

	c := &PageContent{
		SpecialDate: &invalid,
		Timeline: []TimelineEntry{
			{Title: "met", Date: NewFlexTime(time.Date(2020, 6, 1, 10, 30, 0, 0, time.FixedZone("X", 3600)))},
			{Title: "lost date", Date: invalid},
		},
	}

	NormalizeDates(c)

	if c.SpecialDate != nil {
		t.Fatalf("invalid special date must become null")
	}
	got, ok := c.Timeline[0].Date.Time()
	if !ok || got.Location() != time.UTC {
		t.Fatalf("valid dates must normalize to UTC, got %v", got)
	}
	if !c.Timeline[1].Date.IsZero() {
		t.Fatalf("invalid timeline date must become null")
	}
}

func TestPageContent_MediaRefsOrder(t *testing.T) {
	c := &PageContent{
		CoverImage: &MediaRef{URL: "u0", Path: "temp/u1/cover/a.jpg"},
		Gallery: []MediaRef{
			{URL: "u1", Path: "temp/u1/gallery/1.jpg"},
			{URL: "u2", Path: "temp/u1/gallery/2.jpg"},
		},
		Timeline: []TimelineEntry{
			{Media: &MediaRef{URL: "u3", Path: "temp/u1/timeline/t.jpg"}},
			{Media: nil},
		},
		VoiceNote: &MediaRef{URL: "u4", Path: "temp/u1/voice/v.mp3"},
	}

	refs := c.MediaRefs()
	if len(refs) != 5 {
		t.Fatalf("expected 5 refs, got %d", len(refs))
	}
	wantURLs := []string{"u0", "u1", "u2", "u3", "u4"}
	for i, want := range wantURLs {
		if refs[i].Ref.URL != want {
			t.Fatalf("ref %d = %s, want %s", i, refs[i].Ref.URL, want)
		}
	}
}
