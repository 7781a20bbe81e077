package stripe

import "testing"

func TestNormalizeEnv(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: "test"},
		{input: " TEST ", want: "test"},
		{input: "live", want: "live"},
		{input: "staging", wantErr: true},
	}
	for _, tc := range cases {
		got, err := normalizeEnv(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("normalizeEnv(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("normalizeEnv(%q) = %q, %v; want %q", tc.input, got, err, tc.want)
		}
	}
}

func TestValidateAPIKey(t *testing.T) {
	if err := validateAPIKey("test", "sk_test_123"); err != nil {
		t.Fatalf("test key rejected: %v", err)
	}
	if err := validateAPIKey("test", "sk_live_123"); err == nil {
		t.Fatalf("live key must be rejected in test env")
	}
	if err := validateAPIKey("live", "sk_live_123"); err != nil {
		t.Fatalf("live key rejected: %v", err)
	}
	if err := validateAPIKey("live", "sk_test_123"); err == nil {
		t.Fatalf("test key must be rejected in live env")
	}
}
