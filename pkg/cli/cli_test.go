package cli

import (
	"testing"
)

func TestParseRateLimit(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"inf", 0, false},
		{"", 0, false},
		{"1000", 1000, false},
		{"500k", 500000, false},
		{"500K", 500000, false},
		{"1.5m", 1500000, false},
		{"2MiB", 2 * 1024 * 1024, false},
		{"1ki", 1024, false},
		{"1g", 1000000000, false},
		{"1gib", 1024 * 1024 * 1024, false},
		{"abc", 0, true},
		{"10x", 0, true},
		{"-5k", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRateLimit(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseRateLimit(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
