package middleware

import (
	"testing"
	"time"
)

func TestValidateLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 20},
		{-5, 20},
		{50, 50},
		{500, 100},
	}
	for _, tt := range tests {
		if got := ValidateLimit(tt.in); got != tt.want {
			t.Errorf("ValidateLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidateOffset(t *testing.T) {
	if got := ValidateOffset(-1); got != 0 {
		t.Errorf("ValidateOffset(-1) = %d", got)
	}
	if got := ValidateOffset(7); got != 7 {
		t.Errorf("ValidateOffset(7) = %d", got)
	}
}

func TestParseDate(t *testing.T) {
	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Errorf("empty date = %v, %v", d, err)
	}
	if d, err := ParseDate("2026-03-01"); err != nil || d.Format("2006-01-02") != "2026-03-01" {
		t.Errorf("plain date = %v, %v", d, err)
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if d, err := ParseDate("2026-03-01T10:00:00Z"); err != nil || !d.Equal(want) {
		t.Errorf("rfc3339 date = %v, %v", d, err)
	}
	if _, err := ParseDate("yesterday"); err == nil {
		t.Error("expected error for invalid date")
	}
}
