package middleware

import (
	"fmt"
	"time"
)

// Query parameter validation helpers.

// ValidateLimit clamps a pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateOffset rejects negative offsets
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// ParseDate accepts RFC3339 or plain YYYY-MM-DD date bounds.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want RFC3339 or YYYY-MM-DD)", value)
}
