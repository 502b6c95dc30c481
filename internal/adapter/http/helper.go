package http

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseOptionalDate reads a YYYY-MM-DD date already checked by the validator.
func parseOptionalDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
