package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
)

const (
	previewLength = 100
	recentLimit   = 5
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// normaliseTags trims every tag and drops empties, keeping order.
func normaliseTags(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

// splitTags parses a comma separated tag query.
func splitTags(raw string) []string {
	return normaliseTags(strings.Split(raw, ","))
}

func intersects(values []string, wanted map[string]struct{}) bool {
	for _, value := range values {
		if _, ok := wanted[value]; ok {
			return true
		}
	}
	return false
}

// truncate shortens s to n runes and appends an ellipsis when it was longer.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDueDate accepts ISO-8601 timestamps with or without a zone, or a bare date.
// Values without a zone are taken as UTC.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, apperrors.NewValidation("Invalid due_date format, expected ISO-8601")
}
