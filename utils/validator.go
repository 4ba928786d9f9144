// Package utils holds input validation shared by handlers.
package utils

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// SanitizeInput trims spaces and removes null bytes.
func SanitizeInput(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), "\x00", "")
}

// Kind is the JSON type a field accepts.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindTime
	KindID
)

// Field describes one updatable column.
type Field struct {
	Column   string
	Kind     Kind
	Required bool // non-empty string or non-null value
	Nullable bool
	MaxLen   int
	Min, Max *int
	OneOf    []string
}

// AllowList maps request keys to the fields a PATCH may change.
type AllowList map[string]Field

// Pick copies the allowed keys present in body into a column update map.
// Unknown keys are ignored. Invalid values are reported per request key.
func (a AllowList) Pick(body map[string]any) (map[string]any, map[string]string) {
	updates := make(map[string]any)
	errs := make(map[string]string)
	for key, field := range a {
		raw, present := body[key]
		if !present {
			continue
		}
		v, err := field.convert(raw)
		if err != nil {
			errs[key] = err.Error()
			continue
		}
		updates[field.Column] = v
	}
	if len(errs) == 0 {
		errs = nil
	}
	return updates, errs
}

func (f Field) convert(raw any) (any, error) {
	if raw == nil {
		if f.Nullable && !f.Required {
			return nil, nil
		}
		return nil, fmt.Errorf("must not be null")
	}

	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		s = SanitizeInput(s)
		if f.Required && s == "" {
			return nil, fmt.Errorf("must not be empty")
		}
		if f.MaxLen > 0 && len([]rune(s)) > f.MaxLen {
			return nil, fmt.Errorf("must be at most %d characters", f.MaxLen)
		}
		if len(f.OneOf) > 0 && !slices.Contains(f.OneOf, s) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(f.OneOf, ", "))
		}
		return s, nil

	case KindInt:
		n, ok := wholeNumber(raw)
		if !ok {
			return nil, fmt.Errorf("must be an integer")
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Errorf("must be at least %d", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return nil, fmt.Errorf("must be at most %d", *f.Max)
		}
		return n, nil

	case KindID:
		n, ok := wholeNumber(raw)
		if !ok || n <= 0 {
			return nil, fmt.Errorf("must be a positive id")
		}
		return uint(n), nil

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("must be a boolean")
		}
		return b, nil

	case KindTime:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a date string")
		}
		t, err := ParseTime(s)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unsupported field")
}

// ParseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates (midnight UTC).
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

func wholeNumber(raw any) (int, bool) {
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// IntPtr is a convenience for Field bounds.
func IntPtr(v int) *int { return &v }
