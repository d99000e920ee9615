package bindery

import (
	"errors"
	"strings"
	"time"
)

// Accepted datetime layouts, tried in order. Layouts without an offset are
// read as UTC.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

const (
	layoutNaive  = "2006-01-02T15:04:05.999999999"
	layoutOffset = "2006-01-02T15:04:05.999999999Z07:00"
)

var errEmptyDateTime = errors.New("empty datetime")

// ParseDateTime reads an ISO 8601 date or date-time.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyDateTime
	}
	var first error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, first
}

// FormatDateTime renders t in ISO 8601 form. UTC values carry no offset, so
// naive inputs render as they were written.
func FormatDateTime(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format(layoutNaive)
	}
	return t.Format(layoutOffset)
}

func toDateTime(raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, unsupported(raw)
		}
		return *t, nil
	case string:
		return ParseDateTime(t)
	}
	return time.Time{}, unsupported(raw)
}
