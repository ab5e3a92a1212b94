package server

import (
	"strings"
	"time"
)

// timeRangeQuery holds a pair of query parameters bounding a time window.
// Values are RFC 3339 timestamps or plain dates; a plain end date covers the
// whole day.
type timeRangeQuery struct {
	FromField string
	From      string
	ToField   string
	To        string
}

func (q timeRangeQuery) parse() (*time.Time, *time.Time, error) {
	from, ok := parseQueryTime(q.From, false)
	if !ok {
		return nil, nil, newValidationError(q.FromField, "invalid_"+q.FromField, "invalid "+q.FromField)
	}
	to, ok := parseQueryTime(q.To, true)
	if !ok {
		return nil, nil, newValidationError(q.ToField, "invalid_"+q.ToField, "invalid "+q.ToField)
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, newValidationError(q.ToField, "invalid_range", q.ToField+" is before "+q.FromField)
	}
	return from, to, nil
}

func parseQueryTime(value string, endOfDay bool) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		ts = ts.UTC()
		return &ts, true
	}
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, true
}
