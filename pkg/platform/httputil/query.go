package httputil

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	dErrors "paam/pkg/domain-errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageParams is the offset pagination requested by a client.
type PageParams struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads page and limit query parameters, applying defaults when
// absent and rejecting values below 1 or limits above MaxLimit.
func ParsePage(r *http.Request) (PageParams, error) {
	q := r.URL.Query()
	page, err := positiveInt(q.Get("page"), DefaultPage, "page")
	if err != nil {
		return PageParams{}, err
	}
	limit, err := positiveInt(q.Get("limit"), DefaultLimit, "limit")
	if err != nil {
		return PageParams{}, err
	}
	if limit > MaxLimit {
		return PageParams{}, dErrors.New(dErrors.CodeValidation, "limit must be at most "+strconv.Itoa(MaxLimit))
	}
	return PageParams{Page: page, Limit: limit}, nil
}

func positiveInt(raw string, def int, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, dErrors.New(dErrors.CodeValidation, name+" must be a positive integer")
	}
	return n, nil
}

// OptionalQuery returns a pointer to the trimmed query value, or nil when empty.
func OptionalQuery(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// DateRange is a half-open time window [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// defaultRangeStep aligns the default window so repeated requests within
// the same minute resolve to the same range.
const defaultRangeStep = time.Minute

// ParseDateRange reads from/to query parameters as RFC3339 or YYYY-MM-DD.
// A date-only "to" covers the whole day. Missing bounds default to the
// window of `fallback` ending at now rounded up to the minute.
func ParseDateRange(r *http.Request, now time.Time, fallback time.Duration) (DateRange, error) {
	q := r.URL.Query()
	end := now.Truncate(defaultRangeStep)
	if end.Before(now) {
		end = end.Add(defaultRangeStep)
	}
	rng := DateRange{From: end.Add(-fallback), To: end}

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, _, err := parseTime(raw)
		if err != nil {
			return DateRange{}, dErrors.New(dErrors.CodeValidation, "from must be RFC3339 or YYYY-MM-DD")
		}
		rng.From = t
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, dateOnly, err := parseTime(raw)
		if err != nil {
			return DateRange{}, dErrors.New(dErrors.CodeValidation, "to must be RFC3339 or YYYY-MM-DD")
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		rng.To = t
	}
	if rng.From.After(rng.To) {
		return DateRange{}, dErrors.New(dErrors.CodeValidation, "from must not be after to")
	}
	return rng, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	return t, true, err
}
