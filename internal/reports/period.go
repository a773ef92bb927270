// Package reports buckets ledger records into calendar periods for trend and
// comparison reporting.
package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/rental-portfolio/pkg/datetime"
)

// Period selectors.
const (
	PeriodToday   = "today"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodCustom  = "custom"
)

// ErrInvalidPeriod is returned for unknown selectors and malformed custom ranges.
var ErrInvalidPeriod = errors.New("invalid report period")

// ReportRequest selects the reporting window. It is passed explicitly to every
// calculation instead of living in shared state.
type ReportRequest struct {
	Period      string `json:"period" yaml:"period" mapstructure:"period"`
	CustomStart string `json:"start,omitempty" yaml:"start,omitempty" mapstructure:"start"`
	CustomEnd   string `json:"end,omitempty" yaml:"end,omitempty" mapstructure:"end"`
}

// Range is an inclusive reporting window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the window, inclusive on both ends.
func (r Range) Contains(t time.Time) bool {
	return datetime.InRange(t, r.Start, r.End)
}

// ContainsDate reports whether a record date string lies within the window.
// Unparsable dates are never contained.
func (r Range) ContainsDate(value string) bool {
	t, ok := datetime.ParseDate(value)
	if !ok {
		return false
	}
	return r.Contains(t)
}

// Months returns the YYYY-MM keys the window touches, in order.
func (r Range) Months() []string {
	return datetime.MonthKeysBetween(r.Start, r.End)
}

// Duration returns the length of the window.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Previous returns the window of equal length ending just before this one.
func (r Range) Previous() Range {
	end := r.Start.Add(-time.Nanosecond)
	return Range{Start: end.Add(-r.Duration()), End: end}
}

// String renders the window as start..end dates.
func (r Range) String() string {
	return r.Start.Format(datetime.DateLayout) + ".." + r.End.Format(datetime.DateLayout)
}

// ValidPeriod reports whether selector is a known period.
func ValidPeriod(selector string) bool {
	switch normalizePeriod(selector) {
	case PeriodToday, PeriodMonth, PeriodQuarter, PeriodYear, PeriodCustom:
		return true
	default:
		return false
	}
}

func normalizePeriod(selector string) string {
	trimmed := strings.ToLower(strings.TrimSpace(selector))
	if trimmed == "" {
		return PeriodMonth
	}
	return trimmed
}

// DateRange resolves a request into a concrete window. Every preset ends at now;
// only custom ranges carry their own end. A blank selector means month.
func DateRange(req ReportRequest, now time.Time) (Range, error) {
	switch normalizePeriod(req.Period) {
	case PeriodToday:
		return Range{Start: datetime.StartOfDay(now), End: now}, nil
	case PeriodMonth:
		return Range{Start: datetime.StartOfMonth(now), End: now}, nil
	case PeriodQuarter:
		return Range{Start: datetime.StartOfQuarter(now), End: now}, nil
	case PeriodYear:
		return Range{Start: datetime.StartOfYear(now), End: now}, nil
	case PeriodCustom:
		start, ok := datetime.ParseDate(req.CustomStart)
		if !ok {
			return Range{}, fmt.Errorf("%w: custom start date %q", ErrInvalidPeriod, req.CustomStart)
		}
		end, ok := datetime.ParseDate(req.CustomEnd)
		if !ok {
			return Range{}, fmt.Errorf("%w: custom end date %q", ErrInvalidPeriod, req.CustomEnd)
		}
		if end.Equal(datetime.StartOfDay(end)) {
			end = datetime.EndOfDay(end)
		}
		if end.Before(start) {
			return Range{}, fmt.Errorf("%w: custom end %s precedes start %s", ErrInvalidPeriod,
				end.Format(datetime.DateLayout), start.Format(datetime.DateLayout))
		}
		return Range{Start: start, End: end}, nil
	default:
		return Range{}, fmt.Errorf("%w: unknown selector %q", ErrInvalidPeriod, req.Period)
	}
}
