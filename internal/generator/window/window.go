// Package window places generated activity in time.
//
// A Window is the generation period. Each pattern injector owns a DaySpan, a
// half-open range of days counted from the window start. Spans are part of the
// configuration contract and are validated before anything is generated:
// every span must fit inside the window, be long enough for the injector's
// follow-up legs, and not overlap any other span.
package window

import (
	"fmt"
	"sort"
	"time"

	dErrors "amlgen/pkg/domain-errors"
)

// Day is the unit spans are expressed in.
const Day = 24 * time.Hour

// MinSpanDays is the shortest span an injector accepts: a sampling sub-window,
// a follow-up leg and the alert day.
const MinSpanDays = 3

// Window is the half-open generation period [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// New returns the window of days days ending at anchor, truncated to the second.
func New(anchor time.Time, days int) Window {
	end := anchor.UTC().Truncate(time.Second)
	return Window{Start: end.Add(-time.Duration(days) * Day), End: end}
}

// Duration is the window length.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Days is the window length in whole days.
func (w Window) Days() int { return int(w.Duration() / Day) }

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Resolve turns a day span into absolute times.
func (w Window) Resolve(d DaySpan) Span {
	return Span{
		Start: w.Start.Add(time.Duration(d.From) * Day),
		End:   w.Start.Add(time.Duration(d.To) * Day),
	}
}

// Span is an absolute half-open interval handed to one injector.
type Span struct {
	Start time.Time
	End   time.Time
}

// Duration is the span length.
func (s Span) Duration() time.Duration { return s.End.Sub(s.Start) }

// DaySpan is the half-open day range [From, To) relative to the window start.
type DaySpan struct {
	From int
	To   int
}

func (d DaySpan) Days() int { return d.To - d.From }

func (d DaySpan) String() string { return fmt.Sprintf("days %d-%d", d.From, d.To) }

// Schedule assigns a day span to every injector, keyed by injector name.
type Schedule map[string]DaySpan

// Injector names used as schedule keys.
const (
	Smurfing      = "smurfing"
	MuleRing      = "mule_ring"
	Affordability = "fp_affordability"
	GeoContext    = "fp_geo_context"
)

// DefaultSchedule is the reference day layout, trimmed so that no two
// scenarios share a day: context FP 40-50, affordability FP 50-60,
// smurfing 60-73 (deposits through day 70, outbound day 71, alert day 72),
// mule ring 80-84 (wires days 80-82, alerts a day later).
func DefaultSchedule() Schedule {
	return Schedule{
		GeoContext:    {From: 40, To: 50},
		Affordability: {From: 50, To: 60},
		Smurfing:      {From: 60, To: 73},
		MuleRing:      {From: 80, To: 84},
	}
}

// Span returns the day span of name.
func (s Schedule) Span(name string) (DaySpan, bool) {
	d, ok := s[name]
	return d, ok
}

// Validate checks the schedule against a window of windowDays days.
func (s Schedule) Validate(windowDays int) error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s[names[i]].From != s[names[j]].From {
			return s[names[i]].From < s[names[j]].From
		}
		return names[i] < names[j]
	})

	for i, name := range names {
		d := s[name]
		if d.From < 0 || d.To > windowDays {
			return dErrors.New(dErrors.CodeInvalidConfig,
				fmt.Sprintf("%s span %s falls outside the %d-day window", name, d, windowDays))
		}
		if d.Days() < MinSpanDays {
			return dErrors.New(dErrors.CodeInvalidConfig,
				fmt.Sprintf("%s span %s is shorter than %d days", name, d, MinSpanDays))
		}
		if i > 0 {
			prev := names[i-1]
			if s[prev].To > d.From {
				return dErrors.New(dErrors.CodeInvalidConfig,
					fmt.Sprintf("%s span %s overlaps %s span %s", name, d, prev, s[prev]))
			}
		}
	}
	return nil
}
