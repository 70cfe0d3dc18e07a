// Package window computes the time intervals the feeds select records with.
// A Window is half-open: [Start, End).
package window

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidWindow is returned for negative or otherwise malformed window sizes.
var ErrInvalidWindow = errors.New("invalid window")

type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) IsZero() bool { return w.Start.IsZero() && w.End.IsZero() }

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidWindow, format, args...)
}

// closedEnd turns the inclusive bound t into the exclusive bound right after it.
func closedEnd(t time.Time) time.Time { return t.Add(time.Nanosecond) }

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today spans from the local midnight of now to the next one, in now's location.
func Today(now time.Time) Window {
	start := midnight(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Tomorrow is Today shifted by one calendar day.
func Tomorrow(now time.Time) Window {
	start := midnight(now).AddDate(0, 0, 1)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WithinMinutes selects instants t with now <= t <= now+n minutes.
func WithinMinutes(now time.Time, n int) (Window, error) {
	if n < 0 {
		return Window{}, invalid("withinMinutes(%d)", n)
	}
	return Window{Start: now, End: closedEnd(now.Add(time.Duration(n) * time.Minute))}, nil
}

// Between selects instants t with now+from < t <= now+to (minutes).
func Between(now time.Time, from, to int) (Window, error) {
	if from < 0 || to < 0 || from > to {
		return Window{}, invalid("between(%d, %d)", from, to)
	}
	return Window{
		Start: closedEnd(now.Add(time.Duration(from) * time.Minute)),
		End:   closedEnd(now.Add(time.Duration(to) * time.Minute)),
	}, nil
}

// Lookback selects instants t with now-days <= t <= now.
func Lookback(now time.Time, days int) (Window, error) {
	if days < 0 {
		return Window{}, invalid("lookback(%d)", days)
	}
	return Window{Start: now.AddDate(0, 0, -days), End: closedEnd(now)}, nil
}
