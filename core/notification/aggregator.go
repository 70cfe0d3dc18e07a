package notification

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trezcool/masomo-notify/core/schedule"
	"github.com/trezcool/masomo-notify/core/window"
)

// windows are the intervals one feed is built from.
type windows struct {
	today    window.Window
	upcoming window.Window
	next     window.Window
	tomorrow window.Window
	lookback window.Window
}

func newWindows(now time.Time, upcomingMinutes, nextMinutes, lookbackDays int) (windows, error) {
	upcoming, err := window.WithinMinutes(now, upcomingMinutes)
	if err != nil {
		return windows{}, err
	}
	next, err := window.Between(now, upcomingMinutes, nextMinutes)
	if err != nil {
		return windows{}, err
	}
	lookback, err := window.Lookback(now, lookbackDays)
	if err != nil {
		return windows{}, err
	}
	return windows{
		today:    window.Today(now),
		upcoming: upcoming,
		next:     next,
		tomorrow: window.Tomorrow(now),
		lookback: lookback,
	}, nil
}

// target is one student a feed is collected for.
type target struct {
	student schedule.Student
	yearID  string
}

// entityFeed holds the notifications of one student, in production order.
type entityFeed struct {
	items      []Notification
	todayCount int
}

type aggregator struct {
	schedule       *schedule.ScheduleSource
	changes        *schedule.ChangeSource
	builder        Builder
	maxConcurrency int
}

// collect queries every window of one student concurrently and builds its notifications.
// The first failing query cancels the others and is returned; nothing partial is.
func (a *aggregator) collect(ctx context.Context, t target, now time.Time, w windows, subjectID string) (entityFeed, error) {
	var today, upcoming, next, tomorrow []schedule.LessonOccurrence
	var changes []schedule.ContentChange

	query := func(win window.Window) schedule.ScheduleQuery {
		return schedule.ScheduleQuery{
			ClassID:        t.student.ClassID,
			AcademicYearID: t.yearID,
			Window:         win,
			Status:         schedule.ActiveOnly,
			SubjectID:      subjectID,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		today, err = a.schedule.Occurrences(gctx, query(w.today))
		return err
	})
	g.Go(func() (err error) {
		upcoming, err = a.schedule.Occurrences(gctx, query(w.upcoming))
		return err
	})
	g.Go(func() (err error) {
		next, err = a.schedule.Occurrences(gctx, query(w.next))
		return err
	})
	g.Go(func() (err error) {
		tomorrow, err = a.schedule.Occurrences(gctx, query(w.tomorrow))
		return err
	})
	g.Go(func() (err error) {
		changes, err = a.changes.Changes(gctx, schedule.ChangeQuery{
			ClassID:        t.student.ClassID,
			AcademicYearID: t.yearID,
			Lookback:       w.lookback,
			Now:            now,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return entityFeed{}, err
	}

	id := t.student.ID
	items := make([]Notification, 0, len(upcoming)+len(next)+len(tomorrow)+len(changes)+1)
	for _, o := range upcoming {
		items = append(items, a.builder.Upcoming(id, o, now))
	}
	for _, o := range next {
		items = append(items, a.builder.Next(id, o, now))
	}
	for _, c := range changes {
		if c.Kind == schedule.KindScheduleEdit && matchesSubject(c, subjectID) {
			items = append(items, a.builder.ScheduleEdit(id, c))
		}
	}
	for _, c := range changes {
		if c.Kind == schedule.KindNewTopic && matchesSubject(c, subjectID) {
			items = append(items, a.builder.NewTopic(id, c))
		}
	}
	if n, ok := a.builder.DailySummary(id, today, now); ok {
		items = append(items, n)
	}
	for _, o := range tomorrow {
		items = append(items, a.builder.Tomorrow(id, o))
	}
	return entityFeed{items: items, todayCount: len(today)}, nil
}

func matchesSubject(c schedule.ContentChange, subjectID string) bool {
	return subjectID == "" || c.Occurrence.SubjectID == subjectID
}

// collectAll collects every target concurrently (at most maxConcurrency at once) and returns their feeds in order.
func (a *aggregator) collectAll(ctx context.Context, targets []target, now time.Time, w windows, subjectID string) ([]entityFeed, error) {
	feeds := make([]entityFeed, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	if a.maxConcurrency > 0 {
		g.SetLimit(a.maxConcurrency)
	}
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			f, err := a.collect(gctx, t, now, w, subjectID)
			if err != nil {
				return err
			}
			feeds[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}
