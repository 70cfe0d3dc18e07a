package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// MinEditGuard is the smallest delay between a lesson's creation and an update for the latter to count as an edit.
const MinEditGuard = time.Minute

// bounded runs fn with the given timeout.
// A failure of fn, or fn outliving the timeout, is a *SourceError.
// A cancelled ctx and the lookup errors (ErrEntityNotFound, ErrNoAcademicYear) are returned as is.
func bounded(ctx context.Context, timeout time.Duration, source string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	qctx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		qctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(qctx) }()

	var err error
	select {
	case err = <-done:
	case <-qctx.Done():
		err = qctx.Err()
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ErrEntityNotFound) || errors.Is(err, ErrNoAcademicYear) {
		return err
	}
	return &SourceError{Source: source, Err: err}
}

// ScheduleSource returns the lessons of a class inside a window.
type ScheduleSource struct {
	repo    Repository
	timeout time.Duration
}

func NewScheduleSource(repo Repository, timeout time.Duration) *ScheduleSource {
	return &ScheduleSource{repo: repo, timeout: timeout}
}

// Occurrences returns every lesson matching q, ordered by start time.
func (s *ScheduleSource) Occurrences(ctx context.Context, q ScheduleQuery) ([]LessonOccurrence, error) {
	res := make(chan []LessonOccurrence, 1)

	err := bounded(ctx, s.timeout, "schedule", func(ctx context.Context) error {
		lessons, err := s.repo.GetClassScheduleWindow(ctx, q)
		if err != nil {
			return err
		}
		res <- lessons
		return nil
	})
	if err != nil {
		return nil, err
	}

	lessons := <-res
	out := make([]LessonOccurrence, 0, len(lessons))
	for _, l := range lessons {
		if !q.Window.Contains(l.StartAt) {
			continue
		}
		if q.Status == ActiveOnly && l.IsCancelled() {
			continue
		}
		if q.SubjectID != "" && l.SubjectID != q.SubjectID {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
