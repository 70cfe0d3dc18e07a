package schedule

import (
	"context"
	"sort"
	"time"
)

// ChangeSource returns the recent content changes and schedule edits of a class.
type ChangeSource struct {
	repo    Repository
	timeout time.Duration
	guard   time.Duration
}

// NewChangeSource returns a ChangeSource ignoring lesson updates made within guard of their creation.
// guard is never lower than MinEditGuard.
func NewChangeSource(repo Repository, timeout, guard time.Duration) *ChangeSource {
	if guard < MinEditGuard {
		guard = MinEditGuard
	}
	return &ChangeSource{repo: repo, timeout: timeout, guard: guard}
}

// Changes returns the changes of q, most recent first.
func (s *ChangeSource) Changes(ctx context.Context, q ChangeQuery) ([]ContentChange, error) {
	res := make(chan []ContentChange, 1)

	err := bounded(ctx, s.timeout, "content changes", func(ctx context.Context) error {
		changes, err := s.repo.GetRecentContentChanges(ctx, q.ClassID, q.AcademicYearID, q.Lookback)
		if err != nil {
			return err
		}
		res <- changes
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes := <-res
	out := make([]ContentChange, 0, len(changes))
	for _, c := range changes {
		if s.keep(c, q) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Timestamp(), out[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *ChangeSource) keep(c ContentChange, q ChangeQuery) bool {
	switch c.Kind {
	case KindNewTopic:
		return IsVisibleContent(c.Status) && q.Lookback.Contains(c.Timestamp())
	case KindScheduleEdit:
		return c.Occurrence.StartAt.After(q.Now) &&
			q.Lookback.Contains(c.UpdatedAt) &&
			c.UpdatedAt.Sub(c.CreatedAt) > s.guard
	default:
		return false
	}
}
