package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-notify/core/window"
)

type repoMock struct {
	lessons   []LessonOccurrence
	changes   []ContentChange
	err       error
	delay     time.Duration
	gotQuery  ScheduleQuery
	gotWindow window.Window
}

func (r *repoMock) wait(ctx context.Context) error {
	if r.delay == 0 {
		return nil
	}
	select {
	case <-time.After(r.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *repoMock) GetClassScheduleWindow(ctx context.Context, q ScheduleQuery) ([]LessonOccurrence, error) {
	r.gotQuery = q
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.lessons, r.err
}

func (r *repoMock) GetRecentContentChanges(ctx context.Context, _, _ string, lookback window.Window) ([]ContentChange, error) {
	r.gotWindow = lookback
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.changes, r.err
}

var now = time.Date(2021, time.March, 15, 9, 0, 0, 0, time.UTC)

func lesson(id string, start time.Time, status string) LessonOccurrence {
	return LessonOccurrence{
		ID:          id,
		ClassID:     "class",
		SubjectID:   "math",
		SubjectName: "Math",
		StartAt:     start,
		EndAt:       start.Add(45 * time.Minute),
		Status:      status,
		CreatedAt:   start.AddDate(0, 0, -7),
		UpdatedAt:   start.AddDate(0, 0, -7),
	}
}

func ids(lessons []LessonOccurrence) []string {
	out := make([]string, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, l.ID)
	}
	return out
}

func TestScheduleSource_Occurrences(t *testing.T) {
	today := window.Today(now)
	repo := &repoMock{lessons: []LessonOccurrence{
		lesson("c", now.Add(2*time.Hour), StatusActive),
		lesson("a", now.Add(-time.Hour), StatusActive),
		lesson("yesterday", now.AddDate(0, 0, -1), StatusActive),
		lesson("cancelled", now.Add(time.Hour), StatusCancelled),
		lesson("b", now.Add(2*time.Hour), StatusActive),
		lesson("midnight", today.End, StatusActive),
	}}
	src := NewScheduleSource(repo, time.Second)

	tests := []struct {
		name string
		q    ScheduleQuery
		want []string
	}{
		{
			name: "active only, ordered by start then id",
			q:    ScheduleQuery{ClassID: "class", Window: today},
			want: []string{"a", "b", "c"},
		},
		{
			name: "any status",
			q:    ScheduleQuery{ClassID: "class", Window: today, Status: AnyStatus},
			want: []string{"a", "cancelled", "b", "c"},
		},
		{
			name: "subject filter",
			q:    ScheduleQuery{ClassID: "class", Window: today, SubjectID: "french"},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.Occurrences(context.Background(), tt.q)
			if err != nil {
				t.Fatalf("Occurrences() failed: %v", err)
			}
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, tt.q, repo.gotQuery)
		})
	}
}

func TestScheduleSource_failures(t *testing.T) {
	t.Run("store error", func(t *testing.T) {
		src := NewScheduleSource(&repoMock{err: errors.New("connection refused")}, time.Second)
		lessons, err := src.Occurrences(context.Background(), ScheduleQuery{Window: window.Today(now)})

		assert.Nil(t, lessons)
		assert.True(t, errors.Is(err, ErrSourceUnavailable), "error = %v", err)
		var srcErr *SourceError
		require.True(t, errors.As(err, &srcErr))
		assert.Equal(t, "schedule", srcErr.Source)
	})

	t.Run("timeout", func(t *testing.T) {
		src := NewScheduleSource(&repoMock{delay: time.Second}, 10*time.Millisecond)
		_, err := src.Occurrences(context.Background(), ScheduleQuery{Window: window.Today(now)})

		assert.True(t, errors.Is(err, ErrSourceUnavailable), "error = %v", err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "error = %v", err)
	})

	t.Run("caller cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := NewScheduleSource(&repoMock{}, time.Second)
		_, err := src.Occurrences(ctx, ScheduleQuery{Window: window.Today(now)})

		assert.Equal(t, context.Canceled, err)
	})
}

func TestChangeSource_Changes(t *testing.T) {
	lookback, err := window.Lookback(now, 1)
	require.NoError(t, err)

	future := lesson("future", now.Add(24*time.Hour), StatusActive)
	past := lesson("past", now.Add(-time.Hour), StatusActive)
	topic := func(id, status string, ts time.Time) ContentChange {
		return ContentChange{ID: id, Kind: KindNewTopic, Status: status, Title: id, Occurrence: past, CreatedAt: ts, UpdatedAt: ts}
	}
	edit := func(id string, occ LessonOccurrence, created, updated time.Time) ContentChange {
		return ContentChange{ID: id, Kind: KindScheduleEdit, Occurrence: occ, CreatedAt: created, UpdatedAt: updated}
	}

	repo := &repoMock{changes: []ContentChange{
		topic("draft", ContentDraft, now.Add(-time.Hour)),
		topic("planned", ContentPlanned, now.Add(-time.Hour)),
		topic("done", ContentCompleted, now.Add(-10*time.Hour)),
		topic("ongoing", ContentInProgress, now.Add(-2*time.Hour)),
		topic("old", ContentCompleted, now.AddDate(0, 0, -2)),
		edit("edited", future, now.AddDate(0, 0, -3), now.Add(-30*time.Minute)),
		edit("just-created", future, now.Add(-5*time.Minute), now.Add(-5*time.Minute+30*time.Second)),
		edit("at-guard", future, now.Add(-5*time.Minute), now.Add(-4*time.Minute)),
		edit("past-lesson", past, now.AddDate(0, 0, -3), now.Add(-20*time.Minute)),
		edit("old-edit", future, now.AddDate(0, 0, -5), now.AddDate(0, 0, -3)),
		{ID: "unknown", Kind: "homework", CreatedAt: now, UpdatedAt: now},
	}}
	src := NewChangeSource(repo, time.Second, 0)

	got, err := src.Changes(context.Background(), ChangeQuery{ClassID: "class", Lookback: lookback, Now: now})
	if err != nil {
		t.Fatalf("Changes() failed: %v", err)
	}

	gotIDs := make([]string, 0, len(got))
	for _, c := range got {
		gotIDs = append(gotIDs, c.ID)
	}
	assert.Equal(t, []string{"edited", "ongoing", "done"}, gotIDs)
	assert.Equal(t, lookback, repo.gotWindow)
}

func TestChangeSource_guard(t *testing.T) {
	lookback, err := window.Lookback(now, 1)
	require.NoError(t, err)
	future := lesson("future", now.Add(time.Hour), StatusActive)
	repo := &repoMock{changes: []ContentChange{
		{ID: "edit", Kind: KindScheduleEdit, Occurrence: future, CreatedAt: now.Add(-10 * time.Minute), UpdatedAt: now.Add(-5 * time.Minute)},
	}}

	got, err := NewChangeSource(repo, time.Second, 10*time.Minute).Changes(context.Background(), ChangeQuery{Lookback: lookback, Now: now})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NewChangeSource(repo, time.Second, time.Second).Changes(context.Background(), ChangeQuery{Lookback: lookback, Now: now})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestChangeSource_failure(t *testing.T) {
	src := NewChangeSource(&repoMock{err: errors.New("boom")}, time.Second, MinEditGuard)
	changes, err := src.Changes(context.Background(), ChangeQuery{Now: now})

	assert.Nil(t, changes)
	assert.True(t, errors.Is(err, ErrSourceUnavailable), "error = %v", err)
}

func TestAcademicYear_Covers(t *testing.T) {
	y := AcademicYear{
		StartsOn: time.Date(2020, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2021, time.July, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, y.Covers(now))
	assert.True(t, y.Covers(time.Date(2021, time.July, 2, 23, 0, 0, 0, time.UTC)))
	assert.False(t, y.Covers(time.Date(2021, time.July, 3, 0, 0, 0, 0, time.UTC)))
	assert.False(t, y.Covers(time.Date(2020, time.August, 31, 23, 59, 0, 0, time.UTC)))
}
