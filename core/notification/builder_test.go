package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-notify/core/schedule"
)

var now = time.Date(2021, time.March, 15, 9, 0, 0, 0, time.UTC) // Monday

func occurrence(id string, start time.Time) schedule.LessonOccurrence {
	return schedule.LessonOccurrence{
		ID:          id,
		ClassID:     "class",
		SubjectID:   "math",
		SubjectName: "Math",
		TeacherName: "Mr. Lumumba",
		Location:    "Room 12",
		StartAt:     start,
		EndAt:       start.Add(45 * time.Minute),
		Status:      schedule.StatusActive,
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "0 minutes"},
		{d: time.Minute, want: "1 minute"},
		{d: 20*time.Minute + 59*time.Second, want: "20 minutes"},
		{d: time.Hour, want: "1 hour"},
		{d: 75 * time.Minute, want: "1 hour 15 minutes"},
		{d: 121 * time.Minute, want: "2 hours 1 minute"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatDelta(tt.d); got != tt.want {
				t.Errorf("formatDelta(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestBuilder_lessons(t *testing.T) {
	b := NewBuilder(time.UTC)
	o := occurrence("l1", now.Add(20*time.Minute))

	tests := []struct {
		name         string
		got          Notification
		wantType     Type
		wantPriority Priority
		wantTitle    string
		wantMessage  string
	}{
		{
			name:         "upcoming",
			got:          b.Upcoming("st", o, now),
			wantType:     TypeUpcoming,
			wantPriority: PriorityHigh,
			wantTitle:    "Math starts soon",
			wantMessage:  "Math with Mr. Lumumba starts in 20 minutes (Room 12).",
		},
		{
			name:         "upcoming now",
			got:          b.Upcoming("st", occurrence("l1", now), now),
			wantType:     TypeUpcoming,
			wantPriority: PriorityHigh,
			wantTitle:    "Math starts soon",
			wantMessage:  "Math with Mr. Lumumba starts now (Room 12).",
		},
		{
			name:         "next",
			got:          b.Next("st", occurrence("l1", now.Add(75*time.Minute)), now),
			wantType:     TypeNext,
			wantPriority: PriorityMedium,
			wantTitle:    "Next: Math",
			wantMessage:  "Math with Mr. Lumumba starts in 1 hour 15 minutes at 10:15 (Room 12).",
		},
		{
			name:         "tomorrow",
			got:          b.Tomorrow("st", occurrence("l1", now.Add(23*time.Hour))),
			wantType:     TypeTomorrow,
			wantPriority: PriorityLow,
			wantTitle:    "Tomorrow: Math",
			wantMessage:  "Math with Mr. Lumumba tomorrow at 08:00 (Room 12).",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Key{Type: tt.wantType, SourceID: "l1"}, tt.got.ID)
			assert.Equal(t, tt.wantType, tt.got.Type)
			assert.Equal(t, tt.wantPriority, tt.got.Priority)
			assert.Equal(t, tt.wantTitle, tt.got.Title)
			assert.Equal(t, tt.wantMessage, tt.got.Message)
			assert.Equal(t, "st", tt.got.EntityID)
			assert.Equal(t, "Math", tt.got.SubjectName)
			assert.Equal(t, "Room 12", tt.got.Location)
		})
	}
}

func TestBuilder_rendersInLocation(t *testing.T) {
	wat := time.FixedZone("WAT", 3600)
	n := NewBuilder(wat).Tomorrow("st", occurrence("l1", time.Date(2021, time.March, 16, 7, 0, 0, 0, time.UTC)))

	assert.Equal(t, "Math with Mr. Lumumba tomorrow at 08:00 (Room 12).", n.Message)
	assert.Equal(t, wat, n.Timestamp.Location())
}

func TestBuilder_DailySummary(t *testing.T) {
	b := NewBuilder(time.UTC)
	early := occurrence("a", now.Add(-2*time.Hour))
	ended := occurrence("b", now.Add(-time.Hour))
	ongoing := occurrence("c", now.Add(-10*time.Minute))
	later := occurrence("d", now.Add(3*time.Hour))

	t.Run("nothing over yet", func(t *testing.T) {
		_, ok := b.DailySummary("st", []schedule.LessonOccurrence{ongoing, later}, now)
		assert.False(t, ok)
	})

	t.Run("lessons remaining", func(t *testing.T) {
		n, ok := b.DailySummary("st", []schedule.LessonOccurrence{early, ended, ongoing, later}, now)
		assert.True(t, ok)
		assert.Equal(t, PriorityMedium, n.Priority)
		assert.Equal(t, "2 of 4 classes done today, 2 remaining.", n.Message)
		assert.Equal(t, ended.StartAt, n.Timestamp)
		assert.Equal(t, Key{Type: TypeDailySummary, SourceID: "2021-03-15"}, n.ID)
	})

	t.Run("day over", func(t *testing.T) {
		n, ok := b.DailySummary("st", []schedule.LessonOccurrence{early, ended}, now)
		assert.True(t, ok)
		assert.Equal(t, PriorityLow, n.Priority)
		assert.Equal(t, "All 2 classes done for today.", n.Message)
	})
}

func TestBuilder_changes(t *testing.T) {
	b := NewBuilder(time.UTC)
	past := occurrence("lesson", now.AddDate(0, 0, -1))
	future := occurrence("lesson", now.Add(25*time.Hour))

	t.Run("new topic", func(t *testing.T) {
		ts := now.Add(-10 * time.Hour)
		n := b.NewTopic("st", schedule.ContentChange{
			ID: "topic", Kind: schedule.KindNewTopic, SubjectName: "Math", TeacherName: "Mr. Lumumba",
			Title: "Fractions", Status: schedule.ContentCompleted, Occurrence: past, CreatedAt: ts, UpdatedAt: ts,
		})
		assert.Equal(t, Key{Type: TypeNewTopic, SourceID: "topic"}, n.ID)
		assert.Equal(t, PriorityMedium, n.Priority)
		assert.Equal(t, "New topic in Math", n.Title)
		assert.Equal(t, `Mr. Lumumba added the topic "Fractions" in Math for Sun 14 Mar.`, n.Message)
		assert.Equal(t, ts, n.Timestamp)
		assert.True(t, n.HasContent)
	})

	t.Run("updated topic without teacher", func(t *testing.T) {
		o := past
		o.TeacherName = ""
		n := b.NewTopic("st", schedule.ContentChange{
			ID: "topic", Kind: schedule.KindNewTopic, SubjectName: "Math", Title: "Fractions",
			Occurrence: o, CreatedAt: now.Add(-5 * time.Hour), UpdatedAt: now.Add(-time.Hour),
		})
		assert.Equal(t, `Updated the topic "Fractions" in Math for Sun 14 Mar.`, n.Message)
		assert.Equal(t, now.Add(-time.Hour), n.Timestamp)
	})

	t.Run("schedule edit", func(t *testing.T) {
		n := b.ScheduleEdit("st", schedule.ContentChange{
			ID: "lesson", Kind: schedule.KindScheduleEdit, Occurrence: future,
			CreatedAt: now.AddDate(0, 0, -7), UpdatedAt: now.Add(-time.Hour),
		})
		assert.Equal(t, Key{Type: TypeScheduleEdit, SourceID: "lesson"}, n.ID)
		assert.Equal(t, PriorityHigh, n.Priority)
		assert.Equal(t, "Schedule change: Math", n.Title)
		assert.Equal(t, "Math with Mr. Lumumba on Tue 16 Mar now starts at 10:00 (Room 12).", n.Message)
		assert.Equal(t, now.Add(-time.Hour), n.Timestamp)
	})

	t.Run("cancellation", func(t *testing.T) {
		o := future
		o.Status = schedule.StatusCancelled
		n := b.ScheduleEdit("st", schedule.ContentChange{
			ID: "lesson", Kind: schedule.KindScheduleEdit, Occurrence: o,
			CreatedAt: now.AddDate(0, 0, -7), UpdatedAt: now.Add(-time.Hour),
		})
		assert.Equal(t, PriorityHigh, n.Priority)
		assert.Equal(t, "Math on Tue 16 Mar at 10:00 has been cancelled.", n.Message)
	})
}

func TestBuilder_MultiChildSummary(t *testing.T) {
	n := NewBuilder(time.UTC).MultiChildSummary("parent", []ChildCount{{Name: "A", Lessons: 3}, {Name: "B", Lessons: 0}}, now)

	assert.Equal(t, "3 total classes today: A (3), B (0)", n.Message)
	assert.Equal(t, PriorityMedium, n.Priority)
	assert.Equal(t, TypeMultiChildSummary, n.Type)
	assert.Equal(t, "parent", n.EntityID)
	assert.Equal(t, now, n.Timestamp)

	n = NewBuilder(time.UTC).MultiChildSummary("parent", []ChildCount{{Name: "A", Lessons: 1}, {Name: "B"}}, now)
	assert.Equal(t, "1 total class today: A (1), B (0)", n.Message)
}

func TestBuilder_boundsInterpolatedText(t *testing.T) {
	o := occurrence("l1", now.AddDate(0, 0, -1))
	o.SubjectName = "Math\n\n" + strings.Repeat("x", 200)
	n := NewBuilder(time.UTC).NewTopic("st", schedule.ContentChange{
		ID: "topic", Kind: schedule.KindNewTopic, Title: strings.Repeat("long ", 100),
		Occurrence: o, CreatedAt: now, UpdatedAt: now,
	})

	assert.NotContains(t, n.Message, "\n")
	assert.LessOrEqual(t, len([]rune(n.SubjectName)), maxNameLen)
	assert.Less(t, len([]rune(n.Message)), maxNameLen*2+maxTitleLen+60)
}
