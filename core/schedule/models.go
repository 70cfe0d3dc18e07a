package schedule

import (
	"time"

	"github.com/trezcool/masomo-notify/core/window"
)

// Lesson statuses
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Content (topic) statuses
const (
	ContentDraft      = "draft"
	ContentPlanned    = "planned"
	ContentInProgress = "in_progress"
	ContentCompleted  = "completed"
)

// ChangeKind tells what a ContentChange reports.
type ChangeKind string

const (
	KindNewTopic     ChangeKind = "new_topic"
	KindScheduleEdit ChangeKind = "schedule_edit"
)

// StatusFilter restricts the lessons a schedule query returns.
type StatusFilter int

const (
	ActiveOnly StatusFilter = iota
	AnyStatus
)

var visibleContent = map[string]bool{
	ContentCompleted:  true,
	ContentInProgress: true,
}

// IsVisibleContent reports whether content with the given status may surface to students and parents.
func IsVisibleContent(status string) bool { return visibleContent[status] }

// VisibleContentStatuses lists the statuses IsVisibleContent accepts.
func VisibleContentStatuses() []string { return []string{ContentCompleted, ContentInProgress} }

type (
	// ContentItem is a topic attached to a lesson.
	ContentItem struct {
		ID        string    `json:"id"`
		LessonID  string    `json:"lesson_id"`
		Title     string    `json:"title"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// LessonOccurrence is one concrete scheduled class.
	LessonOccurrence struct {
		ID             string        `json:"id"`
		ClassID        string        `json:"class_id"`
		AcademicYearID string        `json:"academic_year_id"`
		SubjectID      string        `json:"subject_id"`
		SubjectName    string        `json:"subject_name"`
		TeacherName    string        `json:"teacher_name"`
		Location       string        `json:"location"`
		StartAt        time.Time     `json:"start_at"`
		EndAt          time.Time     `json:"end_at"`
		Status         string        `json:"status"`
		Content        []ContentItem `json:"content"`
		CreatedAt      time.Time     `json:"created_at"`
		UpdatedAt      time.Time     `json:"updated_at"`
	}

	// ContentChange is a recently added/updated topic or a recently edited lesson.
	ContentChange struct {
		ID          string           `json:"id"`
		Kind        ChangeKind       `json:"kind"`
		SubjectName string           `json:"subject_name"`
		TeacherName string           `json:"teacher_name"`
		Title       string           `json:"title"`  // topic title (new_topic)
		Status      string           `json:"status"` // topic status (new_topic)
		Occurrence  LessonOccurrence `json:"occurrence"`
		CreatedAt   time.Time        `json:"created_at"`
		UpdatedAt   time.Time        `json:"updated_at"`
	}

	Student struct {
		ID             string `json:"id" db:"id"`
		ClassID        string `json:"class_id" db:"class_id"`
		AcademicYearID string `json:"academic_year_id" db:"academic_year_id"`
		DisplayName    string `json:"display_name" db:"display_name"`
	}

	Parent struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}

	AcademicYear struct {
		ID       string    `json:"id"`
		Name     string    `json:"name"`
		StartsOn time.Time `json:"starts_on"`
		EndsOn   time.Time `json:"ends_on"` // inclusive
	}

	ScheduleQuery struct {
		ClassID        string
		AcademicYearID string
		Window         window.Window
		Status         StatusFilter
		SubjectID      string // optional
	}

	ChangeQuery struct {
		ClassID        string
		AcademicYearID string
		Lookback       window.Window
		Now            time.Time
	}
)

// HasContent reports whether any visible content is attached to the lesson.
func (o LessonOccurrence) HasContent() bool {
	for _, c := range o.Content {
		if IsVisibleContent(c.Status) {
			return true
		}
	}
	return false
}

func (o LessonOccurrence) IsCancelled() bool { return o.Status == StatusCancelled }

// Timestamp is the instant the change happened at: its last update, or its creation.
func (c ContentChange) Timestamp() time.Time {
	if c.UpdatedAt.After(c.CreatedAt) {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// Covers reports whether the academic year includes the day of t.
func (y AcademicYear) Covers(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(y.StartsOn.Year(), y.StartsOn.Month(), y.StartsOn.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(y.EndsOn.Year(), y.EndsOn.Month(), y.EndsOn.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}
