package schedule

import (
	"context"
	"time"

	"github.com/trezcool/masomo-notify/core/window"
)

// Repository reads lessons and their content.
type Repository interface {
	// GetClassScheduleWindow returns the lessons of a class starting inside q.Window.
	GetClassScheduleWindow(ctx context.Context, q ScheduleQuery) ([]LessonOccurrence, error)
	// GetRecentContentChanges returns topics and lessons of a class created or updated inside lookback.
	GetRecentContentChanges(ctx context.Context, classID, academicYearID string, lookback window.Window) ([]ContentChange, error)
}

// Directory resolves the people a feed is built for.
type Directory interface {
	GetStudent(ctx context.Context, id string) (Student, error)
	GetParent(ctx context.Context, id string) (Parent, error)
	// GetEntityChildren returns ErrEntityNotFound when the parent does not exist.
	GetEntityChildren(ctx context.Context, parentID string) ([]Student, error)
	ResolveCurrentAcademicYear(ctx context.Context, now time.Time) (string, error)
}
