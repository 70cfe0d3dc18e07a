package sqlxrepos

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-notify/core/schedule"
)

type (
	lessonRow struct {
		ID             string      `db:"id"`
		ClassID        string      `db:"class_id"`
		AcademicYearID string      `db:"academic_year_id"`
		SubjectID      string      `db:"subject_id"`
		SubjectName    string      `db:"subject_name"`
		TeacherName    null.String `db:"teacher_name"`
		Location       null.String `db:"location"`
		StartsAt       time.Time   `db:"starts_at"`
		EndsAt         null.Time   `db:"ends_at"`
		Status         string      `db:"status"`
		CreatedAt      time.Time   `db:"created_at"`
		UpdatedAt      time.Time   `db:"updated_at"`
	}

	topicRow struct {
		ID        string    `db:"id"`
		LessonID  string    `db:"lesson_id"`
		Title     string    `db:"title"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	studentRow struct {
		ID             string      `db:"id"`
		ClassID        string      `db:"class_id"`
		AcademicYearID null.String `db:"academic_year_id"`
		DisplayName    string      `db:"display_name"`
	}

	parentRow struct {
		ID          string      `db:"id"`
		DisplayName string      `db:"display_name"`
		Email       null.String `db:"email"`
	}
)

func (r lessonRow) toOccurrence() schedule.LessonOccurrence {
	return schedule.LessonOccurrence{
		ID:             r.ID,
		ClassID:        r.ClassID,
		AcademicYearID: r.AcademicYearID,
		SubjectID:      r.SubjectID,
		SubjectName:    r.SubjectName,
		TeacherName:    r.TeacherName.String,
		Location:       r.Location.String,
		StartAt:        r.StartsAt,
		EndAt:          r.EndsAt.Time,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r topicRow) toContentItem() schedule.ContentItem {
	return schedule.ContentItem{
		ID:        r.ID,
		LessonID:  r.LessonID,
		Title:     r.Title,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r studentRow) toStudent() schedule.Student {
	return schedule.Student{
		ID:             r.ID,
		ClassID:        r.ClassID,
		AcademicYearID: r.AcademicYearID.String,
		DisplayName:    r.DisplayName,
	}
}

func (r parentRow) toParent() schedule.Parent {
	return schedule.Parent{ID: r.ID, DisplayName: r.DisplayName, Email: r.Email.String}
}
