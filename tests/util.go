package testutil

import (
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/schedule"
	logsvc "github.com/trezcool/masomo-notify/services/logger"
	dummydb "github.com/trezcool/masomo-notify/storage/database/dummy"
)

// School is an in-memory school with one class and one current academic year.
type School struct {
	DB      *dummydb.DB
	ClassID string
	Year    schedule.AcademicYear
}

// OpenSchool returns an empty School whose academic year covers now.
func OpenSchool(t *testing.T, now time.Time) *School {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	year := db.CreateAcademicYear(schedule.AcademicYear{
		Name:     "Current",
		StartsOn: now.AddDate(0, -6, 0),
		EndsOn:   now.AddDate(0, 6, 0),
	})
	return &School{DB: db, ClassID: "class-6a", Year: year}
}

func (s *School) Repository() schedule.Repository { return dummydb.NewScheduleRepository(s.DB) }
func (s *School) Directory() schedule.Directory   { return dummydb.NewDirectoryRepository(s.DB) }

// CreateStudent adds a student to the school's class. The academic year is left empty (resolved as the current one).
func CreateStudent(t *testing.T, s *School, name string, classID ...string) schedule.Student {
	t.Helper()
	class := s.ClassID
	if len(classID) > 0 {
		class = classID[0]
	}
	return s.DB.CreateStudent(schedule.Student{DisplayName: name, ClassID: class})
}

func CreateParent(t *testing.T, s *School, name, email string, children ...schedule.Student) schedule.Parent {
	t.Helper()
	ids := make([]string, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return s.DB.CreateParent(schedule.Parent{DisplayName: name, Email: email}, ids...)
}

// CreateLesson schedules a 45 minutes lesson of subject for classID, created a week before start.
func CreateLesson(t *testing.T, s *School, classID, subject string, start time.Time) schedule.LessonOccurrence {
	t.Helper()
	created := start.AddDate(0, 0, -7)
	return s.DB.SaveLesson(schedule.LessonOccurrence{
		ClassID:        classID,
		AcademicYearID: s.Year.ID,
		SubjectID:      core.CleanString(subject, true),
		SubjectName:    subject,
		TeacherName:    "Mr. Lumumba",
		Location:       "Room 12",
		StartAt:        start,
		EndAt:          start.Add(45 * time.Minute),
		CreatedAt:      created,
		UpdatedAt:      created,
	})
}

// EditLesson moves the lesson to start, stamps it as updated at updatedAt and saves it.
func EditLesson(t *testing.T, s *School, l schedule.LessonOccurrence, start, updatedAt time.Time) schedule.LessonOccurrence {
	t.Helper()
	l.StartAt = start
	l.EndAt = start.Add(45 * time.Minute)
	l.UpdatedAt = updatedAt
	return s.DB.SaveLesson(l)
}

func CreateTopic(t *testing.T, s *School, l schedule.LessonOccurrence, title, status string, createdAt time.Time) schedule.ContentItem {
	t.Helper()
	return s.DB.SaveTopic(schedule.ContentItem{
		LessonID:  l.ID,
		Title:     title,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
}

// NewLogger returns a silent logger.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), core.NewTestConfig())
	logger.Enable(false)
	return logger
}
