package dummydb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/masomo-notify/core/schedule"
)

type (
	// DB is a thread-safe in-memory school database.
	DB struct {
		year    *yearTable
		student *studentTable
		parent  *parentTable
		lesson  *lessonTable
		topic   *topicTable
	}

	yearTable struct {
		sync.RWMutex
		table map[string]schedule.AcademicYear
	}

	studentTable struct {
		sync.RWMutex
		table map[string]schedule.Student
	}

	parentRow struct {
		parent   schedule.Parent
		children []string
	}

	parentTable struct {
		sync.RWMutex
		table map[string]*parentRow
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]schedule.LessonOccurrence
	}

	topicTable struct {
		sync.RWMutex
		table map[string]schedule.ContentItem
	}
)

func Open() (*DB, error) {
	db := &DB{
		year:    &yearTable{table: make(map[string]schedule.AcademicYear)},
		student: &studentTable{table: make(map[string]schedule.Student)},
		parent:  &parentTable{table: make(map[string]*parentRow)},
		lesson:  &lessonTable{table: make(map[string]schedule.LessonOccurrence)},
		topic:   &topicTable{table: make(map[string]schedule.ContentItem)},
	}
	return db, nil
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func (db *DB) CreateAcademicYear(y schedule.AcademicYear) schedule.AcademicYear {
	db.year.Lock()
	defer db.year.Unlock()

	y.ID = newID(y.ID)
	db.year.table[y.ID] = y
	return y
}

func (db *DB) CreateStudent(st schedule.Student) schedule.Student {
	db.student.Lock()
	defer db.student.Unlock()

	st.ID = newID(st.ID)
	db.student.table[st.ID] = st
	return st
}

// CreateParent stores the parent along with the ids of their children.
func (db *DB) CreateParent(p schedule.Parent, childrenIDs ...string) schedule.Parent {
	db.parent.Lock()
	defer db.parent.Unlock()

	p.ID = newID(p.ID)
	db.parent.table[p.ID] = &parentRow{parent: p, children: append([]string(nil), childrenIDs...)}
	return p
}

// SaveLesson creates or replaces a lesson; its attached content is ignored (see SaveTopic).
// Timestamps default to now.
func (db *DB) SaveLesson(l schedule.LessonOccurrence) schedule.LessonOccurrence {
	db.lesson.Lock()
	defer db.lesson.Unlock()

	l.ID = newID(l.ID)
	if l.Status == "" {
		l.Status = schedule.StatusActive
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = l.CreatedAt
	}
	l.Content = nil
	db.lesson.table[l.ID] = l
	return l
}

// SaveTopic creates or replaces a topic. Timestamps default to now.
func (db *DB) SaveTopic(c schedule.ContentItem) schedule.ContentItem {
	db.topic.Lock()
	defer db.topic.Unlock()

	c.ID = newID(c.ID)
	if c.Status == "" {
		c.Status = schedule.ContentDraft
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	db.topic.table[c.ID] = c
	return c
}

// Reset empties every table.
func (db *DB) Reset() {
	fresh, _ := Open()
	db.year.Lock()
	db.year.table = fresh.year.table
	db.year.Unlock()
	db.student.Lock()
	db.student.table = fresh.student.table
	db.student.Unlock()
	db.parent.Lock()
	db.parent.table = fresh.parent.table
	db.parent.Unlock()
	db.lesson.Lock()
	db.lesson.table = fresh.lesson.table
	db.lesson.Unlock()
	db.topic.Lock()
	db.topic.table = fresh.topic.table
	db.topic.Unlock()
}
