package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-notify/core/schedule"
	"github.com/trezcool/masomo-notify/core/window"
)

type scheduleRepository struct {
	lesson *lessonTable
	topic  *topicTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{lesson: db.lesson, topic: db.topic}
}

func inClass(l schedule.LessonOccurrence, classID, yearID string) bool {
	return l.ClassID == classID && (yearID == "" || l.AcademicYearID == yearID)
}

// content returns the topics of every lesson, oldest first.
func (repo *scheduleRepository) content() map[string][]schedule.ContentItem {
	repo.topic.RLock()
	defer repo.topic.RUnlock()

	byLesson := make(map[string][]schedule.ContentItem)
	for _, c := range repo.topic.table {
		byLesson[c.LessonID] = append(byLesson[c.LessonID], c)
	}
	for _, items := range byLesson {
		sort.Slice(items, func(i, j int) bool {
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.Before(items[j].CreatedAt)
			}
			return items[i].ID < items[j].ID
		})
	}
	return byLesson
}

func (repo *scheduleRepository) GetClassScheduleWindow(ctx context.Context, q schedule.ScheduleQuery) ([]schedule.LessonOccurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := repo.content()

	repo.lesson.RLock()
	defer repo.lesson.RUnlock()

	lessons := make([]schedule.LessonOccurrence, 0)
	for _, l := range repo.lesson.table {
		if !inClass(l, q.ClassID, q.AcademicYearID) || !q.Window.Contains(l.StartAt) {
			continue
		}
		if q.Status == schedule.ActiveOnly && l.IsCancelled() {
			continue
		}
		if q.SubjectID != "" && l.SubjectID != q.SubjectID {
			continue
		}
		l.Content = content[l.ID]
		lessons = append(lessons, l)
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].StartAt.Before(lessons[j].StartAt) })
	return lessons, nil
}

func (repo *scheduleRepository) GetRecentContentChanges(
	ctx context.Context,
	classID, academicYearID string,
	lookback window.Window,
) ([]schedule.ContentChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := repo.content()

	repo.lesson.RLock()
	defer repo.lesson.RUnlock()

	changes := make([]schedule.ContentChange, 0)
	for _, l := range repo.lesson.table {
		if !inClass(l, classID, academicYearID) {
			continue
		}
		l.Content = content[l.ID]

		if lookback.Contains(l.UpdatedAt) {
			changes = append(changes, schedule.ContentChange{
				ID:          l.ID,
				Kind:        schedule.KindScheduleEdit,
				SubjectName: l.SubjectName,
				TeacherName: l.TeacherName,
				Occurrence:  l,
				CreatedAt:   l.CreatedAt,
				UpdatedAt:   l.UpdatedAt,
			})
		}
		for _, c := range l.Content {
			change := schedule.ContentChange{
				ID:          c.ID,
				Kind:        schedule.KindNewTopic,
				SubjectName: l.SubjectName,
				TeacherName: l.TeacherName,
				Title:       c.Title,
				Status:      c.Status,
				Occurrence:  l,
				CreatedAt:   c.CreatedAt,
				UpdatedAt:   c.UpdatedAt,
			}
			if lookback.Contains(change.Timestamp()) {
				changes = append(changes, change)
			}
		}
	}
	return changes, nil
}
