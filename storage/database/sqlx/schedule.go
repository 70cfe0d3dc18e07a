package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/schedule"
	"github.com/trezcool/masomo-notify/core/window"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var lessonColumns = []string{
	"l.id",
	"l.class_id",
	"l.academic_year_id",
	"l.subject_id",
	"s.name AS subject_name",
	"t.display_name AS teacher_name",
	"l.location",
	"l.starts_at",
	"l.ends_at",
	"l.status",
	"l.created_at",
	"l.updated_at",
}

type scheduleRepository struct {
	db core.DBExecutor
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db core.DBExecutor) schedule.Repository {
	return &scheduleRepository{db: db}
}

// validIDs reports whether every id is a UUID; other ids cannot match any row.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

func selectLessons(classID, yearID string) sq.SelectBuilder {
	return psql.Select(lessonColumns...).
		From("lesson l").
		Join("subject s ON s.id = l.subject_id").
		LeftJoin("teacher t ON t.id = l.teacher_id").
		Where(sq.Eq{"l.class_id": classID, "l.academic_year_id": yearID})
}

func scheduleQuery(q schedule.ScheduleQuery) sq.SelectBuilder {
	b := selectLessons(q.ClassID, q.AcademicYearID).
		Where(sq.GtOrEq{"l.starts_at": q.Window.Start}).
		Where(sq.Lt{"l.starts_at": q.Window.End})
	if q.Status == schedule.ActiveOnly {
		b = b.Where(sq.NotEq{"l.status": schedule.StatusCancelled})
	}
	if q.SubjectID != "" {
		b = b.Where(sq.Eq{"l.subject_id": q.SubjectID})
	}
	return b.OrderBy("l.starts_at", "l.id")
}

func editedLessonsQuery(classID, yearID string, lookback window.Window) sq.SelectBuilder {
	return selectLessons(classID, yearID).
		Where(sq.GtOrEq{"l.updated_at": lookback.Start}).
		Where(sq.Lt{"l.updated_at": lookback.End}).
		OrderBy("l.updated_at DESC", "l.id")
}

func changedTopicsQuery(classID, yearID string, lookback window.Window) sq.SelectBuilder {
	return psql.Select("lt.id", "lt.lesson_id", "lt.title", "lt.status", "lt.created_at", "lt.updated_at").
		From("lesson_topic lt").
		Join("lesson l ON l.id = lt.lesson_id").
		Where(sq.Eq{"l.class_id": classID, "l.academic_year_id": yearID}).
		Where(sq.Expr("GREATEST(lt.created_at, lt.updated_at) >= ?", lookback.Start)).
		Where(sq.Expr("GREATEST(lt.created_at, lt.updated_at) < ?", lookback.End)).
		OrderBy("lt.updated_at DESC", "lt.id")
}

func lessonsByIDQuery(ids []string) sq.SelectBuilder {
	return psql.Select(lessonColumns...).
		From("lesson l").
		Join("subject s ON s.id = l.subject_id").
		LeftJoin("teacher t ON t.id = l.teacher_id").
		Where(sq.Eq{"l.id": ids})
}

func topicsQuery(lessonIDs []string) sq.SelectBuilder {
	return psql.Select("id", "lesson_id", "title", "status", "created_at", "updated_at").
		From("lesson_topic").
		Where(sq.Eq{"lesson_id": lessonIDs}).
		OrderBy("created_at", "id")
}

func (repo *scheduleRepository) selectRows(ctx context.Context, dest interface{}, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return repo.db.SelectContext(ctx, dest, query, args...)
}

func (repo *scheduleRepository) lessons(ctx context.Context, b sq.SelectBuilder) ([]schedule.LessonOccurrence, error) {
	var rows []lessonRow
	if err := repo.selectRows(ctx, &rows, b); err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}
	lessons := make([]schedule.LessonOccurrence, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.toOccurrence())
	}
	return lessons, nil
}

// attachContent loads the topics of every lesson, oldest first.
func (repo *scheduleRepository) attachContent(ctx context.Context, lessons []schedule.LessonOccurrence) error {
	if len(lessons) == 0 {
		return nil
	}
	ids := make([]string, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}

	var rows []topicRow
	if err := repo.selectRows(ctx, &rows, topicsQuery(ids)); err != nil {
		return errors.Wrap(err, "selecting lesson topics")
	}
	byLesson := make(map[string][]schedule.ContentItem, len(lessons))
	for _, r := range rows {
		byLesson[r.LessonID] = append(byLesson[r.LessonID], r.toContentItem())
	}
	for i := range lessons {
		lessons[i].Content = byLesson[lessons[i].ID]
	}
	return nil
}

func (repo *scheduleRepository) GetClassScheduleWindow(ctx context.Context, q schedule.ScheduleQuery) ([]schedule.LessonOccurrence, error) {
	if !validIDs(q.ClassID, q.AcademicYearID) || (q.SubjectID != "" && !validIDs(q.SubjectID)) {
		return []schedule.LessonOccurrence{}, nil
	}

	lessons, err := repo.lessons(ctx, scheduleQuery(q))
	if err != nil {
		return nil, err
	}
	if err = repo.attachContent(ctx, lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// GetRecentContentChanges returns the lessons updated during lookback (as schedule edits)
// and the topics created or updated during lookback (as new topics).
func (repo *scheduleRepository) GetRecentContentChanges(
	ctx context.Context,
	classID, academicYearID string,
	lookback window.Window,
) ([]schedule.ContentChange, error) {
	if !validIDs(classID, academicYearID) {
		return []schedule.ContentChange{}, nil
	}

	edited, err := repo.lessons(ctx, editedLessonsQuery(classID, academicYearID, lookback))
	if err != nil {
		return nil, err
	}

	var topics []topicRow
	if err = repo.selectRows(ctx, &topics, changedTopicsQuery(classID, academicYearID, lookback)); err != nil {
		return nil, errors.Wrap(err, "selecting changed topics")
	}

	// lessons of the changed topics that were not edited themselves
	known := make(map[string]bool, len(edited))
	for _, l := range edited {
		known[l.ID] = true
	}
	var missing []string
	for _, t := range topics {
		if !known[t.LessonID] {
			known[t.LessonID] = true
			missing = append(missing, t.LessonID)
		}
	}
	lessons := edited
	if len(missing) > 0 {
		others, err := repo.lessons(ctx, lessonsByIDQuery(missing))
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, others...)
	}
	if err = repo.attachContent(ctx, lessons); err != nil {
		return nil, err
	}

	byID := make(map[string]schedule.LessonOccurrence, len(lessons))
	for _, l := range lessons {
		byID[l.ID] = l
	}

	changes := make([]schedule.ContentChange, 0, len(edited)+len(topics))
	for _, l := range lessons[:len(edited)] {
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
	for _, t := range topics {
		l := byID[t.LessonID]
		changes = append(changes, schedule.ContentChange{
			ID:          t.ID,
			Kind:        schedule.KindNewTopic,
			SubjectName: l.SubjectName,
			TeacherName: l.TeacherName,
			Title:       t.Title,
			Status:      t.Status,
			Occurrence:  l,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return changes, nil
}
