package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/schedule"
)

type directoryRepository struct {
	db core.DBExecutor
}

var _ schedule.Directory = (*directoryRepository)(nil) // interface compliance check

func NewDirectoryRepository(db core.DBExecutor) schedule.Directory {
	return &directoryRepository{db: db}
}

func (repo *directoryRepository) get(ctx context.Context, dest interface{}, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	err = repo.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.ErrEntityNotFound
	}
	return err
}

func studentQuery(id string) sq.SelectBuilder {
	return psql.Select("id", "class_id", "academic_year_id", "display_name").
		From("student").
		Where(sq.Eq{"id": id})
}

func parentQuery(id string) sq.SelectBuilder {
	return psql.Select("id", "display_name", "email").
		From("parent").
		Where(sq.Eq{"id": id})
}

func childrenQuery(parentID string) sq.SelectBuilder {
	return psql.Select("s.id", "s.class_id", "s.academic_year_id", "s.display_name").
		From("student s").
		Join("parent_student ps ON ps.student_id = s.id").
		Where(sq.Eq{"ps.parent_id": parentID}).
		OrderBy("s.display_name", "s.id")
}

// currentYearQuery selects the latest started academic year covering the date of now.
func currentYearQuery(now time.Time) sq.SelectBuilder {
	day := now.Format("2006-01-02")
	return psql.Select("id").
		From("academic_year").
		Where(sq.LtOrEq{"starts_on": day}).
		Where(sq.GtOrEq{"ends_on": day}).
		OrderBy("starts_on DESC", "id").
		Limit(1)
}

func (repo *directoryRepository) GetStudent(ctx context.Context, id string) (schedule.Student, error) {
	if !validIDs(id) {
		return schedule.Student{}, schedule.ErrEntityNotFound
	}
	var row studentRow
	if err := repo.get(ctx, &row, studentQuery(id)); err != nil {
		return schedule.Student{}, errors.Wrap(err, "selecting student")
	}
	return row.toStudent(), nil
}

func (repo *directoryRepository) GetParent(ctx context.Context, id string) (schedule.Parent, error) {
	if !validIDs(id) {
		return schedule.Parent{}, schedule.ErrEntityNotFound
	}
	var row parentRow
	if err := repo.get(ctx, &row, parentQuery(id)); err != nil {
		return schedule.Parent{}, errors.Wrap(err, "selecting parent")
	}
	return row.toParent(), nil
}

func (repo *directoryRepository) GetEntityChildren(ctx context.Context, parentID string) ([]schedule.Student, error) {
	if _, err := repo.GetParent(ctx, parentID); err != nil {
		return nil, err
	}

	query, args, err := childrenQuery(parentID).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting children")
	}
	children := make([]schedule.Student, 0, len(rows))
	for _, r := range rows {
		children = append(children, r.toStudent())
	}
	return children, nil
}

func (repo *directoryRepository) ResolveCurrentAcademicYear(ctx context.Context, now time.Time) (string, error) {
	var id string
	err := repo.get(ctx, &id, currentYearQuery(now))
	if errors.Is(err, schedule.ErrEntityNotFound) {
		return "", schedule.ErrNoAcademicYear
	}
	if err != nil {
		return "", errors.Wrap(err, "selecting current academic year")
	}
	return id, nil
}
