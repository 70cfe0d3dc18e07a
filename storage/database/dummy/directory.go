package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/masomo-notify/core/schedule"
)

type directoryRepository struct {
	year    *yearTable
	student *studentTable
	parent  *parentTable
}

var _ schedule.Directory = (*directoryRepository)(nil) // interface compliance check

func NewDirectoryRepository(db *DB) schedule.Directory {
	return &directoryRepository{year: db.year, student: db.student, parent: db.parent}
}

func (repo *directoryRepository) GetStudent(_ context.Context, id string) (schedule.Student, error) {
	repo.student.RLock()
	defer repo.student.RUnlock()

	if st, ok := repo.student.table[id]; ok {
		return st, nil
	}
	return schedule.Student{}, schedule.ErrEntityNotFound
}

func (repo *directoryRepository) GetParent(_ context.Context, id string) (schedule.Parent, error) {
	repo.parent.RLock()
	defer repo.parent.RUnlock()

	if row, ok := repo.parent.table[id]; ok {
		return row.parent, nil
	}
	return schedule.Parent{}, schedule.ErrEntityNotFound
}

func (repo *directoryRepository) GetEntityChildren(_ context.Context, parentID string) ([]schedule.Student, error) {
	repo.parent.RLock()
	row, ok := repo.parent.table[parentID]
	var ids []string
	if ok {
		ids = append(ids, row.children...)
	}
	repo.parent.RUnlock()
	if !ok {
		return nil, schedule.ErrEntityNotFound
	}

	repo.student.RLock()
	defer repo.student.RUnlock()

	children := make([]schedule.Student, 0, len(ids))
	for _, id := range ids {
		if st, ok := repo.student.table[id]; ok {
			children = append(children, st)
		}
	}
	return children, nil
}

func (repo *directoryRepository) ResolveCurrentAcademicYear(_ context.Context, now time.Time) (string, error) {
	repo.year.RLock()
	defer repo.year.RUnlock()

	var current schedule.AcademicYear
	for _, y := range repo.year.table {
		if !y.Covers(now) {
			continue
		}
		if current.ID == "" || y.StartsOn.After(current.StartsOn) ||
			(y.StartsOn.Equal(current.StartsOn) && y.ID < current.ID) {
			current = y
		}
	}
	if current.ID == "" {
		return "", schedule.ErrNoAcademicYear
	}
	return current.ID, nil
}
