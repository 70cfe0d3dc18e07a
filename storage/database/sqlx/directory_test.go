package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-notify/core/schedule"
)

func TestCurrentYearQuery(t *testing.T) {
	kinshasa := time.FixedZone("WAT", 3600)
	query, args, err := currentYearQuery(time.Date(2021, time.March, 15, 23, 30, 0, 0, time.UTC).In(kinshasa)).ToSql()
	if err != nil {
		t.Fatalf("ToSql() failed: %v", err)
	}
	assert.Equal(t, "SELECT id FROM academic_year WHERE starts_on <= $1 AND ends_on >= $2 ORDER BY starts_on DESC, id LIMIT 1", query)
	assert.Equal(t, []interface{}{"2021-03-16", "2021-03-16"}, args)
}

func TestDirectoryRepository(t *testing.T) {
	student, parent, year := newID(), newID(), newID()

	t.Run("student", func(t *testing.T) {
		db := &dbMock{results: []interface{}{studentRow{ID: student, ClassID: newID(), DisplayName: "Amani"}}}
		st, err := NewDirectoryRepository(db).GetStudent(context.Background(), student)
		if err != nil {
			t.Fatalf("GetStudent() failed: %v", err)
		}
		assert.Equal(t, "Amani", st.DisplayName)
		assert.Equal(t, "", st.AcademicYearID)
		assert.Equal(t, []interface{}{student}, db.args[0])
	})

	t.Run("children", func(t *testing.T) {
		db := &dbMock{results: []interface{}{
			parentRow{ID: parent, DisplayName: "Mama", Email: null.StringFrom("mama@test.cd")},
			[]studentRow{
				{ID: newID(), DisplayName: "A", AcademicYearID: null.StringFrom(year)},
				{ID: newID(), DisplayName: "B"},
			},
		}}
		children, err := NewDirectoryRepository(db).GetEntityChildren(context.Background(), parent)
		if err != nil {
			t.Fatalf("GetEntityChildren() failed: %v", err)
		}
		assert.Len(t, children, 2)
		assert.Equal(t, year, children[0].AcademicYearID)
		assert.Contains(t, db.queries[1], "ORDER BY s.display_name, s.id")
	})

	t.Run("parent without children", func(t *testing.T) {
		db := &dbMock{results: []interface{}{parentRow{ID: parent, DisplayName: "Mama"}}}
		children, err := NewDirectoryRepository(db).GetEntityChildren(context.Background(), parent)
		if err != nil {
			t.Fatalf("GetEntityChildren() failed: %v", err)
		}
		assert.NotNil(t, children)
		assert.Empty(t, children)
	})

	t.Run("current year", func(t *testing.T) {
		db := &dbMock{results: []interface{}{year}}
		id, err := NewDirectoryRepository(db).ResolveCurrentAcademicYear(context.Background(), now)
		if err != nil {
			t.Fatalf("ResolveCurrentAcademicYear() failed: %v", err)
		}
		assert.Equal(t, year, id)
	})
}

func TestDirectoryRepository_errors(t *testing.T) {
	tests := []struct {
		name    string
		db      *dbMock
		call    func(repo schedule.Directory) error
		wantErr error
	}{
		{
			name: "invalid student id",
			db:   &dbMock{},
			call: func(repo schedule.Directory) error {
				_, err := repo.GetStudent(context.Background(), "nobody")
				return err
			},
			wantErr: schedule.ErrEntityNotFound,
		},
		{
			name: "unknown student",
			db:   &dbMock{},
			call: func(repo schedule.Directory) error {
				_, err := repo.GetStudent(context.Background(), newID())
				return err
			},
			wantErr: schedule.ErrEntityNotFound,
		},
		{
			name: "children of unknown parent",
			db:   &dbMock{},
			call: func(repo schedule.Directory) error {
				_, err := repo.GetEntityChildren(context.Background(), newID())
				return err
			},
			wantErr: schedule.ErrEntityNotFound,
		},
		{
			name: "no current year",
			db:   &dbMock{},
			call: func(repo schedule.Directory) error {
				_, err := repo.ResolveCurrentAcademicYear(context.Background(), now)
				return err
			},
			wantErr: schedule.ErrNoAcademicYear,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(NewDirectoryRepository(tt.db))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	_, err := NewDirectoryRepository(&dbMock{err: errors.New("connection refused")}).GetParent(context.Background(), newID())
	assert.EqualError(t, err, "selecting parent: connection refused")
	assert.False(t, errors.Is(err, schedule.ErrEntityNotFound))
}
