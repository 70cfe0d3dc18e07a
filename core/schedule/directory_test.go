package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type directoryMock struct {
	students map[string]Student
	year     string
	err      error
	stall    bool
}

func (d *directoryMock) lookup(ctx context.Context) error {
	if d.stall {
		<-ctx.Done()
		return ctx.Err()
	}
	return d.err
}

func (d *directoryMock) GetStudent(ctx context.Context, id string) (Student, error) {
	if err := d.lookup(ctx); err != nil {
		return Student{}, err
	}
	st, ok := d.students[id]
	if !ok {
		return Student{}, ErrEntityNotFound
	}
	return st, nil
}

func (d *directoryMock) GetParent(ctx context.Context, id string) (Parent, error) {
	if err := d.lookup(ctx); err != nil {
		return Parent{}, err
	}
	return Parent{ID: id, DisplayName: "Mama"}, nil
}

func (d *directoryMock) GetEntityChildren(ctx context.Context, _ string) ([]Student, error) {
	if err := d.lookup(ctx); err != nil {
		return nil, err
	}
	children := make([]Student, 0, len(d.students))
	for _, st := range d.students {
		children = append(children, st)
	}
	return children, nil
}

func (d *directoryMock) ResolveCurrentAcademicYear(ctx context.Context, _ time.Time) (string, error) {
	if err := d.lookup(ctx); err != nil {
		return "", err
	}
	if d.year == "" {
		return "", ErrNoAcademicYear
	}
	return d.year, nil
}

func TestDirectorySource(t *testing.T) {
	dir := &directoryMock{students: map[string]Student{"st": {ID: "st", DisplayName: "Amani", ClassID: "class"}}, year: "2021"}
	src := NewDirectorySource(dir, time.Second)
	ctx := context.Background()

	st, err := src.Student(ctx, "st")
	if err != nil {
		t.Fatalf("Student() failed: %v", err)
	}
	assert.Equal(t, "Amani", st.DisplayName)

	p, err := src.Parent(ctx, "p")
	if err != nil {
		t.Fatalf("Parent() failed: %v", err)
	}
	assert.Equal(t, "p", p.ID)

	children, err := src.Children(ctx, "p")
	if err != nil {
		t.Fatalf("Children() failed: %v", err)
	}
	assert.Len(t, children, 1)

	year, err := src.CurrentAcademicYear(ctx, now)
	if err != nil {
		t.Fatalf("CurrentAcademicYear() failed: %v", err)
	}
	assert.Equal(t, "2021", year)
}

func TestDirectorySource_failures(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		dir     *directoryMock
		ctx     context.Context
		call    func(src *DirectorySource, ctx context.Context) error
		wantErr error
	}{
		{
			name: "unknown student",
			dir:  &directoryMock{},
			ctx:  context.Background(),
			call: func(src *DirectorySource, ctx context.Context) error {
				_, err := src.Student(ctx, "nobody")
				return err
			},
			wantErr: ErrEntityNotFound,
		},
		{
			name: "no academic year",
			dir:  &directoryMock{},
			ctx:  context.Background(),
			call: func(src *DirectorySource, ctx context.Context) error {
				_, err := src.CurrentAcademicYear(ctx, now)
				return err
			},
			wantErr: ErrNoAcademicYear,
		},
		{
			name: "store down",
			dir:  &directoryMock{err: errors.New("connection refused")},
			ctx:  context.Background(),
			call: func(src *DirectorySource, ctx context.Context) error {
				_, err := src.Children(ctx, "p")
				return err
			},
			wantErr: ErrSourceUnavailable,
		},
		{
			name: "timeout",
			dir:  &directoryMock{stall: true},
			ctx:  context.Background(),
			call: func(src *DirectorySource, ctx context.Context) error {
				_, err := src.Parent(ctx, "p")
				return err
			},
			wantErr: ErrSourceUnavailable,
		},
		{
			name: "caller cancelled",
			dir:  &directoryMock{stall: true},
			ctx:  cancelled,
			call: func(src *DirectorySource, ctx context.Context) error {
				_, err := src.Student(ctx, "st")
				return err
			},
			wantErr: context.Canceled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(NewDirectorySource(tt.dir, 20*time.Millisecond), tt.ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
