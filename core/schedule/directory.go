package schedule

import (
	"context"
	"time"
)

// DirectorySource bounds every Directory lookup with a timeout.
type DirectorySource struct {
	dir     Directory
	timeout time.Duration
}

func NewDirectorySource(dir Directory, timeout time.Duration) *DirectorySource {
	return &DirectorySource{dir: dir, timeout: timeout}
}

func (s *DirectorySource) Student(ctx context.Context, id string) (Student, error) {
	res := make(chan Student, 1)
	err := bounded(ctx, s.timeout, "directory", func(ctx context.Context) error {
		st, err := s.dir.GetStudent(ctx, id)
		if err != nil {
			return err
		}
		res <- st
		return nil
	})
	if err != nil {
		return Student{}, err
	}
	return <-res, nil
}

func (s *DirectorySource) Parent(ctx context.Context, id string) (Parent, error) {
	res := make(chan Parent, 1)
	err := bounded(ctx, s.timeout, "directory", func(ctx context.Context) error {
		p, err := s.dir.GetParent(ctx, id)
		if err != nil {
			return err
		}
		res <- p
		return nil
	})
	if err != nil {
		return Parent{}, err
	}
	return <-res, nil
}

// Children returns the children of a parent, in the directory's order.
func (s *DirectorySource) Children(ctx context.Context, parentID string) ([]Student, error) {
	res := make(chan []Student, 1)
	err := bounded(ctx, s.timeout, "directory", func(ctx context.Context) error {
		children, err := s.dir.GetEntityChildren(ctx, parentID)
		if err != nil {
			return err
		}
		res <- children
		return nil
	})
	if err != nil {
		return nil, err
	}
	return <-res, nil
}

func (s *DirectorySource) CurrentAcademicYear(ctx context.Context, now time.Time) (string, error) {
	res := make(chan string, 1)
	err := bounded(ctx, s.timeout, "directory", func(ctx context.Context) error {
		id, err := s.dir.ResolveCurrentAcademicYear(ctx, now)
		if err != nil {
			return err
		}
		res <- id
		return nil
	})
	if err != nil {
		return "", err
	}
	return <-res, nil
}
