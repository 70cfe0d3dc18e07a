package schedule

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEntityNotFound    = errors.New("entity not found")
	ErrNoAcademicYear    = errors.New("no current academic year")
	ErrSourceUnavailable = errors.New("source unavailable")
)

// SourceError reports a schedule or content query that could not complete.
// It matches ErrSourceUnavailable with errors.Is.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }
