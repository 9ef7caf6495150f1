package tables

import (
	"errors"
	"fmt"
)

var (
	ErrNoComments     = errors.New("no comments collected")
	ErrSchemaMismatch = errors.New("table schemas differ")
	ErrNothingToMerge = errors.New("no tables to merge")
)

// EmptyResultError is returned when a builder that needs rows received none.
type EmptyResultError struct {
	Keyword string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no comments found for keyword %q", e.Keyword)
}

func (e *EmptyResultError) Is(target error) bool {
	return target == ErrNoComments
}

type SchemaMismatchError struct {
	// Index of the offending input table.
	Index int
	Want  []string
	Got   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("table %d: columns %v do not match %v", e.Index, e.Got, e.Want)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
