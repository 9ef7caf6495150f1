package sources

import (
	"fmt"
	"strings"
)

type Stage string

const (
	StageSearch   Stage = "search"
	StageComments Stage = "comments"
)

// RetrievalError aborts a collection run. No partial results are returned
// alongside it.
type RetrievalError struct {
	Keyword      string
	Stage        Stage
	Page         int
	SubmissionID string
	Err          error
}

func (e *RetrievalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "retrieve %s for %q (page %d", e.Stage, e.Keyword, e.Page)
	if e.SubmissionID != "" {
		fmt.Fprintf(&b, ", submission %s", e.SubmissionID)
	}
	fmt.Fprintf(&b, "): %v", truncateError(e.Err))
	return b.String()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func truncateError(err error) error {
	msg := err.Error()
	if len(msg) > 300 {
		return fmt.Errorf("%s...", msg[:300])
	}
	return err
}
