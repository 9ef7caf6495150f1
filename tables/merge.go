package tables

import "slices"

// Concat appends the rows of every table in argument order. All tables must
// share the first table's columns.
func Concat[R any](tables ...Table[R]) (Table[R], error) {
	if len(tables) == 0 {
		return Table[R]{}, ErrNothingToMerge
	}

	columns := tables[0].Columns
	total := 0
	for i, t := range tables {
		if !slices.Equal(t.Columns, columns) {
			return Table[R]{}, &SchemaMismatchError{Index: i, Want: columns, Got: t.Columns}
		}
		total += len(t.Rows)
	}

	merged := Table[R]{Columns: columns, Rows: make([]R, 0, total)}
	for _, t := range tables {
		merged.Rows = append(merged.Rows, t.Rows...)
	}
	return merged, nil
}

// MergeComments concatenates comment tables and deduplicates the result by
// body; the first occurrence in concatenation order wins.
func MergeComments(tables ...Table[CommentRow]) (Table[CommentRow], error) {
	merged, err := Concat(tables...)
	if err != nil {
		return Table[CommentRow]{}, err
	}
	return merged.Dedup(commentBody), nil
}
