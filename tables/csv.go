package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"
)

type Record interface {
	Record() []string
}

func WriteCSV[R Record](w io.Writer, t Table[R]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the whole table at once, replacing any existing file.
func WriteCSVFile[R Record](path string, t Table[R]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadCommentsCSV loads a comments table previously written by WriteCSV.
func ReadCommentsCSV(r io.Reader) (Table[CommentRow], error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Table[CommentRow]{}, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(header, CommentColumns) {
		return Table[CommentRow]{}, &SchemaMismatchError{Want: CommentColumns, Got: header}
	}

	t := Table[CommentRow]{Columns: CommentColumns}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table[CommentRow]{}, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseCommentRecord(record)
		if err != nil {
			return Table[CommentRow]{}, fmt.Errorf("line %d: %w", line, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func ReadCommentsCSVFile(path string) (Table[CommentRow], error) {
	f, err := os.Open(path)
	if err != nil {
		return Table[CommentRow]{}, err
	}
	defer f.Close()

	t, err := ReadCommentsCSV(f)
	if err != nil {
		return Table[CommentRow]{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parseCommentRecord(record []string) (CommentRow, error) {
	if len(record) != len(CommentColumns) {
		return CommentRow{}, fmt.Errorf("expected %d fields, got %d", len(CommentColumns), len(record))
	}
	created, err := time.Parse(TimestampLayout, record[1])
	if err != nil {
		return CommentRow{}, fmt.Errorf("parse Created: %w", err)
	}
	createdUTC, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return CommentRow{}, fmt.Errorf("parse created_utc: %w", err)
	}
	score, err := strconv.Atoi(record[6])
	if err != nil {
		return CommentRow{}, fmt.Errorf("parse score: %w", err)
	}
	return CommentRow{
		PostID:     record[0],
		Created:    created,
		CommentID:  record[2],
		Body:       record[3],
		CreatedUTC: createdUTC,
		AuthorID:   record[5],
		Score:      score,
		LinkID:     record[7],
		ParentID:   record[8],
		Keyword:    record[9],
	}, nil
}
