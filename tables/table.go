package tables

import (
	"math"
	"time"
)

// TimestampLayout is how the derived "Created" column is rendered.
const TimestampLayout = "2006-01-02 15:04:05"

// Table is an ordered set of rows sharing one column schema.
type Table[R any] struct {
	Columns []string
	Rows    []R
}

func (t Table[R]) Len() int {
	return len(t.Rows)
}

// Dedup keeps the first row for every key, in input order.
func (t Table[R]) Dedup(key func(R) string) Table[R] {
	seen := make(map[string]bool, len(t.Rows))
	rows := make([]R, 0, len(t.Rows))
	for _, row := range t.Rows {
		k := key(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, row)
	}
	return Table[R]{Columns: t.Columns, Rows: rows}
}

// EpochToTime converts epoch seconds to a UTC time. No calendar or timezone
// adjustment is applied.
func EpochToTime(epoch float64) time.Time {
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
