package tables

import (
	"strconv"
	"time"

	"github.com/kova98/feedgrep.dataset/models"
)

var CommentColumns = []string{
	"post_id", "Created", "comment_id", "body", "created_utc",
	"author_id", "score", "link_id", "parent_id", "Keyword",
}

type CommentRow struct {
	PostID     string    `db:"post_id"`
	Created    time.Time `db:"created"`
	CommentID  string    `db:"comment_id"`
	Body       string    `db:"body"`
	CreatedUTC float64   `db:"created_utc"`
	AuthorID   string    `db:"author_id"`
	Score      int       `db:"score"`
	LinkID     string    `db:"link_id"`
	ParentID   string    `db:"parent_id"`
	Keyword    string    `db:"keyword"`
}

func (r CommentRow) Record() []string {
	return []string{
		r.PostID,
		r.Created.Format(TimestampLayout),
		r.CommentID,
		r.Body,
		formatEpoch(r.CreatedUTC),
		r.AuthorID,
		strconv.Itoa(r.Score),
		r.LinkID,
		r.ParentID,
		r.Keyword,
	}
}

func commentBody(r CommentRow) string {
	return r.Body
}

// BuildCommentsTable flattens the comments of all submissions into one table
// keyed back to their submission, deduplicated by body and labelled with
// keyword.
func BuildCommentsTable(submissions []models.Submission, keyword string) (Table[CommentRow], error) {
	t := Table[CommentRow]{Columns: CommentColumns}
	for _, s := range submissions {
		for _, c := range s.Comments {
			t.Rows = append(t.Rows, CommentRow{
				PostID:     s.ID,
				Created:    EpochToTime(c.CreatedUTC),
				CommentID:  c.ID,
				Body:       c.Body,
				CreatedUTC: c.CreatedUTC,
				AuthorID:   c.AuthorID,
				Score:      c.Score,
				LinkID:     c.LinkID,
				ParentID:   c.ParentID,
			})
		}
	}
	if len(t.Rows) == 0 {
		return Table[CommentRow]{}, &EmptyResultError{Keyword: keyword}
	}

	t = t.Dedup(commentBody)
	for i := range t.Rows {
		t.Rows[i].Keyword = keyword
	}
	return t, nil
}
