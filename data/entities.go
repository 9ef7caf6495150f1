package data

import (
	"time"

	"github.com/google/uuid"
)

type DatasetRun struct {
	ID        uuid.UUID `db:"id"`
	Source    string    `db:"source"`
	Keywords  string    `db:"keywords"`
	CreatedAt time.Time `db:"created_at"`
}

type DatasetPost struct {
	RunID        uuid.UUID `db:"run_id"`
	SubmissionID string    `db:"submission_id"`
	Title        string    `db:"title"`
	Selftext     string    `db:"selftext"`
	CreatedUTC   float64   `db:"created_utc"`
	AuthorID     string    `db:"author_id"`
	Score        int       `db:"score"`
	URL          string    `db:"url"`
	NumComments  int       `db:"num_comments"`
	Subreddit    string    `db:"subreddit"`
	Created      time.Time `db:"created"`
}

type DatasetComment struct {
	RunID      uuid.UUID `db:"run_id"`
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
