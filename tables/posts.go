package tables

import (
	"strconv"
	"time"

	"github.com/kova98/feedgrep.dataset/models"
)

var PostColumns = []string{
	"submission_id", "title", "selftext", "created_utc", "author_id",
	"score", "url", "num_comments", "subreddit", "Created",
}

type PostRow struct {
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

func (r PostRow) Record() []string {
	return []string{
		r.SubmissionID,
		r.Title,
		r.Selftext,
		formatEpoch(r.CreatedUTC),
		r.AuthorID,
		strconv.Itoa(r.Score),
		r.URL,
		strconv.Itoa(r.NumComments),
		r.Subreddit,
		r.Created.Format(TimestampLayout),
	}
}

// BuildPostsTable projects submissions without their comments, deduplicated
// by title.
func BuildPostsTable(submissions []models.Submission) Table[PostRow] {
	t := Table[PostRow]{Columns: PostColumns, Rows: make([]PostRow, 0, len(submissions))}
	for _, s := range submissions {
		t.Rows = append(t.Rows, PostRow{
			SubmissionID: s.ID,
			Title:        s.Title,
			Selftext:     s.Selftext,
			CreatedUTC:   s.CreatedUTC,
			AuthorID:     s.AuthorID,
			Score:        s.Score,
			URL:          s.URL,
			NumComments:  s.NumComments,
			Subreddit:    s.Subreddit,
			Created:      EpochToTime(s.CreatedUTC),
		})
	}
	return t.Dedup(func(r PostRow) string { return r.Title })
}

func formatEpoch(epoch float64) string {
	return strconv.FormatFloat(epoch, 'f', -1, 64)
}
