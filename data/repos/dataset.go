package repos

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kova98/feedgrep.dataset/data"
	"github.com/kova98/feedgrep.dataset/tables"
)

// insertBatchSize keeps multi-row inserts below SQLite's bind variable limit.
const insertBatchSize = 500

type DatasetRepo struct {
	db *sqlx.DB
}

func NewDatasetRepo(db *sqlx.DB) *DatasetRepo {
	return &DatasetRepo{db}
}

func (r *DatasetRepo) CreateRun(run data.DatasetRun) error {
	query := `
		INSERT INTO dataset_runs (id, source, keywords, created_at)
		VALUES (:id, :source, :keywords, :created_at)`

	if _, err := r.db.NamedExec(query, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *DatasetRepo) CreatePosts(runID uuid.UUID, posts tables.Table[tables.PostRow]) error {
	entities := make([]data.DatasetPost, 0, posts.Len())
	for _, p := range posts.Rows {
		entities = append(entities, data.DatasetPost{
			RunID:        runID,
			SubmissionID: p.SubmissionID,
			Title:        p.Title,
			Selftext:     p.Selftext,
			CreatedUTC:   p.CreatedUTC,
			AuthorID:     p.AuthorID,
			Score:        p.Score,
			URL:          p.URL,
			NumComments:  p.NumComments,
			Subreddit:    p.Subreddit,
			Created:      p.Created,
		})
	}

	query := `
		INSERT INTO dataset_posts (run_id, submission_id, title, selftext, created_utc, author_id, score, url, num_comments, subreddit, created)
		VALUES (:run_id, :submission_id, :title, :selftext, :created_utc, :author_id, :score, :url, :num_comments, :subreddit, :created)
		ON CONFLICT DO NOTHING`

	for start := 0; start < len(entities); start += insertBatchSize {
		end := min(start+insertBatchSize, len(entities))
		if _, err := r.db.NamedExec(query, entities[start:end]); err != nil {
			return fmt.Errorf("create posts: %w", err)
		}
	}
	return nil
}

func (r *DatasetRepo) CreateComments(runID uuid.UUID, comments tables.Table[tables.CommentRow]) error {
	entities := make([]data.DatasetComment, 0, comments.Len())
	for _, c := range comments.Rows {
		entities = append(entities, data.DatasetComment{
			RunID:      runID,
			PostID:     c.PostID,
			Created:    c.Created,
			CommentID:  c.CommentID,
			Body:       c.Body,
			CreatedUTC: c.CreatedUTC,
			AuthorID:   c.AuthorID,
			Score:      c.Score,
			LinkID:     c.LinkID,
			ParentID:   c.ParentID,
			Keyword:    c.Keyword,
		})
	}

	query := `
		INSERT INTO dataset_comments (run_id, comment_id, post_id, created, body, created_utc, author_id, score, link_id, parent_id, keyword)
		VALUES (:run_id, :comment_id, :post_id, :created, :body, :created_utc, :author_id, :score, :link_id, :parent_id, :keyword)
		ON CONFLICT DO NOTHING`

	for start := 0; start < len(entities); start += insertBatchSize {
		end := min(start+insertBatchSize, len(entities))
		if _, err := r.db.NamedExec(query, entities[start:end]); err != nil {
			return fmt.Errorf("create comments: %w", err)
		}
	}
	return nil
}

func (r *DatasetRepo) GetComments(runID uuid.UUID) ([]data.DatasetComment, error) {
	var comments []data.DatasetComment
	query := r.db.Rebind(`
		SELECT run_id, comment_id, post_id, created, body, created_utc, author_id, score, link_id, parent_id, keyword
		FROM dataset_comments
		WHERE run_id = ?
		ORDER BY created_utc ASC, comment_id ASC`)

	if err := r.db.Select(&comments, query, runID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	return comments, nil
}

func (r *DatasetRepo) CountPosts(runID uuid.UUID) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM dataset_posts WHERE run_id = ?")
	if err := r.db.Get(&count, query, runID); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}
