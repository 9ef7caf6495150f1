package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kova98/feedgrep.dataset/enums"
	"github.com/kova98/feedgrep.dataset/metrics"
	"github.com/kova98/feedgrep.dataset/models"
)

// Searcher is the search collaborator the collector pages through.
type Searcher interface {
	Source() enums.Source
	// Search returns up to q.Limit submissions, without comments.
	Search(ctx context.Context, q SearchQuery) ([]models.Submission, error)
	// Comments returns the comment tree of a submission flattened in a
	// deterministic order.
	Comments(ctx context.Context, submission models.Submission) ([]models.Comment, error)
}

type SearchQuery struct {
	Keyword string
	Limit   int
	After   *Cursor
}

// Cursor points at the last submission processed by the previous page.
type Cursor struct {
	ID         string
	CreatedUTC float64
}

type CollectOptions struct {
	PageSize    int
	PageCount   int
	MaxComments int
}

func (o CollectOptions) Validate() error {
	if o.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", o.PageSize)
	}
	if o.PageCount < 1 {
		return fmt.Errorf("page count must be positive, got %d", o.PageCount)
	}
	if o.MaxComments < 0 {
		return fmt.Errorf("max comments must not be negative, got %d", o.MaxComments)
	}
	return nil
}

type Collector struct {
	logger           *slog.Logger
	searcher         Searcher
	metrics          *metrics.Metrics
	submissionFilter SubmissionFilter
	commentFilter    CommentFilter
}

type CollectorOption func(*Collector)

func WithSubmissionFilter(f SubmissionFilter) CollectorOption {
	return func(c *Collector) { c.submissionFilter = f }
}

func WithCommentFilter(f CommentFilter) CollectorOption {
	return func(c *Collector) { c.commentFilter = f }
}

func NewCollector(logger *slog.Logger, searcher Searcher, m *metrics.Metrics, opts ...CollectorOption) *Collector {
	c := &Collector{
		logger:   logger,
		searcher: searcher,
		metrics:  m,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect issues exactly opts.PageCount search requests for keyword and
// returns the unique submissions found, each with at most opts.MaxComments
// unique comments. A short page does not stop the loop.
func (c *Collector) Collect(ctx context.Context, keyword string, opts CollectOptions) ([]models.Submission, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	source := string(c.searcher.Source())
	submissions := make([]models.Submission, 0, 64)
	seenSubmissions := make(map[string]bool)
	commentsTotal := 0
	var cursor *Cursor

	for page := 0; page < opts.PageCount; page++ {
		start := time.Now()
		results, err := c.searcher.Search(ctx, SearchQuery{Keyword: keyword, Limit: opts.PageSize, After: cursor})
		c.metrics.SearchRequest(source)
		if err != nil {
			return nil, &RetrievalError{Keyword: keyword, Stage: StageSearch, Page: page, Err: err}
		}
		requestMs := time.Since(start).Milliseconds()

		retained := 0
		for _, submission := range results {
			if seenSubmissions[submission.ID] {
				c.metrics.DuplicateSkipped("submission")
				continue
			}
			seenSubmissions[submission.ID] = true
			cursor = &Cursor{ID: submission.ID, CreatedUTC: submission.CreatedUTC}

			if c.submissionFilter != nil {
				ok, err := c.submissionFilter(keyword, submission)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}

			tree, err := c.searcher.Comments(ctx, submission)
			c.metrics.CommentRequest(source)
			if err != nil {
				return nil, &RetrievalError{Keyword: keyword, Stage: StageComments, Page: page, SubmissionID: submission.ID, Err: err}
			}

			submission.Comments = c.retainComments(tree, opts.MaxComments)
			commentsTotal += len(submission.Comments)
			submissions = append(submissions, submission)
			retained++
		}

		c.logger.Debug("collected page",
			"keyword", keyword,
			"page", page,
			"results", len(results),
			"retained", retained,
			"request_ms", requestMs)
	}

	c.metrics.Collected(keyword, len(submissions), commentsTotal)
	c.logger.Info("collected keyword",
		"keyword", keyword,
		"source", source,
		"submissions", len(submissions),
		"comments", commentsTotal)

	return submissions, nil
}

// retainComments keeps comments in tree order until limit is reached. The
// seen-set is scoped to a single submission.
func (c *Collector) retainComments(tree []models.Comment, limit int) []models.Comment {
	retained := make([]models.Comment, 0, min(len(tree), limit))
	seen := make(map[string]bool, len(tree))
	for _, comment := range tree {
		if len(retained) >= limit {
			break
		}
		if seen[comment.ID] {
			c.metrics.DuplicateSkipped("comment")
			continue
		}
		seen[comment.ID] = true
		if c.commentFilter != nil && !c.commentFilter(comment) {
			continue
		}
		retained = append(retained, comment)
	}
	return retained
}
