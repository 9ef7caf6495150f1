package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/kova98/feedgrep.dataset/config"
	"github.com/kova98/feedgrep.dataset/metrics"
	"github.com/kova98/feedgrep.dataset/models"
	"github.com/kova98/feedgrep.dataset/sources"
	"github.com/kova98/feedgrep.dataset/tables"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type KeywordResult struct {
	Job         config.KeywordJob
	Submissions []models.Submission
	Comments    tables.Table[tables.CommentRow]
}

type Dataset struct {
	StartedAt  time.Time
	Duration   time.Duration
	PerKeyword []KeywordResult
	Comments   tables.Table[tables.CommentRow]
	Posts      tables.Table[tables.PostRow]
}

// Runner collects every keyword job and merges the results. Jobs may run
// concurrently but results are always merged in job order.
type Runner struct {
	logger      *slog.Logger
	collector   *sources.Collector
	metrics     *metrics.Metrics
	parallelism int
}

func NewRunner(logger *slog.Logger, collector *sources.Collector, m *metrics.Metrics, parallelism int) *Runner {
	return &Runner{
		logger:      logger,
		collector:   collector,
		metrics:     m,
		parallelism: max(parallelism, 1),
	}
}

func (r *Runner) Run(ctx context.Context, jobs []config.KeywordJob) (*Dataset, error) {
	start := time.Now()
	results := make([]KeywordResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			result, err := r.runKeyword(gctx, job)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	commentTables := make([]tables.Table[tables.CommentRow], 0, len(results))
	var submissions []models.Submission
	for _, result := range results {
		commentTables = append(commentTables, result.Comments)
		submissions = append(submissions, result.Submissions...)
	}

	merged, err := tables.MergeComments(commentTables...)
	if err != nil {
		return nil, errors.Wrap(err, "merge comment tables")
	}
	posts := tables.BuildPostsTable(submissions)

	r.metrics.DatasetRows("comments", merged.Len())
	r.metrics.DatasetRows("posts", posts.Len())
	r.logger.Info("dataset built", "keywords", len(jobs), "comments", merged.Len(), "posts", posts.Len())

	return &Dataset{
		StartedAt:  start,
		Duration:   time.Since(start),
		PerKeyword: results,
		Comments:   merged,
		Posts:      posts,
	}, nil
}

func (r *Runner) runKeyword(ctx context.Context, job config.KeywordJob) (KeywordResult, error) {
	submissions, err := r.collector.Collect(ctx, job.Keyword, sources.CollectOptions{
		PageSize:    job.PageSize,
		PageCount:   job.PageCount,
		MaxComments: job.MaxComments,
	})
	if err != nil {
		return KeywordResult{}, errors.Wrapf(err, "collect %q", job.Keyword)
	}

	comments, err := tables.BuildCommentsTable(submissions, job.Keyword)
	if err != nil {
		return KeywordResult{}, errors.Wrapf(err, "build comments table for %q", job.Keyword)
	}

	return KeywordResult{Job: job, Submissions: submissions, Comments: comments}, nil
}

func (d *Dataset) Summary(runID, source, outputPath string, includePosts bool) models.RunSummary {
	summary := models.RunSummary{
		RunID:      runID,
		Source:     source,
		StartedAt:  d.StartedAt,
		Duration:   d.Duration,
		MergedRows: d.Comments.Len(),
		OutputPath: outputPath,
	}
	if includePosts {
		summary.PostRows = d.Posts.Len()
	}
	for _, result := range d.PerKeyword {
		comments := 0
		for _, s := range result.Submissions {
			comments += len(s.Comments)
		}
		summary.Keywords = append(summary.Keywords, models.KeywordSummary{
			Keyword:     result.Job.Keyword,
			Submissions: len(result.Submissions),
			Comments:    comments,
			Rows:        result.Comments.Len(),
		})
	}
	return summary
}
