package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kova98/feedgrep.dataset/config"
	"github.com/kova98/feedgrep.dataset/enums"
	"github.com/kova98/feedgrep.dataset/matchers"
	"github.com/kova98/feedgrep.dataset/metrics"
	"github.com/kova98/feedgrep.dataset/notifiers"
	"github.com/kova98/feedgrep.dataset/sources"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "merge" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		if err := runMerge(os.Args[2:]); err != nil {
			slog.Error("merge failed", "error", err)
			os.Exit(1)
		}
		return
	}

	config.LoadConfig()
	cfg := config.Config

	runID := uuid.New()
	opts := slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts)).With("run_id", runID.String())
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	pool, err := sources.NewProxyPool(cfg.ProxyURLs, cfg.HTTPTimeout)
	if err != nil {
		slog.Error("failed to create http clients", "error", err)
		os.Exit(1)
	}

	searcher := newSearcher(cfg, pool)
	m := metrics.New(prometheus.NewRegistry())

	collectorOpts, err := collectorOptions(cfg)
	if err != nil {
		slog.Error("failed to configure filters", "error", err)
		os.Exit(1)
	}
	collector := sources.NewCollector(logger, searcher, m, collectorOpts...)
	runner := NewRunner(logger, collector, m, cfg.Parallelism)

	slog.Info("starting collection", "source", cfg.Source, "keywords", len(cfg.Keywords), "parallelism", cfg.Parallelism)
	dataset, err := runner.Run(ctx, cfg.Keywords)
	if err != nil {
		slog.Error("collection failed", "error", err)
		os.Exit(1)
	}

	if err := exportDataset(dataset, cfg.OutputPath, cfg.PostsOutputPath); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}

	if cfg.StoreDriver != "" {
		if err := persistDataset(cfg.StoreDriver, cfg.StoreURL, runID, cfg.Source, dataset); err != nil {
			slog.Error("failed to persist dataset", "error", err)
			os.Exit(1)
		}
	}

	if cfg.MetricsPath != "" {
		if err := m.WriteTextfile(cfg.MetricsPath); err != nil {
			slog.Error("failed to write metrics", "error", err)
		}
	}

	for host, stats := range pool.Stats() {
		slog.Debug("http client stats", "host", host, "successes", stats.Successes, "failures", stats.Failures)
	}

	if cfg.NotifyEmail != "" {
		mailer := notifiers.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword)
		summary := dataset.Summary(runID.String(), cfg.Source, cfg.OutputPath, cfg.PostsOutputPath != "")
		mail, err := mailer.RunSummaryEmail(cfg.NotifyEmail, summary)
		if err != nil {
			slog.Error("failed to build run summary", "error", err)
		} else if err := mailer.Send(mail); err != nil {
			slog.Error("failed to send run summary", "error", err)
		}
	}

	totals, err := m.Totals()
	if err != nil {
		slog.Error("failed to gather metrics", "error", err)
	}
	slog.Info("run finished",
		"comments", dataset.Comments.Len(),
		"search_requests", totals["feedgrep_search_requests_total"],
		"comment_requests", totals["feedgrep_comment_requests_total"],
		"duplicates_skipped", totals["feedgrep_duplicates_skipped_total"],
		"duration_ms", dataset.Duration.Milliseconds())
}

func newSearcher(cfg config.AppConfig, pool *sources.ProxyPool) sources.Searcher {
	if enums.Source(cfg.Source) == enums.SourceArcticShift {
		return sources.NewArcticShiftSearcher(pool, sources.ArcticShiftOptions{
			UserAgent: cfg.UserAgent,
			Subreddit: cfg.Subreddit,
		})
	}
	return sources.NewRedditSearcher(pool, sources.RedditOptions{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		UserAgent:    cfg.UserAgent,
		Subreddit:    cfg.Subreddit,
	})
}

func collectorOptions(cfg config.AppConfig) ([]sources.CollectorOption, error) {
	var opts []sources.CollectorOption

	filters := matchers.RedditFilters{
		Subreddits:        cfg.Subreddits,
		ExcludeSubreddits: cfg.ExcludeSubreddits,
	}
	if f := sources.NewSubmissionFilter(enums.ParseMatchMode(cfg.MatchMode), filters); f != nil {
		opts = append(opts, sources.WithSubmissionFilter(f))
	}

	if len(cfg.CommentLanguages) > 0 {
		languages, err := matchers.NewLanguageFilter(cfg.CommentLanguages)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sources.WithCommentFilter(sources.NewLanguageCommentFilter(languages)))
	}

	return opts, nil
}
