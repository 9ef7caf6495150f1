package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kova98/feedgrep.dataset/data"
	"github.com/kova98/feedgrep.dataset/data/repos"
	"github.com/kova98/feedgrep.dataset/tables"
	"github.com/pkg/errors"
)

func exportDataset(d *Dataset, commentsPath, postsPath string) error {
	if err := tables.WriteCSVFile(commentsPath, d.Comments); err != nil {
		return errors.Wrap(err, "export comments")
	}
	slog.Info("exported comments", "path", commentsPath, "rows", d.Comments.Len())

	if postsPath == "" {
		return nil
	}
	if err := tables.WriteCSVFile(postsPath, d.Posts); err != nil {
		return errors.Wrap(err, "export posts")
	}
	slog.Info("exported posts", "path", postsPath, "rows", d.Posts.Len())
	return nil
}

// persistDataset writes the run to the dataset store. The store is an export
// sink only; nothing reads it back to resume a run.
func persistDataset(driver, dsn string, runID uuid.UUID, source string, d *Dataset) error {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return errors.Wrap(err, "connect to dataset store")
	}
	defer db.Close()

	if err := data.RunMigrations(db.DB, driver); err != nil {
		return err
	}

	keywords := make([]string, 0, len(d.PerKeyword))
	for _, result := range d.PerKeyword {
		keywords = append(keywords, result.Job.Keyword)
	}

	repo := repos.NewDatasetRepo(db)
	run := data.DatasetRun{
		ID:        runID,
		Source:    source,
		Keywords:  strings.Join(keywords, ";"),
		CreatedAt: d.StartedAt.UTC(),
	}
	if err := repo.CreateRun(run); err != nil {
		return err
	}
	if err := repo.CreatePosts(runID, d.Posts); err != nil {
		return err
	}
	if err := repo.CreateComments(runID, d.Comments); err != nil {
		return err
	}

	slog.Info("persisted dataset", "driver", driver, "comments", d.Comments.Len(), "posts", d.Posts.Len())
	return nil
}

// runMerge re-merges previously exported comment CSVs.
func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	output := fs.String("o", "all_comments.csv", "merged output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("merge: no input files")
	}

	inputs := make([]tables.Table[tables.CommentRow], 0, fs.NArg())
	for _, path := range fs.Args() {
		t, err := tables.ReadCommentsCSVFile(path)
		if err != nil {
			return errors.Wrap(err, "merge: read input")
		}
		inputs = append(inputs, t)
	}

	merged, err := tables.MergeComments(inputs...)
	if err != nil {
		return errors.Wrap(err, "merge")
	}
	if err := tables.WriteCSVFile(*output, merged); err != nil {
		return errors.Wrap(err, "merge: write output")
	}

	slog.Info("merged comment files", "inputs", fs.NArg(), "rows", merged.Len(), "path", *output)
	return nil
}
