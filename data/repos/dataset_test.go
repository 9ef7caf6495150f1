package repos

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kova98/feedgrep.dataset/data"
	"github.com/kova98/feedgrep.dataset/tables"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *DatasetRepo {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, data.RunMigrations(db.DB, "sqlite3"))
	return NewDatasetRepo(db)
}

func newTestRun(t *testing.T, repo *DatasetRepo) uuid.UUID {
	t.Helper()
	run := data.DatasetRun{
		ID:        uuid.New(),
		Source:    "reddit",
		Keywords:  "Medical AI",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateRun(run))
	return run.ID
}

func commentRows(n int) tables.Table[tables.CommentRow] {
	t := tables.Table[tables.CommentRow]{Columns: tables.CommentColumns}
	for i := 0; i < n; i++ {
		created := 1700000000 + float64(i)
		t.Rows = append(t.Rows, tables.CommentRow{
			PostID:     "p1",
			Created:    tables.EpochToTime(created),
			CommentID:  "c" + uuid.NewString(),
			Body:       "body " + uuid.NewString(),
			CreatedUTC: created,
			AuthorID:   "alice",
			Score:      i,
			LinkID:     "t3_p1",
			ParentID:   "t3_p1",
			Keyword:    "Medical AI",
		})
	}
	return t
}

func TestCreateComments_StoresEveryRowInBatches(t *testing.T) {
	repo := newTestRepo(t)
	runID := newTestRun(t, repo)
	rows := commentRows(insertBatchSize + 20)

	require.NoError(t, repo.CreateComments(runID, rows))

	got, err := repo.GetComments(runID)
	require.NoError(t, err)
	require.Len(t, got, rows.Len())
	assert.Equal(t, rows.Rows[0].CommentID, got[0].CommentID)
	assert.Equal(t, rows.Rows[0].Created.Unix(), got[0].Created.Unix())
	assert.Equal(t, "Medical AI", got[0].Keyword)
	assert.Equal(t, runID, got[0].RunID)
}

func TestCreateComments_IgnoresRepeatedComment(t *testing.T) {
	repo := newTestRepo(t)
	runID := newTestRun(t, repo)
	rows := commentRows(2)

	require.NoError(t, repo.CreateComments(runID, rows))
	require.NoError(t, repo.CreateComments(runID, rows))

	got, err := repo.GetComments(runID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCreatePosts(t *testing.T) {
	repo := newTestRepo(t)
	runID := newTestRun(t, repo)
	posts := tables.Table[tables.PostRow]{
		Columns: tables.PostColumns,
		Rows: []tables.PostRow{
			{SubmissionID: "p1", Title: "one", AuthorID: "None", Created: tables.EpochToTime(1700000000)},
			{SubmissionID: "p2", Title: "two", AuthorID: "bob", Created: tables.EpochToTime(1700000001)},
		},
	}

	require.NoError(t, repo.CreatePosts(runID, posts))

	count, err := repo.CountPosts(runID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.CountPosts(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
