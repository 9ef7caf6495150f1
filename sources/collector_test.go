package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/kova98/feedgrep.dataset/enums"
	"github.com/kova98/feedgrep.dataset/matchers"
	"github.com/kova98/feedgrep.dataset/metrics"
	"github.com/kova98/feedgrep.dataset/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fake search collaborator ---

type fakeSearcher struct {
	pages      [][]models.Submission
	comments   map[string][]models.Comment
	queries    []SearchQuery
	fetched    []string
	searchErr  error
	commentErr error
}

func (f *fakeSearcher) Source() enums.Source {
	return enums.SourceReddit
}

func (f *fakeSearcher) Search(_ context.Context, q SearchQuery) ([]models.Submission, error) {
	if q.After != nil {
		cursor := *q.After
		q.After = &cursor
	}
	f.queries = append(f.queries, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	page := len(f.queries) - 1
	if page >= len(f.pages) {
		return nil, nil
	}
	return f.pages[page], nil
}

func (f *fakeSearcher) Comments(_ context.Context, s models.Submission) ([]models.Comment, error) {
	f.fetched = append(f.fetched, s.ID)
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	return f.comments[s.ID], nil
}

func newTestCollector(s Searcher, opts ...CollectorOption) *Collector {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCollector(logger, s, metrics.New(prometheus.NewRegistry()), opts...)
}

func submission(id string, created float64) models.Submission {
	return models.Submission{ID: id, Title: "title " + id, CreatedUTC: created, AuthorID: "author"}
}

func commentTree(postID string, n int) []models.Comment {
	comments := make([]models.Comment, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, models.Comment{
			ID:       fmt.Sprintf("%s_c%d", postID, i),
			Body:     fmt.Sprintf("comment %d on %s", i, postID),
			LinkID:   "t3_" + postID,
			ParentID: "t3_" + postID,
		})
	}
	return comments
}

var defaultOptions = CollectOptions{PageSize: 1000, PageCount: 5, MaxComments: 70}

func TestCollect_IssuesEveryPageEvenWhenExhausted(t *testing.T) {
	searcher := &fakeSearcher{
		pages: [][]models.Submission{{submission("a", 1)}},
	}

	got, err := newTestCollector(searcher).Collect(context.Background(), "medical ai", defaultOptions)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, searcher.queries, 5, "short pages must not stop the loop")
	for _, q := range searcher.queries {
		assert.Equal(t, "medical ai", q.Keyword)
		assert.Equal(t, 1000, q.Limit)
	}
}

func TestCollect_SkipsSubmissionsSeenOnEarlierPages(t *testing.T) {
	searcher := &fakeSearcher{
		pages: [][]models.Submission{
			{submission("a", 1), submission("b", 2)},
			{submission("b", 2), submission("c", 3), submission("a", 1)},
		},
	}

	got, err := newTestCollector(searcher).Collect(context.Background(), "kw", CollectOptions{PageSize: 10, PageCount: 2, MaxComments: 5})

	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, []string{"a", "b", "c"}, searcher.fetched, "comments are fetched once per unique submission")
}

func TestCollect_AdvancesCursorToLastProcessedSubmission(t *testing.T) {
	searcher := &fakeSearcher{
		pages: [][]models.Submission{
			{submission("a", 10), submission("b", 20)},
			{submission("b", 20)},
			{submission("c", 30)},
		},
	}

	_, err := newTestCollector(searcher).Collect(context.Background(), "kw", CollectOptions{PageSize: 2, PageCount: 4, MaxComments: 1})

	require.NoError(t, err)
	require.Len(t, searcher.queries, 4)
	assert.Nil(t, searcher.queries[0].After)
	assert.Equal(t, &Cursor{ID: "b", CreatedUTC: 20}, searcher.queries[1].After)
	assert.Equal(t, &Cursor{ID: "b", CreatedUTC: 20}, searcher.queries[2].After, "a page of duplicates keeps the cursor")
	assert.Equal(t, &Cursor{ID: "c", CreatedUTC: 30}, searcher.queries[3].After)
}

func TestCollect_CapsCommentsInEncounterOrder(t *testing.T) {
	tree := commentTree("a", 80)
	searcher := &fakeSearcher{
		pages:    [][]models.Submission{{submission("a", 1)}},
		comments: map[string][]models.Comment{"a": tree},
	}

	got, err := newTestCollector(searcher).Collect(context.Background(), "kw", defaultOptions)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Comments, 70)
	assert.Equal(t, tree[:70], got[0].Comments)
}

func TestCollect_DeduplicatesCommentsPerSubmissionOnly(t *testing.T) {
	shared := models.Comment{ID: "dup", Body: "same id"}
	searcher := &fakeSearcher{
		pages: [][]models.Submission{{submission("a", 1), submission("b", 2)}},
		comments: map[string][]models.Comment{
			"a": {shared, {ID: "x", Body: "x"}, shared, {ID: "y", Body: "y"}},
			"b": {shared},
		},
	}

	got, err := newTestCollector(searcher).Collect(context.Background(), "kw", CollectOptions{PageSize: 10, PageCount: 1, MaxComments: 3})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []models.Comment{shared, {ID: "x", Body: "x"}, {ID: "y", Body: "y"}}, got[0].Comments)
	assert.Equal(t, []models.Comment{shared}, got[1].Comments, "a comment id seen on another submission is kept")
}

func TestCollect_ZeroCapKeepsSubmissionsWithoutComments(t *testing.T) {
	searcher := &fakeSearcher{
		pages:    [][]models.Submission{{submission("a", 1)}},
		comments: map[string][]models.Comment{"a": commentTree("a", 3)},
	}

	got, err := newTestCollector(searcher).Collect(context.Background(), "kw", CollectOptions{PageSize: 1, PageCount: 1, MaxComments: 0})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Comments)
}

func TestCollect_SearchFailureAbortsRun(t *testing.T) {
	upstream := errors.New("connection reset")
	searcher := &fakeSearcher{searchErr: upstream}

	got, err := newTestCollector(searcher).Collect(context.Background(), "kw", defaultOptions)

	assert.Nil(t, got)
	var retrieval *RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, StageSearch, retrieval.Stage)
	assert.Equal(t, "kw", retrieval.Keyword)
	assert.ErrorIs(t, err, upstream)
}

func TestCollect_CommentFailureAbortsRun(t *testing.T) {
	searcher := &fakeSearcher{
		pages:      [][]models.Submission{{submission("a", 1)}},
		commentErr: errors.New("status 500"),
	}

	got, err := newTestCollector(searcher).Collect(context.Background(), "kw", defaultOptions)

	assert.Nil(t, got)
	var retrieval *RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, StageComments, retrieval.Stage)
	assert.Equal(t, "a", retrieval.SubmissionID)
	assert.Contains(t, err.Error(), "submission a")
}

func TestCollect_RejectsInvalidOptions(t *testing.T) {
	c := newTestCollector(&fakeSearcher{})

	_, err := c.Collect(context.Background(), "kw", CollectOptions{PageSize: 0, PageCount: 1})
	assert.Error(t, err)
	_, err = c.Collect(context.Background(), "kw", CollectOptions{PageSize: 1, PageCount: 0})
	assert.Error(t, err)
	_, err = c.Collect(context.Background(), "kw", CollectOptions{PageSize: 1, PageCount: 1, MaxComments: -1})
	assert.Error(t, err)
}

func TestCollect_SubmissionFilterStillMovesCursor(t *testing.T) {
	a := submission("a", 1)
	a.Title = "AI in medicine"
	b := submission("b", 2)
	b.Title = "unrelated cooking thread"
	searcher := &fakeSearcher{
		pages: [][]models.Submission{{a, b}},
	}
	filter := NewSubmissionFilter(enums.MatchModeExact, matchers.RedditFilters{})

	got, err := newTestCollector(searcher, WithSubmissionFilter(filter)).
		Collect(context.Background(), "ai in medicine", CollectOptions{PageSize: 2, PageCount: 2, MaxComments: 1})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, []string{"a"}, searcher.fetched)
	assert.Equal(t, "b", searcher.queries[1].After.ID)
}

func TestCollect_FilteredCommentsDoNotCountTowardCap(t *testing.T) {
	tree := []models.Comment{
		{ID: "1", Body: "keep"}, {ID: "2", Body: "drop"}, {ID: "3", Body: "keep"}, {ID: "4", Body: "keep"},
	}
	searcher := &fakeSearcher{
		pages:    [][]models.Submission{{submission("a", 1)}},
		comments: map[string][]models.Comment{"a": tree},
	}
	filter := WithCommentFilter(func(c models.Comment) bool { return c.Body == "keep" })

	got, err := newTestCollector(searcher, filter).Collect(context.Background(), "kw", CollectOptions{PageSize: 1, PageCount: 1, MaxComments: 2})

	require.NoError(t, err)
	require.Len(t, got[0].Comments, 2)
	assert.Equal(t, "1", got[0].Comments[0].ID)
	assert.Equal(t, "3", got[0].Comments[1].ID)
}

func TestNewSubmissionFilter_NilWhenNothingToFilter(t *testing.T) {
	assert.Nil(t, NewSubmissionFilter(enums.MatchModeAny, matchers.RedditFilters{}))
	assert.NotNil(t, NewSubmissionFilter(enums.MatchModeAny, matchers.RedditFilters{Subreddits: []string{"medicine"}}))
}

func TestSubmissionMatcher_AppliesSubredditFilters(t *testing.T) {
	m := submissionMatcher{
		matchMode: enums.MatchModeBroad,
		filters:   matchers.RedditFilters{ExcludeSubreddits: []string{"circlejerk"}},
	}
	s := submission("a", 1)
	s.Title = "medical ai"

	s.Subreddit = "medicine"
	ok, err := m.Matches("medical ai", s)
	require.NoError(t, err)
	assert.True(t, ok)

	s.Subreddit = "circlejerk"
	ok, err = m.Matches("medical ai", s)
	require.NoError(t, err)
	assert.False(t, ok)
}
