package sources

import (
	"github.com/kova98/feedgrep.dataset/enums"
	"github.com/kova98/feedgrep.dataset/matchers"
	"github.com/kova98/feedgrep.dataset/models"
)

// SubmissionFilter decides whether a search result is retained. Rejected
// submissions still count as seen and still move the cursor.
type SubmissionFilter func(keyword string, submission models.Submission) (bool, error)

// CommentFilter decides whether a comment is retained. Rejected comments do
// not count toward the per-submission cap.
type CommentFilter func(comment models.Comment) bool

type submissionMatcher struct {
	matchMode enums.MatchMode
	filters   matchers.RedditFilters
}

// NewSubmissionFilter returns nil when neither the match mode nor the
// subreddit filters would reject anything.
func NewSubmissionFilter(mode enums.MatchMode, filters matchers.RedditFilters) SubmissionFilter {
	if mode == enums.MatchModeAny && filters.IsEmpty() {
		return nil
	}
	m := submissionMatcher{matchMode: mode, filters: filters}
	return m.Matches
}

func (m submissionMatcher) Matches(keyword string, submission models.Submission) (bool, error) {
	text := submission.Title + " " + submission.Selftext
	ok, err := matchers.MatchesKeyword(m.matchMode, text, keyword)
	if err != nil || !ok {
		return false, err
	}
	return matchers.MatchesSubreddit(m.filters, submission.Subreddit), nil
}

func NewLanguageCommentFilter(f *matchers.LanguageFilter) CommentFilter {
	return func(comment models.Comment) bool {
		return f.Allows(comment.Body)
	}
}
