package matchers

import "strings"

type RedditFilters struct {
	Subreddits        []string
	ExcludeSubreddits []string
}

func (f RedditFilters) IsEmpty() bool {
	return len(f.Subreddits) == 0 && len(f.ExcludeSubreddits) == 0
}

func MatchesSubreddit(f RedditFilters, subreddit string) bool {
	// Exclusions win over inclusions
	for _, excluded := range f.ExcludeSubreddits {
		if strings.EqualFold(excluded, subreddit) {
			return false
		}
	}

	if len(f.Subreddits) == 0 {
		return true
	}

	for _, included := range f.Subreddits {
		if strings.EqualFold(included, subreddit) {
			return true
		}
	}

	return false
}
