package models

import "strings"

// DeletedAuthor is recorded for submissions and comments whose author account
// no longer exists.
const DeletedAuthor = "None"

type Submission struct {
	ID          string
	Title       string
	Selftext    string
	CreatedUTC  float64
	AuthorID    string
	Score       int
	URL         string
	NumComments int
	Subreddit   string
	Comments    []Comment
}

type Comment struct {
	ID         string
	Body       string
	CreatedUTC float64
	AuthorID   string
	Score      int
	LinkID     string
	ParentID   string
}

func NormalizeAuthor(author string) string {
	author = strings.TrimSpace(author)
	if author == "" || author == "[deleted]" {
		return DeletedAuthor
	}
	return author
}
