package models

import (
	"bytes"
	"encoding/json"
)

const (
	RedditKindComment = "t1"
	RedditKindLink    = "t3"
	RedditKindMore    = "more"
)

type RedditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Children []RedditThing `json:"children"`
	} `json:"data"`
}

type RedditThing struct {
	Kind string     `json:"kind"`
	Data RedditItem `json:"data"`
}

// RedditItem covers both submissions (t3) and comments (t1).
type RedditItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Selftext    string          `json:"selftext"`
	Body        string          `json:"body"`
	Author      string          `json:"author"`
	Subreddit   string          `json:"subreddit"`
	Permalink   string          `json:"permalink"`
	URL         string          `json:"url"`
	Score       int             `json:"score"`
	NumComments int             `json:"num_comments"`
	CreatedUTC  float64         `json:"created_utc"`
	LinkID      string          `json:"link_id"`
	ParentID    string          `json:"parent_id"`
	Replies     json.RawMessage `json:"replies"`
}

// ReplyListing decodes the nested replies of a comment. Reddit sends an empty
// string instead of a listing when there are no replies.
func (i RedditItem) ReplyListing() (*RedditListing, error) {
	raw := bytes.TrimSpace(i.Replies)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var listing RedditListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

type RedditToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
