package models

type ArcticShiftSearchResponse[T any] struct {
	Data  []T    `json:"data"`
	Error string `json:"error"`
}

type ArcticShiftPost struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

type ArcticShiftComment struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	LinkID     string  `json:"link_id"`
	ParentID   string  `json:"parent_id"`
	CreatedUTC float64 `json:"created_utc"`
}

func (r *ArcticShiftSearchResponse[T]) APIError() string {
	return r.Error
}
