package models

import "time"

type KeywordSummary struct {
	Keyword     string
	Submissions int
	Comments    int
	Rows        int
}

type RunSummary struct {
	RunID      string
	Source     string
	StartedAt  time.Time
	Duration   time.Duration
	Keywords   []KeywordSummary
	MergedRows int
	PostRows   int
	OutputPath string
}

type Email struct {
	To      string
	Subject string
	Body    string
}
