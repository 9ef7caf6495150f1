package notifiers

import (
	"testing"
	"time"

	"github.com/kova98/feedgrep.dataset/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSummaryEmail_RendersKeywords(t *testing.T) {
	mailer := NewMailer("localhost", "25", "bot@example.com", "")
	summary := models.RunSummary{
		RunID:     "run-1",
		Source:    "reddit",
		StartedAt: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		Duration:  95 * time.Second,
		Keywords: []models.KeywordSummary{
			{Keyword: "Medical AI", Submissions: 5, Comments: 50, Rows: 50},
			{Keyword: "AI <in> medicine", Submissions: 5, Comments: 50, Rows: 48},
		},
		MergedRows: 98,
		OutputPath: "all_comments.csv",
	}

	mail, err := mailer.RunSummaryEmail("me@example.com", summary)

	require.NoError(t, err)
	assert.Equal(t, "me@example.com", mail.To)
	assert.Equal(t, "feedgrep: dataset ready (98 comments)", mail.Subject)
	assert.Contains(t, mail.Body, "Medical AI")
	assert.Contains(t, mail.Body, "AI &lt;in&gt; medicine", "keywords are escaped")
	assert.Contains(t, mail.Body, "1m35s")
	assert.Contains(t, mail.Body, "all_comments.csv")
	assert.NotContains(t, mail.Body, "Post rows")
}

func TestRunSummaryEmail_RequiresKeywords(t *testing.T) {
	_, err := NewMailer("localhost", "25", "bot@example.com", "").RunSummaryEmail("me@example.com", models.RunSummary{})
	assert.Error(t, err)
}
