package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kova98/feedgrep.dataset/enums"
	"github.com/kova98/feedgrep.dataset/models"
)

const (
	arcticShiftBaseURL        = "https://arctic-shift.photon-reddit.com/api"
	arcticShiftPostsFields    = "id,subreddit,author,title,selftext,url,score,num_comments,created_utc"
	arcticShiftCommentsFields = "id,subreddit,author,body,score,link_id,parent_id,created_utc"
	arcticShiftMaxLimit       = 100
	arcticShiftMaxComments    = 1000
)

type ArcticShiftOptions struct {
	BaseURL   string
	UserAgent string
	Subreddit string
}

// ArcticShiftSearcher queries the Arctic Shift Reddit archive. The archive
// paginates by creation time, so the cursor's timestamp is used as the
// "after" bound instead of its identifier.
type ArcticShiftSearcher struct {
	pool      *ProxyPool
	baseURL   string
	userAgent string
	subreddit string
}

func NewArcticShiftSearcher(pool *ProxyPool, opts ArcticShiftOptions) *ArcticShiftSearcher {
	s := &ArcticShiftSearcher{
		pool:      pool,
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		subreddit: opts.Subreddit,
	}
	if s.baseURL == "" {
		s.baseURL = arcticShiftBaseURL
	}
	if s.userAgent == "" {
		s.userAgent = "feedgrep"
	}
	return s
}

func (s *ArcticShiftSearcher) Source() enums.Source {
	return enums.SourceArcticShift
}

func (s *ArcticShiftSearcher) Search(ctx context.Context, q SearchQuery) ([]models.Submission, error) {
	var after float64
	if q.After != nil {
		after = q.After.CreatedUTC
	}

	submissions := make([]models.Submission, 0, min(q.Limit, arcticShiftMaxLimit))
	for len(submissions) < q.Limit {
		limit := min(q.Limit-len(submissions), arcticShiftMaxLimit)
		params := url.Values{}
		params.Set("query", q.Keyword)
		params.Set("limit", strconv.Itoa(limit))
		params.Set("sort", "asc")
		params.Set("fields", arcticShiftPostsFields)
		if s.subreddit != "" {
			params.Set("subreddit", s.subreddit)
		}
		if after > 0 {
			params.Set("after", formatArcticShiftTime(after))
		}

		var resp models.ArcticShiftSearchResponse[models.ArcticShiftPost]
		if err := s.fetch(ctx, "/posts/search?"+params.Encode(), &resp); err != nil {
			return nil, err
		}

		for _, post := range resp.Data {
			if post.ID == "" {
				continue
			}
			submissions = append(submissions, models.Submission{
				ID:          post.ID,
				Title:       post.Title,
				Selftext:    post.Selftext,
				CreatedUTC:  post.CreatedUTC,
				AuthorID:    models.NormalizeAuthor(post.Author),
				Score:       post.Score,
				URL:         post.URL,
				NumComments: post.NumComments,
				Subreddit:   post.Subreddit,
			})
			after = math.Max(after, post.CreatedUTC)
		}

		if len(resp.Data) < limit {
			break
		}
	}

	return submissions, nil
}

// Comments returns the archived comments of a submission oldest first.
func (s *ArcticShiftSearcher) Comments(ctx context.Context, submission models.Submission) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, arcticShiftMaxLimit)
	var after float64
	for len(comments) < arcticShiftMaxComments {
		params := url.Values{}
		params.Set("link_id", submission.ID)
		params.Set("limit", strconv.Itoa(arcticShiftMaxLimit))
		params.Set("sort", "asc")
		params.Set("fields", arcticShiftCommentsFields)
		if after > 0 {
			params.Set("after", formatArcticShiftTime(after))
		}

		var resp models.ArcticShiftSearchResponse[models.ArcticShiftComment]
		if err := s.fetch(ctx, "/comments/search?"+params.Encode(), &resp); err != nil {
			return nil, err
		}

		for _, comment := range resp.Data {
			if comment.ID == "" {
				continue
			}
			comments = append(comments, models.Comment{
				ID:         comment.ID,
				Body:       comment.Body,
				CreatedUTC: comment.CreatedUTC,
				AuthorID:   models.NormalizeAuthor(comment.Author),
				Score:      comment.Score,
				LinkID:     comment.LinkID,
				ParentID:   comment.ParentID,
			})
			after = math.Max(after, comment.CreatedUTC)
		}

		if len(resp.Data) < arcticShiftMaxLimit {
			break
		}
	}
	return comments, nil
}

func (s *ArcticShiftSearcher) fetch(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.userAgent)

	client, host := s.pool.Next()
	start := time.Now()
	resp, err := client.Do(req)
	requestMs := time.Since(start).Milliseconds()
	if err != nil {
		s.pool.MarkFailure(host)
		return fmt.Errorf("(%dms) %w", requestMs, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.pool.MarkFailure(host)
		return fmt.Errorf("arcticshift returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		s.pool.MarkFailure(host)
		return fmt.Errorf("decode arcticshift response: %w", err)
	}
	if e, ok := dest.(interface{ APIError() string }); ok && e.APIError() != "" {
		s.pool.MarkFailure(host)
		return errors.New("arcticshift: " + e.APIError())
	}

	s.pool.MarkSuccess(host)
	return nil
}

func formatArcticShiftTime(epoch float64) string {
	return time.Unix(int64(epoch), 0).UTC().Format(time.RFC3339)
}
