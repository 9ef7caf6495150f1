package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kova98/feedgrep.dataset/enums"
	"github.com/kova98/feedgrep.dataset/models"
)

const (
	redditBaseURL      = "https://www.reddit.com"
	redditOAuthBaseURL = "https://oauth.reddit.com"
	redditTokenURL     = "https://www.reddit.com/api/v1/access_token"
	redditMaxLimit     = 100
	redditCommentLimit = 500
)

type RedditOptions struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddit    string
}

// RedditSearcher talks to the public Reddit JSON API. With client credentials
// it switches to the OAuth host using an application-only token.
type RedditSearcher struct {
	pool         *ProxyPool
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	userAgent    string
	subreddit    string

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewRedditSearcher(pool *ProxyPool, opts RedditOptions) *RedditSearcher {
	s := &RedditSearcher{
		pool:         pool,
		baseURL:      opts.BaseURL,
		tokenURL:     opts.TokenURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		userAgent:    opts.UserAgent,
		subreddit:    opts.Subreddit,
	}
	if s.baseURL == "" {
		s.baseURL = redditBaseURL
		if s.usesOAuth() {
			s.baseURL = redditOAuthBaseURL
		}
	}
	if s.tokenURL == "" {
		s.tokenURL = redditTokenURL
	}
	if s.subreddit == "" {
		s.subreddit = "all"
	}
	if s.userAgent == "" {
		s.userAgent = "feedgrep-dataset/1.0"
	}
	return s
}

func (s *RedditSearcher) Source() enums.Source {
	return enums.SourceReddit
}

// Search follows Reddit's listing "after" tokens until q.Limit submissions
// were returned or the listing is exhausted.
func (s *RedditSearcher) Search(ctx context.Context, q SearchQuery) ([]models.Submission, error) {
	after := ""
	if q.After != nil && q.After.ID != "" {
		after = models.RedditKindLink + "_" + q.After.ID
	}

	submissions := make([]models.Submission, 0, min(q.Limit, redditMaxLimit))
	for len(submissions) < q.Limit {
		params := url.Values{}
		params.Set("q", q.Keyword)
		params.Set("limit", strconv.Itoa(min(q.Limit-len(submissions), redditMaxLimit)))
		params.Set("sort", "relevance")
		params.Set("t", "all")
		params.Set("raw_json", "1")
		if s.subreddit != "all" {
			params.Set("restrict_sr", "on")
		}
		if after != "" {
			params.Set("after", after)
		}

		var listing models.RedditListing
		path := fmt.Sprintf("/r/%s/search.json?%s", url.PathEscape(s.subreddit), params.Encode())
		if err := s.get(ctx, path, &listing); err != nil {
			return nil, err
		}

		for _, child := range listing.Data.Children {
			if child.Kind != models.RedditKindLink {
				continue
			}
			submissions = append(submissions, toSubmission(child.Data))
		}

		if listing.Data.After == "" || len(listing.Data.Children) == 0 {
			break
		}
		after = listing.Data.After
	}

	if len(submissions) > q.Limit {
		submissions = submissions[:q.Limit]
	}
	return submissions, nil
}

// Comments returns the comment tree breadth-first. "more" placeholders are
// dropped without being expanded.
func (s *RedditSearcher) Comments(ctx context.Context, submission models.Submission) ([]models.Comment, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(redditCommentLimit))
	params.Set("raw_json", "1")

	var listings []models.RedditListing
	path := fmt.Sprintf("/comments/%s.json?%s", url.PathEscape(submission.ID), params.Encode())
	if err := s.get(ctx, path, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("comments for %s: expected 2 listings, got %d", submission.ID, len(listings))
	}

	return flattenCommentTree(listings[1].Data.Children)
}

func flattenCommentTree(roots []models.RedditThing) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, len(roots))
	queue := append([]models.RedditThing(nil), roots...)
	for len(queue) > 0 {
		thing := queue[0]
		queue = queue[1:]
		if thing.Kind != models.RedditKindComment {
			continue
		}

		comments = append(comments, toComment(thing.Data))

		replies, err := thing.Data.ReplyListing()
		if err != nil {
			return nil, fmt.Errorf("decode replies of %s: %w", thing.Data.ID, err)
		}
		if replies != nil {
			queue = append(queue, replies.Data.Children...)
		}
	}
	return comments, nil
}

func toSubmission(item models.RedditItem) models.Submission {
	return models.Submission{
		ID:          item.ID,
		Title:       item.Title,
		Selftext:    item.Selftext,
		CreatedUTC:  item.CreatedUTC,
		AuthorID:    models.NormalizeAuthor(item.Author),
		Score:       item.Score,
		URL:         item.URL,
		NumComments: item.NumComments,
		Subreddit:   item.Subreddit,
	}
}

func toComment(item models.RedditItem) models.Comment {
	return models.Comment{
		ID:         item.ID,
		Body:       item.Body,
		CreatedUTC: item.CreatedUTC,
		AuthorID:   models.NormalizeAuthor(item.Author),
		Score:      item.Score,
		LinkID:     item.LinkID,
		ParentID:   item.ParentID,
	}
}

func (s *RedditSearcher) usesOAuth() bool {
	return s.clientID != "" && s.clientSecret != ""
}

func (s *RedditSearcher) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	client, host := s.pool.Next()
	if s.usesOAuth() {
		token, err := s.accessToken(ctx, client)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		s.pool.MarkFailure(host)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.pool.MarkFailure(host)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("reddit returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		s.pool.MarkFailure(host)
		return fmt.Errorf("decode reddit response: %w", err)
	}

	s.pool.MarkSuccess(host)
	return nil
}

// accessToken returns a cached application-only token, refreshing it a minute
// before it expires.
func (s *RedditSearcher) accessToken(ctx context.Context, client *http.Client) (string, error) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExpiry) {
		return s.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request reddit token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reddit token endpoint returned status %d", resp.StatusCode)
	}

	var token models.RedditToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode reddit token: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("reddit token endpoint returned an empty token")
	}

	s.token = token.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return s.token, nil
}
