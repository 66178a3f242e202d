package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRedditBaseURL is the public Reddit endpoint.
const DefaultRedditBaseURL = "https://www.reddit.com"

// RedditSource reads hot posts from a subreddit's public JSON listing.
type RedditSource struct {
	baseURL   string
	subreddit string
	client    *http.Client
}

// NewRedditSource creates a Reddit provider for the given subreddit.
func NewRedditSource(baseURL, subreddit string, timeout time.Duration) *RedditSource {
	if baseURL == "" {
		baseURL = DefaultRedditBaseURL
	}
	if subreddit == "" {
		subreddit = "news"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RedditSource{
		baseURL:   baseURL,
		subreddit: subreddit,
		client:    &http.Client{Timeout: timeout},
	}
}

func (r *RedditSource) Name() string { return "Reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title string `json:"title"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *RedditSource) HotPosts(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", r.baseURL, r.subreddit, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch hot posts: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: Reddit API error: %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("%w: parse Reddit listing: %v", ErrUpstream, err)
	}

	posts := make([]Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, Post{Title: child.Data.Title})
	}
	return posts, nil
}
