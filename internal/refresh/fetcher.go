package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RobinCoderZhao/happening-now/internal/news"
)

// Fetcher retrieves the aggregated lists from the service.
type Fetcher interface {
	FetchArticles(ctx context.Context) ([]news.Article, error)
	FetchTrends(ctx context.Context) ([]news.Trend, error)
}

// HTTPFetcher reads /news and /trends from an aggregation server.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for the server at baseURL. A nil client
// gets a 15 second timeout.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type newsResponse struct {
	Articles []news.Article `json:"articles"`
	Error    string         `json:"error"`
}

type trendsResponse struct {
	Trends []news.Trend `json:"trends"`
	Error  string       `json:"error"`
}

func (f *HTTPFetcher) FetchArticles(ctx context.Context) ([]news.Article, error) {
	var resp newsResponse
	if err := f.get(ctx, "/news", &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return resp.Articles, nil
}

func (f *HTTPFetcher) FetchTrends(ctx context.Context) ([]news.Trend, error) {
	var resp trendsResponse
	if err := f.get(ctx, "/trends", &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return resp.Trends, nil
}

func (f *HTTPFetcher) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
