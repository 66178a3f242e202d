package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultNewsAPIBaseURL is the production NewsAPI endpoint.
const DefaultNewsAPIBaseURL = "https://newsapi.org"

const (
	userAgent    = "HappeningNow/1.0"
	maxBodyBytes = 4 << 20
)

// NewsAPIConfig configures the NewsAPI provider.
type NewsAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RequestsPerMinute caps outbound calls; 0 disables the limit.
	RequestsPerMinute int
}

// NewsAPISource fetches top headlines from newsapi.org.
type NewsAPISource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewNewsAPISource creates a NewsAPI provider.
func NewNewsAPISource(cfg NewsAPIConfig) *NewsAPISource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNewsAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}

	return &NewsAPISource{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

func (n *NewsAPISource) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (n *NewsAPISource) TopHeadlines(ctx context.Context, q Query) ([]RawArticle, error) {
	if !n.limiter.Allow() {
		return nil, ErrRateLimited
	}

	params := url.Values{}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	endpoint := n.baseURL + "/v2/top-headlines?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch headlines: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	var data newsAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response from NewsAPI: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || data.Status != "ok" {
		msg := data.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("%w: NewsAPI error: %d - %s", ErrUpstream, resp.StatusCode, msg)
	}

	articles := make([]RawArticle, 0, len(data.Articles))
	for _, a := range data.Articles {
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		articles = append(articles, RawArticle{
			SourceName:  a.Source.Name,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: published,
			Content:     a.Content,
		})
	}
	return articles, nil
}
