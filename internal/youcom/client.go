// Package youcom wraps the You.com search APIs used for competitor research.
package youcom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cloo-solutions/onboardai/internal/domain"
)

const (
	DefaultBaseURL     = "https://ydc-index.io/v1"
	DefaultNewsBaseURL = "https://api.ydc-index.io"
	DefaultTimeout     = 15 * time.Second
	DefaultFreshness   = "month"

	MaxSearchCount = 20
	MaxNewsCount   = 40

	maxHitContent = 1500
	maxURLChars   = 512
)

var ErrNotConfigured = errors.New("you.com api key not configured")

type Client struct {
	baseURL     string
	newsBaseURL string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
	timeout     time.Duration
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithNewsBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.newsBaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			burst := int(requestsPerSecond)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		newsBaseURL: DefaultNewsBaseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{},
		limiter:     rate.NewLimiter(rate.Limit(2), 2),
		logger:      zap.NewNop(),
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("you.com API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RawHit is a single web or news result as returned by the API.
type RawHit struct {
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Snippets     []string `json:"snippets"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Thumbnail    *struct {
		Src string `json:"src"`
	} `json:"thumbnail"`
	SourceName string `json:"source_name"`
	PageAge    string `json:"page_age"`
	Age        string `json:"age"`
}

// WebText is the best available text for a web hit.
func (h RawHit) WebText() string {
	desc := stripHTML(h.Description)
	if desc != "" {
		return desc
	}
	if len(h.Snippets) > 0 {
		if s := stripHTML(h.Snippets[0]); s != "" {
			return s
		}
	}
	if h.Title != "" {
		return h.Title
	}
	return h.URL
}

// NewsText is the best available text for a news hit.
func (h RawHit) NewsText() string {
	if desc := stripHTML(h.Description); desc != "" {
		return desc
	}
	if h.Title != "" {
		return h.Title
	}
	return h.URL
}

// SearchResponse is the unified search payload.
type SearchResponse struct {
	Results struct {
		Web  []RawHit `json:"web"`
		News []RawHit `json:"news"`
	} `json:"results"`
}

type newsResponse struct {
	News struct {
		Results []RawHit `json:"results"`
	} `json:"news"`
}

// Hit is a normalized result ready for display or prompting.
type Hit struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	SourceName   string `json:"source_name,omitempty"`
	PageAge      string `json:"page_age,omitempty"`
}

// LiveResult groups normalized web and news hits for one query.
type LiveResult struct {
	Query string `json:"query"`
	Web   []Hit  `json:"web"`
	News  []Hit  `json:"news"`
}

// Search calls the unified search endpoint.
func (c *Client) Search(ctx context.Context, query string, count int, freshness string) (*SearchResponse, error) {
	if count > MaxSearchCount {
		count = MaxSearchCount
	}
	if freshness == "" {
		freshness = DefaultFreshness
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("freshness", freshness)

	var out SearchResponse
	if err := c.get(ctx, c.baseURL, "/search", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LiveNews calls the news-only endpoint. Accounts without access get a 403.
func (c *Client) LiveNews(ctx context.Context, query string, count int) ([]RawHit, error) {
	if count > MaxNewsCount {
		count = MaxNewsCount
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	var out newsResponse
	if err := c.get(ctx, c.newsBaseURL, "/livenews", params, &out); err != nil {
		return nil, err
	}
	return out.News.Results, nil
}

// LiveSearch runs a unified search and normalizes its hits. When the unified
// response carries no news, the live news endpoint is tried; its failure is
// logged and ignored.
func (c *Client) LiveSearch(ctx context.Context, query string, count int, freshness string) (LiveResult, error) {
	out := LiveResult{Query: strings.TrimSpace(query), Web: []Hit{}, News: []Hit{}}
	if out.Query == "" {
		return out, nil
	}
	if !c.Configured() {
		return out, ErrNotConfigured
	}
	resp, err := c.Search(ctx, out.Query, count, freshness)
	if err != nil {
		return out, err
	}
	for _, h := range head(resp.Results.Web, count) {
		if h.Title == "" && h.Description == "" && len(h.Snippets) == 0 {
			continue
		}
		out.Web = append(out.Web, normalizeWeb(h))
	}
	for _, h := range head(resp.Results.News, count) {
		if h.Title == "" && h.Description == "" {
			continue
		}
		out.News = append(out.News, normalizeNews(h))
	}
	if len(out.News) == 0 {
		news, err := c.LiveNews(ctx, out.Query, min(count, 15))
		if err != nil {
			c.logger.Debug("live news unavailable", zap.Error(err))
			return out, nil
		}
		for _, h := range head(news, count) {
			if h.Title == "" && h.Description == "" {
				continue
			}
			out.News = append(out.News, normalizeNews(h))
		}
	}
	return out, nil
}

func normalizeWeb(h RawHit) Hit {
	return Hit{
		Title:        strings.TrimSpace(h.Title),
		Content:      strings.TrimSpace(domain.Ellipsize(h.WebText(), maxHitContent)),
		URL:          domain.Truncate(h.URL, maxURLChars),
		ThumbnailURL: strings.TrimSpace(h.ThumbnailURL),
	}
}

func normalizeNews(h RawHit) Hit {
	thumb := strings.TrimSpace(h.ThumbnailURL)
	if thumb == "" && h.Thumbnail != nil {
		thumb = strings.TrimSpace(h.Thumbnail.Src)
	}
	age := h.PageAge
	if age == "" {
		age = h.Age
	}
	return Hit{
		Title:        strings.TrimSpace(h.Title),
		Content:      strings.TrimSpace(domain.Ellipsize(h.NewsText(), maxHitContent)),
		URL:          domain.Truncate(h.URL, maxURLChars),
		ThumbnailURL: thumb,
		SourceName:   strings.TrimSpace(h.SourceName),
		PageAge:      age,
	}
}

func head(hits []RawHit, n int) []RawHit {
	if n >= 0 && len(hits) > n {
		return hits[:n]
	}
	return hits
}

func (c *Client) get(ctx context.Context, base, path string, params url.Values, result any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := base + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg)), Endpoint: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// stripHTML drops markup such as <strong> highlights from snippet text.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
