package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Richardv10/food-blog/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.spoonacular.com"
	defaultTimeout = 10 * time.Second
	// SearchLimit is the number of results requested per search.
	SearchLimit = 10
)

var (
	// ErrUpstream is returned for non-2xx responses and undecodable bodies.
	ErrUpstream = errors.New("recipe API error")
	// ErrNotFound is returned when the API reports an unknown recipe.
	ErrNotFound = errors.New("recipe not found")
)

type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	SearchTTL time.Duration
}

// Cache stores raw search responses. Implementations treat every error as a miss.
type Cache interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type SearchResult struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

type Ingredient struct {
	Original string `json:"original"`
}

// RecipeInfo is the subset of the recipe information payload the site uses.
type RecipeInfo struct {
	ID                  int64        `json:"id"`
	Title               string       `json:"title"`
	Image               string       `json:"image"`
	Summary             string       `json:"summary"`
	Instructions        string       `json:"instructions"`
	ReadyInMinutes      int          `json:"readyInMinutes"`
	Servings            int          `json:"servings"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients"`
}

// Client calls the Spoonacular recipe API.
type Client struct {
	cfg    Config
	http   *http.Client
	cache  Cache
	logger *slog.Logger
}

// NewClient creates a client. cache may be nil.
func NewClient(cfg Config, cache Cache, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = time.Hour
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger.With("component", "spoonacular"),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Search runs a complex search and returns up to number results.
func (c *Client) Search(ctx context.Context, query string, number int) ([]SearchResult, error) {
	if number <= 0 {
		number = SearchLimit
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("number", strconv.Itoa(number))

	key := "search:" + strconv.Itoa(number) + ":" + strings.ToLower(strings.TrimSpace(query))
	if c.cache != nil {
		if cached := c.cache.Get(ctx, key); cached != nil {
			var resp searchResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				metrics.RecordCacheLookup(true)
				return resp.Results, nil
			}
		}
		metrics.RecordCacheLookup(false)
	}

	body, err := c.get(ctx, "search", "/recipes/complexSearch", params)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrUpstream, err)
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, body, c.cfg.SearchTTL)
	}
	return resp.Results, nil
}

// Information fetches full recipe details. The image is replaced by the
// stable-size image URL.
func (c *Client) Information(ctx context.Context, id int64) (*RecipeInfo, error) {
	body, err := c.get(ctx, "information", fmt.Sprintf("/recipes/%d/information", id), nil)
	if err != nil {
		return nil, err
	}
	var info RecipeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: decode recipe information: %v", ErrUpstream, err)
	}
	if info.ID == 0 {
		info.ID = id
	}
	info.Image = ImageURL(info.ID)
	return &info, nil
}

type randomResponse struct {
	Recipes []RecipeInfo `json:"recipes"`
}

// Random fetches a single random recipe.
func (c *Client) Random(ctx context.Context) (*RecipeInfo, error) {
	params := url.Values{}
	params.Set("number", "1")
	body, err := c.get(ctx, "random", "/recipes/random", params)
	if err != nil {
		return nil, err
	}
	var resp randomResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode random response: %v", ErrUpstream, err)
	}
	if len(resp.Recipes) == 0 {
		return nil, fmt.Errorf("%w: random returned no recipes", ErrUpstream)
	}
	info := resp.Recipes[0]
	if info.Image != "" {
		info.Image = ImageURL(info.ID)
	}
	return &info, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	start := time.Now()
	body, err := c.do(ctx, path, params)
	metrics.RecordAPICall(endpoint, time.Since(start), err)
	if err != nil {
		c.logger.Warn("recipe API call failed", "endpoint", endpoint, "error", err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %v", ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, path, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUpstream, path, err)
	}
	return raw, nil
}

// ImageURL returns the fixed-size image URL for a recipe id.
func ImageURL(id int64) string {
	return fmt.Sprintf("https://spoonacular.com/recipeImages/%d-312x231.jpg", id)
}

var (
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</(p|li|div)>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
)

// StripTags removes HTML tags from API summaries and instructions. Line
// breaks and closing block tags become newlines.
func StripTags(s string) string {
	s = breakPattern.ReplaceAllString(s, "\n")
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
