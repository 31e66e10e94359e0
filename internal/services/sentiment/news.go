package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultNewsEndpoint = "https://api.tavily.com/search"
	newsTimeout         = 15 * time.Second
	newsDays            = 7
	newsMaxResults      = 20
)

// NewsClient fetches recent headlines from a Tavily-compatible search API
// and condenses them into a plain-text summary.
type NewsClient struct {
	endpoint string
	apiKey   string
	query    string
	client   *http.Client
}

// NewNewsClient creates a news search client. An empty endpoint selects the
// Tavily API.
func NewNewsClient(endpoint, apiKey, query string) *NewsClient {
	if endpoint == "" {
		endpoint = defaultNewsEndpoint
	}
	return &NewsClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		query:    query,
		client: &http.Client{
			Timeout: newsTimeout,
		},
	}
}

type newsRequest struct {
	Query      string `json:"query"`
	Topic      string `json:"topic"`
	Days       int    `json:"days"`
	MaxResults int    `json:"max_results"`
}

type newsResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

// Summary returns recent headlines as one line per article.
func (c *NewsClient) Summary(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("news API key is empty")
	}

	body, err := json.Marshal(newsRequest{
		Query:      c.query,
		Topic:      "news",
		Days:       newsDays,
		MaxResults: newsMaxResults,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal news request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create news request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "news request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("news API returned status %s", resp.Status)
	}

	var parsed newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Wrap(err, "failed to decode news response")
	}
	if len(parsed.Results) == 0 {
		return "", errors.New("news API returned no results")
	}

	var sb strings.Builder
	for _, article := range parsed.Results {
		fmt.Fprintf(&sb, "- %s (%s, %s)\n", article.Title, sourceHost(article.URL), article.PublishedDate)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func sourceHost(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return parsed.Host
}
