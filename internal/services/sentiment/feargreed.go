// Package sentiment provides the fear & greed index and news clients that
// feed the soft side of the decision context. Both degrade gracefully.
package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"tradepilot/internal/domain"
)

const (
	defaultFearGreedEndpoint = "https://api.alternative.me/fng/"
	fearGreedTimeout         = 10 * time.Second
)

// FearGreedClient fetches the crypto fear & greed index.
type FearGreedClient struct {
	endpoint string
	client   *http.Client
}

// NewFearGreedClient creates a fear & greed index client. An empty endpoint
// selects the public alternative.me API.
func NewFearGreedClient(endpoint string) *FearGreedClient {
	if endpoint == "" {
		endpoint = defaultFearGreedEndpoint
	}
	return &FearGreedClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: fearGreedTimeout,
		},
	}
}

type fearGreedResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
}

// Fetch returns up to limit readings, most recent first. Readings outside
// the [0,100] bound are dropped.
func (c *FearGreedClient) Fetch(ctx context.Context, limit int) ([]domain.SentimentPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fear & greed request")
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fear & greed request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fear & greed API returned status %s", resp.Status)
	}

	var parsed fearGreedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode fear & greed response")
	}
	if len(parsed.Data) == 0 {
		return nil, errors.New("fear & greed API returned no data")
	}

	points := make([]domain.SentimentPoint, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		value, err := strconv.Atoi(item.Value)
		if err != nil || value < 0 || value > 100 {
			continue
		}
		ts, err := strconv.ParseInt(item.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		points = append(points, domain.SentimentPoint{
			Value:          value,
			Classification: item.ValueClassification,
			Timestamp:      time.Unix(ts, 0).UTC(),
		})
	}
	if len(points) == 0 {
		return nil, errors.New("fear & greed API returned no usable data")
	}

	return points, nil
}
