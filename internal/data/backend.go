package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/model"
)

// DefaultNumCandles is the history length the backend computes when asked for none.
const DefaultNumCandles = 2000

// ErrMissingChartData is returned when a backend document has no chartData key.
var ErrMissingChartData = errors.New("response has no chartData")

// BacktestClient fetches precomputed backtest runs from the backend.
type BacktestClient struct {
	BaseURL string
	Path    string
	Client  *http.Client
	Cache   *ResponseCache
}

// NewBacktestClient creates a client for the backend at baseURL.
// If baseURL is empty, defaults to "http://127.0.0.1:5000".
func NewBacktestClient(baseURL string, timeout time.Duration) *BacktestClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:5000"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BacktestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    "/backtest",
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchParams defines the query sent to the backend.
type FetchParams struct {
	NumCandles int // 0 means DefaultNumCandles
}

func (p FetchParams) numCandles() int {
	if p.NumCandles <= 0 {
		return DefaultNumCandles
	}
	return p.NumCandles
}

// BackendError represents a non-success answer from the backend.
type BackendError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

// Fetch runs GET {base}{path}?num_candles=N and decodes the response.
// A document without chartData yields ErrMissingChartData.
func (c *BacktestClient) Fetch(ctx context.Context, params FetchParams) (*model.BacktestResponse, error) {
	n := params.numCandles()
	key := strconv.Itoa(n)
	if cached, found := c.Cache.Get(key); found {
		log.WithFields(log.Fields{"num_candles": n, "bars": len(cached.ChartData)}).Debug("[Backend] Cache hit")
		return cached, nil
	}

	u, err := url.Parse(c.BaseURL + c.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("num_candles", key)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Infof("[Backend] Request: GET %s (num_candles=%d)", u.Path, n)
	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Errorf("[Backend] Request failed: %v (duration: %v)", err, duration)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Infof("[Backend] Response: %s (duration: %v)", resp.Status, duration)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Code:       "INVALID_QUERY",
			Message:    fmt.Sprintf("backend rejected num_candles=%d: %s", n, resp.Status),
		}
	case resp.StatusCode >= 500:
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Code:       "BACKEND_UNAVAILABLE",
			Message:    fmt.Sprintf("backend failed: %s", resp.Status),
		}
	default:
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var result model.BacktestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Errorf("[Backend] Error decoding response: %v", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.HasChartData() {
		log.Warn("[Backend] Response carries no chartData")
		return nil, ErrMissingChartData
	}
	log.Infof("[Backend] Success: received %d bars", len(result.ChartData))

	c.Cache.Set(key, &result)
	return &result, nil
}

// FetchSeries fetches and wraps the bars in a new Series.
func (c *BacktestClient) FetchSeries(ctx context.Context, params FetchParams) (model.Series, error) {
	resp, err := c.Fetch(ctx, params)
	if err != nil {
		return model.Series{}, err
	}
	return ToSeries(resp)
}

// ToSeries wraps a decoded document's bars in a new Series.
func ToSeries(resp *model.BacktestResponse) (model.Series, error) {
	if !resp.HasChartData() {
		return model.Series{}, ErrMissingChartData
	}
	return model.NewSeries(resp.ChartData), nil
}
