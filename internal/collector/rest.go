package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
)

// RESTFetcher implements HistoryProvider against a generic bar REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, m *metrics.Metrics) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  NewHTTPClient(proxyURL),
		Metrics: m,
		Now:     time.Now,
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Close     float64  `json:"close"`
	AdjClose  *float64 `json:"adj_close"`
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, symbol string, period model.Period) (rows []model.PriceRow, err error) {
	start := time.Now()
	defer func() { f.Metrics.ObserveFetch(f.Name(), "history", start, err) }()

	now := f.Now()
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("to", fmt.Sprint(now.Unix()))
	if period.Unit != model.UnitMax {
		q.Set("from", fmt.Sprint(period.Start(now).Unix()))
	}
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Source: "rest bars", Code: resp.StatusCode, Body: truncate(body, 256)}
	}

	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	rows = make([]model.PriceRow, len(bars))
	for i, b := range bars {
		price := b.Close
		if b.AdjClose != nil {
			price = *b.AdjClose
		}
		rows[i] = model.PriceRow{Date: time.Unix(b.Timestamp, 0).UTC(), AdjClose: price}
	}
	return rows, nil
}
