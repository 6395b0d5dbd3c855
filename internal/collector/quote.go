package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
)

// QuoteClient implements QuoteSource against the Yahoo options endpoint, whose response
// embeds the quote object at optionChain.result[0].quote.
type QuoteClient struct {
	BaseURL string
	Headers map[string]string
	Client  *http.Client
	Metrics *metrics.Metrics
}

// NewQuoteClient creates a quote client. Requests go to baseURL + symbol.
func NewQuoteClient(baseURL string, headers map[string]string, proxyURL string, m *metrics.Metrics) *QuoteClient {
	return &QuoteClient{
		BaseURL: baseURL,
		Headers: headers,
		Client:  NewHTTPClient(proxyURL),
		Metrics: m,
	}
}

type optionChainResponse struct {
	OptionChain struct {
		Result []struct {
			Quote model.Fundamentals `json:"quote"`
		} `json:"result"`
	} `json:"optionChain"`
}

// FetchQuote returns the fundamentals snapshot. A non-200 answer is a *StatusError.
func (c *QuoteClient) FetchQuote(ctx context.Context, symbol string) (fund model.Fundamentals, err error) {
	start := time.Now()
	defer func() { c.Metrics.ObserveFetch("quote", "fundamentals", start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+symbol, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Source: "quote", Code: resp.StatusCode, Body: truncate(body, 256)}
	}

	var out optionChainResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if len(out.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("quote: empty result for %s", symbol)
	}
	return out.OptionChain.Result[0].Quote.Clone(), nil
}
