package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
)

const chartBody = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","gmtoffset":-18000},
	"timestamp":[1577975400,1578061800,1578321000,1578407400],
	"indicators":{
		"quote":[{"close":[75.08,74.36,74.95,74.60]}],
		"adjclose":[{"adjclose":[73.15,72.44,null,72.68]}]
	}}],"error":null}}`

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newYahoo(t *testing.T, h http.HandlerFunc) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("", metrics.NewMetrics(prometheus.NewRegistry()))
	f.BaseURL = srv.URL
	f.Client = srv.Client()
	f.Now = func() time.Time { return time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC) }
	return f
}

func TestYahooFetchHistory(t *testing.T) {
	var gotPath, gotQuery string
	f := newYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(chartBody))
	})

	period, _ := model.ParsePeriod("1MO")
	rows, err := f.FetchHistory(context.Background(), "SPX", period)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "interval=1d") || !strings.Contains(gotQuery, "period1=") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (null adjclose skipped), got %d", len(rows))
	}
	if rows[0].AdjClose != 73.15 {
		t.Errorf("expected adjusted close, got %v", rows[0].AdjClose)
	}
	if d := model.Day(rows[0].Date).Format("2006-01-02"); d != "2020-01-02" {
		t.Errorf("first date = %s, want exchange-local 2020-01-02", d)
	}
}

func TestYahooFetchHistory_MaxUsesRange(t *testing.T) {
	var gotQuery string
	f := newYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(chartBody))
	})
	period, _ := model.ParsePeriod("MAX")
	if _, err := f.FetchHistory(context.Background(), "AAPL", period); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotQuery, "range=max") {
		t.Errorf("expected range=max in %q", gotQuery)
	}
}

func TestYahooFetchHistory_UnknownSymbol(t *testing.T) {
	f := newYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(notFoundBody))
	})
	period, _ := model.ParsePeriod("10Y")
	rows, err := f.FetchHistory(context.Background(), "NOPE", period)
	if err != nil {
		t.Fatalf("unknown symbol should not error, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestYahooFetchHistory_ServerError(t *testing.T) {
	f := newYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	period, _ := model.ParsePeriod("10Y")
	_, err := f.FetchHistory(context.Background(), "AAPL", period)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
	if n := testutil.ToFloat64(f.Metrics.FetchesTotal.WithLabelValues("yahoo", "history", "error")); n != 1 {
		t.Errorf("expected one failed fetch recorded, got %v", n)
	}
}

func TestQuoteClient(t *testing.T) {
	var gotUA, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Write([]byte(`{"optionChain":{"result":[{"quote":{"symbol":"AAPL","beta":1.29,"marketCap":2900000000000}}]}}`))
	}))
	defer srv.Close()

	c := NewQuoteClient(srv.URL+"/v7/finance/options/", map[string]string{"User-Agent": "tickerlens-test"}, "", nil)
	c.Client = srv.Client()
	fund, err := c.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if gotPath != "/v7/finance/options/AAPL" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUA != "tickerlens-test" {
		t.Errorf("User-Agent header = %q", gotUA)
	}
	if b, ok := fund.Float("beta"); !ok || b != 1.29 {
		t.Errorf("beta = %v, %v", b, ok)
	}
}

func TestQuoteClient_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewQuoteClient(srv.URL+"/", nil, "", nil)
	_, err := c.FetchQuote(context.Background(), "AAPL")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected StatusError 401, got %v", err)
	}
}

func TestRESTFetcher(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Query().Get("symbol") != "MSFT" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"timestamp":1577923200,"close":160.6,"adj_close":155.1},{"timestamp":1578009600,"close":158.6}]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", nil)
	period, _ := model.ParsePeriod("1Y")
	rows, err := f.FetchHistory(context.Background(), "MSFT", period)
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(rows) != 2 || rows[0].AdjClose != 155.1 || rows[1].AdjClose != 158.6 {
		t.Errorf("unexpected rows %+v", rows)
	}

	rows, err = f.FetchHistory(context.Background(), "NOPE", period)
	if err != nil || len(rows) != 0 {
		t.Errorf("unknown symbol: rows=%d err=%v", len(rows), err)
	}
}

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{Generated: 30}
	rows, err := m.FetchHistory(context.Background(), "AAPL", model.Period{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 30 {
		t.Fatalf("expected 30 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i].Date.After(rows[i-1].Date) {
			t.Fatalf("rows not ascending at %d", i)
		}
		if wd := rows[i].Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("weekend row generated: %v", rows[i].Date)
		}
	}

	empty := &MockFetcher{}
	rows, _ = empty.FetchHistory(context.Background(), "AAPL", model.Period{})
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestMockFetcher_Concurrent(t *testing.T) {
	m := &MockFetcher{Generated: 5}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.FetchHistory(context.Background(), "AAPL", model.Period{})
		}()
	}
	wg.Wait()
	if n := m.CallCount(); n != 16 {
		t.Errorf("expected 16 recorded calls, got %d", n)
	}
}
