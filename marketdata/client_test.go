package marketdata

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/market"
)

var (
	start = time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	end   = time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)
)

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Timeframe
		wantErr bool
	}{
		{in: "1m", want: Timeframe{1, "minute"}},
		{in: "5M", want: Timeframe{5, "minute"}},
		{in: "4h", want: Timeframe{4, "hour"}},
		{in: "1d", want: Timeframe{1, "day"}},
		{in: "2w", want: Timeframe{2, "week"}},
		{in: "m", wantErr: true},
		{in: "0m", wantErr: true},
		{in: "5s", wantErr: true},
		{in: "xm", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimeframe(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTimeframe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchBars(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotSort string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("apiKey")
		gotSort = r.URL.Query().Get("sort")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":2,"results":[
			{"t":1704205800000,"o":4800.25,"h":4805,"l":4799.5,"c":4804.75,"v":1200},
			{"t":1704206100000,"o":4804.75,"h":4810,"l":4803,"c":4809.25,"v":900}
		]}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "k", HTTP: srv.Client()}
	bars, err := c.FetchBars(context.Background(), "ES", start, end, "5m")
	require.NoError(t, err)

	assert.Equal(t, "/v2/aggs/ticker/ES/range/5/minute/1704205800000/1704209400000", gotPath)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "asc", gotSort)

	require.Len(t, bars, 2)
	assert.Equal(t, market.Candle{
		Time: start, Open: 4800.25, High: 4805, Low: 4799.5, Close: 4804.75, Volume: 1200,
	}, bars[0])
	assert.True(t, bars[1].Time.Equal(start.Add(5*time.Minute)))
}

func TestFetchBarsNoData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":0}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	bars, err := c.FetchBars(context.Background(), "ES", start, end, "1m")
	require.NoError(t, err)
	assert.Nil(t, bars)
}

func TestFetchBarsHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	_, err := c.FetchBars(context.Background(), "ES", start, end, "1m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestFetchBarsBadInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client Client
		ticker string
		start  time.Time
		end    time.Time
		tf     string
		want   string
	}{
		{"missing base url", Client{}, "ES", start, end, "1m", "missing base url"},
		{"missing ticker", Client{BaseURL: "http://example.com"}, "", start, end, "1m", "missing ticker"},
		{"reversed range", Client{BaseURL: "http://example.com"}, "ES", end, start, "1m", "before start"},
		{"bad timeframe", Client{BaseURL: "http://example.com"}, "ES", start, end, "1y", "bad timeframe"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.client.FetchBars(context.Background(), tt.ticker, tt.start, tt.end, tt.tf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []market.Candle{{Time: start, Open: 1.5, High: 2, Low: 1, Close: 1.75, Volume: 10}}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-02T14:30:00Z", "1.5", "2", "1", "1.75", "10"}, rows[1])
}
