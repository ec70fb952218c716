// Package marketdata fetches historical OHLC bars for charting trades.
package marketdata

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/market"
)

// DefaultBaseURL is the aggregates API the client speaks to.
const DefaultBaseURL = "https://api.polygon.io"

var ErrTimeframe = errors.New("marketdata: bad timeframe")

// Client fetches aggregate bars over HTTP. HTTP defaults to
// http.DefaultClient.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

type aggsResp struct {
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		T int64   `json:"t"`
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"`
	} `json:"results"`
}

// Timeframe is a bar size such as 1m, 5m, 1h or 1d.
type Timeframe struct {
	Multiplier int
	Timespan   string // minute, hour, day, week
}

// ParseTimeframe parses "<n><unit>" with unit m, h, d or w.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrTimeframe, s)
	}

	var span string
	switch s[len(s)-1] {
	case 'm':
		span = "minute"
	case 'h':
		span = "hour"
	case 'd':
		span = "day"
	case 'w':
		span = "week"
	default:
		return Timeframe{}, fmt.Errorf("%w: %q", ErrTimeframe, s)
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrTimeframe, s)
	}
	return Timeframe{Multiplier: n, Timespan: span}, nil
}

// FetchBars returns the bars for ticker between start and end, oldest
// first. It returns nil, nil when the provider has no data for the range.
func (c *Client) FetchBars(ctx context.Context, ticker string, start, end time.Time, timeframe string) ([]market.Candle, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("marketdata: missing base url")
	}
	if ticker == "" {
		return nil, fmt.Errorf("marketdata: missing ticker")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("marketdata: end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	tf, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = strings.TrimRight(u.Path, "/") + fmt.Sprintf("/v2/aggs/ticker/%s/range/%d/%s/%d/%d",
		ticker, tf.Multiplier, tf.Timespan, start.UnixMilli(), end.UnixMilli())

	q := u.Query()
	q.Set("adjusted", "true")
	q.Set("sort", "asc")
	if c.APIKey != "" {
		q.Set("apiKey", c.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("marketdata http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var ar aggsResp
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(ar.Results) == 0 {
		return nil, nil
	}

	out := make([]market.Candle, 0, len(ar.Results))
	for _, r := range ar.Results {
		out = append(out, market.Candle{
			Time:   time.UnixMilli(r.T).UTC(),
			Open:   r.O,
			High:   r.H,
			Low:    r.L,
			Close:  r.C,
			Volume: r.V,
		})
	}
	return out, nil
}

// WriteCSV writes bars as time,open,high,low,close,volume.
func WriteCSV(w io.Writer, bars []market.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		err := cw.Write([]string{
			b.Time.Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
