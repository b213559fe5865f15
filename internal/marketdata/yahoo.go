// Package marketdata fetches daily price series from the Yahoo Finance chart API.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultBaseURL is the public chart API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the provider has no closes for the window.
var ErrNoData = errors.New("no price data")

// Point is one daily close. Date is the trading day at UTC midnight.
type Point struct {
	Date  time.Time
	Close float64
}

// Source provides daily closing prices.
type Source interface {
	DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]Point, error)
}

// Client reads the chart API over HTTP.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
		userAgent: "Mozilla/5.0 (compatible; goldpredict-fetcher)",
	}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// DailyCloses returns the closes of ticker between from and to, oldest first.
// Days without a close are skipped.
func (c *Client) DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	code, body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ticker, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if code != fiber.StatusOK {
			return nil, fmt.Errorf("failed to fetch %s: status %d", ticker, code)
		}
		return nil, fmt.Errorf("failed to decode chart for %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("failed to fetch %s: %s: %s", ticker, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", ticker, code)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}

	points, err := resp.Chart.Result[0].points()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}
	return points, nil
}

type fetchResult struct {
	code int
	body []byte
	errs []error
}

// get runs the request on its own goroutine so a cancelled ctx returns at
// once instead of waiting out the agent timeout.
func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	agent := fiber.Get(endpoint)
	agent.Set(fiber.HeaderUserAgent, c.userAgent)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	done := make(chan fetchResult, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- fetchResult{code: code, body: body, errs: errs}
	}()

	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case r := <-done:
		if len(r.errs) > 0 {
			return 0, nil, errors.Join(r.errs...)
		}
		return r.code, r.body, nil
	}
}

func (r chartResult) points() ([]Point, error) {
	if len(r.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := r.Indicators.Quote[0].Close
	if len(closes) != len(r.Timestamp) {
		return nil, fmt.Errorf("chart has %d timestamps but %d closes", len(r.Timestamp), len(closes))
	}

	points := make([]Point, 0, len(closes))
	for i, ts := range r.Timestamp {
		if closes[i] == nil {
			continue
		}
		// Shift into exchange time before truncating so the date is the trading day.
		local := time.Unix(ts+r.Meta.GMTOffset, 0).UTC()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		points = append(points, Point{Date: day, Close: *closes[i]})
	}
	return points, nil
}
