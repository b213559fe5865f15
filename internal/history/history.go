// Package history builds the historical gold price table: two daily close
// series joined on date, with the gold price converted to a second currency.
package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"goldpredict/internal/marketdata"
)

// ErrNoOverlap is returned when the two series share no date.
var ErrNoOverlap = errors.New("series have no dates in common")

const dateLayout = "2006-01-02"

// Row is one trading day of the output table.
type Row struct {
	Date       time.Time
	GoldSource float64
	Rate       float64
	GoldTarget float64
}

// Columns names the CSV header.
type Columns struct {
	Date       string
	GoldSource string
	Rate       string
	GoldTarget string
}

// DefaultColumns matches a USD gold series converted to GBP with GBPUSD=X.
var DefaultColumns = Columns{
	Date:       "Date",
	GoldSource: "Gold_USD",
	Rate:       "GBP_to_USD",
	GoldTarget: "Gold_GBP",
}

// Window returns the range [now - months, now]. The start day is clamped to
// the end of a shorter month, so Aug 31 minus 6 months is Feb 28 (or 29).
func Window(now time.Time, months int) (from, to time.Time) {
	y, m, d := now.Date()
	first := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1).Day()
	from = time.Date(first.Year(), first.Month(), min(d, last),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	return from, now
}

// Join pairs the two series on date, keeping only dates present in both.
// Rows come back in ascending date order; GoldTarget is left for Derive.
func Join(gold, rate []marketdata.Point) []Row {
	rates := make(map[time.Time]float64, len(rate))
	for _, p := range rate {
		rates[p.Date] = p.Close
	}

	byDate := make(map[time.Time]Row, len(gold))
	for _, p := range gold {
		r, ok := rates[p.Date]
		if !ok {
			continue
		}
		byDate[p.Date] = Row{Date: p.Date, GoldSource: p.Close, Rate: r}
	}

	rows := make([]Row, 0, len(byDate))
	for _, r := range byDate {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// Derive fills GoldTarget = GoldSource / Rate.
func Derive(rows []Row) error {
	for i := range rows {
		if rows[i].Rate == 0 {
			return fmt.Errorf("zero exchange rate on %s", rows[i].Date.Format(dateLayout))
		}
		rows[i].GoldTarget = rows[i].GoldSource / rows[i].Rate
	}
	return nil
}

// WriteCSV writes the header and one line per row.
func WriteCSV(w io.Writer, rows []Row, cols Columns) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{cols.Date, cols.GoldSource, cols.Rate, cols.GoldTarget}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.fields()); err != nil {
			return fmt.Errorf("failed to write row %s: %w", r.Date.Format(dateLayout), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r Row) fields() []string {
	return []string{
		r.Date.Format(dateLayout),
		formatFloat(r.GoldSource),
		formatFloat(r.Rate),
		formatFloat(r.GoldTarget),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Options configures Run.
type Options struct {
	GoldTicker string
	RateTicker string
	Months     int
	OutputPath string
	Columns    Columns
	Now        time.Time
}

// Run fetches both series, builds the table and overwrites OutputPath.
// Any failure aborts the run; nothing is retried.
func Run(ctx context.Context, src marketdata.Source, opts Options) ([]Row, error) {
	from, to := Window(opts.Now, opts.Months)

	gold, err := src.DailyCloses(ctx, opts.GoldTicker, from, to)
	if err != nil {
		return nil, fmt.Errorf("gold series: %w", err)
	}
	rate, err := src.DailyCloses(ctx, opts.RateTicker, from, to)
	if err != nil {
		return nil, fmt.Errorf("exchange rate series: %w", err)
	}

	rows := Join(gold, rate)
	if len(rows) == 0 {
		return nil, ErrNoOverlap
	}
	if err := Derive(rows); err != nil {
		return nil, err
	}

	err = writeFile(opts.OutputPath, func(w io.Writer) error {
		return WriteCSV(w, rows, opts.Columns)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// writeFile replaces path through a temp file in the same directory, so a
// failed write never leaves a truncated table behind.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
