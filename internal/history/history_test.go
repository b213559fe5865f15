package history_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"goldpredict/internal/history"
	"goldpredict/internal/marketdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]marketdata.Point, error) {
	args := m.Called(ctx, ticker, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketdata.Point), args.Error(1)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		now, from time.Time
	}{
		{day(2025, time.July, 15), day(2025, time.January, 15)},
		{day(2025, time.August, 31), day(2025, time.February, 28)},
		{day(2024, time.August, 31), day(2024, time.February, 29)},
		{day(2025, time.March, 10), day(2024, time.September, 10)},
	}
	for _, tt := range tests {
		from, to := history.Window(tt.now, 6)
		assert.Equal(t, tt.from, from, "now=%s", tt.now)
		assert.Equal(t, tt.now, to)
	}
}

func TestJoin_InnerJoinAscending(t *testing.T) {
	gold := []marketdata.Point{
		{Date: day(2025, 1, 3), Close: 2010},
		{Date: day(2025, 1, 1), Close: 2000},
		{Date: day(2025, 1, 2), Close: 2005},
	}
	fx := []marketdata.Point{
		{Date: day(2025, 1, 2), Close: 1.25},
		{Date: day(2025, 1, 3), Close: 1.20},
		{Date: day(2025, 1, 6), Close: 1.22},
	}

	rows := history.Join(gold, fx)
	require.Len(t, rows, 2)
	assert.Equal(t, day(2025, 1, 2), rows[0].Date)
	assert.Equal(t, 2005.0, rows[0].GoldSource)
	assert.Equal(t, 1.25, rows[0].Rate)
	assert.Equal(t, day(2025, 1, 3), rows[1].Date)

	assert.Empty(t, history.Join(gold, nil))
}

func TestDerive(t *testing.T) {
	rows := []history.Row{{Date: day(2025, 1, 2), GoldSource: 2000, Rate: 1.25}}
	require.NoError(t, history.Derive(rows))
	assert.Equal(t, 2000/1.25, rows[0].GoldTarget)

	err := history.Derive([]history.Row{{Date: day(2025, 1, 2), GoldSource: 2000, Rate: 0}})
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	rows := []history.Row{
		{Date: day(2025, 1, 2), GoldSource: 2000, Rate: 1.25, GoldTarget: 1600},
		{Date: day(2025, 1, 3), GoldSource: 2010.5, Rate: 1.2, GoldTarget: 1675.4166666666667},
	}
	var buf bytes.Buffer
	require.NoError(t, history.WriteCSV(&buf, rows, history.DefaultColumns))

	want := "Date,Gold_USD,GBP_to_USD,Gold_GBP\n" +
		"2025-01-02,2000,1.25,1600\n" +
		"2025-01-03,2010.5,1.2,1675.4166666666667\n"
	assert.Equal(t, want, buf.String())
}

func TestRun(t *testing.T) {
	now := day(2025, time.July, 15)
	from, to := history.Window(now, 6)
	out := filepath.Join(t.TempDir(), "gold.csv")
	require.NoError(t, os.WriteFile(out, []byte("stale content that must disappear\n"), 0o644))

	src := new(MockSource)
	src.On("DailyCloses", mock.Anything, "GC=F", from, to).Return([]marketdata.Point{
		{Date: day(2025, 7, 10), Close: 2400},
		{Date: day(2025, 7, 11), Close: 2420},
	}, nil).Once()
	src.On("DailyCloses", mock.Anything, "GBPUSD=X", from, to).Return([]marketdata.Point{
		{Date: day(2025, 7, 11), Close: 1.21},
		{Date: day(2025, 7, 10), Close: 1.2},
	}, nil).Once()

	rows, err := history.Run(context.Background(), src, history.Options{
		GoldTicker: "GC=F",
		RateTicker: "GBPUSD=X",
		Months:     6,
		OutputPath: out,
		Columns:    history.DefaultColumns,
		Now:        now,
	})
	require.NoError(t, err)
	src.AssertExpectations(t)
	require.Len(t, rows, 2)
	assert.Equal(t, 2400/1.2, rows[0].GoldTarget)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Gold_USD,GBP_to_USD,Gold_GBP", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2025-07-10,2400,1.2,"))
	assert.NotContains(t, string(data), "stale")

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_SourceFailureIsFatal(t *testing.T) {
	src := new(MockSource)
	src.On("DailyCloses", mock.Anything, "GC=F", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	out := filepath.Join(t.TempDir(), "gold.csv")
	_, err := history.Run(context.Background(), src, history.Options{
		GoldTicker: "GC=F", RateTicker: "GBPUSD=X", Months: 6, OutputPath: out,
		Columns: history.DefaultColumns, Now: time.Now(),
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gold series")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	src.AssertExpectations(t)
}

func TestRun_NoOverlap(t *testing.T) {
	src := new(MockSource)
	src.On("DailyCloses", mock.Anything, "GC=F", mock.Anything, mock.Anything).
		Return([]marketdata.Point{{Date: day(2025, 1, 1), Close: 1}}, nil)
	src.On("DailyCloses", mock.Anything, "GBPUSD=X", mock.Anything, mock.Anything).
		Return([]marketdata.Point{{Date: day(2025, 1, 2), Close: 1}}, nil)

	_, err := history.Run(context.Background(), src, history.Options{
		GoldTicker: "GC=F", RateTicker: "GBPUSD=X", Months: 6,
		OutputPath: filepath.Join(t.TempDir(), "gold.csv"), Columns: history.DefaultColumns, Now: time.Now(),
	})
	assert.ErrorIs(t, err, history.ErrNoOverlap)
}

func TestTail(t *testing.T) {
	var rows []history.Row
	for i := 1; i <= 8; i++ {
		rows = append(rows, history.Row{Date: day(2025, 1, i), GoldSource: float64(2000 + i), Rate: 1.25, GoldTarget: 1600})
	}

	out := history.Tail(rows, 5, history.DefaultColumns)
	assert.Contains(t, out, "Gold_GBP")
	assert.Contains(t, out, "2025-01-08")
	assert.Contains(t, out, "2025-01-04")
	assert.NotContains(t, out, "2025-01-03")
}
