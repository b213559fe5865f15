// Command fetchgold downloads six months of gold futures and GBP/USD closes
// and writes the joined table, with gold converted to GBP, to a CSV file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"goldpredict/internal/config"
	"goldpredict/internal/history"
	"goldpredict/internal/marketdata"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("warning: %v", err)
	}

	v := viper.New()
	flags := pflag.NewFlagSet("fetchgold", pflag.ExitOnError)
	flags.String("gold-ticker", "GC=F", "gold price ticker")
	flags.String("fx-ticker", "GBPUSD=X", "exchange rate ticker, quoted as target currency in source currency")
	flags.Int("months", 6, "length of the trailing window in months")
	flags.String("output", "gold_prices_uk_6months.csv", "output CSV path")
	flags.String("base-url", marketdata.DefaultBaseURL, "market data API base URL")
	flags.Duration("timeout", 30*time.Second, "timeout of each API call")
	flags.Int("tail", 5, "rows to print after writing")
	flags.String("col-gold", history.DefaultColumns.GoldSource, "header of the source currency gold column")
	flags.String("col-rate", history.DefaultColumns.Rate, "header of the exchange rate column")
	flags.String("col-target", history.DefaultColumns.GoldTarget, "header of the target currency gold column")
	flags.String("log-level", "info", "log level")
	_ = flags.Parse(os.Args[1:])

	for key, flag := range map[string]string{
		"GOLD_TICKER":    "gold-ticker",
		"FX_TICKER":      "fx-ticker",
		"MONTHS":         "months",
		"OUTPUT_FILE":    "output",
		"MARKETDATA_URL": "base-url",
		"FETCH_TIMEOUT":  "timeout",
		"TAIL_ROWS":      "tail",
		"COL_GOLD":       "col-gold",
		"COL_RATE":       "col-rate",
		"COL_TARGET":     "col-target",
		"LOG_LEVEL":      "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("Failed to bind flag %s: %v", flag, err)
		}
	}
	v.AutomaticEnv()

	logger, err := config.NewLogger(v.GetString("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if v.GetInt("MONTHS") <= 0 {
		logger.Fatal("months must be positive", zap.Int("months", v.GetInt("MONTHS")))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cols := history.Columns{
		Date:       history.DefaultColumns.Date,
		GoldSource: v.GetString("COL_GOLD"),
		Rate:       v.GetString("COL_RATE"),
		GoldTarget: v.GetString("COL_TARGET"),
	}
	opts := history.Options{
		GoldTicker: v.GetString("GOLD_TICKER"),
		RateTicker: v.GetString("FX_TICKER"),
		Months:     v.GetInt("MONTHS"),
		OutputPath: v.GetString("OUTPUT_FILE"),
		Columns:    cols,
		Now:        time.Now(),
	}
	client := marketdata.NewClient(v.GetString("MARKETDATA_URL"), v.GetDuration("FETCH_TIMEOUT"))

	logger.Info("fetching history",
		zap.String("gold", opts.GoldTicker),
		zap.String("fx", opts.RateTicker),
		zap.Int("months", opts.Months))

	rows, err := history.Run(ctx, client, opts)
	if err != nil {
		logger.Fatal("fetch failed", zap.Error(err))
	}

	fmt.Println(history.Tail(rows, v.GetInt("TAIL_ROWS"), cols))
	logger.Info("history written", zap.String("path", opts.OutputPath), zap.Int("rows", len(rows)))
}
