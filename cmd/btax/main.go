package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"btax/internal/config"
	"btax/internal/report"
	"btax/internal/source"
	"btax/internal/tax"
)

func main() {
	_ = godotenv.Load()

	in := flag.String("in", os.Getenv("BTAX_IN"), "directory with exchange transaction history csv files")
	out := flag.String("out", os.Getenv("BTAX_OUT"), "directory to write per-year gains csv files to")
	cfgPath := flag.String("config", os.Getenv("BTAX_CONFIG"), "optional yaml config file")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.ReadFromFile(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	strategy, err := tax.StrategyForName(cfg.Strategy)
	if err != nil {
		log.Fatal(err)
	}

	dust, err := cfg.Dust()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.Default()

	txs, err := source.Load(context.Background(), *in)
	if err != nil {
		log.Fatal(err)
	}

	buys, sells := tax.Partition(txs)

	m := tax.NewMatcher(strategy, tax.WithDustTolerance(dust), tax.WithLogger(logger))
	gains, pool, err := m.Match(buys, sells)
	if err != nil {
		log.Fatal(err)
	}

	short, long := tax.Tabulate(gains)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}
	if err := report.WriteCSV(*out, short, long); err != nil {
		log.Fatal(err)
	}

	if cfg.Report.Summary {
		if err := report.WriteSummary(os.Stdout, gains); err != nil {
			log.Fatal(err)
		}
	}
	if cfg.Report.Chart != "" {
		if err := report.WriteChart(cfg.Report.Chart, gains); err != nil {
			log.Fatal(err)
		}
	}

	logger.Info("report complete",
		slog.String("strategy", cfg.Strategy),
		slog.Int("transactions", len(txs)),
		slog.Int("gains", len(gains)),
		slog.String("holdings_btc", pool.Total().String()),
		slog.String("out", *out))
}
