package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"backtestAnalyzer/config"
	"backtestAnalyzer/internal/adapters/logger"
	"backtestAnalyzer/internal/adapters/source"
	"backtestAnalyzer/internal/app"
	"backtestAnalyzer/internal/ports"
	"backtestAnalyzer/internal/report"
)

const usage = "Usage: compare_results <csv_file1> [csv_file2] ..."

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.LogLevel)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := run(ctx, cfg, appLogger, os.Args[1:])
	if err != nil {
		appLogger.Error(ctx, err, "Comparison failed")
		appLogger.Sync()
		if errors.Is(err, ports.ErrUsage) {
			fmt.Println(usage)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	os.Stdout.Write(out)
}

func run(ctx context.Context, cfg *config.Config, appLogger ports.Logger, paths []string) ([]byte, error) {
	baseline, err := report.LoadBaseline()
	if err != nil {
		return nil, err
	}

	svc, err := app.NewAnalysisService(cfg, appLogger, source.NewFileSource(appLogger))
	if err != nil {
		return nil, err
	}

	comparison, err := svc.Compare(ctx, paths)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := report.WriteComparison(&buf, comparison, baseline); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}
