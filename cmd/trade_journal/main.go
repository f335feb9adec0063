package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"backtestAnalyzer/config"
	"backtestAnalyzer/internal/adapters/logger"
	"backtestAnalyzer/internal/adapters/sqlite"
	"backtestAnalyzer/internal/domain"
	"backtestAnalyzer/internal/utils"
)

const usage = `Usage:
  trade_journal import [-db path] <csv_file1> [csv_file2] ...
  trade_journal export [-db path] [-ticker SYMBOL] <out.csv>`

func main() {
	if len(os.Args) < 2 || (os.Args[1] != "import" && os.Args[1] != "export") {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(cfg.LogLevel)
	defer appLogger.Sync()
	ctx := context.Background()

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	dbPath := fs.String("db", cfg.JournalDBPath, "trade journal database")
	ticker := fs.String("ticker", "", "export only this ticker")
	fs.Parse(os.Args[2:])

	if fs.NArg() == 0 {
		fmt.Println(usage)
		os.Exit(1)
	}

	// 3. Open the journal
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath:   *dbPath,
		Logger:   appLogger,
		ReadOnly: command == "export",
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to open trade journal")
		log.Fatalf("FATAL: Failed to open trade journal: %v", err)
	}
	defer repo.Close()

	if command == "import" {
		err = importLogs(ctx, repo, fs.Args())
	} else {
		err = exportLog(ctx, repo, *ticker, fs.Arg(0))
	}
	if err != nil {
		appLogger.Error(ctx, err, "Trade journal command failed")
		repo.Close()
		log.Fatalf("Error: %v", err)
	}
}

// importLogs parses each CSV fully before writing it, one transaction per file.
func importLogs(ctx context.Context, repo *sqlite.Repository, paths []string) error {
	for _, path := range paths {
		trades, err := utils.ReadTradesFromCSV(path)
		if err != nil {
			return err
		}
		if err := repo.CreateTrades(ctx, trades); err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		fmt.Printf("Imported %d trades from %s\n", len(trades), path)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Journal now holds %d trades\n", total)
	return nil
}

func exportLog(ctx context.Context, repo *sqlite.Repository, ticker, out string) error {
	var trades []*domain.Trade
	var err error
	if ticker != "" {
		trades, err = repo.FindByTicker(ctx, ticker)
	} else {
		trades, err = repo.FindAll(ctx)
	}
	if err != nil {
		return err
	}

	if err := utils.WriteTradesToCSV(trades, out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("Exported %d trades to %s\n", len(trades), out)
	return nil
}
