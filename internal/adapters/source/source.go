package source

import (
	"context"
	"path/filepath"
	"strings"

	"backtestAnalyzer/internal/adapters/sqlite"
	"backtestAnalyzer/internal/domain"
	"backtestAnalyzer/internal/ports"
	"backtestAnalyzer/internal/utils"
)

// journalExtensions mark paths that are read as SQLite trade journals.
var journalExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// FileSource implements ports.TradeSource for trade log files on disk.
// CSV logs are parsed directly; journal files are opened read-only.
type FileSource struct {
	logger ports.Logger
}

// NewFileSource creates a FileSource.
func NewFileSource(logger ports.Logger) *FileSource {
	return &FileSource{logger: logger}
}

// IsJournal reports whether path is loaded from a SQLite trade journal.
func IsJournal(path string) bool {
	return journalExtensions[strings.ToLower(filepath.Ext(path))]
}

// LoadTrades reads every trade recorded at path, in source order.
func (s *FileSource) LoadTrades(ctx context.Context, path string) ([]*domain.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !IsJournal(path) {
		trades, err := utils.ReadTradesFromCSV(path)
		if err != nil {
			return nil, err
		}
		s.logger.Debug(ctx, "Trade log parsed", map[string]interface{}{"path": path, "trades": len(trades)})
		return trades, nil
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: path, Logger: s.logger, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	trades, err := repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Trade journal read", map[string]interface{}{"path": path, "trades": len(trades)})
	return trades, nil
}

var _ ports.TradeSource = (*FileSource)(nil)
