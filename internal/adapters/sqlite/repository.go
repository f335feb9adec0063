package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"backtestAnalyzer/internal/domain"
	"backtestAnalyzer/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout keeps the recorded UTC offset so hour-of-day grouping survives a round trip.
const timeLayout = time.RFC3339Nano

// Repository implements ports.TradeRepository on a SQLite trade journal.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
	// ReadOnly opens an existing journal without creating or migrating it.
	ReadOnly bool
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for SQLite repository", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trade_journal.db"
	}
	ctx := context.Background()

	var dsn string
	if cfg.ReadOnly {
		// A missing journal is an input error, not a connection error.
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrFileAccess, err)
		}
		dsn = "file:" + dbPath + "?mode=ro&_busy_timeout=5000"
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			err = fmt.Errorf("%w: failed to create data directory '%s': %w", ports.ErrDBConnection, filepath.Dir(dbPath), err)
			cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
			return nil, err
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Debug(ctx, "SQLite database connection established", map[string]interface{}{"path": dbPath, "readOnly": cfg.ReadOnly})

	repo := &Repository{db: db, logger: cfg.Logger}
	if cfg.ReadOnly {
		return repo, nil
	}

	if err := repo.initializeSchema(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(ctx, "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates the journal table if it doesn't exist.
// Money columns are TEXT so decimal values round-trip exactly.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_time TEXT NOT NULL,
		exit_time TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		exit_price TEXT NOT NULL,
		shares INTEGER NOT NULL,
		reason TEXT NOT NULL,
		gross_pnl TEXT NOT NULL,
		commission TEXT NOT NULL,
		net_pnl TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trade_history_ticker ON trade_history (ticker);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to execute schema initialization: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

const insertTrade = `
	INSERT INTO trade_history (ticker, direction, entry_time, exit_time, entry_price, exit_price,
	                           shares, reason, gross_pnl, commission, net_pnl)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectTrades = `
	SELECT id, ticker, direction, entry_time, exit_time, entry_price, exit_price,
	       shares, reason, gross_pnl, commission, net_pnl
	FROM trade_history`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insert(ctx context.Context, e execer, trade *domain.Trade) (int64, error) {
	result, err := e.ExecContext(ctx, insertTrade,
		trade.Ticker, string(trade.Direction),
		trade.EntryTime.Format(timeLayout), trade.ExitTime.Format(timeLayout),
		trade.EntryPrice, trade.ExitPrice, trade.Shares, trade.Reason,
		trade.GrossPnL, trade.Commission, trade.NetPnL)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert trade for ticker %s: %w", ports.ErrQueryFailed, trade.Ticker, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get last insert ID for trade %s: %w", ports.ErrQueryFailed, trade.Ticker, err)
	}
	trade.ID = id
	return id, nil
}

// CreateTrade saves a new trade record and returns its assigned ID.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	id, err := insert(ctx, r.db, trade)
	if err != nil {
		return 0, err
	}
	r.logger.Debug(ctx, "Trade journaled", map[string]interface{}{"tradeID": id, "ticker": trade.Ticker, "netPnL": trade.NetPnL.String()})
	return id, nil
}

// CreateTrades saves trades in one transaction; either all rows land or none do.
func (r *Repository) CreateTrades(ctx context.Context, trades []*domain.Trade) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ports.ErrQueryFailed, err)
	}
	for _, trade := range trades {
		if _, err := insert(ctx, tx, trade); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error(ctx, rbErr, "Failed to roll back trade import")
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit trades: %w", ports.ErrQueryFailed, err)
	}
	r.logger.Info(ctx, "Trades journaled", map[string]interface{}{"count": len(trades)})
	return nil
}

// FindAll retrieves every trade in insertion order.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Trade, error) {
	return r.query(ctx, "FindAll", selectTrades+` ORDER BY id`)
}

// FindByTicker retrieves the trades for a ticker in insertion order.
func (r *Repository) FindByTicker(ctx context.Context, ticker string) ([]*domain.Trade, error) {
	return r.query(ctx, "FindByTicker", selectTrades+` WHERE ticker = ? ORDER BY id`, ticker)
}

// Count returns the number of journaled trades.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trade_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count trades: %w", ports.ErrQueryFailed, err)
	}
	return count, nil
}

func (r *Repository) query(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrQueryFailed, op, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan trade during %s: %w", ports.ErrQueryFailed, op, err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating trade rows: %w", ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Trades loaded from journal", map[string]interface{}{"op": op, "count": len(trades)})
	return trades, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var direction, entryTime, exitTime string
	err := s.Scan(
		&t.ID, &t.Ticker, &direction, &entryTime, &exitTime, &t.EntryPrice, &t.ExitPrice,
		&t.Shares, &t.Reason, &t.GrossPnL, &t.Commission, &t.NetPnL)
	if err != nil {
		return nil, err
	}

	if t.Direction, err = domain.ParseDirection(direction); err != nil {
		return nil, fmt.Errorf("trade %d: %w", t.ID, err)
	}
	if t.EntryTime, err = time.Parse(timeLayout, entryTime); err != nil {
		return nil, fmt.Errorf("trade %d entry_time: %w", t.ID, err)
	}
	if t.ExitTime, err = time.Parse(timeLayout, exitTime); err != nil {
		return nil, fmt.Errorf("trade %d exit_time: %w", t.ID, err)
	}
	return t, nil
}

var _ ports.TradeRepository = (*Repository)(nil)
