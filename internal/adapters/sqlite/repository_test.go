package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backtestAnalyzer/internal/domain"
	"backtestAnalyzer/internal/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "journal", "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo, dbPath
}

var est = time.FixedZone("EST", -5*60*60)

func sampleTrade(ticker string, net string, reason string) *domain.Trade {
	entry := time.Date(2024, 1, 5, 9, 45, 0, 0, est)
	return &domain.Trade{
		Ticker:     ticker,
		Direction:  domain.Short,
		EntryTime:  entry,
		ExitTime:   entry.Add(25*time.Minute + 500*time.Millisecond),
		EntryPrice: decimal.RequireFromString("187.42"),
		ExitPrice:  decimal.RequireFromString("186.10"),
		Shares:     100,
		Reason:     reason,
		GrossPnL:   decimal.RequireFromString(net).Add(decimal.RequireFromString("1.05")),
		Commission: decimal.RequireFromString("1.05"),
		NetPnL:     decimal.RequireFromString(net),
	}
}

func TestRepository_CreateAndFindTrade(t *testing.T) {
	tests := []struct {
		name  string
		trade *domain.Trade
	}{
		{
			name:  "short winner",
			trade: sampleTrade("AAPL", "130.95", domain.ReasonTarget1),
		},
		{
			name: "long loser with exact cents",
			trade: func() *domain.Trade {
				tr := sampleTrade("TSLA", "-0.10", domain.ReasonStopLoss)
				tr.Direction = domain.Long
				return tr
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := setupTestDB(t)
			ctx := context.Background()

			id, err := repo.CreateTrade(ctx, tt.trade)
			require.NoError(t, err)
			assert.Greater(t, id, int64(0))
			assert.Equal(t, id, tt.trade.ID)

			found, err := repo.FindByTicker(ctx, tt.trade.Ticker)
			require.NoError(t, err)
			require.Len(t, found, 1)

			got := found[0]
			assert.Equal(t, tt.trade.Ticker, got.Ticker)
			assert.Equal(t, tt.trade.Direction, got.Direction)
			assert.Equal(t, tt.trade.Shares, got.Shares)
			assert.Equal(t, tt.trade.Reason, got.Reason)
			assert.True(t, tt.trade.EntryTime.Equal(got.EntryTime))
			assert.True(t, tt.trade.ExitTime.Equal(got.ExitTime))
			assert.Equal(t, 9, got.EntryTime.Hour(), "recorded offset is preserved")
			assert.True(t, tt.trade.EntryPrice.Equal(got.EntryPrice))
			assert.True(t, tt.trade.ExitPrice.Equal(got.ExitPrice))
			assert.True(t, tt.trade.GrossPnL.Equal(got.GrossPnL))
			assert.True(t, tt.trade.Commission.Equal(got.Commission))
			assert.True(t, tt.trade.NetPnL.Equal(got.NetPnL), "want %s got %s", tt.trade.NetPnL, got.NetPnL)
		})
	}
}

func TestRepository_CreateTradesKeepsOrder(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	trades := []*domain.Trade{
		sampleTrade("NVDA", "50", domain.ReasonTarget2),
		sampleTrade("AAPL", "-20", domain.ReasonEndOfDay),
		sampleTrade("NVDA", "-75", domain.ReasonStopLoss),
	}
	require.NoError(t, repo.CreateTrades(ctx, trades))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"NVDA", "AAPL", "NVDA"}, []string{all[0].Ticker, all[1].Ticker, all[2].Ticker})

	nvda, err := repo.FindByTicker(ctx, "NVDA")
	require.NoError(t, err)
	require.Len(t, nvda, 2)
	assert.Equal(t, domain.ReasonTarget2, nvda[0].Reason)
	assert.Equal(t, domain.ReasonStopLoss, nvda[1].Reason)

	none, err := repo.FindByTicker(ctx, "MSFT")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_CreateTradesRollsBackOnCancel(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.CreateTrades(ctx, []*domain.Trade{sampleTrade("AAPL", "1", domain.ReasonManual)})
	require.Error(t, err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRepository_ReadOnly(t *testing.T) {
	t.Run("reads an existing journal", func(t *testing.T) {
		repo, dbPath := setupTestDB(t)
		_, err := repo.CreateTrade(context.Background(), sampleTrade("AAPL", "10", domain.ReasonTimeDecay))
		require.NoError(t, err)
		require.NoError(t, repo.Close())

		ro, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}, ReadOnly: true})
		require.NoError(t, err)
		defer ro.Close()

		trades, err := ro.FindAll(context.Background())
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, domain.ReasonTimeDecay, trades[0].Reason)

		_, err = ro.CreateTrade(context.Background(), sampleTrade("AAPL", "10", domain.ReasonManual))
		assert.ErrorIs(t, err, ports.ErrQueryFailed)
	})

	t.Run("missing journal", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "absent.db")

		_, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}, ReadOnly: true})
		assert.ErrorIs(t, err, ports.ErrFileAccess)
		assert.ErrorIs(t, err, os.ErrNotExist)

		_, statErr := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(statErr), "read-only open must not create the file")
	})
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}
