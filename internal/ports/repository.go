package ports

import (
	"context"

	"backtestAnalyzer/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving journaled trades.
type TradeRepository interface {
	// CreateTrade saves a new trade record and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// CreateTrades saves a batch of trades atomically, in order.
	CreateTrades(ctx context.Context, trades []*domain.Trade) error
	// FindAll retrieves every trade in insertion order.
	FindAll(ctx context.Context) ([]*domain.Trade, error)
	// FindByTicker retrieves the trades for a ticker in insertion order.
	FindByTicker(ctx context.Context, ticker string) ([]*domain.Trade, error)
	// Count returns the number of journaled trades.
	Count(ctx context.Context) (int, error)
}
