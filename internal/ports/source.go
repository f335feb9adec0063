package ports

import (
	"context"

	"backtestAnalyzer/internal/domain"
)

// TradeSource loads the trades recorded at a path (a CSV log or a trade journal).
type TradeSource interface {
	// LoadTrades returns the trades in source order.
	// Missing files yield an error wrapping ErrFileAccess; bad rows a *ParseError.
	LoadTrades(ctx context.Context, path string) ([]*domain.Trade, error)
}
