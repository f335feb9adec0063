package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents one closed round-trip position from a backtest log.
// Trades are not modified after parsing.
type Trade struct {
	ID         int64           // Journal row ID (zero when read from CSV)
	Ticker     string          // Symbol (e.g., "AAPL")
	Direction  Direction       // LONG or SHORT
	EntryTime  time.Time       // Entry timestamp, in the offset found in the source
	ExitTime   time.Time       // Exit timestamp, never before EntryTime
	EntryPrice decimal.Decimal // Fill price at entry
	ExitPrice  decimal.Decimal // Fill price at exit
	Shares     int             // Quantity traded
	Reason     string          // Exit reason label, see reason.go
	GrossPnL   decimal.Decimal // P&L before commission
	Commission decimal.Decimal // Commission paid for the round trip
	NetPnL     decimal.Decimal // GrossPnL - Commission
}

// HoldingTime returns how long the position was open.
func (t *Trade) HoldingTime() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// DurationBucket returns the holding-time bucket of the trade.
func (t *Trade) DurationBucket() DurationBucket {
	return BucketForDuration(t.HoldingTime())
}

// IsWin reports a strictly positive net P&L.
func (t *Trade) IsWin() bool {
	return t.NetPnL.IsPositive()
}

// IsLoss reports a strictly negative net P&L. Breakeven trades are neither.
func (t *Trade) IsLoss() bool {
	return t.NetPnL.IsNegative()
}
