package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"backtestAnalyzer/internal/domain"
)

// AggregateStats summarises a set of trades. All money fields are net of
// commission unless named otherwise. Breakeven trades count towards Count only.
type AggregateStats struct {
	Count   int
	Wins    int
	Losses  int
	WinRate float64 // Percent of Count, 0 when Count is 0

	TotalNetPnL     decimal.Decimal
	TotalGrossPnL   decimal.Decimal
	TotalCommission decimal.Decimal
	TotalWinPnL     decimal.Decimal // Sum of NetPnL over wins
	TotalLossPnL    decimal.Decimal // Sum of NetPnL over losses (<= 0)

	AvgPnL  decimal.Decimal // TotalNetPnL / Count
	AvgWin  decimal.Decimal // TotalWinPnL / Wins
	AvgLoss decimal.Decimal // TotalLossPnL / Losses

	LargestWin  decimal.Decimal // Max NetPnL seen, 0 when Count is 0
	LargestLoss decimal.Decimal // Min NetPnL seen, 0 when Count is 0

	TotalHold time.Duration
	AvgHold   time.Duration
}

// Aggregate computes statistics for trades in a single pass.
func Aggregate(trades []*domain.Trade) AggregateStats {
	var s AggregateStats
	for _, t := range trades {
		s.add(t)
	}
	s.finalize()
	return s
}

func (s *AggregateStats) add(t *domain.Trade) {
	if s.Count == 0 {
		s.LargestWin = t.NetPnL
		s.LargestLoss = t.NetPnL
	} else {
		s.LargestWin = decimal.Max(s.LargestWin, t.NetPnL)
		s.LargestLoss = decimal.Min(s.LargestLoss, t.NetPnL)
	}

	s.Count++
	s.TotalNetPnL = s.TotalNetPnL.Add(t.NetPnL)
	s.TotalGrossPnL = s.TotalGrossPnL.Add(t.GrossPnL)
	s.TotalCommission = s.TotalCommission.Add(t.Commission)
	s.TotalHold += t.HoldingTime()

	switch {
	case t.IsWin():
		s.Wins++
		s.TotalWinPnL = s.TotalWinPnL.Add(t.NetPnL)
	case t.IsLoss():
		s.Losses++
		s.TotalLossPnL = s.TotalLossPnL.Add(t.NetPnL)
	}
}

// finalize derives the ratio fields from the accumulated sums.
func (s *AggregateStats) finalize() {
	s.WinRate = 0
	s.AvgPnL = decimal.Zero
	s.AvgWin = decimal.Zero
	s.AvgLoss = decimal.Zero
	s.AvgHold = 0

	if s.Count > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Count) * 100
		s.AvgPnL = s.TotalNetPnL.Div(decimal.NewFromInt(int64(s.Count)))
		s.AvgHold = s.TotalHold / time.Duration(s.Count)
	}
	if s.Wins > 0 {
		s.AvgWin = s.TotalWinPnL.Div(decimal.NewFromInt(int64(s.Wins)))
	}
	if s.Losses > 0 {
		s.AvgLoss = s.TotalLossPnL.Div(decimal.NewFromInt(int64(s.Losses)))
	}
}

// Merge combines statistics of two disjoint trade sets. The result equals
// Aggregate over the concatenation of both sets.
func Merge(a, b AggregateStats) AggregateStats {
	if a.Count == 0 {
		return b
	}
	if b.Count == 0 {
		return a
	}

	m := AggregateStats{
		Count:           a.Count + b.Count,
		Wins:            a.Wins + b.Wins,
		Losses:          a.Losses + b.Losses,
		TotalNetPnL:     a.TotalNetPnL.Add(b.TotalNetPnL),
		TotalGrossPnL:   a.TotalGrossPnL.Add(b.TotalGrossPnL),
		TotalCommission: a.TotalCommission.Add(b.TotalCommission),
		TotalWinPnL:     a.TotalWinPnL.Add(b.TotalWinPnL),
		TotalLossPnL:    a.TotalLossPnL.Add(b.TotalLossPnL),
		LargestWin:      decimal.Max(a.LargestWin, b.LargestWin),
		LargestLoss:     decimal.Min(a.LargestLoss, b.LargestLoss),
		TotalHold:       a.TotalHold + b.TotalHold,
	}
	m.finalize()
	return m
}

// MergeAll folds Merge over stats.
func MergeAll(stats ...AggregateStats) AggregateStats {
	var total AggregateStats
	for _, s := range stats {
		total = Merge(total, s)
	}
	return total
}

// LossRate is the percentage of trades that lost money.
func (s AggregateStats) LossRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Losses) / float64(s.Count) * 100
}

// ShareOf returns s.Count as a percentage of total trades.
func (s AggregateStats) ShareOf(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(s.Count) / float64(total) * 100
}
