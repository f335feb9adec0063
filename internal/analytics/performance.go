package analytics

import (
	"sort"
	"time"

	"backtestAnalyzer/internal/domain"
)

// PerformanceMetrics holds equity-curve metrics for a run, computed in exit order.
type PerformanceMetrics struct {
	TotalTrades     int
	AccountSize     float64
	FinalBalance    float64
	ReturnOnAccount float64 // (FinalBalance - AccountSize) / AccountSize

	MaxDrawdown       float64 // Deepest fall from a peak, as a fraction of that peak
	MaxDrawdownAmount float64 // Largest fall from a peak in dollars
	ProfitFactor      float64 // Sum of wins / |sum of losses|, 0 without losses
	Expectancy        float64 // Average net P&L per trade

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageTradeDuration time.Duration

	DailyReturns map[string]float64 // Net P&L keyed by exit date (2006-01-02)
	Drawdowns    []Drawdown
}

// Drawdown represents a period spent below a previous equity peak.
type Drawdown struct {
	StartTime time.Time
	EndTime   time.Time
	Peak      float64
	Trough    float64
	Depth     float64 // (Peak - Trough) / Peak
	Recovered bool    // Equity got back to Peak before the run ended
}

// AnalyzePerformance replays trades in exit-time order on top of accountSize.
// trades is not modified.
func AnalyzePerformance(trades []*domain.Trade, accountSize float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		AccountSize:  accountSize,
		FinalBalance: accountSize,
		DailyReturns: make(map[string]float64),
		Drawdowns:    make([]Drawdown, 0),
	}

	if len(trades) == 0 {
		return metrics
	}

	ordered := make([]*domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime.Before(ordered[j].ExitTime)
	})

	var balance = accountSize
	var peak = accountSize
	var current *Drawdown
	var consecutiveWins, consecutiveLosses int
	var winSum, lossSum, total float64
	var totalDuration time.Duration

	for _, trade := range ordered {
		pnl := trade.NetPnL.InexactFloat64()
		metrics.TotalTrades++
		total += pnl
		totalDuration += trade.HoldingTime()

		switch {
		case trade.IsWin():
			winSum += pnl
			consecutiveWins++
			consecutiveLosses = 0
		case trade.IsLoss():
			lossSum += pnl
			consecutiveLosses++
			consecutiveWins = 0
		default:
			consecutiveWins, consecutiveLosses = 0, 0
		}
		metrics.MaxConsecutiveWins = max(metrics.MaxConsecutiveWins, consecutiveWins)
		metrics.MaxConsecutiveLosses = max(metrics.MaxConsecutiveLosses, consecutiveLosses)

		balance += pnl
		metrics.DailyReturns[trade.ExitTime.Format("2006-01-02")] += pnl

		if balance >= peak {
			peak = balance
			if current != nil {
				current.EndTime = trade.ExitTime
				current.Recovered = true
				metrics.Drawdowns = append(metrics.Drawdowns, *current)
				current = nil
			}
			continue
		}

		var depth float64
		if peak > 0 {
			depth = (peak - balance) / peak
		}
		if current == nil {
			current = &Drawdown{StartTime: trade.ExitTime, Peak: peak, Trough: balance}
		}
		if balance < current.Trough {
			current.Trough = balance
		}
		current.Depth = max(current.Depth, depth)
		metrics.MaxDrawdown = max(metrics.MaxDrawdown, depth)
		metrics.MaxDrawdownAmount = max(metrics.MaxDrawdownAmount, peak-balance)
	}

	// Close any open drawdown
	if current != nil {
		current.EndTime = ordered[len(ordered)-1].ExitTime
		metrics.Drawdowns = append(metrics.Drawdowns, *current)
	}

	metrics.FinalBalance = balance
	if accountSize != 0 {
		metrics.ReturnOnAccount = (balance - accountSize) / accountSize
	}
	if lossSum != 0 {
		metrics.ProfitFactor = winSum / -lossSum
	}
	metrics.Expectancy = total / float64(metrics.TotalTrades)
	metrics.AverageTradeDuration = totalDuration / time.Duration(metrics.TotalTrades)

	return metrics
}

// GetDailyReturns returns the daily net P&L sorted by date.
func (m *PerformanceMetrics) GetDailyReturns() []DailyReturn {
	returns := make([]DailyReturn, 0, len(m.DailyReturns))
	for day, pnl := range m.DailyReturns {
		date, _ := time.Parse("2006-01-02", day)
		returns = append(returns, DailyReturn{
			Day:    date,
			Return: pnl,
		})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Day.Before(returns[j].Day)
	})
	return returns
}

// DailyReturn represents one trading day's net P&L.
type DailyReturn struct {
	Day    time.Time
	Return float64
}

// WorstDay returns the daily return with the lowest P&L. ok is false with no trades.
func (m *PerformanceMetrics) WorstDay() (DailyReturn, bool) {
	days := m.GetDailyReturns()
	if len(days) == 0 {
		return DailyReturn{}, false
	}
	worst := days[0]
	for _, d := range days[1:] {
		if d.Return < worst.Return {
			worst = d
		}
	}
	return worst, true
}
