package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtestAnalyzer/config"
	"backtestAnalyzer/internal/app"
	"backtestAnalyzer/internal/domain"
	"backtestAnalyzer/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type nopSource struct{}

func (nopSource) LoadTrades(ctx context.Context, path string) ([]*domain.Trade, error) {
	return nil, ports.ErrFileAccess
}

var session = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func trade(ticker string, entryHour int, hold time.Duration, net string, reason string) *domain.Trade {
	entry := session.Add(time.Duration(entryHour) * time.Hour)
	netPnL := decimal.RequireFromString(net)
	return &domain.Trade{
		Ticker:     ticker,
		Direction:  domain.Short,
		EntryTime:  entry,
		ExitTime:   entry.Add(hold),
		EntryPrice: decimal.RequireFromString("187.42"),
		ExitPrice:  decimal.RequireFromString("186.1"),
		Shares:     100,
		Reason:     reason,
		GrossPnL:   netPnL.Add(decimal.NewFromInt(1)),
		Commission: decimal.NewFromInt(1),
		NetPnL:     netPnL,
	}
}

func newService(t *testing.T) *app.AnalysisService {
	t.Helper()
	svc, err := app.NewAnalysisService(&config.Config{
		LoadWorkers: 1,
		TopTrades:   10,
		TopTickers:  10,
		AccountSize: 25000,
	}, nopLogger{}, nopSource{})
	require.NoError(t, err)
	return svc
}

func sampleTrades() []*domain.Trade {
	return []*domain.Trade{
		trade("AAPL", 9, 20*time.Minute, "1500.25", domain.ReasonTarget1),
		trade("AAPL", 10, 45*time.Minute, "-180", domain.ReasonStopLoss),
		trade("TSLA", 14, 2*time.Hour, "-30", domain.ReasonEndOfDay),
		trade("NVDA", 11, 35*time.Minute, "-90", "Trailing Stop"),
	}
}

func TestWriteAnalysis_SectionsInOrder(t *testing.T) {
	a := newService(t).AnalyzeTrades(context.Background(), []string{"run1.csv"}, sampleTrades())

	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, a))
	out := buf.String()

	sections := []string{
		"BACKTEST ANALYSIS - IMPROVEMENT OPPORTUNITIES",
		"OVERALL STATISTICS",
		"EXIT REASON ANALYSIS",
		"END OF DAY EXITS - IMPROVEMENT OPPORTUNITY",
		"STOP LOSS ANALYSIS",
		"TRAILING STOP ANALYSIS",
		"TARGET EXITS ANALYSIS",
		"COMMISSION IMPACT",
		"TIME-BASED PATTERNS",
		"DIRECTION BREAKDOWN",
		"TICKER PERFORMANCE (Top 3 by trade count)",
		"LARGEST LOSSES (Top 3)",
		"LARGEST WINS (Top 1)",
		"TRADE DURATION ANALYSIS",
		"RISK METRICS",
		"KEY IMPROVEMENT OPPORTUNITIES",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}

	assert.Contains(t, out, "Total Trades: 4\n")
	assert.Contains(t, out, "Wins: 1 (25.0%)\n")
	assert.Contains(t, out, "Total Net P&L: $1,200.25\n")
	assert.Contains(t, out, "Average Loss: $-100.00\n")
	assert.Contains(t, out, "Win/Loss Ratio: 15.00\n")
	assert.Contains(t, out, "Stop Loss           :   1 trades | Win Rate:   0.0% | Total P&L: $ -180.00 | Avg P&L: $-180.00\n")
	assert.Contains(t, out, "⚠️  ISSUE: 1 stop losses > $100\n")
	assert.Contains(t, out, "⚠️  ISSUE: Trailing stops are losing money")
	assert.Contains(t, out, "   9:00 -   1 trades, Avg P&L: $1500.25, Total: $ 1500.25\n")
	assert.Contains(t, out, "Short (<30min): 1 trades, Avg P&L: $1500.25\n")
	assert.Contains(t, out, "Long (>=2hr): 1 trades, Avg P&L: $-30.00\n")
	assert.Contains(t, out, "AAPL   | Target 1             | Entry: $ 187.42 | Exit: $ 186.10 | P&L: $ 1500.25 | Shares:  100\n")

	assert.Contains(t, out, "2. STOP LOSSES: Average loss $-180.00 is large\n")
	assert.Contains(t, out, "3. TRAILING STOPS: Currently losing money\n")
	assert.Contains(t, out, "   → Consider: Adjusting trailing stop distance or activation threshold\n")
	assert.NotContains(t, out, "No major issues identified")
}

func TestWriteAnalysis_OptionalSectionsOmitted(t *testing.T) {
	trades := []*domain.Trade{
		trade("AAPL", 9, 20*time.Minute, "100", domain.ReasonTimeDecay),
		trade("AAPL", 10, 20*time.Minute, "100", domain.ReasonTimeDecay),
		trade("AAPL", 11, 20*time.Minute, "-40", domain.ReasonManual),
	}
	a := newService(t).AnalyzeTrades(context.Background(), []string{"run.csv"}, trades)

	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, a))
	out := buf.String()

	assert.NotContains(t, out, "END OF DAY EXITS")
	assert.NotContains(t, out, "STOP LOSS ANALYSIS")
	assert.NotContains(t, out, "TRAILING STOP ANALYSIS")
	assert.NotContains(t, out, "TARGET EXITS ANALYSIS")
	assert.Contains(t, out, "Medium (30min-2hr): 0 trades\n")
	assert.Contains(t, out, "No major issues identified. Strategy appears well-balanced.\n")
}

func TestWriteAnalysis_NoTrades(t *testing.T) {
	a := newService(t).AnalyzeTrades(context.Background(), []string{"empty.csv"}, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, a))
	out := buf.String()

	assert.Contains(t, out, "Win/Loss Ratio: N/A\n")
	assert.Contains(t, out, "Commission as % of Net P&L: 0.00%\n")
	assert.Contains(t, out, "5. WIN RATE: 0.0% is below 50%\n")
	assert.NotContains(t, out, "NaN")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteAnalysis_PropagatesWriteError(t *testing.T) {
	a := newService(t).AnalyzeTrades(context.Background(), nil, sampleTrades())

	err := WriteAnalysis(failingWriter{}, a)
	assert.EqualError(t, err, "disk full")
}

func TestWriteComparison(t *testing.T) {
	base, err := LoadBaseline()
	require.NoError(t, err)

	svc := newService(t)
	c := svc.CompareFiles(context.Background(), []app.LoadedFile{
		{Path: "results/run1.csv", Trades: sampleTrades()},
		{Path: "results/run2.csv", Trades: []*domain.Trade{
			trade("MSFT", 15, time.Hour, "20", domain.ReasonEndOfDay),
		}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, c, base))
	out := buf.String()

	assert.Contains(t, out, "NEW BACKTEST RESULTS ANALYSIS (After Fixes)")
	assert.Contains(t, out, "File: run1.csv\n")
	assert.Contains(t, out, "File: run2.csv\n")
	assert.Contains(t, out, "Wins: 1 | Losses: 3 | Win Rate: 25.0%\n")
	assert.Contains(t, out, "  EOD Exits: 1 trades, Total P&L: $-30.00\n")
	assert.Contains(t, out, "    EOD Win Rate: 100.0%\n")
	assert.Contains(t, out, "  Afternoon Entries (>= 2 PM): 1 trades\n")
	assert.Contains(t, out, "  14:00 - 1 trades\n")

	assert.Contains(t, out, "SUMMARY ACROSS ALL NEW BACKTESTS")
	assert.Contains(t, out, "Total Trades: 5\n")
	assert.Contains(t, out, "Overall Win Rate: 40.0%\n")
	assert.Contains(t, out, "Total Net P&L: $1,220.25\n")
	assert.Contains(t, out, "   - EOD Exits: 2 trades (down from 23 in previous)\n")
	assert.Contains(t, out, "   - EOD Total P&L: $-10.00 (was -$435.69)\n")
	assert.Contains(t, out, "   - EOD Win Rate: 50.0% (was 0%)\n")
	assert.Contains(t, out, "   ⚠️  WARNING: 2 entries still occurred after 2:00 PM\n")
	assert.Contains(t, out, "  Previous: 196 trades, 75.5% win rate, $17,418.51 P&L\n")
	assert.Contains(t, out, "  New:      5 trades, 40.0% win rate, $1,220.25 P&L\n")
	assert.Contains(t, out, "   - Trailing Stop Trades: 1\n")
	assert.Contains(t, out, "   - Trailing Stop Total P&L: $-90.00\n")
}

func TestWriteComparison_NoTrailingStops(t *testing.T) {
	c := newService(t).CompareFiles(context.Background(), []app.LoadedFile{
		{Path: "run.csv", Trades: []*domain.Trade{trade("AAPL", 9, time.Minute, "5", domain.ReasonTarget1)}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, c, Baseline{}))
	out := buf.String()

	assert.Contains(t, out, "✓ SUCCESS: No entries after 2:00 PM")
	assert.Contains(t, out, "✓ SUCCESS: No trailing stop exits (fix working - only activates after Target 1)")
	assert.NotContains(t, out, "EOD Win Rate")
}

func TestParseBaseline(t *testing.T) {
	base, err := LoadBaseline()
	require.NoError(t, err)
	assert.Equal(t, Baseline{
		Trades:     196,
		WinRate:    75.5,
		NetPnL:     17418.51,
		EODExits:   23,
		EODNetPnL:  -435.69,
		EODWinRate: 0,
	}, base)

	_, err = ParseBaseline([]byte("other: 1\n"))
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = ParseBaseline([]byte("previous_run: [1, 2\n"))
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "$17,418.51", money(decimal.RequireFromString("17418.51")))
	assert.Equal(t, "$-435.69", money(decimal.RequireFromString("-435.69")))
	assert.Equal(t, "$0.00", money(decimal.Zero))
	assert.Equal(t, "-$435.69", baselineMoney(-435.69))
	assert.Equal(t, "   -1.50", cents(decimal.RequireFromString("-1.5"), 8))
}
