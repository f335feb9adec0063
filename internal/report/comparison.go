package report

import (
	"io"
	"path/filepath"

	"backtestAnalyzer/internal/analytics"
	"backtestAnalyzer/internal/app"
)

// WriteComparison renders the per-file fix evaluation followed by the
// cross-file summary measured against base.
func WriteComparison(w io.Writer, c *app.Comparison, base Baseline) error {
	lw := newLineWriter(w)

	lw.banner("NEW BACKTEST RESULTS ANALYSIS (After Fixes)")
	lw.blank()

	for _, f := range c.Files {
		writeFileResult(lw, f)
	}

	writeSummary(lw, c, base)
	return lw.flush()
}

func writeFileResult(lw *lineWriter, f app.FileResult) {
	s := f.Stats
	lw.section("File: " + filepath.Base(f.Path))
	lw.line("Total Trades: %d", s.Count)
	lw.line("Wins: %d | Losses: %d | Win Rate: %.1f%%", s.Wins, s.Losses, s.WinRate)
	lw.line("Total Net P&L: %s", money(s.TotalNetPnL))
	lw.blank()

	lw.line("Exit Reasons:")
	for _, seg := range f.ByReason.ByCountDesc() {
		r := seg.Stats
		lw.line("  %-20s: %2d trades | Win Rate: %5.1f%% | Total P&L: $%s | Avg P&L: $%s",
			seg.Key, r.Count, r.WinRate, cents(r.TotalNetPnL, 8), cents(r.AvgPnL, 7))
	}
	lw.blank()

	lw.line("Fix Evaluation:")
	lw.line("  EOD Exits: %d trades, Total P&L: $%s", f.EndOfDay.Count, f.EndOfDay.TotalNetPnL.StringFixed(2))
	if f.EndOfDay.Count > 0 {
		lw.line("    EOD Win Rate: %.1f%%", f.EndOfDay.WinRate)
	}
	lw.line("  Time Decay Exits (Early Exits): %d trades, Total P&L: $%s", f.TimeDecay.Count, f.TimeDecay.TotalNetPnL.StringFixed(2))
	lw.line("  Afternoon Entries (>= 2 PM): %d trades", f.AfternoonEntries)
	lw.blank()

	lw.line("Entry Hours:")
	for _, seg := range analytics.SortedByKey(f.EntryHours) {
		lw.line("  %2d:00 - %d trades", seg.Key, seg.Stats.Count)
	}
	lw.blank()
	lw.blank()
}

func writeSummary(lw *lineWriter, c *app.Comparison, base Baseline) {
	s := c.Summary

	lw.banner("SUMMARY ACROSS ALL NEW BACKTESTS")
	lw.line("Total Trades: %d", s.Count)
	lw.line("Overall Win Rate: %.1f%%", s.WinRate)
	lw.line("Total Net P&L: %s", money(s.TotalNetPnL))
	lw.blank()

	lw.line("Fix Effectiveness:")
	lw.line("1. EOD Fix:")
	lw.line("   - EOD Exits: %d trades (down from %d in previous)", c.EndOfDay.Count, base.EODExits)
	lw.line("   - EOD Total P&L: $%s (was %s)", c.EndOfDay.TotalNetPnL.StringFixed(2), baselineMoney(base.EODNetPnL))
	if c.EndOfDay.Count > 0 {
		lw.line("   - EOD Win Rate: %.1f%% (was %g%%)", c.EndOfDay.WinRate, base.EODWinRate)
	}

	lw.line("2. Time Decay (Early Exit) Fix:")
	lw.line("   - Time Decay Exits: %d trades", c.TimeDecay.Count)
	lw.line("   - Time Decay Total P&L: $%s", c.TimeDecay.TotalNetPnL.StringFixed(2))

	lw.line("3. Time-Based Entry Filter:")
	lw.line("   - Afternoon Entries (>= 2 PM): %d trades", c.AfternoonEntries)
	if c.AfternoonEntries == 0 {
		lw.line("   ✓ SUCCESS: No entries after 2:00 PM")
	} else {
		lw.line("   ⚠️  WARNING: %d entries still occurred after 2:00 PM", c.AfternoonEntries)
	}
	lw.blank()

	lw.line("Comparison to Previous Results:")
	lw.line("  Previous: %d trades, %.1f%% win rate, %s P&L", base.Trades, base.WinRate, baselineMoney(base.NetPnL))
	lw.line("  New:      %d trades, %.1f%% win rate, %s P&L", s.Count, s.WinRate, money(s.TotalNetPnL))
	lw.blank()

	lw.line("4. Trailing Stop Fix:")
	if ts := c.TrailingStop; ts.Count > 0 {
		lw.line("   - Trailing Stop Trades: %d", ts.Count)
		lw.line("   - Trailing Stop Total P&L: $%s", ts.TotalNetPnL.StringFixed(2))
	} else {
		lw.line("   ✓ SUCCESS: No trailing stop exits (fix working - only activates after Target 1)")
	}
}
