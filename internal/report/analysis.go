package report

import (
	"io"

	"backtestAnalyzer/internal/analytics"
	"backtestAnalyzer/internal/app"
	"backtestAnalyzer/internal/domain"
)

// WriteAnalysis renders the full improvement-opportunities report.
func WriteAnalysis(w io.Writer, a *app.Analysis) error {
	lw := newLineWriter(w)

	lw.banner("BACKTEST ANALYSIS - IMPROVEMENT OPPORTUNITIES")
	lw.blank()

	writeOverall(lw, a)
	writeExitReasons(lw, a.Segments.ByReason)
	writeSubsets(lw, a)
	writeCommission(lw, a)
	writeTimePatterns(lw, a)
	writeDirections(lw, a.ByDirection)
	writeTickers(lw, a)
	writeTopTrades(lw, "LARGEST LOSSES", a.TopLosses)
	writeTopTrades(lw, "LARGEST WINS", a.TopWins)
	writeDurations(lw, a)
	writeRisk(lw, a.Performance)
	writeIssues(lw, a.Issues)

	return lw.flush()
}

func writeOverall(lw *lineWriter, a *app.Analysis) {
	o := a.Overall
	lw.section("OVERALL STATISTICS")
	lw.line("Files Analyzed: %d", len(a.Files))
	lw.line("Total Trades: %d", o.Count)
	lw.line("Wins: %d (%.1f%%)", o.Wins, o.WinRate)
	lw.line("Losses: %d (%.1f%%)", o.Losses, o.LossRate())
	lw.line("Total Net P&L: %s", money(o.TotalNetPnL))
	lw.line("Total Gross P&L: %s", money(o.TotalGrossPnL))
	lw.line("Total Commission: %s", money(o.TotalCommission))
	lw.line("Average Win: $%s", o.AvgWin.StringFixed(2))
	lw.line("Average Loss: $%s", o.AvgLoss.StringFixed(2))
	if ratio, ok := analytics.RiskRewardRatio(o); ok {
		lw.line("Win/Loss Ratio: %s", ratio.StringFixed(2))
	} else {
		lw.line("Win/Loss Ratio: N/A")
	}
	lw.blank()
}

func writeExitReasons(lw *lineWriter, byReason analytics.SegmentStats[string]) {
	lw.section("EXIT REASON ANALYSIS")
	for _, seg := range byReason.ByCountDesc() {
		s := seg.Stats
		lw.line("%-20s: %3d trades | Win Rate: %5.1f%% | Total P&L: $%s | Avg P&L: $%s",
			seg.Key, s.Count, s.WinRate, cents(s.TotalNetPnL, 8), cents(s.AvgPnL, 7))
	}
	lw.blank()
}

func writeSubsets(lw *lineWriter, a *app.Analysis) {
	total := a.Overall.Count
	seg := a.Segments

	if eod := seg.EndOfDay; eod.Count > 0 {
		lw.section("END OF DAY EXITS - IMPROVEMENT OPPORTUNITY")
		lw.line("EOD Trades: %d (%.1f%% of all trades)", eod.Count, eod.ShareOf(total))
		lw.line("EOD Total P&L: %s", money(eod.TotalNetPnL))
		lw.line("EOD Win Rate: %.1f%%", eod.WinRate)
		lw.line("⚠️  ISSUE: %d trades closed at EOD - consider earlier exits or holding overnight", eod.Count)
		lw.blank()
	}

	if sl := seg.StopLoss; sl.Count > 0 {
		lw.section("STOP LOSS ANALYSIS")
		lw.line("Stop Loss Trades: %d", sl.Count)
		lw.line("Total P&L from Stops: %s", money(sl.TotalNetPnL))
		lw.line("Average Loss: $%s", sl.AvgPnL.StringFixed(2))
		lw.line("Largest Stop Loss: $%s", sl.LargestLoss.StringFixed(2))
		if a.LargeStopLosses > 0 {
			lw.line("⚠️  ISSUE: %d stop losses > $100", a.LargeStopLosses)
			lw.line("   Consider: Tighter stops, better entry timing, or position sizing")
		}
		lw.blank()
	}

	if ts := seg.TrailingStop; ts.Count > 0 {
		lw.section("TRAILING STOP ANALYSIS")
		lw.line("Trailing Stop Trades: %d", ts.Count)
		lw.line("Total P&L: %s", money(ts.TotalNetPnL))
		lw.line("Win Rate: %.1f%%", ts.WinRate)
		if ts.TotalNetPnL.IsNegative() {
			lw.line("⚠️  ISSUE: Trailing stops are losing money - consider adjusting trailing stop logic")
		}
		lw.blank()
	}

	if tg := seg.Target; tg.Count > 0 {
		lw.section("TARGET EXITS ANALYSIS")
		lw.line("Target Exits: %d (%.1f%% of all trades)", tg.Count, tg.ShareOf(total))
		lw.line("Total P&L: %s", money(tg.TotalNetPnL))
		lw.line("Win Rate: %.1f%%", tg.WinRate)
		lw.line("✓ Target exits are working well")
		lw.blank()
	}
}

func writeCommission(lw *lineWriter, a *app.Analysis) {
	lw.section("COMMISSION IMPACT")
	lw.line("Total Commission: %s", money(a.Overall.TotalCommission))
	lw.line("Commission as %% of Net P&L: %.2f%%", a.CommissionPct)
	if hasIssue(a.Issues, analytics.IssueCommissionDrag) {
		lw.line("⚠️  ISSUE: High commission impact - consider reducing trade frequency or increasing position size")
	}
	lw.blank()
}

func writeTimePatterns(lw *lineWriter, a *app.Analysis) {
	lw.section("TIME-BASED PATTERNS")
	lw.line("Entry Hour Performance:")
	writeHours(lw, a.ByEntryHour)
	lw.blank()
	lw.line("Exit Hour Performance:")
	writeHours(lw, a.ByExitHour)
	lw.blank()
}

func writeHours(lw *lineWriter, hours analytics.SegmentStats[int]) {
	for _, seg := range analytics.SortedByKey(hours) {
		s := seg.Stats
		lw.line("  %2d:00 - %3d trades, Avg P&L: $%s, Total: $%s",
			seg.Key, s.Count, cents(s.AvgPnL, 7), cents(s.TotalNetPnL, 8))
	}
}

func writeDirections(lw *lineWriter, byDirection analytics.SegmentStats[domain.Direction]) {
	lw.section("DIRECTION BREAKDOWN")
	for _, seg := range analytics.SortedByKey(byDirection) {
		s := seg.Stats
		lw.line("%-6s: %3d trades | Win Rate: %5.1f%% | Total P&L: $%s | Avg P&L: $%s",
			seg.Key, s.Count, s.WinRate, cents(s.TotalNetPnL, 8), cents(s.AvgPnL, 7))
	}
	lw.blank()
}

func writeTickers(lw *lineWriter, a *app.Analysis) {
	lw.section(printer.Sprintf("TICKER PERFORMANCE (Top %d by trade count)", len(a.TopTickers)))
	for _, seg := range a.TopTickers {
		s := seg.Stats
		lw.line("%-6s: %3d trades | Win Rate: %5.1f%% | Total P&L: $%s | Avg P&L: $%s",
			seg.Key, s.Count, s.WinRate, cents(s.TotalNetPnL, 8), cents(s.AvgPnL, 7))
	}
	lw.blank()
}

func writeTopTrades(lw *lineWriter, title string, trades []*domain.Trade) {
	lw.section(printer.Sprintf("%s (Top %d)", title, len(trades)))
	for _, t := range trades {
		lw.line("%-6s | %-20s | Entry: $%s | Exit: $%s | P&L: $%s | Shares: %4d",
			t.Ticker, t.Reason, cents(t.EntryPrice, 7), cents(t.ExitPrice, 7), cents(t.NetPnL, 8), t.Shares)
	}
	lw.blank()
}

func writeDurations(lw *lineWriter, a *app.Analysis) {
	lw.section("TRADE DURATION ANALYSIS")
	lw.line("Average Duration: %.1f minutes", a.Overall.AvgHold.Minutes())
	for _, bucket := range []domain.DurationBucket{domain.DurationShort, domain.DurationMedium, domain.DurationLong} {
		s, ok := a.ByDuration.Get(bucket)
		if !ok {
			lw.line("%s: 0 trades", bucket)
			continue
		}
		lw.line("%s: %d trades, Avg P&L: $%s", bucket, s.Count, s.AvgPnL.StringFixed(2))
	}
	lw.blank()
}

func writeRisk(lw *lineWriter, m *analytics.PerformanceMetrics) {
	lw.section("RISK METRICS")
	lw.line("Account Size: $%s", printer.Sprintf("%.2f", m.AccountSize))
	lw.line("Ending Balance: $%s (%+.2f%%)", printer.Sprintf("%.2f", m.FinalBalance), m.ReturnOnAccount*100)
	lw.line("Max Drawdown: $%s (%.2f%% of peak equity)", printer.Sprintf("%.2f", m.MaxDrawdownAmount), m.MaxDrawdown*100)
	lw.line("Drawdown Periods: %d", len(m.Drawdowns))
	lw.line("Profit Factor: %.2f", m.ProfitFactor)
	lw.line("Expectancy: $%.2f per trade", m.Expectancy)
	lw.line("Max Consecutive Wins: %d", m.MaxConsecutiveWins)
	lw.line("Max Consecutive Losses: %d", m.MaxConsecutiveLosses)
	if worst, ok := m.WorstDay(); ok {
		lw.line("Worst Day: %s ($%.2f)", worst.Day.Format("2006-01-02"), worst.Return)
	}
	lw.blank()
}

func writeIssues(lw *lineWriter, issues []analytics.Issue) {
	lw.banner("KEY IMPROVEMENT OPPORTUNITIES")
	for _, issue := range issues {
		if issue.Kind == analytics.IssueNone {
			lw.line("%s", issue.Title)
			continue
		}
		lw.line("%d. %s: %s", issue.Rank, issue.Title, issue.Detail)
		lw.line("   → Consider: %s", issue.Recommendation)
	}
	lw.blank()
}

func hasIssue(issues []analytics.Issue, kind analytics.IssueKind) bool {
	for _, i := range issues {
		if i.Kind == kind {
			return true
		}
	}
	return false
}
