package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"backtestAnalyzer/internal/domain"
)

// IssueKind identifies the heuristic that produced an Issue.
type IssueKind string

const (
	IssueEODExits         IssueKind = "eod_exits"
	IssueStopLossSeverity IssueKind = "stop_loss_severity"
	IssueTrailingStopDrag IssueKind = "trailing_stop_drag"
	IssueCommissionDrag   IssueKind = "commission_drag"
	IssueLowWinRate       IssueKind = "low_win_rate"
	IssuePoorRiskReward   IssueKind = "poor_risk_reward"
	IssueNone             IssueKind = "none"
)

// Heuristic thresholds.
var (
	eodShareDivisor    = 5 // EOD exits above 1/5 of all trades
	stopLossAvgLimit   = decimal.NewFromInt(-50)
	largeStopLossLimit = decimal.NewFromInt(-100)
	commissionPctLimit = decimal.NewFromInt(10)
	winRateLimit       = 50.0
	riskRewardLimit    = decimal.NewFromFloat(1.5)
	decimalHundred     = decimal.NewFromInt(100)
)

// Issue is a detected strategy weakness. Rank is fixed per kind; lower is more severe.
type Issue struct {
	Rank           int
	Kind           IssueKind
	Title          string
	Detail         string
	Recommendation string
}

// Segments carries the subsets the issue heuristics look at.
type Segments struct {
	ByReason     SegmentStats[string]
	EndOfDay     AggregateStats // reason == "End of Day"
	StopLoss     AggregateStats // reason contains "Stop Loss"
	TrailingStop AggregateStats // reason contains "Trailing Stop"
	Target       AggregateStats // reason contains "Target"
}

// BuildSegments computes the exit-reason subsets for trades. A trade can fall
// into several subsets (e.g. "Trailing Stop - Target 1").
func BuildSegments(trades []*domain.Trade) Segments {
	return Segments{
		ByReason:     AggregateBy(trades, ByReason),
		EndOfDay:     Aggregate(Filter(trades, WithReason(domain.IsEndOfDay))),
		StopLoss:     Aggregate(Filter(trades, WithReason(domain.IsStopLoss))),
		TrailingStop: Aggregate(Filter(trades, WithReason(domain.IsTrailingStop))),
		Target:       Aggregate(Filter(trades, WithReason(domain.IsTarget))),
	}
}

// DetectIssues applies every heuristic independently and returns the ones that
// fire in rank order. When none fire a single IssueNone entry is returned.
func DetectIssues(overall AggregateStats, seg Segments) []Issue {
	var issues []Issue

	if eodExitsExcessive(overall, seg.EndOfDay) {
		issues = append(issues, Issue{
			Rank:  1,
			Kind:  IssueEODExits,
			Title: "EOD EXITS",
			Detail: fmt.Sprintf("%d trades (%.1f%%) closed at EOD",
				seg.EndOfDay.Count, seg.EndOfDay.ShareOf(overall.Count)),
			Recommendation: "Earlier exit signals, holding overnight for winners, or tighter EOD rules",
		})
	}

	if stopLossesSevere(seg.StopLoss) {
		issues = append(issues, Issue{
			Rank:           2,
			Kind:           IssueStopLossSeverity,
			Title:          "STOP LOSSES",
			Detail:         fmt.Sprintf("Average loss $%s is large", seg.StopLoss.AvgPnL.StringFixed(2)),
			Recommendation: "Tighter stops, better entry timing, or position sizing adjustments",
		})
	}

	if trailingStopsLosing(seg.TrailingStop) {
		issues = append(issues, Issue{
			Rank:           3,
			Kind:           IssueTrailingStopDrag,
			Title:          "TRAILING STOPS",
			Detail:         "Currently losing money",
			Recommendation: "Adjusting trailing stop distance or activation threshold",
		})
	}

	if commissionDragHigh(overall) {
		issues = append(issues, Issue{
			Rank:           4,
			Kind:           IssueCommissionDrag,
			Title:          "COMMISSIONS",
			Detail:         fmt.Sprintf("%.1f%% of net P&L lost to commissions", CommissionPct(overall)),
			Recommendation: "Reducing trade frequency or increasing position sizes",
		})
	}

	if overall.WinRate < winRateLimit {
		issues = append(issues, Issue{
			Rank:           5,
			Kind:           IssueLowWinRate,
			Title:          "WIN RATE",
			Detail:         fmt.Sprintf("%.1f%% is below 50%%", overall.WinRate),
			Recommendation: "Improving entry filters, better pattern recognition, or stricter entry criteria",
		})
	}

	if ratio, ok := RiskRewardRatio(overall); ok && ratio.LessThan(riskRewardLimit) {
		issues = append(issues, Issue{
			Rank:           6,
			Kind:           IssuePoorRiskReward,
			Title:          "RISK/REWARD",
			Detail:         fmt.Sprintf("Win/Loss ratio %s is low", ratio.StringFixed(2)),
			Recommendation: "Letting winners run longer or cutting losses faster",
		})
	}

	if len(issues) == 0 {
		issues = append(issues, Issue{
			Kind:  IssueNone,
			Title: "No major issues identified. Strategy appears well-balanced.",
		})
	}
	return issues
}

// eodExitsExcessive is true when EOD exits exceed 20% of all trades.
func eodExitsExcessive(overall, eod AggregateStats) bool {
	return eod.Count*eodShareDivisor > overall.Count
}

func stopLossesSevere(sl AggregateStats) bool {
	return sl.Count > 0 && sl.AvgPnL.LessThan(stopLossAvgLimit)
}

func trailingStopsLosing(ts AggregateStats) bool {
	return ts.Count > 0 && ts.TotalNetPnL.IsNegative()
}

// commissionDragHigh compares exactly: commission*100 > 10*|net|.
func commissionDragHigh(overall AggregateStats) bool {
	if overall.TotalNetPnL.IsZero() {
		return false
	}
	return overall.TotalCommission.Mul(decimalHundred).GreaterThan(overall.TotalNetPnL.Abs().Mul(commissionPctLimit))
}

// CommissionPct is total commission as a percentage of |total net P&L|, 0 when net is 0.
func CommissionPct(s AggregateStats) float64 {
	if s.TotalNetPnL.IsZero() {
		return 0
	}
	return s.TotalCommission.Div(s.TotalNetPnL.Abs()).Mul(decimalHundred).InexactFloat64()
}

// RiskRewardRatio returns |AvgWin / AvgLoss|. ok is false when there is no average loss.
func RiskRewardRatio(s AggregateStats) (ratio decimal.Decimal, ok bool) {
	if s.AvgLoss.IsZero() {
		return decimal.Zero, false
	}
	return s.AvgWin.Div(s.AvgLoss).Abs(), true
}

// LargeStopLosses counts stop-loss exits that lost more than $100.
func LargeStopLosses(trades []*domain.Trade) int {
	n := 0
	for _, t := range trades {
		if domain.IsStopLoss(t.Reason) && t.NetPnL.LessThan(largeStopLossLimit) {
			n++
		}
	}
	return n
}
