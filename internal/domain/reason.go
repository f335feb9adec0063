package domain

import "strings"

// Exit reasons written by the backtester. Reason stays a plain string: logs may
// contain compound labels such as "Trailing Stop - Target 1" that belong to
// more than one class, so classification is done by the helpers below.
const (
	ReasonStopLoss     = "Stop Loss"
	ReasonTarget1      = "Target 1"
	ReasonTarget2      = "Target 2"
	ReasonTrailingStop = "Trailing Stop"
	ReasonTimeDecay    = "Time Decay"
	ReasonEndOfDay     = "End of Day"
	ReasonManual       = "Manual"
)

// IsEndOfDay reports an exact "End of Day" reason.
func IsEndOfDay(reason string) bool {
	return reason == ReasonEndOfDay
}

// IsTimeDecay reports an exact "Time Decay" reason.
func IsTimeDecay(reason string) bool {
	return reason == ReasonTimeDecay
}

// IsStopLoss reports whether reason contains "Stop Loss".
func IsStopLoss(reason string) bool {
	return strings.Contains(reason, ReasonStopLoss)
}

// IsTrailingStop reports whether reason contains "Trailing Stop".
func IsTrailingStop(reason string) bool {
	return strings.Contains(reason, ReasonTrailingStop)
}

// IsTarget reports whether reason contains "Target" (Target 1, Target 2, compound labels).
func IsTarget(reason string) bool {
	return strings.Contains(reason, "Target")
}
