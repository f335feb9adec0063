package analytics

import (
	"cmp"
	"slices"
	"sort"

	"backtestAnalyzer/internal/domain"
)

// Segment pairs a partition key with the statistics of its trades.
type Segment[K comparable] struct {
	Key   K
	Stats AggregateStats
}

// SegmentStats maps partition keys to statistics. Keys remember the order in
// which they were first encountered; the ordered views below are stable
// re-orderings of the same entries.
type SegmentStats[K comparable] struct {
	keys  []K
	stats map[K]AggregateStats
}

// AggregateBy partitions trades by key and aggregates each partition.
// Only keys that occur in trades are present.
func AggregateBy[K comparable](trades []*domain.Trade, key func(*domain.Trade) K) SegmentStats[K] {
	partitions := make(map[K][]*domain.Trade)
	var keys []K
	for _, t := range trades {
		k := key(t)
		if _, seen := partitions[k]; !seen {
			keys = append(keys, k)
		}
		partitions[k] = append(partitions[k], t)
	}

	stats := make(map[K]AggregateStats, len(keys))
	for _, k := range keys {
		stats[k] = Aggregate(partitions[k])
	}
	return SegmentStats[K]{keys: keys, stats: stats}
}

// Len returns the number of non-empty partitions.
func (s SegmentStats[K]) Len() int {
	return len(s.keys)
}

// Get returns the statistics for key.
func (s SegmentStats[K]) Get(key K) (AggregateStats, bool) {
	st, ok := s.stats[key]
	return st, ok
}

// Map returns a copy of the key to statistics mapping.
func (s SegmentStats[K]) Map() map[K]AggregateStats {
	m := make(map[K]AggregateStats, len(s.stats))
	for k, v := range s.stats {
		m[k] = v
	}
	return m
}

// Segments returns the partitions in first-encounter order.
func (s SegmentStats[K]) Segments() []Segment[K] {
	out := make([]Segment[K], 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Segment[K]{Key: k, Stats: s.stats[k]})
	}
	return out
}

// ByCountDesc orders partitions by trade count, largest first.
func (s SegmentStats[K]) ByCountDesc() []Segment[K] {
	out := s.Segments()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stats.Count > out[j].Stats.Count
	})
	return out
}

// ByNetPnLDesc orders partitions by total net P&L, best first.
func (s SegmentStats[K]) ByNetPnLDesc() []Segment[K] {
	out := s.Segments()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stats.TotalNetPnL.GreaterThan(out[j].Stats.TotalNetPnL)
	})
	return out
}

// ByNetPnLAsc orders partitions by total net P&L, worst first.
func (s SegmentStats[K]) ByNetPnLAsc() []Segment[K] {
	out := s.Segments()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stats.TotalNetPnL.LessThan(out[j].Stats.TotalNetPnL)
	})
	return out
}

// SortedByKey orders partitions by their natural key order.
func SortedByKey[K cmp.Ordered](s SegmentStats[K]) []Segment[K] {
	out := s.Segments()
	slices.SortStableFunc(out, func(a, b Segment[K]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Key functions accepted by AggregateBy.

func ByReason(t *domain.Trade) string { return t.Reason }

func ByTicker(t *domain.Trade) string { return t.Ticker }

func ByDirection(t *domain.Trade) domain.Direction { return t.Direction }

// ByEntryHour uses the hour of day in the offset the timestamp was recorded with.
func ByEntryHour(t *domain.Trade) int { return t.EntryTime.Hour() }

func ByExitHour(t *domain.Trade) int { return t.ExitTime.Hour() }

func ByDurationBucket(t *domain.Trade) domain.DurationBucket { return t.DurationBucket() }

// Filter returns the trades matching keep, in input order.
func Filter(trades []*domain.Trade, keep func(*domain.Trade) bool) []*domain.Trade {
	out := make([]*domain.Trade, 0)
	for _, t := range trades {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// WithReason adapts a reason classifier (see domain.IsStopLoss etc.) to Filter.
func WithReason(match func(reason string) bool) func(*domain.Trade) bool {
	return func(t *domain.Trade) bool {
		return match(t.Reason)
	}
}

// EnteredAtOrAfter matches trades entered at or after hour (0-23).
func EnteredAtOrAfter(hour int) func(*domain.Trade) bool {
	return func(t *domain.Trade) bool {
		return t.EntryTime.Hour() >= hour
	}
}

// LargestWins returns up to n winning trades, biggest first. Ties keep input order.
func LargestWins(trades []*domain.Trade, n int) []*domain.Trade {
	wins := Filter(trades, (*domain.Trade).IsWin)
	sort.SliceStable(wins, func(i, j int) bool {
		return wins[i].NetPnL.GreaterThan(wins[j].NetPnL)
	})
	return head(wins, n)
}

// LargestLosses returns up to n losing trades, biggest loss first. Ties keep input order.
func LargestLosses(trades []*domain.Trade, n int) []*domain.Trade {
	losses := Filter(trades, (*domain.Trade).IsLoss)
	sort.SliceStable(losses, func(i, j int) bool {
		return losses[i].NetPnL.LessThan(losses[j].NetPnL)
	})
	return head(losses, n)
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
