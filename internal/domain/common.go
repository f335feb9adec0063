package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction represents the side a position was opened on (LONG or SHORT).
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// DefaultDirection is assumed when a trade log omits the Direction column.
// The backtester that produces these logs only shorted before the column existed.
const DefaultDirection = Short

// ParseDirection converts a raw Direction cell to a Direction.
// Empty input yields DefaultDirection.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return DefaultDirection, nil
	case string(Long):
		return Long, nil
	case string(Short):
		return Short, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// DurationBucket groups trades by how long the position was held.
type DurationBucket int

const (
	DurationShort  DurationBucket = iota // [0, 30) minutes
	DurationMedium                       // [30, 120) minutes
	DurationLong                         // [120, inf) minutes
)

const (
	shortBucketLimit  = 30 * time.Minute
	mediumBucketLimit = 120 * time.Minute
)

// BucketForDuration returns the bucket for a holding time. Boundaries are half-open.
func BucketForDuration(d time.Duration) DurationBucket {
	switch {
	case d < shortBucketLimit:
		return DurationShort
	case d < mediumBucketLimit:
		return DurationMedium
	default:
		return DurationLong
	}
}

// String returns the label used in reports.
func (b DurationBucket) String() string {
	switch b {
	case DurationShort:
		return "Short (<30min)"
	case DurationMedium:
		return "Medium (30min-2hr)"
	case DurationLong:
		return "Long (>=2hr)"
	default:
		return "Unknown"
	}
}
