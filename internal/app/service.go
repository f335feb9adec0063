package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"backtestAnalyzer/config"
	"backtestAnalyzer/internal/analytics"
	"backtestAnalyzer/internal/domain"
	"backtestAnalyzer/internal/ports"
)

// AfternoonHour is the first entry hour counted as an afternoon entry.
const AfternoonHour = 14

// AnalysisService loads backtest trade logs and runs the analysis passes.
type AnalysisService struct {
	cfg    *config.Config
	logger ports.Logger
	source ports.TradeSource
}

// NewAnalysisService creates a new application service instance.
func NewAnalysisService(cfg *config.Config, logger ports.Logger, source ports.TradeSource) (*AnalysisService, error) {
	if cfg == nil || logger == nil || source == nil {
		return nil, fmt.Errorf("%w: missing required dependencies for AnalysisService", ports.ErrConfigurationError)
	}
	if cfg.LoadWorkers < 1 {
		return nil, fmt.Errorf("%w: LoadWorkers must be at least 1", ports.ErrConfigurationError)
	}
	return &AnalysisService{cfg: cfg, logger: logger, source: source}, nil
}

// LoadedFile is the trades parsed from one input.
type LoadedFile struct {
	Path   string
	Trades []*domain.Trade
}

// Load parses every path concurrently, at most cfg.LoadWorkers at a time.
// Results keep the order of paths. The first failure cancels the remaining
// loads and is returned; nothing is returned alongside it.
func (s *AnalysisService) Load(ctx context.Context, paths []string) ([]LoadedFile, error) {
	if len(paths) == 0 {
		return nil, ports.ErrUsage
	}

	files := make([]LoadedFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.LoadWorkers)

	for i, path := range paths {
		g.Go(func() error {
			trades, err := s.source.LoadTrades(gctx, path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			files[i] = LoadedFile{Path: path, Trades: trades}
			s.logger.Info(gctx, "Loaded trade log", map[string]interface{}{"path": path, "trades": len(trades)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, err, "Failed to load trade logs")
		return nil, err
	}
	return files, nil
}

// Analysis is the result of a full analysis over all inputs combined.
type Analysis struct {
	Files  []string
	Trades []*domain.Trade

	Overall     analytics.AggregateStats
	Segments    analytics.Segments // exit-reason breakdown and subsets
	ByTicker    analytics.SegmentStats[string]
	ByEntryHour analytics.SegmentStats[int]
	ByExitHour  analytics.SegmentStats[int]
	ByDuration  analytics.SegmentStats[domain.DurationBucket]
	ByDirection analytics.SegmentStats[domain.Direction]

	LargeStopLosses int
	CommissionPct   float64
	Performance     *analytics.PerformanceMetrics

	TopWins    []*domain.Trade
	TopLosses  []*domain.Trade
	TopTickers []analytics.Segment[string]

	Issues []analytics.Issue
}

// Analyze loads paths and analyses all their trades as one combined set,
// in input file order then row order.
func (s *AnalysisService) Analyze(ctx context.Context, paths []string) (*Analysis, error) {
	files, err := s.Load(ctx, paths)
	if err != nil {
		return nil, err
	}

	var trades []*domain.Trade
	for _, f := range files {
		trades = append(trades, f.Trades...)
	}
	return s.AnalyzeTrades(ctx, paths, trades), nil
}

// AnalyzeTrades runs the analysis pass over already loaded trades.
func (s *AnalysisService) AnalyzeTrades(ctx context.Context, files []string, trades []*domain.Trade) *Analysis {
	a := &Analysis{
		Files:       files,
		Trades:      trades,
		Overall:     analytics.Aggregate(trades),
		Segments:    analytics.BuildSegments(trades),
		ByTicker:    analytics.AggregateBy(trades, analytics.ByTicker),
		ByEntryHour: analytics.AggregateBy(trades, analytics.ByEntryHour),
		ByExitHour:  analytics.AggregateBy(trades, analytics.ByExitHour),
		ByDuration:  analytics.AggregateBy(trades, analytics.ByDurationBucket),
		ByDirection: analytics.AggregateBy(trades, analytics.ByDirection),

		LargeStopLosses: analytics.LargeStopLosses(trades),
		Performance:     analytics.AnalyzePerformance(trades, s.cfg.AccountSize),

		TopWins:   analytics.LargestWins(trades, s.cfg.TopTrades),
		TopLosses: analytics.LargestLosses(trades, s.cfg.TopTrades),
	}
	a.CommissionPct = analytics.CommissionPct(a.Overall)

	tickers := a.ByTicker.ByCountDesc()
	if len(tickers) > s.cfg.TopTickers {
		tickers = tickers[:s.cfg.TopTickers]
	}
	a.TopTickers = tickers

	a.Issues = analytics.DetectIssues(a.Overall, a.Segments)

	s.logger.Info(ctx, "Analysis complete", map[string]interface{}{
		"files":  len(files),
		"trades": a.Overall.Count,
		"issues": len(a.Issues),
	})
	return a
}

// FileResult is the per-file part of a comparison.
type FileResult struct {
	Path             string
	Stats            analytics.AggregateStats
	ByReason         analytics.SegmentStats[string]
	EndOfDay         analytics.AggregateStats
	TimeDecay        analytics.AggregateStats
	AfternoonEntries int
	EntryHours       analytics.SegmentStats[int]
}

// Comparison holds per-file results and their totals across all files.
type Comparison struct {
	Files []FileResult

	Summary          analytics.AggregateStats
	EndOfDay         analytics.AggregateStats
	TimeDecay        analytics.AggregateStats
	TrailingStop     analytics.AggregateStats
	AfternoonEntries int
}

// Compare loads paths and evaluates each file on its own, then sums the results.
func (s *AnalysisService) Compare(ctx context.Context, paths []string) (*Comparison, error) {
	files, err := s.Load(ctx, paths)
	if err != nil {
		return nil, err
	}
	return s.CompareFiles(ctx, files), nil
}

// CompareFiles runs the comparison pass over already loaded files.
func (s *AnalysisService) CompareFiles(ctx context.Context, files []LoadedFile) *Comparison {
	c := &Comparison{Files: make([]FileResult, 0, len(files))}

	var summary, eod, decay, trailing []analytics.AggregateStats
	for _, f := range files {
		r := FileResult{
			Path:             f.Path,
			Stats:            analytics.Aggregate(f.Trades),
			ByReason:         analytics.AggregateBy(f.Trades, analytics.ByReason),
			EndOfDay:         analytics.Aggregate(analytics.Filter(f.Trades, analytics.WithReason(domain.IsEndOfDay))),
			TimeDecay:        analytics.Aggregate(analytics.Filter(f.Trades, analytics.WithReason(domain.IsTimeDecay))),
			AfternoonEntries: len(analytics.Filter(f.Trades, analytics.EnteredAtOrAfter(AfternoonHour))),
			EntryHours:       analytics.AggregateBy(f.Trades, analytics.ByEntryHour),
		}
		c.Files = append(c.Files, r)

		summary = append(summary, r.Stats)
		eod = append(eod, r.EndOfDay)
		decay = append(decay, r.TimeDecay)
		trailing = append(trailing, analytics.Aggregate(analytics.Filter(f.Trades, analytics.WithReason(domain.IsTrailingStop))))
		c.AfternoonEntries += r.AfternoonEntries
	}

	c.Summary = analytics.MergeAll(summary...)
	c.EndOfDay = analytics.MergeAll(eod...)
	c.TimeDecay = analytics.MergeAll(decay...)
	c.TrailingStop = analytics.MergeAll(trailing...)

	s.logger.Info(ctx, "Comparison complete", map[string]interface{}{
		"files":  len(files),
		"trades": c.Summary.Count,
	})
	return c
}
