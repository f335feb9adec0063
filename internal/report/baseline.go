package report

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"backtestAnalyzer/internal/ports"
)

//go:embed baselines.yaml
var baselinesYAML []byte

// Baseline holds the reference numbers of an earlier backtest run.
type Baseline struct {
	Trades     int     `yaml:"trades"`
	WinRate    float64 `yaml:"win_rate"`
	NetPnL     float64 `yaml:"net_pnl"`
	EODExits   int     `yaml:"eod_exits"`
	EODNetPnL  float64 `yaml:"eod_net_pnl"`
	EODWinRate float64 `yaml:"eod_win_rate"`
}

type baselineFile struct {
	PreviousRun *Baseline `yaml:"previous_run"`
}

// LoadBaseline returns the embedded previous-run reference numbers.
func LoadBaseline() (Baseline, error) {
	return ParseBaseline(baselinesYAML)
}

// ParseBaseline decodes a baselines document.
func ParseBaseline(data []byte) (Baseline, error) {
	var f baselineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Baseline{}, fmt.Errorf("%w: decoding baselines: %w", ports.ErrConfigurationError, err)
	}
	if f.PreviousRun == nil {
		return Baseline{}, fmt.Errorf("%w: baselines have no previous_run section", ports.ErrConfigurationError)
	}
	return *f.PreviousRun, nil
}
