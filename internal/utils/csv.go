package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"backtestAnalyzer/internal/domain"
	"backtestAnalyzer/internal/ports"
)

// tradeRow mirrors one line of a backtest trade log. Field order is the
// column order used when writing logs.
type tradeRow struct {
	Ticker     string `csv:"Ticker"`
	EntryTime  string `csv:"EntryTime"`
	ExitTime   string `csv:"ExitTime"`
	Direction  string `csv:"Direction"`
	EntryPrice string `csv:"EntryPrice"`
	ExitPrice  string `csv:"ExitPrice"`
	Shares     string `csv:"Shares"`
	Reason     string `csv:"Reason"`
	GrossPnL   string `csv:"GrossPnL"`
	Commission string `csv:"Commission"`
	NetPnL     string `csv:"NetPnL"`
}

// RequiredColumns must be present in a trade log header. Direction is optional.
var RequiredColumns = []string{
	"Ticker", "EntryTime", "ExitTime", "EntryPrice", "ExitPrice",
	"Shares", "Reason", "GrossPnL", "Commission", "NetPnL",
}

// timestampLayouts are tried in order after a trailing Z is rewritten to +00:00.
// Layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// headerReader records the header row while gocsv reads the whole file.
type headerReader struct {
	*csv.Reader
	header []string
}

func (h *headerReader) ReadAll() ([][]string, error) {
	records, err := h.Reader.ReadAll()
	if err == nil && len(records) > 0 {
		h.header = records[0]
	}
	return records, err
}

// ReadTradesFromCSV reads a backtest trade log. Rows with an empty Ticker are
// skipped; any other malformed row aborts the read with a *ports.ParseError.
func ReadTradesFromCSV(filename string) ([]*domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrFileAccess, err)
	}
	defer file.Close()

	return ParseTrades(file, filename)
}

// ParseTrades decodes a trade log from r. name is used in error messages.
func ParseTrades(r io.Reader, name string) ([]*domain.Trade, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // short rows read as empty trailing cells
	hr := &headerReader{Reader: reader}

	var rows []*tradeRow
	if err := gocsv.UnmarshalCSV(hr, &rows); err != nil {
		return nil, &ports.ParseError{Path: name, Line: 1, Err: err}
	}
	if err := checkHeader(hr.header); err != nil {
		return nil, &ports.ParseError{Path: name, Line: 1, Err: err}
	}

	trades := make([]*domain.Trade, 0, len(rows))
	for i, row := range rows {
		if row.Ticker == "" {
			continue
		}
		trade, err := row.toTrade()
		if err != nil {
			var pe *ports.ParseError
			if errors.As(err, &pe) {
				pe.Path = name
				pe.Line = i + 2
			}
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func (row *tradeRow) toTrade() (*domain.Trade, error) {
	var err error
	t := &domain.Trade{Ticker: row.Ticker, Reason: row.Reason}

	if t.EntryTime, err = parseTimestamp("EntryTime", row.EntryTime); err != nil {
		return nil, err
	}
	if t.ExitTime, err = parseTimestamp("ExitTime", row.ExitTime); err != nil {
		return nil, err
	}
	if t.ExitTime.Before(t.EntryTime) {
		return nil, &ports.ParseError{Field: "ExitTime", Value: row.ExitTime, Err: errors.New("exit time is before entry time")}
	}
	if t.EntryPrice, err = parseDecimal("EntryPrice", row.EntryPrice); err != nil {
		return nil, err
	}
	if t.ExitPrice, err = parseDecimal("ExitPrice", row.ExitPrice); err != nil {
		return nil, err
	}
	if t.GrossPnL, err = parseDecimal("GrossPnL", row.GrossPnL); err != nil {
		return nil, err
	}
	if t.Commission, err = parseDecimal("Commission", row.Commission); err != nil {
		return nil, err
	}
	if t.NetPnL, err = parseDecimal("NetPnL", row.NetPnL); err != nil {
		return nil, err
	}

	t.Shares, err = strconv.Atoi(strings.TrimSpace(row.Shares))
	if err != nil {
		return nil, &ports.ParseError{Field: "Shares", Value: row.Shares, Err: err}
	}

	t.Direction, err = domain.ParseDirection(row.Direction)
	if err != nil {
		return nil, &ports.ParseError{Field: "Direction", Value: row.Direction, Err: err}
	}
	return t, nil
}

// ParseTimestamp parses an ISO-8601 trade timestamp, keeping its offset.
// A trailing "Z" is treated as "+00:00".
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if strings.HasSuffix(v, "Z") {
		v = strings.TrimSuffix(v, "Z") + "+00:00"
	}
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, v)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func parseTimestamp(field, value string) (time.Time, error) {
	ts, err := ParseTimestamp(value)
	if err != nil {
		return time.Time{}, &ports.ParseError{Field: field, Value: value, Err: err}
	}
	return ts, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &ports.ParseError{Field: field, Value: value, Err: err}
	}
	return d, nil
}

// WriteTradesToCSV writes trades in the backtester's log format.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	rows := make([]*tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &tradeRow{
			Ticker:     t.Ticker,
			EntryTime:  t.EntryTime.Format(time.RFC3339),
			ExitTime:   t.ExitTime.Format(time.RFC3339),
			Direction:  string(t.Direction),
			EntryPrice: t.EntryPrice.String(),
			ExitPrice:  t.ExitPrice.String(),
			Shares:     strconv.Itoa(t.Shares),
			Reason:     t.Reason,
			GrossPnL:   t.GrossPnL.String(),
			Commission: t.Commission.String(),
			NetPnL:     t.NetPnL.String(),
		})
	}
	return gocsv.MarshalFile(&rows, file)
}
