// Package report renders analysis results as the plain-text reports printed
// by the command-line tools.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ruleWidth = 80

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)
	printer   = message.NewPrinter(language.English)
)

// lineWriter buffers report lines. The first write error is kept by the
// bufio.Writer and returned from flush.
type lineWriter struct {
	w *bufio.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (l *lineWriter) line(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format, args...)
	l.w.WriteByte('\n')
}

func (l *lineWriter) blank() {
	l.w.WriteByte('\n')
}

func (l *lineWriter) section(title string) {
	l.line("%s", title)
	l.line("%s", lightRule)
}

func (l *lineWriter) banner(title string) {
	l.line("%s", heavyRule)
	l.line("%s", title)
	l.line("%s", heavyRule)
}

func (l *lineWriter) flush() error {
	return l.w.Flush()
}

// money formats d with thousands separators, e.g. $-1,234.50.
func money(d decimal.Decimal) string {
	return "$" + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// baselineMoney puts the sign before the dollar sign, e.g. -$435.69.
func baselineMoney(v float64) string {
	if v < 0 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", v)
}

// cents formats d with two decimals and no grouping, right-aligned to width.
func cents(d decimal.Decimal, width int) string {
	return fmt.Sprintf("%*s", width, d.StringFixed(2))
}
