// Package format holds the pure text-rendering helpers used by every
// reply: currency, progress bars, ascii charts and follow-up hints.
// Nothing here touches the ledger or the clock.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	progressBarWidth = 10
	barChartWidth    = 15
)

// Currency renders an amount as "R$ 1.234,56" (pt-BR grouping, always
// two decimals). Negative values keep the sign before the symbol digits.
func Currency(amount float64) string {
	neg := amount < 0
	cents := int64(math.Round(math.Abs(amount) * 100))
	intPart := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", intPart)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), frac)
}

// ProgressBar renders a fixed-width block bar with the numeric
// percentage appended. The fill saturates at 100% but the printed
// percentage does not, so overruns stay visible.
func ProgressBar(pct float64) string {
	capped := math.Min(pct, 100)
	if capped < 0 {
		capped = 0
	}
	filled := int(math.Round(capped / 100 * progressBarWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	return fmt.Sprintf("%s %.0f%%", bar, pct)
}

// StatusEmoji maps a budget-usage percentage to a traffic light.
func StatusEmoji(pct float64) string {
	switch {
	case pct > 100:
		return "🔴"
	case pct > 80:
		return "🟡"
	default:
		return "🟢"
	}
}

// ChartRow is one (label, value) pair of an ascii bar chart.
type ChartRow struct {
	Label string
	Value float64
}

// BarChart renders rows as an ascii chart, every bar scaled to the
// set's maximum. The label column width follows the longest label so
// bars stay aligned. Intended to live inside a fenced block.
func BarChart(rows []ChartRow) string {
	if len(rows) == 0 {
		return ""
	}
	max := 0.0
	labelWidth := 0
	for _, r := range rows {
		if r.Value > max {
			max = r.Value
		}
		if n := len([]rune(r.Label)); n > labelWidth {
			labelWidth = n
		}
	}

	var b strings.Builder
	for i, r := range rows {
		width := 0
		if max > 0 {
			width = int(math.Round(r.Value / max * barChartWidth))
		}
		if r.Value > 0 && width == 0 {
			width = 1
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		pad := strings.Repeat(" ", labelWidth-len([]rune(r.Label)))
		fmt.Fprintf(&b, "%s%s %s %s", r.Label, pad, strings.Repeat("█", width), Currency(r.Value))
	}
	return b.String()
}

// WithSuggestions appends a separator plus suggested next utterances.
func WithSuggestions(content string, suggestions ...string) string {
	if len(suggestions) == 0 {
		return content
	}
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n---\n💡 Você também pode tentar:")
	for _, s := range suggestions {
		b.WriteString("\n• ")
		b.WriteString(s)
	}
	return b.String()
}

var monthShort = [...]string{"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez"}

// MonthLabel renders "2026-08" as "ago/2026". Unparseable input is
// returned unchanged.
func MonthLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%s/%d", monthShort[t.Month()-1], t.Year())
}

// Date renders a time as the Brazilian short form "02/01/2006".
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

// MonthRange returns the first instant of the month and of the next
// month for "YYYY-MM". Invalid input falls back to now's month.
func MonthRange(month string, now time.Time) (time.Time, time.Time) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		t = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t, t.AddDate(0, 1, 0)
}
