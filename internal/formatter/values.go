package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
)

// Column name fragments that mark a monetary value.
var moneyKeywords = []string{"amount", "revenue", "price", "cost", "value", "budget", "spend", "mrr", "arr"}

func isMoneyColumn(column string) bool {
	return containsAny(strings.ToLower(column), moneyKeywords)
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// numberText renders numeric values exactly, with locale grouping.
type numberText struct {
	printer    *message.Printer
	decimalSep string
	groupSep   string
}

func newNumberText(printer *message.Printer) numberText {
	sample := printer.Sprintf("%.1f", 1.5)
	sep := "."
	if len(sample) == 3 {
		sep = sample[1:2]
	}
	thousand := printer.Sprintf("%d", 1000)
	groupSep := strings.TrimSuffix(strings.TrimPrefix(thousand, "1"), "000")
	return numberText{printer: printer, decimalSep: sep, groupSep: groupSep}
}

// isNumeric reports whether v is a number and returns its plain decimal text.
func isNumeric(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case decimal.Decimal:
		return n.String(), true
	}
	return "", false
}

// group inserts locale grouping into a plain decimal string such as
// "-12500.5". Digits are never added or dropped except that minFrac pads the
// fraction with zeros.
func (nt numberText) group(plain string, minFrac int) string {
	neg := strings.HasPrefix(plain, "-")
	plain = strings.TrimPrefix(plain, "-")

	intPart, frac, _ := strings.Cut(plain, ".")
	for len(frac) < minFrac {
		frac += "0"
	}

	var out string
	if n, err := strconv.ParseUint(intPart, 10, 64); err == nil {
		out = nt.printer.Sprintf("%d", n)
	} else {
		out = nt.groupDigits(intPart)
	}
	if frac != "" {
		out += nt.decimalSep + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// groupDigits groups a digit string in threes with the locale separator. It
// covers integer parts too large for the printer's integer path.
func (nt numberText) groupDigits(digits string) string {
	if nt.groupSep == "" || len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}

	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(nt.groupSep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func (nt numberText) money(plain, symbol string) string {
	grouped := nt.group(plain, 2)
	if strings.HasPrefix(grouped, "-") {
		return "-" + symbol + strings.TrimPrefix(grouped, "-")
	}
	return symbol + grouped
}

const (
	longDate     = "January 2, 2006"
	longDateTime = "January 2, 2006 at 3:04 PM"
)

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(longDate)
	}
	return t.Format(longDateTime)
}

// renderValue formats one cell for display.
func (f *Formatter) renderValue(column string, v any) string {
	if v == nil {
		return "-"
	}
	if plain, ok := isNumeric(v); ok {
		if isMoneyColumn(column) {
			return f.numbers.money(plain, f.currency)
		}
		return f.numbers.group(plain, 0)
	}
	switch val := v.(type) {
	case time.Time:
		return formatTime(val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case string:
		return val
	}
	return fmt.Sprint(v)
}
