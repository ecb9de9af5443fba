package formatter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode"
	"unicode/utf8"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	NoResultsMessage  = "I couldn't find any records matching your question."
	defaultDisplayCap = 10
)

type Options struct {
	DisplayCap     int
	CurrencySymbol string
	Locale         string
}

// Formatter turns result rows into display text. It never adds values that
// are not in the rows.
type Formatter struct {
	summarizer Summarizer
	displayCap int
	currency   string
	numbers    numberText
	logger     *zerolog.Logger
}

// New builds a Formatter. A nil summarizer always uses the table fallback.
func New(summarizer Summarizer, opts Options, logger *zerolog.Logger) *Formatter {
	if opts.DisplayCap <= 0 {
		opts.DisplayCap = defaultDisplayCap
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "$"
	}

	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}

	return &Formatter{
		summarizer: summarizer,
		displayCap: opts.DisplayCap,
		currency:   opts.CurrencySymbol,
		numbers:    newNumberText(message.NewPrinter(tag)),
		logger:     logger,
	}
}

// Format renders rows as an answer to question.
func (f *Formatter) Format(ctx context.Context, question string, rows []models.Row) string {
	if len(rows) == 0 {
		return NoResultsMessage
	}

	if sentence, ok := f.singleValue(rows); ok {
		return sentence
	}

	if f.summarizer != nil {
		summary, err := f.summarizer.Summarize(ctx, question, rows)
		if err == nil {
			return summary
		}

		kind := SummaryProviderError
		var summaryErr *SummaryError
		if errors.As(err, &summaryErr) {
			kind = summaryErr.Kind
		}
		f.logger.Warn().
			Err(err).
			Str("kind", string(kind)).
			Int("rows", len(rows)).
			Msg("summary unavailable, rendering table")
	}

	return f.Table(rows)
}

// singleValue handles a one-row, one-column numeric result without the
// completion service.
func (f *Formatter) singleValue(rows []models.Row) (string, bool) {
	if len(rows) != 1 || len(rows[0]) != 1 {
		return "", false
	}
	field := rows[0][0]
	plain, ok := isNumeric(field.Value)
	if !ok {
		return "", false
	}

	if isMoneyColumn(field.Column) {
		return fmt.Sprintf("The total is %s.", f.numbers.money(plain, f.currency)), true
	}
	return quantitySentence(field.Column, f.numbers.group(plain, 0), plain == "1", !strings.Contains(plain, ".")), true
}

// Table renders up to the display cap of rows as an aligned table, followed by
// a notice when rows were left out.
func (f *Formatter) Table(rows []models.Row) string {
	if len(rows) == 0 {
		return NoResultsMessage
	}

	shown := rows
	if len(shown) > f.displayCap {
		shown = shown[:f.displayCap]
	}

	var sb strings.Builder
	if len(rows) == 1 {
		sb.WriteString("Here is the matching record:\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("Here are the %d matching records:\n\n", len(rows)))
	}

	columns := rows[0].Columns()
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers(columns), "\t"))
	for _, row := range shown {
		cells := make([]string, len(columns))
		for i, col := range columns {
			var v any
			if i < len(row) {
				v = row[i].Value
			}
			cells[i] = f.renderValue(col, v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	if len(rows) > len(shown) {
		sb.WriteString(fmt.Sprintf("\nShowing the first %d of %d records.", len(shown), len(rows)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// headers turns snake_case column names into title case labels.
func headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		words := strings.Fields(strings.ReplaceAll(col, "_", " "))
		for j, w := range words {
			r, size := utf8.DecodeRuneInString(w)
			words[j] = string(unicode.ToUpper(r)) + w[size:]
		}
		out[i] = strings.Join(words, " ")
		if out[i] == "" {
			out[i] = col
		}
	}
	return out
}
