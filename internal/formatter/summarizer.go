package formatter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/config"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/llm"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/rs/zerolog"
)

type SummaryErrorKind string

const (
	SummaryTimeout           SummaryErrorKind = "timeout"
	SummaryMalformedResponse SummaryErrorKind = "malformed_response"
	SummaryProviderError     SummaryErrorKind = "provider_error"
)

// SummaryError explains why no summary is available. The formatter falls back
// to a table for every kind.
type SummaryError struct {
	Kind SummaryErrorKind
	Err  error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("summary %s: %v", e.Kind, e.Err)
}

func (e *SummaryError) Unwrap() error {
	return e.Err
}

// Summarizer turns rows into a short conversational answer.
type Summarizer interface {
	Summarize(ctx context.Context, question string, rows []models.Row) (string, error)
}

// LLMSummarizer asks the completion service for a summary of the rows.
type LLMSummarizer struct {
	client  llm.LLMClient
	system  string
	model   config.ModelParams
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewLLMSummarizer(client llm.LLMClient, cfg config.FormatterConfig, logger *zerolog.Logger) (*LLMSummarizer, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("formatter has nil model config (should be populated by config loader)")
	}
	return &LLMSummarizer{
		client:  client,
		system:  cfg.System,
		model:   *cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Summarize returns the summary text or a *SummaryError.
func (s *LLMSummarizer) Summarize(ctx context.Context, question string, rows []models.Row) (string, error) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return "", &SummaryError{Kind: SummaryMalformedResponse, Err: fmt.Errorf("encode rows: %w", err)}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	request := llm.LLMRequest{
		System:      s.system,
		Prompt:      buildSummaryPrompt(question, payload),
		MaxTokens:   s.model.MaxTokens,
		Temperature: s.model.Temperature,
	}

	var resp *llm.LLMResponse
	if s.model.Retry {
		resp, err = s.client.InvokeModelWithRetry(ctx, request)
	} else {
		resp, err = s.client.InvokeModel(ctx, request)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", &SummaryError{Kind: SummaryTimeout, Err: err}
		}
		return "", &SummaryError{Kind: SummaryProviderError, Err: err}
	}

	text := strings.TrimSpace(resp.Content)
	switch {
	case text == "":
		return "", &SummaryError{Kind: SummaryMalformedResponse, Err: errors.New("empty summary")}
	case resp.StopReason == "max_tokens" || resp.StopReason == "length":
		return "", &SummaryError{Kind: SummaryMalformedResponse, Err: fmt.Errorf("summary truncated (%s)", resp.StopReason)}
	}

	if n, ok := unsupportedNumber(text, string(payload), len(rows)); !ok {
		return "", &SummaryError{Kind: SummaryMalformedResponse, Err: fmt.Errorf("summary mentions %s which is not in the rows", n)}
	}

	return text, nil
}

func buildSummaryPrompt(question string, payload []byte) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nRows (JSON):\n")
	sb.Write(payload)
	sb.WriteString("\n\nAnswer the question using only these rows.")
	return sb.String()
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// unsupportedNumber reports the first multi-digit number in text that does not
// occur in the row payload. The row count itself is always allowed.
func unsupportedNumber(text, payload string, rowCount int) (string, bool) {
	count := strconv.Itoa(rowCount)
	for _, raw := range numberPattern.FindAllString(text, -1) {
		n := normalizeNumber(raw)
		if len(n) < 2 || n == count {
			continue
		}
		if !strings.Contains(payload, n) {
			return raw, false
		}
	}
	return "", true
}

// normalizeNumber drops grouping commas and trailing fractional zeros so that
// "12,500.50" matches the payload's "12500.5".
func normalizeNumber(s string) string {
	s = strings.TrimRight(s, ",")
	s = strings.ReplaceAll(s, ",", "")
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
