package querygen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/config"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/llm"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrEmptyCompletion = errors.New("completion returned no query text")
)

// promptData is what the prompt template can reference.
type promptData struct {
	Question     string
	Schema       string
	TenantColumn string
	Placeholder  string
	MaxLimit     int
}

// Generator asks the completion service for a candidate query. Its output is
// untrusted text that must still pass the validator.
type Generator struct {
	system         string
	schema         string
	promptTemplate *template.Template
	model          config.ModelParams
	timeout        time.Duration
	maxLimit       int
	llmClient      llm.LLMClient
	logger         *zerolog.Logger
}

func NewGenerator(cfg config.QueryGenConfig, maxLimit int, llmClient llm.LLMClient, logger *zerolog.Logger) (*Generator, error) {
	tmpl, err := template.New("query_generation").Option("missingkey=error").Parse(cfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query generation prompt: %w", err)
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("query generation has nil model config (should be populated by config loader)")
	}

	return &Generator{
		system:         cfg.System,
		schema:         cfg.Schema,
		promptTemplate: tmpl,
		model:          *cfg.Model,
		timeout:        cfg.Timeout,
		maxLimit:       maxLimit,
		llmClient:      llmClient,
		logger:         logger,
	}, nil
}

// Generate returns candidate query text for question.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	prompt, err := g.buildPrompt(question)
	if err != nil {
		return "", err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	request := llm.LLMRequest{
		System:      g.system,
		Prompt:      prompt,
		MaxTokens:   g.model.MaxTokens,
		Temperature: g.model.Temperature,
	}

	start := time.Now()
	var resp *llm.LLMResponse
	if g.model.Retry {
		resp, err = g.llmClient.InvokeModelWithRetry(ctx, request)
	} else {
		resp, err = g.llmClient.InvokeModel(ctx, request)
	}
	if err != nil {
		return "", fmt.Errorf("query generation failed: %w", err)
	}

	candidate := stripMarkdownCodeBlock(resp.Content)
	if candidate == "" {
		return "", ErrEmptyCompletion
	}

	g.logger.Debug().
		Str("candidate", candidate).
		Str("stop_reason", resp.StopReason).
		Dur("duration", time.Since(start)).
		Msg("candidate query generated")

	return candidate, nil
}

func (g *Generator) buildPrompt(question string) (string, error) {
	var buf bytes.Buffer
	data := promptData{
		Question:     question,
		Schema:       g.schema,
		TenantColumn: sqlguard.TenantColumn,
		Placeholder:  sqlguard.TenantPlaceholder,
		MaxLimit:     g.maxLimit,
	}
	if err := g.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// stripMarkdownCodeBlock removes ```sql ... ``` or ``` ... ``` wrapping. The
// text is otherwise passed through untouched so the validator sees exactly
// what the model produced.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	firstNewline := strings.Index(content, "\n")
	if firstNewline == -1 {
		return content
	}

	closing := strings.LastIndex(content, "```")
	if closing <= firstNewline {
		return content
	}

	return strings.TrimSpace(content[firstNewline+1 : closing])
}
