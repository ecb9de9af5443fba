package mcpadapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
)

var (
	ErrEmptyQuery    = errors.New("query is required")
	ErrEmptyQuestion = errors.New("question is required")
)

// ValidateInput is the MCP tool input schema for validate_query.
type ValidateInput struct {
	Query string `json:"query" jsonschema:"candidate SQL query to check without running it"`
}

// ValidateOutput mirrors the HTTP validate response.
type ValidateOutput struct {
	Safe    bool   `json:"safe" jsonschema:"whether the query may be executed"`
	Reason  string `json:"reason,omitempty" jsonschema:"reason code when the query was rejected"`
	Message string `json:"message" jsonschema:"human readable verdict"`
}

// AskInput is the MCP tool input schema for ask_crm.
type AskInput struct {
	RequestID string `json:"request_id,omitempty" jsonschema:"optional request identifier"`
	Question  string `json:"question" jsonschema:"free-text question about CRM data"`
}

// Asker answers a question for a tenant.
type Asker interface {
	Ask(ctx context.Context, q models.Question) models.Answer
}

// NewValidateHandler returns a tool handler that checks queries with v.
// Pass the returned function to mcp.AddTool.
func NewValidateHandler(v *sqlguard.Validator) func(context.Context, *mcp.CallToolRequest, ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
		return ValidateQuery(v, input)
	}
}

// ValidateQuery runs the validator on input.Query.
func ValidateQuery(v *sqlguard.Validator, input ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, ValidateOutput{}, ErrEmptyQuery
	}

	verdict := v.Validate(input.Query)
	if verdict.Safe {
		return nil, ValidateOutput{Safe: true, Message: "The query passed every check."}, nil
	}
	return nil, ValidateOutput{
		Safe:    false,
		Reason:  string(verdict.Reason),
		Message: verdict.Reason.Message(),
	}, nil
}

// NewAskHandler returns a tool handler that answers questions for tenant. The
// tenant comes from process configuration, never from tool input.
// Pass the returned function to mcp.AddTool.
func NewAskHandler(asker Asker, tenant models.TenantContext) func(context.Context, *mcp.CallToolRequest, AskInput) (*mcp.CallToolResult, models.Answer, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, models.Answer, error) {
		return AskCRM(ctx, asker, tenant, input)
	}
}

// AskCRM runs the assistant and returns its answer.
func AskCRM(ctx context.Context, asker Asker, tenant models.TenantContext, input AskInput) (*mcp.CallToolResult, models.Answer, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, models.Answer{}, ErrEmptyQuestion
	}

	answer := asker.Ask(ctx, models.Question{
		RequestID: input.RequestID,
		Text:      input.Question,
		Tenant:    tenant,
		CreatedAt: time.Now(),
	})
	return nil, answer, nil
}

// NewServer registers the validate_query and ask_crm tools.
func NewServer(version string, validator *sqlguard.Validator, asker Asker, tenant models.TenantContext) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "crm-assistant",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_query",
		Description: "Check whether a SQL query is a safe, tenant-scoped, bounded read-only query. The query is never executed.",
	}, NewValidateHandler(validator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_crm",
		Description: "Answer a question about CRM prospects, pipeline stages, events, activities and users for the configured organization.",
	}, NewAskHandler(asker, tenant))

	return server
}
