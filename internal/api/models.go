package api

import "github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"

const (
	TenantHeader    = "X-Organization-ID"
	RequestIDHeader = "X-Request-ID"
)

type AskRequest struct {
	Question string `json:"question" description:"Free-text question about CRM data"`
}

type ValidateRequest struct {
	Query string `json:"query" description:"Candidate SQL query to check"`
}

type ValidateResponse struct {
	Safe    bool                `json:"safe" description:"Whether the query may be executed"`
	Reason  sqlguard.ReasonCode `json:"reason,omitempty" description:"Reason code when the query was rejected"`
	Message string              `json:"message" description:"Human readable verdict"`
}

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}
