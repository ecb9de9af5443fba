package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/rs/zerolog"
)

const safeMessage = "The query passed every check."

// MaxBodyBytes caps request bodies. It leaves room for JSON escaping around
// the largest query the validator accepts.
const MaxBodyBytes = 64 << 10

// Asker answers a question for a tenant.
type Asker interface {
	Ask(ctx context.Context, q models.Question) models.Answer
}

type Handler struct {
	asker     Asker
	validator *sqlguard.Validator
	logger    *zerolog.Logger
}

func NewHandler(asker Asker, validator *sqlguard.Validator, logger *zerolog.Logger) *Handler {
	return &Handler{
		asker:     asker,
		validator: validator,
		logger:    logger,
	}
}

// POST /api/v1/ask
// Header: X-Organization-ID, set by the gateway from the session
// Body: AskRequest
// Returns: Answer
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	tenant := models.TenantContext{OrganizationID: strings.TrimSpace(req.HeaderParameter(TenantHeader))}
	if tenant.IsZero() {
		middleware.HandleError(resp, middleware.ErrMissingTenant, http.StatusUnauthorized)
		return
	}

	var askRequest AskRequest
	if !h.readEntity(req, resp, &askRequest) {
		return
	}
	if strings.TrimSpace(askRequest.Question) == "" {
		middleware.HandleError(resp, middleware.ErrEmptyQuestion, http.StatusBadRequest)
		return
	}

	answer := h.asker.Ask(req.Request.Context(), models.Question{
		RequestID: req.HeaderParameter(RequestIDHeader),
		Text:      askRequest.Question,
		Tenant:    tenant,
		CreatedAt: time.Now(),
	})

	resp.WriteHeaderAndEntity(http.StatusOK, answer)
}

// POST /api/v1/validate
// Body: ValidateRequest
// Returns: ValidateResponse
func (h *Handler) Validate(req *restful.Request, resp *restful.Response) {
	var validateRequest ValidateRequest
	if !h.readEntity(req, resp, &validateRequest) {
		return
	}
	if strings.TrimSpace(validateRequest.Query) == "" {
		middleware.HandleError(resp, middleware.ErrEmptyQuery, http.StatusBadRequest)
		return
	}

	verdict := h.validator.Validate(validateRequest.Query)

	h.logger.Info().
		Bool("safe", verdict.Safe).
		Str("reason", string(verdict.Reason)).
		Msg("Query validated")

	resp.WriteHeaderAndEntity(http.StatusOK, newValidateResponse(verdict))
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}

// readEntity decodes the body into entity and writes the error response when
// it cannot.
func (h *Handler) readEntity(req *restful.Request, resp *restful.Response, entity any) bool {
	req.Request.Body = http.MaxBytesReader(resp.ResponseWriter, req.Request.Body, MaxBodyBytes)
	if err := req.ReadEntity(entity); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")

		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		middleware.HandleError(resp, err, status)
		return false
	}
	return true
}

func newValidateResponse(verdict sqlguard.Verdict) ValidateResponse {
	if verdict.Safe {
		return ValidateResponse{Safe: true, Message: safeMessage}
	}
	return ValidateResponse{
		Safe:    false,
		Reason:  verdict.Reason,
		Message: verdict.Reason.Message(),
	}
}
