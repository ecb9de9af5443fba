package assistant

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks . QueryGenerator,QueryExecutor,AnswerFormatter,AnswerCache,VerdictRecorder

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/audit"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/database"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/rs/zerolog"
)

const (
	unavailableMessage = "The CRM data is temporarily unavailable. Please try again in a moment."
	rephraseSuffix     = " Try rephrasing your question."
	noTenantMessage    = "I can't look that up without knowing which organization you belong to."
	emptyQuestion      = "Please ask a question about your CRM data."
)

// QueryGenerator turns a question into candidate query text.
type QueryGenerator interface {
	Generate(ctx context.Context, question string) (string, error)
}

// QueryExecutor runs a validated query for one tenant.
type QueryExecutor interface {
	Execute(ctx context.Context, q sqlguard.SafeQuery, tenant models.TenantContext) ([]models.Row, error)
}

// AnswerFormatter renders rows for display.
type AnswerFormatter interface {
	Format(ctx context.Context, question string, rows []models.Row) string
}

// AnswerCache stores answered questions per tenant.
type AnswerCache interface {
	Get(ctx context.Context, tenant models.TenantContext, question string) (models.Answer, bool)
	Put(ctx context.Context, tenant models.TenantContext, question string, answer models.Answer)
}

// VerdictRecorder keeps a trail of validation verdicts.
type VerdictRecorder interface {
	Record(ctx context.Context, entry audit.Entry) (string, error)
}

// Service answers questions about CRM data. Every candidate query passes the
// validator before it reaches the executor.
type Service struct {
	generator QueryGenerator
	validator *sqlguard.Validator
	executor  QueryExecutor
	formatter AnswerFormatter
	cache     AnswerCache
	recorder  VerdictRecorder
	logger    *zerolog.Logger
}

// NewService wires the pipeline. cache and recorder may be nil.
func NewService(
	generator QueryGenerator,
	validator *sqlguard.Validator,
	executor QueryExecutor,
	formatter AnswerFormatter,
	cache AnswerCache,
	recorder VerdictRecorder,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		generator: generator,
		validator: validator,
		executor:  executor,
		formatter: formatter,
		cache:     cache,
		recorder:  recorder,
		logger:    logger,
	}
}

// Validator exposes the validator so surfaces can offer a dry-run check.
func (s *Service) Validator() *sqlguard.Validator {
	return s.validator
}

// Ask never returns an error. Failures become an Answer with a rejected or
// unavailable status and display text that carries no internal detail.
func (s *Service) Ask(ctx context.Context, q models.Question) models.Answer {
	start := time.Now()
	if q.RequestID == "" {
		q.RequestID = uuid.NewString()
	}
	question := strings.TrimSpace(q.Text)

	log := s.logger.With().
		Str("request_id", q.RequestID).
		Str("organization_id", q.Tenant.OrganizationID).
		Logger()
	log.Info().Str("question", question).Msg("processing question")

	answer := s.answer(ctx, q.RequestID, question, q.Tenant, &log)

	log.Info().
		Str("status", string(answer.Status)).
		Str("reason", answer.Reason).
		Int("rows", answer.RowCount).
		Bool("cached", answer.Cached).
		Dur("duration", time.Since(start)).
		Msg("question complete")
	return answer
}

func (s *Service) answer(ctx context.Context, requestID, question string, tenant models.TenantContext, log *zerolog.Logger) models.Answer {
	if tenant.IsZero() {
		return rejected(requestID, sqlguard.ReasonMissingTenant, noTenantMessage)
	}
	if question == "" {
		return models.Answer{RequestID: requestID, Text: emptyQuestion, Status: models.StatusRejected}
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, tenant, question); ok {
			cached.RequestID = requestID
			return cached
		}
	}

	candidate, err := s.generator.Generate(ctx, question)
	if err != nil {
		log.Error().Err(err).Msg("query generation failed")
		return unavailable(requestID)
	}

	safeQuery, verdict := s.validator.Admit(candidate)
	s.record(ctx, requestID, tenant, candidate, verdict, log)
	if !verdict.Safe {
		log.Warn().Str("reason", string(verdict.Reason)).Msg("candidate query rejected")
		return rejected(requestID, verdict.Reason, "I couldn't answer that safely. "+verdict.Reason.Message()+rephraseSuffix)
	}

	rows, err := s.executor.Execute(ctx, safeQuery, tenant)
	if err != nil {
		event := log.Error().Err(err)
		var execErr *database.ExecutionError
		if errors.As(err, &execErr) {
			event = event.Str("kind", string(execErr.Kind)).Str("code", execErr.Code)
		}
		event.Msg("query execution failed")
		return unavailable(requestID)
	}

	result := models.Answer{
		RequestID: requestID,
		Text:      s.formatter.Format(ctx, question, rows),
		Status:    models.StatusAnswered,
		Query:     safeQuery.Text(),
		RowCount:  len(rows),
	}

	if s.cache != nil {
		s.cache.Put(ctx, tenant, question, result)
	}
	return result
}

func (s *Service) record(ctx context.Context, requestID string, tenant models.TenantContext, candidate string, verdict sqlguard.Verdict, log *zerolog.Logger) {
	if s.recorder == nil {
		return
	}
	_, err := s.recorder.Record(ctx, audit.Entry{
		RequestID:      requestID,
		OrganizationID: tenant.OrganizationID,
		Safe:           verdict.Safe,
		Reason:         verdict.Reason,
		Query:          candidate,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to record verdict")
	}
}

func rejected(requestID string, reason sqlguard.ReasonCode, text string) models.Answer {
	return models.Answer{
		RequestID: requestID,
		Text:      text,
		Status:    models.StatusRejected,
		Reason:    string(reason),
	}
}

func unavailable(requestID string) models.Answer {
	return models.Answer{
		RequestID: requestID,
		Text:      unavailableMessage,
		Status:    models.StatusUnavailable,
	}
}
