package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/assistant/mocks"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/audit"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/database"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

const safeCandidate = "SELECT first_name, status FROM crm_prospects WHERE organization_id = $1 AND status = 'hot' LIMIT 10"

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type testDeps struct {
	generator *mocks.MockQueryGenerator
	executor  *mocks.MockQueryExecutor
	formatter *mocks.MockAnswerFormatter
	cache     *mocks.MockAnswerCache
	recorder  *mocks.MockVerdictRecorder
	service   *Service
}

func newTestService(t *testing.T) *testDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	d := &testDeps{
		generator: mocks.NewMockQueryGenerator(ctrl),
		executor:  mocks.NewMockQueryExecutor(ctrl),
		formatter: mocks.NewMockAnswerFormatter(ctrl),
		cache:     mocks.NewMockAnswerCache(ctrl),
		recorder:  mocks.NewMockVerdictRecorder(ctrl),
	}
	d.service = NewService(d.generator, sqlguard.NewValidator(50), d.executor, d.formatter, d.cache, d.recorder, newTestLogger())
	return d
}

var tenant = models.TenantContext{OrganizationID: "org-1"}

func question(text string) models.Question {
	return models.Question{RequestID: "req-1", Text: text, Tenant: tenant}
}

func TestAsk_Answered(t *testing.T) {
	d := newTestService(t)
	rows := []models.Row{{{Column: "first_name", Value: "Ada"}, {Column: "status", Value: "hot"}}}

	gomock.InOrder(
		d.cache.EXPECT().Get(gomock.Any(), tenant, "Who are my hot prospects?").Return(models.Answer{}, false),
		d.generator.EXPECT().Generate(gomock.Any(), "Who are my hot prospects?").Return(safeCandidate, nil),
		d.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, e audit.Entry) (string, error) {
			if !e.Safe || e.Reason != "" || e.OrganizationID != "org-1" {
				t.Errorf("Unexpected audit entry: %+v", e)
			}
			return "1-0", nil
		}),
		d.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), tenant).DoAndReturn(
			func(ctx context.Context, q sqlguard.SafeQuery, tc models.TenantContext) ([]models.Row, error) {
				if q.Text() != safeCandidate {
					t.Errorf("Expected the validated candidate, got %q", q.Text())
				}
				return rows, nil
			}),
		d.formatter.EXPECT().Format(gomock.Any(), "Who are my hot prospects?", rows).Return("Ada is your only hot prospect."),
		d.cache.EXPECT().Put(gomock.Any(), tenant, "Who are my hot prospects?", gomock.Any()),
	)

	answer := d.service.Ask(context.Background(), question("  Who are my hot prospects? "))

	if answer.Status != models.StatusAnswered {
		t.Fatalf("Expected answered, got %s (%s)", answer.Status, answer.Text)
	}
	if answer.Text != "Ada is your only hot prospect." {
		t.Errorf("Expected formatted text, got %q", answer.Text)
	}
	if answer.RowCount != 1 || answer.Query != safeCandidate || answer.RequestID != "req-1" {
		t.Errorf("Unexpected answer: %+v", answer)
	}
}

func TestAsk_RejectedCandidateNeverExecutes(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		reason    sqlguard.ReasonCode
	}{
		{"write", "DELETE FROM crm_prospects WHERE organization_id = $1", sqlguard.ReasonNotSelect},
		{"unscoped", "SELECT * FROM crm_prospects LIMIT 10", sqlguard.ReasonMissingTenant},
		{"foreign table", "SELECT * FROM pg_shadow WHERE organization_id = $1 LIMIT 10", sqlguard.ReasonDisallowedTable},
		{"unbounded", "SELECT * FROM crm_prospects WHERE organization_id = $1", sqlguard.ReasonLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestService(t)
			d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Answer{}, false)
			d.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(tt.candidate, nil)
			d.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, e audit.Entry) (string, error) {
				if e.Safe || e.Reason != tt.reason {
					t.Errorf("Expected rejection %s in audit, got %+v", tt.reason, e)
				}
				return "", errors.New("stream unavailable")
			})
			// No executor, formatter or cache writes are expected.

			answer := d.service.Ask(context.Background(), question("show me everything"))

			if answer.Status != models.StatusRejected {
				t.Fatalf("Expected rejected, got %s", answer.Status)
			}
			if answer.Reason != string(tt.reason) {
				t.Errorf("Expected reason %s, got %s", tt.reason, answer.Reason)
			}
			if !strings.Contains(answer.Text, tt.reason.Message()) || !strings.HasSuffix(answer.Text, "Try rephrasing your question.") {
				t.Errorf("Expected display message, got %q", answer.Text)
			}
			if strings.Contains(answer.Text, string(tt.reason)) {
				t.Errorf("Expected the code to stay out of display text, got %q", answer.Text)
			}
			if answer.Query != "" {
				t.Errorf("Expected rejected query to be withheld, got %q", answer.Query)
			}
		})
	}
}

func TestAsk_Unavailable(t *testing.T) {
	t.Run("generation fails", func(t *testing.T) {
		d := newTestService(t)
		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Answer{}, false)
		d.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("ThrottlingException"))

		answer := d.service.Ask(context.Background(), question("how many deals?"))
		if answer.Status != models.StatusUnavailable || answer.Text != unavailableMessage {
			t.Errorf("Expected unavailable answer, got %+v", answer)
		}
	})

	t.Run("execution fails", func(t *testing.T) {
		d := newTestService(t)
		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Answer{}, false)
		d.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(safeCandidate, nil)
		d.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return("1-0", nil)
		d.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, &database.ExecutionError{
			Op:   "query",
			Kind: database.KindTimeout,
			Code: "57014",
			Err:  errors.New("canceling statement due to statement timeout"),
		})

		answer := d.service.Ask(context.Background(), question("how many deals?"))
		if answer.Status != models.StatusUnavailable {
			t.Fatalf("Expected unavailable, got %s", answer.Status)
		}
		if strings.Contains(answer.Text, "57014") || strings.Contains(answer.Text, "statement timeout") {
			t.Errorf("Expected no driver detail in display text, got %q", answer.Text)
		}
	})
}

func TestAsk_CacheHitSkipsCompletionService(t *testing.T) {
	d := newTestService(t)
	d.cache.EXPECT().Get(gomock.Any(), tenant, "how many deals?").Return(models.Answer{
		RequestID: "old",
		Text:      "You have 4 matching prospects.",
		Status:    models.StatusAnswered,
		RowCount:  1,
		Cached:    true,
	}, true)

	answer := d.service.Ask(context.Background(), question("how many deals?"))

	if !answer.Cached || answer.Text != "You have 4 matching prospects." {
		t.Errorf("Expected cached answer, got %+v", answer)
	}
	if answer.RequestID != "req-1" {
		t.Errorf("Expected the current request id, got %s", answer.RequestID)
	}
}

func TestAsk_InputGuards(t *testing.T) {
	tests := []struct {
		name       string
		q          models.Question
		wantReason string
	}{
		{"no tenant", models.Question{Text: "how many deals?"}, string(sqlguard.ReasonMissingTenant)},
		{"blank question", models.Question{Text: "   ", Tenant: tenant}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestService(t)

			answer := d.service.Ask(context.Background(), tt.q)
			if answer.Status != models.StatusRejected {
				t.Errorf("Expected rejected, got %s", answer.Status)
			}
			if answer.Reason != tt.wantReason {
				t.Errorf("Expected reason %q, got %q", tt.wantReason, answer.Reason)
			}
			if answer.RequestID == "" {
				t.Error("Expected a generated request id")
			}
		})
	}
}

func TestAsk_OptionalCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockQueryGenerator(ctrl)
	executor := mocks.NewMockQueryExecutor(ctrl)
	formatter := mocks.NewMockAnswerFormatter(ctrl)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(safeCandidate, nil)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	formatter.EXPECT().Format(gomock.Any(), gomock.Any(), gomock.Nil()).Return("I couldn't find any records matching your question.")

	s := NewService(generator, sqlguard.NewValidator(50), executor, formatter, nil, nil, newTestLogger())
	answer := s.Ask(context.Background(), question("How many hot prospects?"))

	if answer.Status != models.StatusAnswered || answer.RowCount != 0 {
		t.Errorf("Expected an answered empty result, got %+v", answer)
	}
}
