package mcpadapter

import (
	"context"
	"errors"
	"testing"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
)

type fakeAsker struct {
	got []models.Question
}

func (f *fakeAsker) Ask(ctx context.Context, q models.Question) models.Answer {
	f.got = append(f.got, q)
	return models.Answer{RequestID: q.RequestID, Text: "ok", Status: models.StatusAnswered}
}

func TestValidateQuery(t *testing.T) {
	v := sqlguard.NewValidator(50)

	tests := []struct {
		name       string
		query      string
		wantSafe   bool
		wantReason string
		wantErr    error
	}{
		{"safe", "SELECT * FROM crm_events WHERE organization_id = $1 LIMIT 5", true, "", nil},
		{"forbidden", "SELECT * FROM crm_events WHERE organization_id = $1; DROP TABLE users", false, string(sqlguard.ReasonForbiddenKeyword), nil},
		{"empty", "  ", false, "", ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := NewValidateHandler(v)(context.Background(), nil, ValidateInput{Query: tt.query})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if out.Safe != tt.wantSafe || out.Reason != tt.wantReason {
				t.Errorf("Expected safe=%v reason=%q, got %+v", tt.wantSafe, tt.wantReason, out)
			}
		})
	}
}

func TestAskCRM_UsesConfiguredTenant(t *testing.T) {
	asker := &fakeAsker{}
	tenant := models.TenantContext{OrganizationID: "org-7"}

	_, answer, err := NewAskHandler(asker, tenant)(context.Background(), nil, AskInput{RequestID: "r1", Question: "How many calls this week?"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answer.Status != models.StatusAnswered || answer.RequestID != "r1" {
		t.Errorf("Unexpected answer: %+v", answer)
	}
	if len(asker.got) != 1 || asker.got[0].Tenant != tenant {
		t.Errorf("Expected the configured tenant to be used, got %+v", asker.got)
	}
}

func TestAskCRM_EmptyQuestion(t *testing.T) {
	asker := &fakeAsker{}

	_, _, err := AskCRM(context.Background(), asker, models.TenantContext{OrganizationID: "org-7"}, AskInput{})
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("Expected ErrEmptyQuestion, got %v", err)
	}
	if len(asker.got) != 0 {
		t.Error("Expected no assistant call")
	}
}

func TestNewServer(t *testing.T) {
	if NewServer("test", sqlguard.NewValidator(50), &fakeAsker{}, models.TenantContext{OrganizationID: "org-7"}) == nil {
		t.Fatal("Expected a server")
	}
}
