package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/llm"
)

type fakeRuntime struct {
	calls   int
	errs    []error
	body    string
	lastReq claudeMessageRequest
}

func (f *fakeRuntime) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.calls++
	if err := json.Unmarshal(params.Body, &f.lastReq); err != nil {
		return nil, err
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func newTestClient(rt *fakeRuntime) *Client {
	return &Client{
		Client:       rt,
		ModelID:      "anthropic.claude-test",
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestInvokeModel_BuildsPayloadAndJoinsText(t *testing.T) {
	rt := &fakeRuntime{body: `{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"world"}],"stop_reason":"end_turn"}`}
	client := newTestClient(rt)

	resp, err := client.InvokeModel(context.Background(), llm.LLMRequest{
		System:      "be brief",
		Prompt:      "hi",
		MaxTokens:   64,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("InvokeModel failed: %v", err)
	}

	if resp.Content != "Hello world" {
		t.Errorf("Expected joined content, got %q", resp.Content)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("Expected stop reason end_turn, got %q", resp.StopReason)
	}
	if rt.lastReq.AnthropicVersion != anthropicVersion {
		t.Errorf("Expected anthropic version %s, got %s", anthropicVersion, rt.lastReq.AnthropicVersion)
	}
	if rt.lastReq.System != "be brief" || rt.lastReq.MaxTokens != 64 {
		t.Errorf("Unexpected payload: %+v", rt.lastReq)
	}
	if len(rt.lastReq.Messages) != 1 || rt.lastReq.Messages[0].Role != "user" || rt.lastReq.Messages[0].Content != "hi" {
		t.Errorf("Unexpected messages: %+v", rt.lastReq.Messages)
	}
}

func TestInvokeModel_MalformedBody(t *testing.T) {
	client := newTestClient(&fakeRuntime{body: "not json"})
	if _, err := client.InvokeModel(context.Background(), llm.LLMRequest{Prompt: "x"}); err == nil {
		t.Error("Expected an error for a malformed body")
	}
}

func TestInvokeModelWithRetry_RetriesThrottling(t *testing.T) {
	rt := &fakeRuntime{
		errs: []error{errors.New("ThrottlingException: slow down"), nil},
		body: `{"content":[{"type":"text","text":"ok"}]}`,
	}
	client := newTestClient(rt)

	resp, err := client.InvokeModelWithRetry(context.Background(), llm.LLMRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Expected ok, got %q", resp.Content)
	}
	if rt.calls != 2 {
		t.Errorf("Expected 2 calls, got %d", rt.calls)
	}
}

func TestInvokeModelWithRetry_StopsOnClientError(t *testing.T) {
	rt := &fakeRuntime{errs: []error{errors.New("ValidationException: bad input")}}
	client := newTestClient(rt)

	if _, err := client.InvokeModelWithRetry(context.Background(), llm.LLMRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected an error")
	}
	if rt.calls != 1 {
		t.Errorf("Expected a single call, got %d", rt.calls)
	}
}

func TestInvokeModelWithRetry_GivesUp(t *testing.T) {
	boom := errors.New("ServiceUnavailableException")
	rt := &fakeRuntime{errs: []error{boom, boom, boom, boom}}
	client := newTestClient(rt)

	_, err := client.InvokeModelWithRetry(context.Background(), llm.LLMRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if rt.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", rt.calls)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("ThrottlingException"), true},
		{errors.New("read: connection reset by peer"), true},
		{errors.New("AccessDeniedException"), false},
		{context.DeadlineExceeded, false},
		{context.Canceled, false},
	}
	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v): expected %v, got %v", tt.err, tt.want, got)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	initial := 100 * time.Millisecond
	maxDelay := time.Second

	for attempt := 0; attempt < 6; attempt++ {
		d := calculateBackoff(attempt, initial, maxDelay)
		if d <= 0 {
			t.Errorf("attempt %d: expected a positive delay, got %v", attempt, d)
		}
		if d > maxDelay+maxDelay/5 {
			t.Errorf("attempt %d: expected delay capped near %v, got %v", attempt, maxDelay, d)
		}
	}

	if d := calculateBackoff(2, initial, maxDelay); d < 320*time.Millisecond {
		t.Errorf("Expected the delay to grow with attempts, got %v", d)
	}
}
