package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/config"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Streamer is the subset of redis.Cmdable the recorder needs.
type Streamer interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Entry is one validation verdict. The query text is kept so rejected
// candidates can be reviewed; result rows never are.
type Entry struct {
	RequestID      string              `json:"request_id"`
	OrganizationID string              `json:"organization_id"`
	Safe           bool                `json:"safe"`
	Reason         sqlguard.ReasonCode `json:"reason,omitempty"`
	Query          string              `json:"query"`
	RecordedAt     time.Time           `json:"recorded_at"`
}

// Recorder appends verdicts to a capped Redis stream. Each message carries a
// single "payload" field holding the JSON entry.
type Recorder struct {
	client Streamer
	stream string
	maxLen int64
	logger *zerolog.Logger
}

func NewRecorder(client Streamer, cfg config.AuditConfig, logger *zerolog.Logger) *Recorder {
	return &Recorder{
		client: client,
		stream: cfg.Stream,
		maxLen: cfg.MaxLen,
		logger: logger,
	}
}

// Record returns the stream message id.
func (r *Recorder) Record(ctx context.Context, entry Entry) (string, error) {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encode verdict: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{"payload": string(payload)},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("append verdict to %s: %w", r.stream, err)
	}

	r.logger.Debug().
		Str("stream", r.stream).
		Str("id", id).
		Bool("safe", entry.Safe).
		Str("reason", string(entry.Reason)).
		Msg("Verdict recorded")

	return id, nil
}
