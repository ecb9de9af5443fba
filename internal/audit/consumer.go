package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// GroupReader is the subset of redis.Cmdable the consumer needs.
type GroupReader interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Stats counts verdicts read from the stream.
type Stats struct {
	Total    int                         `json:"total"`
	Safe     int                         `json:"safe"`
	Rejected map[sqlguard.ReasonCode]int `json:"rejected"`
}

// Consumer reads verdicts from the audit stream as part of a consumer group
// and keeps running totals per rejection reason.
type Consumer struct {
	client       GroupReader
	stream       string
	group        string
	consumerName string
	block        time.Duration
	retryDelay   time.Duration
	logger       *zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

func NewConsumer(client GroupReader, stream, group, consumerName string, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:       client,
		stream:       stream,
		group:        group,
		consumerName: consumerName,
		block:        2 * time.Second,
		retryDelay:   time.Second,
		logger:       logger,
		stats:        Stats{Rejected: map[sqlguard.ReasonCode]int{}},
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start reads until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.group).
		Str("consumer", c.consumerName).
		Msg("Verdict consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    50,
			Block:    c.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Dur("retry_in", c.retryDelay).Msg("Failed to read verdict stream")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

// Snapshot returns a copy of the current totals.
func (c *Consumer) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Stats{Total: c.stats.Total, Safe: c.stats.Safe, Rejected: make(map[sqlguard.ReasonCode]int, len(c.stats.Rejected))}
	for k, v := range c.stats.Rejected {
		out.Rejected[k] = v
	}
	return out
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var entry Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		// undecodable entries are acknowledged so they are not redelivered
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode verdict")
		c.ack(ctx, msg.ID)
		return
	}

	c.mu.Lock()
	c.stats.Total++
	if entry.Safe {
		c.stats.Safe++
	} else {
		c.stats.Rejected[entry.Reason]++
	}
	c.mu.Unlock()

	if !entry.Safe {
		c.logger.Info().
			Str("id", msg.ID).
			Str("request_id", entry.RequestID).
			Str("organization_id", entry.OrganizationID).
			Str("reason", string(entry.Reason)).
			Msg("Rejected candidate query")
	}

	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.group, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK verdict")
	}
}
