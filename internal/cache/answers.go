package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/config"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store is the subset of redis.Cmdable the cache needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// AnswerCache keeps answered questions per tenant for a short TTL. Cache
// failures are logged and treated as misses.
type AnswerCache struct {
	store  Store
	prefix string
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewAnswerCache(store Store, cfg config.CacheConfig, logger *zerolog.Logger) *AnswerCache {
	return &AnswerCache{
		store:  store,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		logger: logger,
	}
}

// Key is prefix:organization:sha256(normalized question).
func (c *AnswerCache) Key(tenant models.TenantContext, question string) string {
	sum := sha256.Sum256([]byte(normalizeQuestion(question)))
	return c.prefix + ":" + strings.TrimSpace(tenant.OrganizationID) + ":" + hex.EncodeToString(sum[:])
}

func (c *AnswerCache) Get(ctx context.Context, tenant models.TenantContext, question string) (models.Answer, bool) {
	if tenant.IsZero() {
		return models.Answer{}, false
	}

	key := c.Key(tenant, question)
	raw, err := c.store.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Answer cache read failed")
		}
		return models.Answer{}, false
	}

	var answer models.Answer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cached answer")
		return models.Answer{}, false
	}
	answer.Cached = true
	return answer, true
}

// Put stores answered results only. Rejections and outages are not cached.
func (c *AnswerCache) Put(ctx context.Context, tenant models.TenantContext, question string, answer models.Answer) {
	if tenant.IsZero() || answer.Status != models.StatusAnswered {
		return
	}

	answer.Cached = false
	data, err := json.Marshal(answer)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to encode answer for cache")
		return
	}

	key := c.Key(tenant, question)
	if err := c.store.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Answer cache write failed")
		return
	}
	c.logger.Debug().Str("key", key).Dur("ttl", c.ttl).Msg("Answer cached")
}

// normalizeQuestion folds case, collapses whitespace and drops trailing
// punctuation so trivially different phrasings share an entry.
func normalizeQuestion(q string) string {
	q = strings.ToLower(strings.Join(strings.Fields(q), " "))
	return strings.TrimRight(q, "?!. ")
}
