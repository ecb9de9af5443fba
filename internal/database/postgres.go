package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, config Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{
		Pool: pgPool,
	}, nil
}

// NewWithBackoff creates the pool and pings it until it answers, doubling the
// wait between attempts.
func NewWithBackoff(ctx context.Context, config Config, maxRetries int, logger *zerolog.Logger) (*DB, error) {
	db, err := New(ctx, config)
	if err != nil {
		return nil, err
	}

	maxRetries = max(maxRetries, 1)
	for i := range maxRetries {
		if i > 0 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			logger.Info().Dur("backoff", backoff).Msg("Waiting before Postgres retry")
			select {
			case <-ctx.Done():
				db.Close()
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		logger.Info().Int("attempt", i+1).Int("max_retries", maxRetries).Str("host", config.Host).Msg("Connecting to Postgres")

		err = db.Ping(ctx)
		if err == nil {
			logger.Info().Int("attempts_needed", i+1).Msg("Postgres connected")
			return db, nil
		}

		logger.Warn().Err(err).Int("attempt", i+1).Msg("Postgres ping failed")
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to Postgres after %d attempts: %w", maxRetries, err)
}

// ConnectionString builds a postgres URL. User and password are escaped so
// credentials with reserved characters survive.
func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	db.Pool.Close()
}
