package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Executor runs validated queries for one tenant at a time.
type Executor struct {
	db               TxBeginner
	maxRows          int
	statementTimeout time.Duration
	logger           *zerolog.Logger
}

func NewExecutor(db TxBeginner, maxRows int, statementTimeout time.Duration, logger *zerolog.Logger) *Executor {
	if maxRows <= 0 {
		maxRows = sqlguard.DefaultMaxLimit
	}
	return &Executor{
		db:               db,
		maxRows:          maxRows,
		statementTimeout: statementTimeout,
		logger:           logger,
	}
}

// Execute runs q inside a read-only transaction with the tenant id bound as
// $1. The tenant id is never written into the query text.
func (e *Executor) Execute(ctx context.Context, q sqlguard.SafeQuery, tenant models.TenantContext) ([]models.Row, error) {
	if q.IsZero() {
		return nil, ErrUnvalidatedQuery
	}
	if tenant.IsZero() {
		return nil, ErrMissingTenant
	}
	if !sqlguard.HasTenantPlaceholder(q.Text()) {
		return nil, ErrTenantNotBound
	}

	start := time.Now()

	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, classify("begin", err)
	}
	// Nothing is ever committed.
	defer func() {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			e.logger.Warn().Err(rbErr).Msg("rollback failed")
		}
	}()

	if e.statementTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", e.statementTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return nil, classify("set statement timeout", err)
		}
	}

	rows, err := tx.Query(ctx, q.Text(), tenant.OrganizationID)
	if err != nil {
		return nil, classify("query", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := make([]models.Row, 0)
	truncated := false

	for rows.Next() {
		if len(result) >= e.maxRows {
			truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, classify("scan", err)
		}

		row := make(models.Row, len(values))
		for i, v := range values {
			row[i] = models.Field{Column: fields[i].Name, Value: convertValue(v)}
		}
		result = append(result, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("read rows", err)
	}

	e.logger.Info().
		Str("organization_id", tenant.OrganizationID).
		Int("rows", len(result)).
		Bool("truncated", truncated).
		Dur("duration", time.Since(start)).
		Msg("query executed")

	return result, nil
}

// convertValue turns driver-specific values into types the formatter and the
// JSON encoder understand.
func convertValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		return numericValue(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.UUID:
		if !val.Valid {
			return nil
		}
		return uuid.UUID(val.Bytes).String()
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case []byte:
		return string(val)
	}
	return v
}

func numericValue(n pgtype.Numeric) any {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
