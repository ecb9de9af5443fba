package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUnvalidatedQuery = errors.New("query has not been validated")
	ErrMissingTenant    = errors.New("tenant id is required")
	ErrTenantNotBound   = errors.New("query does not reference the tenant placeholder")
	ErrQueryTimeout     = errors.New("query exceeded its time budget")
)

type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindReadOnly    ErrorKind = "read_only_violation"
	KindQuery       ErrorKind = "invalid_query"
	KindConnection  ErrorKind = "connection"
	KindUnavailable ErrorKind = "unavailable"
)

// ExecutionError is returned for any failure after the query was handed to
// the data store. Err carries the driver error for logs only.
type ExecutionError struct {
	Op   string
	Kind ErrorKind
	Code string
	Err  error
}

func (e *ExecutionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s failed (%s, sqlstate %s): %v", e.Op, e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() []error {
	if e.Kind == KindTimeout {
		return []error{ErrQueryTimeout, e.Err}
	}
	return []error{e.Err}
}

func classify(op string, err error) error {
	execErr := &ExecutionError{Op: op, Kind: KindUnavailable, Err: err}

	if errors.Is(err, context.DeadlineExceeded) {
		execErr.Kind = KindTimeout
		return execErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		execErr.Code = pgErr.Code
		switch {
		case pgErr.Code == pgerrcode.QueryCanceled:
			execErr.Kind = KindTimeout
		case pgErr.Code == pgerrcode.ReadOnlySQLTransaction:
			execErr.Kind = KindReadOnly
		case pgerrcode.IsSyntaxErrororAccessRuleViolation(pgErr.Code),
			pgerrcode.IsDataException(pgErr.Code):
			execErr.Kind = KindQuery
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsOperatorIntervention(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code):
			execErr.Kind = KindConnection
		}
		return execErr
	}

	switch {
	case pgconn.Timeout(err):
		execErr.Kind = KindTimeout
	case pgconn.SafeToRetry(err):
		execErr.Kind = KindConnection
	}
	return execErr
}
