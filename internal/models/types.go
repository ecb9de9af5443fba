package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// TenantContext identifies the organization a request acts for. It comes from
// trusted request state, never from query text.
type TenantContext struct {
	OrganizationID string `json:"organization_id"`
}

func (t TenantContext) IsZero() bool {
	return strings.TrimSpace(t.OrganizationID) == ""
}

// Field is one column of a result row.
type Field struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// Row keeps the column order the data store returned.
type Row []Field

// Get returns the value for column, matched case-insensitively.
func (r Row) Get(column string) (any, bool) {
	for _, f := range r {
		if strings.EqualFold(f.Column, column) {
			return f.Value, true
		}
	}
	return nil, false
}

func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AnswerStatus tells the caller how a question was resolved.
type AnswerStatus string

const (
	StatusAnswered    AnswerStatus = "answered"
	StatusRejected    AnswerStatus = "rejected"
	StatusUnavailable AnswerStatus = "unavailable"
)

// Question is a normalized ask request.
type Question struct {
	RequestID string        `json:"request_id"`
	Text      string        `json:"question"`
	Tenant    TenantContext `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// Answer is what the assistant returns for a question. Text is always
// display-ready; Reason is set only for rejections.
type Answer struct {
	RequestID string       `json:"request_id"`
	Text      string       `json:"answer"`
	Status    AnswerStatus `json:"status"`
	Reason    string       `json:"reason,omitempty"`
	Query     string       `json:"query,omitempty"`
	RowCount  int          `json:"row_count"`
	Cached    bool         `json:"cached"`
}
