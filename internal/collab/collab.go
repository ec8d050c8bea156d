// internal/collab/collab.go
//
// The collaborator is the only boundary the portal talks across: a generic
// document store with list/get/create/set-field/upload semantics. The live
// implementation speaks to a Frappe site; the memory implementation seeds
// demo data for offline use and tests.

package collab

import (
	"context"
	"errors"
	"fmt"
)

// Record is a single document as the collaborator stores it: a flat field
// map, with child tables nested as []Record values.
type Record map[string]any

// Str returns the string value of a field, or "" when absent or non-string.
func (r Record) Str(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Rows returns a child table, tolerating both []Record and the []any shape
// JSON decoding produces.
func (r Record) Rows(key string) []Record {
	switch rows := r[key].(type) {
	case []Record:
		return rows
	case []any:
		out := make([]Record, 0, len(rows))
		for _, row := range rows {
			if m, ok := row.(map[string]any); ok {
				out = append(out, Record(m))
			}
		}
		return out
	}
	return nil
}

// Clone returns a shallow copy so callers can mutate results freely.
func (r Record) Clone() Record {
	dup := make(Record, len(r))
	for k, v := range r {
		dup[k] = v
	}
	return dup
}

// Filter restricts a List call. Op is "=" or "like"; the zero Op means "=".
type Filter struct {
	Field string
	Op    string
	Value any
}

// ListOptions shapes a List call. A zero Limit means no page cap.
type ListOptions struct {
	Fields  []string
	Filters []Filter
	Limit   int
	OrderBy string
}

// Collaborator is the CRUD/RPC contract every engine depends on. All calls
// are blocking; callers run them off the UI loop and pass a context.
type Collaborator interface {
	List(ctx context.Context, doctype string, opts ListOptions) ([]Record, error)
	Get(ctx context.Context, doctype, name string) (Record, error)
	Create(ctx context.Context, doc Record) (string, error)
	SetField(ctx context.Context, doctype, name string, fields map[string]any) error
	Upload(ctx context.Context, doctype, name, field, filename string, content []byte) (string, error)
	Logout(ctx context.Context) error
}

// Kind classifies collaborator failures so the UI can phrase them: transport
// problems are retryable as-is, permission denials are not.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindServer     Kind = "server"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not-found"
)

// Error wraps a failed collaborator call with its classification and the
// server-supplied detail when one could be parsed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified collaborator error.
func NewError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf reports the classification of err, or KindServer when err is not a
// collaborator error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindServer
}

// UserMessage extracts the detail worth showing a person: the server's own
// message when we have one, a generic fallback otherwise.
func UserMessage(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		switch {
		case ce.Msg != "":
			return ce.Msg
		case ce.Kind == KindTransport:
			return "Could not reach the server. Please check your connection and try again."
		case ce.Kind == KindPermission:
			return "You do not have permission to perform this action."
		}
	}
	return "Something went wrong. Please try again."
}
