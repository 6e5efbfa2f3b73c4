// Package voiderr defines the error kinds shared by every component of the
// reasoning core, so the MCP and HTTP surfaces can map a failure to a
// protocol-specific code without string-sniffing error messages.
package voiderr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error kinds every component maps its failures onto.
type Kind string

const (
	InvalidArgument Kind = "InvalidArgument"
	NotFound        Kind = "NotFound"
	Conflict        Kind = "Conflict"
	KnowledgeEmpty  Kind = "KnowledgeEmpty"
	LLMUnavailable  Kind = "LLMUnavailable"
	LLMBadReply     Kind = "LLMBadReply"
	Timeout         Kind = "Timeout"
	Cancelled       Kind = "Cancelled"
	Internal        Kind = "Internal"
)

// Reason distinguishes sub-cases of Conflict raised by the task store
// (cycle, duplicate id, delete of a task with children).
type Reason string

const (
	ReasonCycle        Reason = "CYCLE"
	ReasonDuplicateID  Reason = "DUPLICATE_ID"
	ReasonHasChildren  Reason = "HAS_CHILDREN"
	ReasonForceBlocked Reason = "FORCE_REQUIRED"
)

// Error is the concrete type every component returns for a classified
// failure. Callers recover it with errors.As, never by matching strings.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithReason attaches a Reason sub-code (used for Conflict errors).
func (e *Error) WithReason(r Reason) *Error {
	e.Reason = r
	return e
}

// KindOf extracts the Kind from err, defaulting to Internal when err does
// not carry a classified kind.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return Internal
}

// ReasonOf extracts the Reason from err, if any.
func ReasonOf(err error) Reason {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
