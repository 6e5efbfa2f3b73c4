package voiderr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessagePrecedence(t *testing.T) {
	assert.Equal(t, "task not found", New(NotFound, "task not found").Error())

	wrapped := Wrap(LLMUnavailable, errors.New("connection refused"))
	assert.Equal(t, "LLMUnavailable: connection refused", wrapped.Error())

	assert.Equal(t, "Internal", (&Error{Kind: Internal}).Error())
}

func TestError_UnwrapExposesUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	wrapped := Wrap(Internal, underlying)
	assert.Same(t, underlying, errors.Unwrap(wrapped))
}

func TestWithReason_AttachesReasonInPlace(t *testing.T) {
	err := New(Conflict, "cycle detected").WithReason(ReasonCycle)
	assert.Equal(t, ReasonCycle, err.Reason)
}

func TestKindOf_RecoversClassifiedKind(t *testing.T) {
	err := fmt.Errorf("wrapping: %w", New(Timeout, "deadline exceeded"))
	assert.Equal(t, Timeout, KindOf(err))
}

func TestKindOf_DefaultsToInternalForPlainErrors(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("unclassified")))
}

func TestReasonOf_EmptyForErrorsWithoutAReason(t *testing.T) {
	assert.Equal(t, Reason(""), ReasonOf(New(NotFound, "missing")))
	assert.Equal(t, Reason(""), ReasonOf(errors.New("plain")))
}

func TestNewf_FormatsMessage(t *testing.T) {
	err := Newf(InvalidArgument, "field %q must be positive", "priority")
	assert.Equal(t, `field "priority" must be positive`, err.Error())
}
