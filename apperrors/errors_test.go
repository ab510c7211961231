package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(E(KindNotFound, "task not found")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindOfWrappedError(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUnavailable, "revocation check failed", cause)

	// Kind preživljava dodatno umotavanje kroz fmt.Errorf.
	wrapped := fmt.Errorf("handling request: %w", err)
	assert.Equal(t, KindUnavailable, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindUnavailable))
	assert.ErrorIs(t, wrapped, cause)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "task not found", E(KindNotFound, "task not found").Error())

	cause := errors.New("no documents")
	assert.Equal(t, "task not found: no documents", Wrap(KindNotFound, "task not found", cause).Error())
}
