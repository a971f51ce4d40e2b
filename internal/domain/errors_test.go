package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesByKind(t *testing.T) {
	err := fmt.Errorf("load: %w", E(KindNotFound, "product not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "load: product not found", err.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindOrderCreationFailed, "order cannot be created", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrOrderCreationFailed)
	assert.Equal(t, "order cannot be created", err.Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "Internal", KindInternal.String())
}
