package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	wrapped := fmt.Errorf("issue: %w", NotFound("inventory record"))
	got := From(wrapped)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	assert.Equal(t, "inventory record not found", got.Message)

	raw := errors.New("connection reset")
	got = From(raw)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.ErrorIs(t, got, raw)
}

func TestIs(t *testing.T) {
	assert.True(t, Is(Validationf("bad %s", "qty"), CodeValidation))
	assert.False(t, Is(Unauthorized(""), CodeValidation))
	assert.False(t, Is(errors.New("x"), CodeValidation))
}
