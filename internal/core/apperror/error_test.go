package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientStock_Details(t *testing.T) {
	err := NewInsufficientStock("mat-1", "A", 6, 4)

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "A", err.Details["location"])
	assert.Equal(t, 6.0, err.Details["requested"])

	fifo := NewInsufficientStock("mat-1", "", 6, 4)
	_, hasLocation := fifo.Details["location"]
	assert.False(t, hasLocation)
}

func TestInvalidTransition_IdleState(t *testing.T) {
	err := NewInvalidTransition("pause", "")
	assert.Equal(t, "IDLE", err.Details["state"])
	assert.Contains(t, err.Message, "pause")
}

func TestHasCode_WrappedChain(t *testing.T) {
	base := NewDuplicateLocation("mat-1", "Shelf")
	wrapped := fmt.Errorf("add location: %w", base)

	assert.True(t, HasCode(wrapped, CodeDuplicateLocation))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeDuplicateLocation))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
	assert.Equal(t, "Shelf", appErr.Details["location"])
}

func TestDatabase_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabase(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(cause))
}
