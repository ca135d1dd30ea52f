package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("hold", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad", nil).StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden("no").StatusCode())
	assert.Equal(t, http.StatusConflict, Conflict("past").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(fmt.Errorf("boom")).StatusCode())
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("failed to cancel hold: %w", Conflict("hold is not held"))
	assert.Equal(t, ErrConflict, CodeOf(err))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("appointment", fmt.Errorf("sql: no rows"))
	assert.Equal(t, "appointment not found: sql: no rows", err.Error())
}
