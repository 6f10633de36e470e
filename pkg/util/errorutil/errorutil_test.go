package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "domain error passes through",
			err:        NewValidationError("bad range", nil),
			wantCode:   CodeValidation,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("load channel: %w", NewNotFound("channel", nil)),
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no rows becomes not found",
			err:        pgx.ErrNoRows,
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantCode:   CodeInternal,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("agent", map[string]any{"agent_id": "a1"})))
	assert.True(t, IsValidation(fmt.Errorf("wrap: %w", NewValidationError("x", nil))))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.Nil(t, MapError(nil))

	unavailable := NewDataUnavailable("history", errors.New("timeout"))
	assert.True(t, HasCode(unavailable, CodeDataUnavailable))
	assert.Contains(t, unavailable.Error(), "timeout")
}
