package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("order not found"), http.StatusNotFound},
		{"forbidden", Forbidden("not allowed"), http.StatusForbidden},
		{"conflict", Conflict("already pending"), http.StatusConflict},
		{"validation", Invalid("price must be positive"), http.StatusBadRequest},
		{"unexpected", Unexpected("boom"), http.StatusInternalServerError},
		{"plain error", errors.New("driver failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("inner"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, IsKind(err, KindConflict))
}
