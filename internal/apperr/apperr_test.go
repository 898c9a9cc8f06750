package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindBadRequest:      http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindInternal:        http.StatusInternalServerError,
	}

	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading case: %w", NotFound("Case not found"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}

func TestFromUnknownError(t *testing.T) {
	cause := errors.New("connection reset")
	appErr := From(cause)

	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("Validation failed", FieldError{Field: "title", Message: "must be at least 3 characters"})

	assert.Len(t, err.Fields, 1)
	assert.Equal(t, "title", err.Fields[0].Field)
	assert.Equal(t, "Validation failed", err.Error())
}
