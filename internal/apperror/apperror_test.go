package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-printshop-storefront/internal/apperror"
)

func TestUserMessage(t *testing.T) {
	t.Run("success_app_error_message", func(t *testing.T) {
		err := apperror.New(apperror.CodeInvalidInput, "Insufficient wallet balance", http.StatusBadRequest)
		assert.Equal(t, "Insufficient wallet balance", apperror.UserMessage(err))
	})

	t.Run("success_wrapped_app_error", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", apperror.New(apperror.CodeConflict, "Email already registered", http.StatusConflict))
		assert.Equal(t, "Email already registered", apperror.UserMessage(err))
	})

	t.Run("success_generic_fallback", func(t *testing.T) {
		assert.Equal(t, apperror.GenericMessage, apperror.UserMessage(errors.New("connection refused")))
	})

	t.Run("success_nil", func(t *testing.T) {
		assert.Equal(t, "", apperror.UserMessage(nil))
	})
}

func TestFromStatus(t *testing.T) {
	t.Run("success_maps_status_to_code", func(t *testing.T) {
		assert.Equal(t, apperror.CodeUnauthorized, apperror.FromStatus(http.StatusUnauthorized, "nope").Code)
		assert.Equal(t, apperror.CodeNotFound, apperror.FromStatus(http.StatusNotFound, "gone").Code)
		assert.Equal(t, apperror.CodeInvalidInput, apperror.FromStatus(http.StatusBadRequest, "bad").Code)
		assert.Equal(t, apperror.CodeInternalError, apperror.FromStatus(http.StatusBadGateway, "boom").Code)
	})

	t.Run("success_empty_message_falls_back", func(t *testing.T) {
		err := apperror.FromStatus(http.StatusInternalServerError, "")
		assert.Equal(t, apperror.GenericMessage, err.Message)
	})
}
