package http

import (
	"net/http"

	"mindful-chat/internal/domain"
)

// statusFor traduce el tipo de error de dominio a un código HTTP.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrorEmptyInput, domain.ErrorInvalidInput:
		return http.StatusBadRequest
	case domain.ErrorForbidden:
		return http.StatusForbidden
	case domain.ErrorNotFound:
		return http.StatusNotFound
	case domain.ErrorProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
