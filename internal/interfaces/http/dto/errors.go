package dto

import (
	"net/http"

	"github.com/shulesync/backend/internal/domain/shared"
)

// Error codes the API emits beyond the domain's own
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed or unbindable requests
	ErrCodeBadRequest = "BAD_REQUEST"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:    http.StatusBadRequest,
	shared.CodeNotFound:      http.StatusNotFound,
	shared.CodeConflict:      http.StatusConflict,
	shared.CodeAlreadyExists: http.StatusConflict,
	shared.CodeInvalidState:  http.StatusUnprocessableEntity,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
