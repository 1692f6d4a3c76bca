package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"monarch-server/relay-api/internal/utils/platformerrors"
)

// ErrorResponse is the shared failure envelope for every error path.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ConversationDeletedResponse acknowledges a successful delete.
type ConversationDeletedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleError maps a domain error to an HTTP status exactly once and writes
// the error envelope.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(platformErr.GetErrorType())
		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Error:   message,
			Message: platformErr.Message,
		})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   message,
		Message: err.Error(),
	})
}

// HandleNewError creates a new typed error at the route layer and handles it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, err error) {
	platformErr := platformerrors.NewError(platformerrors.LayerHandler, errorType, message, err)
	statusCode := platformerrors.ErrorTypeToHTTPStatus(errorType)

	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
	}
	_ = reqCtx.Error(platformErr)
	reqCtx.AbortWithStatusJSON(statusCode, resp)
}
