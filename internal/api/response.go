package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "toolnav/internal/errors"
)

// Response is the uniform envelope: code 0 means success, any non-zero
// value is an application-level error code (distinct from the transport
// status).
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func respondMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: message, Data: data})
}

// respondError maps a service error onto the envelope. Internal causes
// are logged but never leaked to the caller.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := statusFor(apperrors.KindOf(err))
	message := apperrors.MessageOf(err)
	if code == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		message = "internal error"
	}
	c.JSON(status, Response{Code: code, Message: message})
}

func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: message})
}

func statusFor(kind apperrors.Kind) (status, code int) {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest, http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound, http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict, http.StatusConflict
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized, http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden, http.StatusForbidden
	case apperrors.KindUnavailable:
		return http.StatusServiceUnavailable, http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError, http.StatusInternalServerError
	}
}
