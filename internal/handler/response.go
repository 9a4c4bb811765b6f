package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leakscan/internal/domain"
	"leakscan/internal/inference"
	"leakscan/internal/logger"
)

// ErrorResponse is the body of every non-success response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, msg, details string) {
	c.JSON(status, ErrorResponse{Error: msg, Details: details})
}

// MapError translates domain and provider errors to an HTTP status and a
// caller-facing message. details carries the underlying error text.
func MapError(err error) (status int, msg, details string) {
	details = err.Error()

	var rlErr *inference.RateLimitError
	var qErr *inference.QuotaExceededError
	switch {
	case errors.As(err, &rlErr):
		return http.StatusTooManyRequests, "Rate limit exceeded, please try again later.", details
	case errors.As(err, &qErr):
		return http.StatusPaymentRequired, "AI credits exhausted, please add credits to continue.", details
	case errors.Is(err, domain.ErrMissingInput):
		return http.StatusBadRequest, "missing required input", details
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input", details
	case errors.Is(err, domain.ErrInvalidScanType):
		return http.StatusBadRequest, "scanType must be 'free' or 'enhanced'", details
	case errors.Is(err, domain.ErrRequiresTextExtraction):
		return http.StatusBadRequest, "this file type must be sent as extracted text content", details
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "unsupported file type", details
	case errors.Is(err, domain.ErrUnreadableFile):
		return http.StatusBadRequest, "file could not be read", details
	case errors.Is(err, domain.ErrNoReadableDocuments):
		return http.StatusBadRequest, "none of the uploaded files could be read", details
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "file exceeds maximum allowed size", details
	case errors.Is(err, domain.ErrObjectNotFound):
		return http.StatusNotFound, "stored document not found", details
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "document storage is not configured", details
	case errors.Is(err, domain.ErrMalformedAnalysis):
		return http.StatusInternalServerError, "analysis failed, please retry", details
	default:
		return http.StatusInternalServerError, "an internal error occurred", details
	}
}

// HandleError maps err and sends the appropriate error response. Rate
// limited responses carry a Retry-After header.
func HandleError(c *gin.Context, err error) {
	status, msg, details := MapError(err)

	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("handler.HandleError: request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("handler.HandleError: request rejected", zap.Int("status", status), zap.Error(err))
	}

	var rlErr *inference.RateLimitError
	if errors.As(err, &rlErr) && rlErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
	}
	RespondError(c, status, msg, details)
}
