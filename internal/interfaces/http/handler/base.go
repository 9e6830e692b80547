package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/logida/backend/internal/domain/shared"
	"github.com/logida/backend/internal/interfaces/http/dto"
	"github.com/logida/backend/internal/interfaces/http/middleware"
)

// devTenantID backs requests without a JWT in development setups. Production
// deployments always authenticate, so this never leaks into real data.
var devTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// BaseHandler provides common response helpers for HTTP handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// getTenantID resolves the tenant for the current request. The JWT claim
// wins; the X-Tenant-ID header is a fallback for unauthenticated dev use.
func (h *BaseHandler) getTenantID(c *gin.Context) uuid.UUID {
	if claim, ok := middleware.GetJWTTenantID(c); ok {
		if id, err := uuid.Parse(claim); err == nil {
			return id
		}
	}
	if header := c.GetHeader("X-Tenant-ID"); header != "" {
		if id, err := uuid.Parse(header); err == nil {
			return id
		}
	}
	return devTenantID
}

func (h *BaseHandler) requestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// ---

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode sends an error response; the HTTP status derives from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, h.requestID(c)))
}

// BadRequest sends a 400 error response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 error response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 error response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeUnauthorized, message)
}

// Conflict sends a 409 error response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeConflict, message)
}

// UnprocessableEntity sends a 422 error response
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBusinessRule, message)
}

// InternalError sends a 500 error response and logs the underlying cause
func (h *BaseHandler) InternalError(c *gin.Context, err error) {
	if h.logger != nil {
		h.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", h.requestID(c)),
			zap.Error(err),
		)
	}
	h.ErrorWithCode(c, dto.ErrCodeInternal, "Internal server error")
}

// ValidationError sends a 400 response describing binding failures
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]dto.ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Validation failed", h.requestID(c), details))
		return
	}
	h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
}

// HandleError maps domain errors to HTTP responses. Unrecognized errors
// become a 500 without exposing internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.ErrorWithCode(c, code, domainErr.Message)
		return
	}
	h.InternalError(c, err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Must be a valid UUID"
	case "email":
		return "Must be a valid email address"
	case "shopdomain":
		return "Must be a myshopify.com shop domain"
	case "min":
		return "Value is below the allowed minimum"
	case "max":
		return "Value exceeds the allowed maximum"
	default:
		return "Invalid value"
	}
}
