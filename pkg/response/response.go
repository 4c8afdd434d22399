package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyago/service-booking/internal/domain"
)

// envelope is the uniform JSON body for all non-paginated responses.
type envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// paginatedEnvelope is the JSON body for paginated list responses.
type paginatedEnvelope struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{Data: items, Total: total, Page: page, Limit: limit})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Error: &errorBody{Code: "bad_request", Message: message}})
}

// Error maps a domain error to its HTTP status and writes it. Non-domain
// errors are reported as an opaque 500 so internal details never leak.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, envelope{Error: &errorBody{
			Code:    "internal",
			Message: "an unexpected error occurred",
		}})
		return
	}

	body := &errorBody{Code: string(de.Kind), Message: de.Message, Field: de.Field}
	c.JSON(statusFor(de.Kind), envelope{Error: body})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidState:
		return http.StatusUnprocessableEntity
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
