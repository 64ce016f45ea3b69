// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"courseportal_backend/platform/apperr"
	"courseportal_backend/platform/logger"
	"courseportal_backend/platform/pagination"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
)

// Envelope is the uniform wrapper for every API response, success or failure.
// Success is derived from the status code at construction time and is never
// set independently, so status and body cannot drift apart.
type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       interface{}      `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Errors     interface{}      `json:"errors,omitempty"`
}

// NewEnvelope builds an envelope for the given status code.
func NewEnvelope(status int, message string) Envelope {
	return Envelope{
		Success: status < http.StatusMultipleChoices,
		Message: message,
	}
}

// WithData attaches a payload.
func (e Envelope) WithData(data interface{}) Envelope {
	e.Data = data
	return e
}

// WithPagination attaches pagination metadata.
func (e Envelope) WithPagination(meta *pagination.Meta) Envelope {
	e.Pagination = meta
	return e
}

// WithErrors attaches structured field errors.
func (e Envelope) WithErrors(errs interface{}) Envelope {
	e.Errors = errs
	return e
}

// JSON sends an envelope with the given status code.
func JSON(c *gin.Context, status int, env Envelope) {
	c.JSON(status, env)
}

// OK sends a 200 response with the given payload.
func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, NewEnvelope(http.StatusOK, message).WithData(data))
}

// OKPaginated sends a 200 response with payload and pagination metadata.
func OKPaginated(c *gin.Context, message string, data interface{}, meta *pagination.Meta) {
	JSON(c, http.StatusOK, NewEnvelope(http.StatusOK, message).WithData(data).WithPagination(meta))
}

// Created sends a 201 response with the given payload.
func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, NewEnvelope(http.StatusCreated, message).WithData(data))
}

// Fail sends an error envelope with the given status code and aborts the chain.
func Fail(c *gin.Context, status int, message string) {
	c.Abort()
	JSON(c, status, NewEnvelope(status, message))
}

// HandleError records a service error for the terminal error handler and
// aborts the handler chain. Returns true if an error was recorded. Handlers
// never write error responses themselves; the single ErrorHandler middleware
// maps the error to a status and envelope.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)
	c.Abort()
	return true
}

const msgInternal = "Something went wrong"
const msgDatabase = "Database Error"

// ErrorHandler is the terminal error-handling middleware. It maps typed
// domain errors to their HTTP status, coerces unrecognized database faults
// to 400 and anything else to 500. The underlying error detail is attached
// to the response only outside production and is always written to the log.
func ErrorHandler(log *logger.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if c.Writer.Written() {
			// Response already sent; the log is the only remaining outlet.
			log.HTTPError(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), err, c.ClientIP())
			return
		}

		status, env := envelopeFor(err, production)
		log.HTTPError(c.Request.Method, c.Request.URL.Path, status, err, c.ClientIP())
		JSON(c, status, env)
	}
}

// Recovery converts panics into a well-formed 500 envelope instead of
// crashing the process or leaking writer state.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			NewEnvelope(http.StatusInternalServerError, msgInternal))
	})
}

func envelopeFor(err error, production bool) (int, Envelope) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		status := domainErr.HTTPStatus()
		env := NewEnvelope(status, domainErr.Message)
		if domainErr.Details != nil {
			env = env.WithErrors(domainErr.Details)
		}
		return status, env
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return http.StatusBadRequest, NewEnvelope(http.StatusBadRequest, msgDatabase)
	}

	env := NewEnvelope(http.StatusInternalServerError, msgInternal)
	if !production {
		env = env.WithErrors(gin.H{"detail": err.Error()})
	}
	return http.StatusInternalServerError, env
}
