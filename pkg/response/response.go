// Package response defines the JSON envelope shared by every API endpoint
// and the error taxonomy handlers use to signal failures. All responses have
// the shape {success, message, data|error}.
package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK writes a 200 envelope with the given payload.
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 envelope with the given payload.
func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Kind classifies an API error.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Error is a typed API error carrying the kind used to pick a status code.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, logged but never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf reports a missing or malformed input field.
func Validationf(message string) *Error { return &Error{Kind: KindValidation, Message: message} }

// Unauthorizedf reports a missing or invalid credential.
func Unauthorizedf(message string) *Error { return &Error{Kind: KindUnauthorized, Message: message} }

// Forbiddenf reports an authenticated caller lacking a required role.
func Forbiddenf(message string) *Error { return &Error{Kind: KindForbidden, Message: message} }

// NotFoundf reports an absent entity or a role mismatch on a reference.
func NotFoundf(message string) *Error { return &Error{Kind: KindNotFound, Message: message} }

// Conflictf reports a booking collision.
func Conflictf(message string) *Error { return &Error{Kind: KindConflict, Message: message} }

// Internalf wraps an unexpected failure. The cause is logged server-side;
// clients only see a generic message.
func Internalf(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

func (k Kind) status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler returns an echo HTTPErrorHandler that renders every error as
// an envelope. Internal errors are logged with their cause and flattened to
// a generic message.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var apiErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.Kind.status()
			message = apiErr.Message
			if apiErr.Kind == KindInternal {
				logger.Error().Err(apiErr.Err).Str("path", c.Path()).Msg("internal error")
				message = "internal server error"
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		default:
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		}

		_ = c.JSON(status, Envelope{Success: false, Message: message, Error: message})
	}
}
