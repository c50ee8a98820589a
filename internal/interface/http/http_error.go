package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Jayesh25-trade/CineVibe/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    apperrors.CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// fromDomain maps a domain error to a response. metadataStatus differs
// between the recommend pipeline (503) and the listing endpoints (502).
// Only AppError messages are rendered; anything else gets fallback.
func fromDomain(err error, metadataStatus int, fallback string) *HTTPError {
	code := apperrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeRoomExists:
		status = http.StatusConflict
	case apperrors.CodeLLM:
		status = http.StatusBadGateway
	case apperrors.CodeMetadata:
		status = metadataStatus
	case "":
		code = apperrors.CodeInternal
	}
	return NewHTTPError(status, code, apperrors.MessageOf(err, fallback), err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
