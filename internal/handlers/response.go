// Package handlers exposes the assessment service to API Gateway and HTTP transports.
package handlers

import (
	"errors"
	"net/http"

	"emi-eligibility-engine/internal/models"
	"emi-eligibility-engine/internal/utils"
)

// Error codes carried in Response.Code.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidCSV          = "INVALID_CSV"
	CodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeModelSchemaMismatch = "MODEL_SCHEMA_MISMATCH"
	CodeInternal            = "INTERNAL_ERROR"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// errorResponse maps an error to its HTTP status and envelope.
func errorResponse(err error) (int, Response) {
	var predErr *models.PredictionError
	switch {
	case errors.As(err, &predErr):
		return http.StatusInternalServerError, Response{
			Success: false,
			Message: predErr.UserMessage(),
			Error:   err.Error(),
			Code:    CodeModelSchemaMismatch,
		}
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
			Code:    CodeInvalidInput,
		}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
			Code:    CodeInvalidRequest,
		}
	case errors.Is(err, utils.ErrEmptyCSV), errors.Is(err, utils.ErrMissingColumns),
		errors.Is(err, utils.ErrNoDataRows), errors.Is(err, utils.ErrTooManyRows):
		return http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
			Code:    CodeInvalidCSV,
		}
	default:
		return http.StatusInternalServerError, Response{
			Success: false,
			Error:   "internal error",
			Code:    CodeInternal,
		}
	}
}

// errorCode returns the Response.Code an error maps to.
func errorCode(err error) string {
	_, resp := errorResponse(err)
	return resp.Code
}
