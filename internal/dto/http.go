package dto

import "net/http"

// BaseResponse is the envelope every HTTP endpoint answers with.
// Errors carries field level validation details on 400 responses.
type BaseResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func newResponse(code int, message string, data any) *BaseResponse {
	return &BaseResponse{Code: code, Message: message, Data: data}
}

func NewSuccessResponse(message string, data any) *BaseResponse {
	return newResponse(http.StatusOK, message, data)
}

// NewAcceptedResponse dipakai untuk pekerjaan yang berjalan di background.
func NewAcceptedResponse(message string) *BaseResponse {
	return newResponse(http.StatusAccepted, message, nil)
}

func NewBadRequestResponse(message string) *BaseResponse {
	return newResponse(http.StatusBadRequest, message, nil)
}

func NewValidationErrorResponse(message string, errs any) *BaseResponse {
	resp := newResponse(http.StatusBadRequest, message, nil)
	resp.Errors = errs
	return resp
}

func NewNotFoundResponse(message string) *BaseResponse {
	return newResponse(http.StatusNotFound, message, nil)
}

func NewInternalErrorResponse(message string) *BaseResponse {
	return newResponse(http.StatusInternalServerError, message, nil)
}

// NewErrorResponse covers statuses without a dedicated constructor.
func NewErrorResponse(code int, message string) *BaseResponse {
	return newResponse(code, message, nil)
}
