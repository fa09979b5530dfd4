package common

import (
	apicommon "axiapac.com/selfservice/selfservice/v1/common"
)

// ErrorResponse is the failure envelope. Errors is only set for 422.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  *FieldErrors `json:"errors,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Message: message}
}

func NewValidationResponse(errors *FieldErrors) *ErrorResponse {
	return &ErrorResponse{
		Message: "The given data was invalid.",
		Errors:  errors,
	}
}

func NewSuccessResponse(message string, data any) *apicommon.StatusAPIResponse[any] {
	return &apicommon.StatusAPIResponse[any]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// Paginate slices items the way the list endpoints page them. page and
// perPage below 1 fall back to the first page of 10.
func Paginate[T any](items []T, page, perPage int) apicommon.Page[T] {
	if perPage < 1 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	data := make([]T, 0, end-start)
	data = append(data, items[start:end]...)
	return apicommon.Page[T]{
		CurrentPage: page,
		Data:        data,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       int64(total),
	}
}
