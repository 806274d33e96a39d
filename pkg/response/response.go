package response

import (
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/types"
)

const codeOK = "OK"

// APIResponse is the generic response envelope used by HTTP APIs.
// Code is either "OK" or one of the apperr error kinds.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    string            `json:"code"`
	Message string            `json:"message,omitempty"`
	Data    T                 `json:"data,omitempty"`
	Meta    *types.Pagination `json:"meta,omitempty"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: codeOK, Data: data}
}

// OKPaged returns a successful response with data and pagination meta.
func OKPaged[T any](data T, meta types.Pagination) *APIResponse[T] {
	return &APIResponse[T]{Code: codeOK, Data: data, Meta: &meta}
}

// ErrorT returns an error response with a stable code and message.
func ErrorT(code apperr.Code, message string) *APIResponse[any] {
	return &APIResponse[any]{Code: string(code), Message: message}
}

// FromError converts a service error into its envelope.
func FromError(err error) *APIResponse[any] {
	return ErrorT(apperr.CodeOf(err), apperr.MessageOf(err))
}
