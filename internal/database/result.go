package database

import (
	"encoding/json"

	"github.com/wolfman30/sshrobotics-web/internal/forms"
)

// Result is the uniform outcome of every provider and facade operation:
// Data on success, Error (and its kind) on failure.
type Result[T any] struct {
	Success   bool            `json:"success"`
	Data      T               `json:"data"`
	Error     string          `json:"error,omitempty"`
	ErrorKind forms.ErrorKind `json:"error_kind,omitempty"`
}

// Ok wraps data in a successful Result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail converts err into a failed Result.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = forms.StoreError("Unknown error", nil)
	}
	return Result[T]{
		Success:   false,
		Error:     forms.DetailOf(err),
		ErrorKind: forms.KindOf(err),
	}
}

// MarshalJSON omits data on failure and keeps empty lists as [] on success.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	type wire struct {
		Success   bool            `json:"success"`
		Data      any             `json:"data,omitempty"`
		Error     string          `json:"error,omitempty"`
		ErrorKind forms.ErrorKind `json:"error_kind,omitempty"`
	}
	out := wire{Success: r.Success, Error: r.Error, ErrorKind: r.ErrorKind}
	if r.Success {
		out.Data = r.Data
	}
	return json.Marshal(out)
}
