package quill

import "fmt"

// Result is the shape every operation takes when it crosses a process
// boundary: a success flag plus either data or a readable error.
type Result[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

// OK wraps data in a successful Result.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps err in a failed Result.
func Fail[T any](err error) Result[T] {
	return Result[T]{Error: err.Error(), Kind: KindOf(err)}
}

// Safe runs fn and converts its error, or a panic, into a Result.
func Safe[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Fail[T](fmt.Errorf("%w: %v", ErrInternal, r))
		}
	}()
	data, err := fn()
	if err != nil {
		return Fail[T](err)
	}
	return OK(data)
}
