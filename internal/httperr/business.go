package httperr

import (
	"errors"
	"fmt"
)

// BusinessError is a rule violation the client can act on. Code is the
// stable error_code; Detail is the human-readable message, if any.
type BusinessError struct {
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

// Message is what the response body shows.
func (e BusinessError) Message() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Detail
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessf(code, format string, args ...any) error {
	return BusinessError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// AsBusiness unwraps err to a BusinessError.
func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

func IsBusiness(err error, code string) bool {
	be, ok := AsBusiness(err)
	return ok && be.Code == code
}
