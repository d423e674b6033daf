// Package errdefs defines the error categories shared by the vuoto packages.
//
// Every error returned by the vault index or the entry cache is an *Error
// whose Kind is one of ErrIO, ErrInvalidInput or ErrInvalidData. Callers
// classify with errors.Is (or the Is* helpers) and can still reach the
// underlying cause, for example fs.ErrPermission.
package errdefs

import (
	"github.com/pkg/errors"
)

var (
	// ErrIO is the category of underlying filesystem or storage failures.
	ErrIO = errors.New("i/o failure")

	// ErrInvalidInput is the category of arguments rejected before any disk
	// access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidData is the category of stored bytes that cannot be decoded.
	ErrInvalidData = errors.New("invalid data")
)

// Error carries the operation, the category and the cause of a failure.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the category and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IO wraps err into the I/O category. It returns nil if err is nil and
// returns err unchanged if it is already categorized.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Op: op, Kind: ErrIO, Err: err}
}

// InvalidInput returns an error of the invalid input category.
func InvalidInput(op, msg string) error {
	return &Error{Op: op, Kind: ErrInvalidInput, Err: errors.New(msg)}
}

// InvalidData wraps err into the invalid data category.
func InvalidData(op string, err error) error {
	return &Error{Op: op, Kind: ErrInvalidData, Err: err}
}

// IsIO reports whether err is an I/O failure.
func IsIO(err error) bool { return errors.Is(err, ErrIO) }

// IsInvalidInput reports whether err is an input rejection.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsInvalidData reports whether err signals undecodable stored data.
func IsInvalidData(err error) bool { return errors.Is(err, ErrInvalidData) }
