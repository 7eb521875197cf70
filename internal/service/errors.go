package service

import (
	"errors"
	"fmt"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/repository"
)

// Error kinds. Match them with errors.Is; the transport maps each kind to a
// status code.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrInvariant  = errors.New("invariant violation")
)

// Error is an engine error carrying a user-facing message.
type Error struct {
	Op      string
	Kind    error
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind as well as the wrapped error.
func (e *Error) Is(target error) bool { return e.Kind == target }

func validationErr(op, msg string) error {
	return &Error{Op: op, Kind: ErrValidation, Message: msg}
}

func fieldErr(op, field, msg string) error {
	return &Error{Op: op, Kind: ErrValidation, Message: msg, Fields: map[string]string{field: msg}}
}

func notFoundErr(op, msg string) error {
	return &Error{Op: op, Kind: ErrNotFound, Message: msg}
}

func conflictErr(op, msg string) error {
	return &Error{Op: op, Kind: ErrConflict, Message: msg}
}

func forbiddenErr(op string) error {
	return &Error{Op: op, Kind: ErrForbidden, Message: "Anda tidak memiliki akses untuk operasi ini"}
}

func invariantErr(op, msg string) error {
	return &Error{Op: op, Kind: ErrInvariant, Message: msg}
}

// storeErr classifies a repository error. Unknown errors are wrapped with the
// operation name and surface as internal failures.
func storeErr(op, entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Op: op, Kind: ErrNotFound, Message: entity + " tidak ditemukan", Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Op: op, Kind: ErrConflict, Message: entity + " sudah ada", Err: err}
	case errors.Is(err, repository.ErrReferenced):
		return &Error{Op: op, Kind: ErrConflict, Message: entity + " masih digunakan oleh data lain", Err: err}
	case errors.Is(err, academic.ErrInvalidTransition):
		return &Error{Op: op, Kind: ErrInvariant, Message: "Status sudah final dan tidak dapat diubah", Err: err}
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsInternal reports whether err is outside the engine error taxonomy.
func IsInternal(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrForbidden, ErrInvariant} {
		if errors.Is(err, kind) {
			return false
		}
	}
	return true
}
