package models

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation error")

// ErrStorage is matched by every *StorageError.
var ErrStorage = errors.New("storage error")

// ErrFormatContract is matched by every *FormatContractError.
var ErrFormatContract = errors.New("format contract error")

// ValidationError reports input rejected before any write.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// StorageError reports a store read or write failure.
type StorageError struct {
	Op string
	Err error
	// Transient is set when the failure was a lock or busy condition that
	// persisted after the retry.
	Transient bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError creates a new StorageError.
func NewStorageError(op string, err error, transient bool) *StorageError {
	return &StorageError{Op: op, Err: err, Transient: transient}
}

// FormatContractError reports an exchange document that violates the rigid
// layout, or a write that would discard existing data.
type FormatContractError struct {
	Path   string
	Sheet  string
	Reason string
	// NeedsConfirm is set when the operation can proceed after explicit
	// confirmation from the caller.
	NeedsConfirm bool
}

func (e *FormatContractError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("format contract violated in %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("format contract violated in %q sheet %q: %s", e.Path, e.Sheet, e.Reason)
}

func (e *FormatContractError) Is(target error) bool {
	return target == ErrFormatContract
}

// NewFormatContractError creates a new FormatContractError.
func NewFormatContractError(path, sheet, reason string) *FormatContractError {
	return &FormatContractError{Path: path, Sheet: sheet, Reason: reason}
}
