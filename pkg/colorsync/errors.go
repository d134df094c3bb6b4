package colorsync

import "fmt"

// OperationError reports a synchronization operation that was aborted as a
// whole, for example because the store was unavailable.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s aborted: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError creates a new OperationError.
func NewOperationError(op string, err error) *OperationError {
	return &OperationError{Op: op, Err: err}
}

// recoverOp turns a panic inside an operation into an OperationError.
func recoverOp(op string, err *error) {
	if r := recover(); r != nil {
		*err = NewOperationError(op, fmt.Errorf("panic: %v", r))
	}
}
