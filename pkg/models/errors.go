package models

import (
	"errors"
	"fmt"
)

// InvalidDirectoryError reports a root that does not exist or is not a directory
type InvalidDirectoryError struct {
	Path string
	Err  error
}

func (e *InvalidDirectoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid directory %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid directory %s: not a directory", e.Path)
}

func (e *InvalidDirectoryError) Unwrap() error { return e.Err }

// AccessDeniedError reports an enumeration or read failure during comparison
type AccessDeniedError struct {
	Detail string
	Err    error
}

func (e *AccessDeniedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("access denied: %s: %v", e.Detail, e.Err)
	}
	return "access denied: " + e.Detail
}

func (e *AccessDeniedError) Unwrap() error { return e.Err }

// OperationFailedError reports a single copy, update or delete that could not complete
type OperationFailedError struct {
	Detail string
	Err    error
}

func (e *OperationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("operation failed: %s: %v", e.Detail, e.Err)
	}
	return "operation failed: " + e.Detail
}

func (e *OperationFailedError) Unwrap() error { return e.Err }

// AccessDenied wraps err as an AccessDeniedError unless it already carries
// one of the comparison error types
func AccessDenied(detail string, err error) error {
	var ad *AccessDeniedError
	if errors.As(err, &ad) {
		return err
	}
	var id *InvalidDirectoryError
	if errors.As(err, &id) {
		return err
	}
	return &AccessDeniedError{Detail: detail, Err: err}
}

// OperationFailed wraps err as an OperationFailedError
func OperationFailed(detail string, err error) error {
	return &OperationFailedError{Detail: detail, Err: err}
}

// IsSetupError reports whether err is a validation, directory or access
// error raised before any operation ran
func IsSetupError(err error) bool {
	var (
		id *InvalidDirectoryError
		ad *AccessDeniedError
		ve *ValidationError
	)
	return errors.As(err, &id) || errors.As(err, &ad) || errors.As(err, &ve)
}

// Exit codes shared by the command line layer
const (
	ExitOK          = 0
	ExitDifferences = 1
	ExitSetupError  = 2
)

// ExitCodeFor maps an error returned by compare or sync to a process exit code
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsSetupError(err) {
		return ExitSetupError
	}
	return ExitDifferences
}
