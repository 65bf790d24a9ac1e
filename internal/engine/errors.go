package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/timeline"
)

// CommandError is a request the engine could not dispatch: an unknown op
// or args that do not match the op's signature.
type CommandError struct {
	// Code identifies the error category.
	Code CommandErrorCode

	// Message is a human-readable description.
	Message string

	// Op is the requested op.
	Op ir.OpName

	// Arg names the offending argument, when there is one.
	Arg string
}

// CommandErrorCode categorizes command errors. Its string form is the
// outcome case.
type CommandErrorCode string

const (
	// CodeInvalidArgument indicates a missing, unknown or mistyped arg.
	CodeInvalidArgument CommandErrorCode = "InvalidArgument"

	// CodeUnknownOp indicates an op that is not in the catalog.
	CodeUnknownOp CommandErrorCode = "UnknownOp"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("%s: %s (op=%s, arg=%s)", e.Code, e.Message, e.Op, e.Arg)
	}
	return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
}

// IsInvalidArgument reports whether err is an InvalidArgument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == CodeInvalidArgument
}

// IsUnknownOp reports whether err is an UnknownOp error.
func IsUnknownOp(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == CodeUnknownOp
}

func argError(op ir.OpName, arg, format string, args ...any) *CommandError {
	return &CommandError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...), Op: op, Arg: arg}
}

// rangeError is a domain InvalidRange raised by the engine itself, for
// values the timeline never sees (zoom, snap grid).
func rangeError(format string, args ...any) error {
	return &timeline.Error{Kind: timeline.KindInvalidRange, Message: fmt.Sprintf(format, args...)}
}

// caseOf maps an op failure to its outcome case and message. Anything that
// is neither a domain nor a command error is reported as InvalidArgument.
func caseOf(err error) (string, string) {
	var de *timeline.Error
	if errors.As(err, &de) {
		return string(de.Kind), de.Message
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return string(ce.Code), ce.Message
	}
	return string(CodeInvalidArgument), err.Error()
}
