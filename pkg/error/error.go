package error

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by the point at which they are raised
// and by who is expected to act on them.
type ErrorCategory int

const (
	// ErrCategorySchema marks shape errors raised while an operator is built:
	// duplicate attributes, incompatible parent keys, missing combination functions.
	ErrCategorySchema ErrorCategory = iota

	// ErrCategoryAlgebra marks a combination function that fails its
	// identity or annihilator spot check.
	ErrCategoryAlgebra

	// ErrCategoryRuntime marks misuse detected while tuples are pulled,
	// such as running an unbound Load or reading past a row.
	ErrCategoryRuntime

	// ErrCategoryUser marks malformed plan documents and CLI input.
	ErrCategoryUser

	// ErrCategorySystem marks I/O failures while reading table sources.
	ErrCategorySystem
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategorySchema:
		return "schema"
	case ErrCategoryAlgebra:
		return "algebra"
	case ErrCategoryRuntime:
		return "runtime"
	case ErrCategoryUser:
		return "user"
	case ErrCategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Error codes shared by the algebra packages.
const (
	CodeDuplicateAttribute  = "DUPLICATE_ATTRIBUTE"
	CodeKeyValueOverlap     = "KEY_VALUE_OVERLAP"
	CodeKeyMismatch         = "KEY_MISMATCH"
	CodeValueMismatch       = "VALUE_MISMATCH"
	CodeMissingFunction     = "MISSING_FUNCTION"
	CodeExtraFunction       = "EXTRA_FUNCTION"
	CodeIdentityMismatch    = "IDENTITY_MISMATCH"
	CodeAnnihilatorMismatch = "ANNIHILATOR_MISMATCH"
	CodeIdentityLaw         = "IDENTITY_LAW"
	CodeAnnihilatorLaw      = "ANNIHILATOR_LAW"
	CodeSortKeys            = "SORT_KEYS"
	CodeUnknownAttribute    = "UNKNOWN_ATTRIBUTE"
	CodeLoadNotBound        = "LOAD_NOT_BOUND"
	CodePastRow             = "PAST_ROW"
	CodeNoPlusFunction      = "NO_PLUS_FUNCTION"
	CodeExtSchemaViolation  = "EXT_SCHEMA_VIOLATION"
	CodeTypeMismatch        = "TYPE_MISMATCH"
	CodeUnsortedInput       = "UNSORTED_INPUT"
	CodeInvalidPlan         = "INVALID_PLAN"
	CodeSourceIO            = "SOURCE_IO"
)

// DBError is a structured error carrying enough context to tell which
// operator or component rejected the request and why.
type DBError struct {
	// Code is a stable identifier such as KEY_MISMATCH.
	Code string

	// Category classifies the error, see ErrorCategory.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific instance.
	Detail string

	// Operation names the operator or call that failed, e.g. "MergeJoin".
	Operation string

	// Component names the package-level subsystem, e.g. "execution".
	Component string

	// Cause is the underlying error, if any.
	Cause error

	// Stack holds the call stack captured in New and Wrap.
	Stack []uintptr
}

// New creates a new DBError with the specified category, code and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Newf is New with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...any) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with operation and component context.
// If the error is already a DBError, it is enriched in place (only fields
// that are not yet set) and returned.
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// WithOperation sets the operation and component and returns the receiver.
func (e *DBError) WithOperation(operation, component string) *DBError {
	e.Operation = operation
	e.Component = component
	return e
}

// WithDetail sets Detail and returns the receiver.
func (e *DBError) WithDetail(detail string) *DBError {
	e.Detail = detail
	return e
}

// WithCause sets Cause and returns the receiver.
func (e *DBError) WithCause(cause error) *DBError {
	e.Cause = cause
	return e
}

// captureStack skips captureStack, New/Wrap and runtime.Callers itself.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the error interface.
//
// The format follows the pattern:
// [CODE] Message: Detail (operation: Operation, component: Component) caused by: cause
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause so errors.Is and errors.As can
// traverse the chain.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// FormatStack returns a human-readable stack trace.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}

// HasCode reports whether any DBError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var dbErr *DBError
		if !errors.As(err, &dbErr) {
			return false
		}
		if dbErr.Code == code {
			return true
		}
		err = dbErr.Cause
	}
	return false
}

// CategoryOf returns the category of the outermost DBError in err's chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Category, true
	}
	return 0, false
}
