package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// UnknownProperty - a filter or ordering term references a property not declared on the target class
	ErrorTypeUnknownProperty ErrorType = iota
	// UnknownRelationship - a has() constraint or traversal path references an undeclared relationship
	ErrorTypeUnknownRelationship
	// InvalidFilterValue - an operator's value violates its required shape
	ErrorTypeInvalidFilterValue
	// InvalidFilterSource - a has() call received something other than a boolean
	ErrorTypeInvalidFilterSource
	// InvalidSubStatementBinding - a subquery declares a return variable it does not produce
	ErrorTypeInvalidSubStatementBinding
	// InvalidQuerySource - a query spec was built from an unsupported source kind
	ErrorTypeInvalidQuerySource
	// NotFound - a single-result operation matched zero rows
	ErrorTypeNotFound
	// MultipleResultsFound - a single-result operation matched more than one row
	ErrorTypeMultipleResultsFound
	// NothingToResolve - subgraph reconstruction requested without fetched relations
	ErrorTypeNothingToResolve
	// UnsupportedSubgraphShape - subgraph reconstruction over traverse-only paths
	ErrorTypeUnsupportedSubgraphShape
	// Database - the execution collaborator failed; the cause carries the driver error unchanged
	ErrorTypeDatabase
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// DetailedString returns a detailed error message with context
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", typeString(e.Type), e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeUnknownProperty:
		return "UNKNOWN_PROPERTY"
	case ErrorTypeUnknownRelationship:
		return "UNKNOWN_RELATIONSHIP"
	case ErrorTypeInvalidFilterValue:
		return "INVALID_FILTER_VALUE"
	case ErrorTypeInvalidFilterSource:
		return "INVALID_FILTER_SOURCE"
	case ErrorTypeInvalidSubStatementBinding:
		return "INVALID_SUBSTATEMENT_BINDING"
	case ErrorTypeInvalidQuerySource:
		return "INVALID_QUERY_SOURCE"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeMultipleResultsFound:
		return "MULTIPLE_RESULTS_FOUND"
	case ErrorTypeNothingToResolve:
		return "NOTHING_TO_RESOLVE"
	case ErrorTypeUnsupportedSubgraphShape:
		return "UNSUPPORTED_SUBGRAPH_SHAPE"
	case ErrorTypeDatabase:
		return "DATABASE"
	default:
		return "UNKNOWN"
	}
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// Convenience constructors for the taxonomy

// UnknownPropertyf creates an unknown-property error
func UnknownPropertyf(format string, args ...interface{}) *Error {
	return New(ErrorTypeUnknownProperty, fmt.Sprintf(format, args...))
}

// UnknownRelationshipf creates an unknown-relationship error
func UnknownRelationshipf(format string, args ...interface{}) *Error {
	return New(ErrorTypeUnknownRelationship, fmt.Sprintf(format, args...))
}

// InvalidFilterValuef creates an invalid-filter-value error
func InvalidFilterValuef(format string, args ...interface{}) *Error {
	return New(ErrorTypeInvalidFilterValue, fmt.Sprintf(format, args...))
}

// InvalidFilterSourcef creates an invalid-filter-source error
func InvalidFilterSourcef(format string, args ...interface{}) *Error {
	return New(ErrorTypeInvalidFilterSource, fmt.Sprintf(format, args...))
}

// InvalidSubStatementBindingf creates an invalid-substatement-binding error
func InvalidSubStatementBindingf(format string, args ...interface{}) *Error {
	return New(ErrorTypeInvalidSubStatementBinding, fmt.Sprintf(format, args...))
}

// InvalidQuerySourcef creates an invalid-query-source error
func InvalidQuerySourcef(format string, args ...interface{}) *Error {
	return New(ErrorTypeInvalidQuerySource, fmt.Sprintf(format, args...))
}

// NotFoundf creates a not-found error
func NotFoundf(format string, args ...interface{}) *Error {
	return New(ErrorTypeNotFound, fmt.Sprintf(format, args...))
}

// MultipleResultsFoundf creates a multiple-results error
func MultipleResultsFoundf(format string, args ...interface{}) *Error {
	return New(ErrorTypeMultipleResultsFound, fmt.Sprintf(format, args...))
}

// NothingToResolvef creates a nothing-to-resolve error
func NothingToResolvef(format string, args ...interface{}) *Error {
	return New(ErrorTypeNothingToResolve, fmt.Sprintf(format, args...))
}

// UnsupportedSubgraphShapef creates an unsupported-subgraph-shape error
func UnsupportedSubgraphShapef(format string, args ...interface{}) *Error {
	return New(ErrorTypeUnsupportedSubgraphShape, fmt.Sprintf(format, args...))
}

// DatabaseError wraps an execution-layer error. A nil cause still
// produces a database-typed error.
func DatabaseError(err error, message string) *Error {
	if err == nil {
		return New(ErrorTypeDatabase, message)
	}
	return Wrap(err, ErrorTypeDatabase, message)
}

// DatabaseErrorf wraps an execution-layer error with formatting
func DatabaseErrorf(err error, format string, args ...interface{}) *Error {
	return DatabaseError(err, fmt.Sprintf(format, args...))
}

// IsType reports whether err is a structured error of the given type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	if e, ok := err.(*Error); ok {
		return e.Type == errType
	}

	return false
}

// GetType returns the type of an error
func GetType(err error) ErrorType {
	if e, ok := err.(*Error); ok {
		return e.Type
	}

	return ErrorTypeDatabase
}
