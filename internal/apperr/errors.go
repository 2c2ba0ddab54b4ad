// Package apperr defines the error taxonomy surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net"
	"regexp"
)

// Code classifies an error for callers.
type Code string

const (
	// CodeValidation marks malformed input the client must fix and resend.
	CodeValidation Code = "VALIDATION"
	// CodePolicy marks a business-rule rejection (cooldown, duplicate, mismatch).
	CodePolicy Code = "POLICY"
	// CodeFormat marks social post content that could not be decoded.
	CodeFormat Code = "FORMAT"
	// CodeExternalService marks a failed or malformed upstream call.
	CodeExternalService Code = "EXTERNAL_SERVICE"
	// CodeNotFound marks an unknown identifier.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInternal marks everything else.
	CodeInternal Code = "INTERNAL"
)

// Error is the code-carrying error type used across the service layer.
type Error struct {
	code     Code
	message  string
	cause    error
	metadata map[string]string
}

// Option configures an Error.
type Option func(*Error)

// WithMetadata attaches a key/value pair, logged but never sent to clients.
func WithMetadata(key, value string) Option {
	return func(e *Error) {
		if e.metadata == nil {
			e.metadata = make(map[string]string)
		}
		e.metadata[key] = value
	}
}

// New creates an Error.
func New(code Code, message string, opts ...Option) *Error {
	e := &Error{code: code, message: message}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, message string, opts ...Option) *Error {
	e := New(code, message, opts...)
	e.cause = cause
	return e
}

// Validation is shorthand for New(CodeValidation, fmt.Sprintf(...)).
func Validation(format string, args ...any) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

// Policy is shorthand for New(CodePolicy, fmt.Sprintf(...)).
func Policy(format string, args ...any) *Error {
	return New(CodePolicy, fmt.Sprintf(format, args...))
}

// Format is shorthand for New(CodeFormat, fmt.Sprintf(...)).
func Format(format string, args ...any) *Error {
	return New(CodeFormat, fmt.Sprintf(format, args...))
}

// NotFound is shorthand for New(CodeNotFound, fmt.Sprintf(...)).
func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

// External wraps an upstream failure. The upstream text becomes the message
// so that Public can decide whether to pass it through.
func External(service string, cause error) *Error {
	msg := service + " request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return Wrap(CodeExternalService, cause, msg, WithMetadata("service", service))
}

// Error implements error.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil && e.cause.Error() != e.message {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Unwrap implements errors.Unwrap.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Code returns the error code.
func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

// Message returns the human-readable message.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Metadata returns a copy of the attached metadata.
func (e *Error) Metadata() map[string]string {
	if e == nil || len(e.metadata) == 0 {
		return nil
	}
	clone := make(map[string]string, len(e.metadata))
	for k, v := range e.metadata {
		clone[k] = v
	}
	return clone
}

// From extracts an *Error from err's chain.
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if e, ok := From(err); ok {
		return e.Code()
	}
	return CodeInternal
}

// validationVocabulary matches upstream messages that describe a client mistake.
var validationVocabulary = regexp.MustCompile(`(?i)JSON|Post|Ticker|Image|Symbol|wallet|Rate limit|claimed`)

// ClientFault reports whether err should be reported as a client-side failure.
// Upstream failures count as client faults only when their text matches the
// known validation vocabulary. Transport failures never do: their text is
// built from our own request URL, not from an upstream reply.
func ClientFault(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodePolicy, CodeFormat, CodeNotFound:
		return true
	case CodeExternalService:
		var netErr net.Error
		if errors.As(err, &netErr) {
			return false
		}
		e, _ := From(err)
		return validationVocabulary.MatchString(e.Message())
	default:
		return false
	}
}

// GenericServerMessage replaces upstream text that must not leak to clients.
const GenericServerMessage = "internal server error"

// Public returns the code and message that may be shown to a client.
func Public(err error) (Code, string) {
	e, ok := From(err)
	if !ok {
		return CodeInternal, GenericServerMessage
	}
	if e.code == CodeExternalService && !ClientFault(err) {
		return e.code, GenericServerMessage
	}
	if e.code == CodeInternal {
		return e.code, GenericServerMessage
	}
	return e.code, e.message
}
