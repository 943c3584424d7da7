package spayd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

// Structural errors abort a parse before any field is interpreted.
var (
	ErrMissingPrefix       = errors.New("descriptor tag not found")
	ErrDuplicateKey        = errors.New("duplicate key in descriptor")
	ErrMissingRequiredKeys = errors.New("required keys are missing")
)

var (
	ErrInvalidField             = errors.New("invalid field value")
	ErrChecksumMismatch         = errors.New("checksum does not match descriptor content")
	ErrDuplicateFieldSpec       = errors.New("a field with this key is already part of the chain")
	ErrParserAlreadyRegistered  = errors.New("a parser with this name for this descriptor tag is already registered")
	ErrNoParserRegistered       = errors.New("no registered parser found for this descriptor tag")
	ErrMultipleParsersAvailable = errors.New("multiple parsers available for this descriptor tag, use WithParser() to specify which one")
	ErrParserNotFound           = errors.New("specified parser not found for this descriptor tag")
)

// FieldError is a problem with one present value. It never stops the
// remaining fields from being evaluated.
type FieldError struct {
	Key    string
	Name   string
	Reason string
}

func newFieldError(spec FieldSpec, format string, args ...any) *FieldError {
	return &FieldError{
		Key:    spec.Key,
		Name:   spec.Name,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (fe *FieldError) Error() string {
	return FieldSpec{Key: fe.Key, Name: fe.Name}.Label() + " is invalid: " + fe.Reason
}

func (fe *FieldError) Unwrap() error {
	return ErrInvalidField
}

// MissingKeysError is returned by the required-key gate. It names every
// missing key, not just the first one.
type MissingKeysError struct {
	Descriptor string
	Keys       []string
}

// Error implements the error interface
func (mk *MissingKeysError) Error() string {
	if mk.Descriptor == "" {
		return "required keys are missing: " + strings.Join(mk.Keys, ", ")
	}
	return fmt.Sprintf("required keys are missing in %s: %s", mk.Descriptor, strings.Join(mk.Keys, ", "))
}

func (mk *MissingKeysError) Unwrap() error {
	return ErrMissingRequiredKeys
}

// ValidationError carries every field-level problem found in one pass over a
// descriptor. Its message is the comma-joined list of those problems.
type ValidationError struct {
	Descriptor string
	merr       *multierror.Error
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.merr.Error()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (ve *ValidationError) Unwrap() []error {
	return ve.merr.WrappedErrors()
}

// Fields returns the field errors in the order they were recorded.
func (ve *ValidationError) Fields() []*FieldError {
	var fields []*FieldError
	for _, err := range ve.merr.WrappedErrors() {
		var fe *FieldError
		if errors.As(err, &fe) {
			fields = append(fields, fe)
		}
	}
	return fields
}

// joinErrors is the multierror.ErrorFormatFunc for descriptor errors.
func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, ", ")
}

///////////////////////////////////////////////////////////////////////////////
// Accumulator
///////////////////////////////////////////////////////////////////////////////

// FieldErrors accumulates the field errors of a single parse. It is a value:
// Add returns a new accumulator and never modifies the receiver, so a chain
// execution threads it from step to step. The zero value is empty.
type FieldErrors struct {
	errs []error
}

// Add returns the accumulator with err appended. A nil err is ignored.
func (fe FieldErrors) Add(err error) FieldErrors {
	if err == nil {
		return fe
	}
	return FieldErrors{errs: append(slices.Clip(fe.errs), err)}
}

func (fe FieldErrors) Len() int {
	return len(fe.errs)
}

func (fe FieldErrors) Errors() []error {
	return slices.Clone(fe.errs)
}

// ValidationError returns nil when nothing was recorded, and otherwise one
// *ValidationError holding every recorded error.
func (fe FieldErrors) ValidationError(descriptor string) error {
	if len(fe.errs) == 0 {
		return nil
	}
	return &ValidationError{
		Descriptor: descriptor,
		merr: &multierror.Error{
			Errors:      slices.Clone(fe.errs),
			ErrorFormat: joinErrors,
		},
	}
}
