package extsort

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Namespace prefixes the messages of the package's sentinel errors.
const Namespace = "extsort"

var (
	// ErrIllegalState reports a call that is not valid in the Sorter's
	// current state, such as Add after Iterate or a second Iterate.
	ErrIllegalState = errors.New(Namespace + ": illegal state")
	// ErrClosed reports use of a Sorter after Close or Abort.
	ErrClosed = errors.New(Namespace + ": sorter closed")
)

// usageError attaches the offending operation and state to a sentinel.
func usageError(sentinel error, operation string, s state) error {
	return errorc.With(sentinel,
		errorc.String("operation", operation),
		errorc.String("state", s.String()),
	)
}

// PipelineError wraps the first failure captured in the background
// pipeline. Once it occurred every further operation on the Sorter returns
// the same PipelineError.
type PipelineError struct {
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: pipeline failed: %v", Namespace, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// SerializationError represents an error that occurred during item serialization (ToBytes)
type SerializationError struct {
	// Cause is the original panic or error that occurred during serialization
	Cause interface{}
	// Context provides additional information about what was being serialized
	Context string
}

func (e *SerializationError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("serialization failed in %s: %v", e.Context, e.Cause)
	}
	return fmt.Sprintf("serialization failed: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// NewSerializationError creates a SerializationError
func NewSerializationError(cause interface{}, context string) error {
	return &SerializationError{Cause: cause, Context: context}
}

// DeserializationError represents an error that occurred during item deserialization (FromBytes)
type DeserializationError struct {
	// Cause is the original panic or error that occurred during deserialization
	Cause interface{}
	// DataSize is the size of the data that failed to deserialize
	DataSize int
	// Context provides additional information about what was being deserialized
	Context string
}

func (e *DeserializationError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("deserialization failed in %s (data size: %d bytes): %v", e.Context, e.DataSize, e.Cause)
	}
	return fmt.Sprintf("deserialization failed (data size: %d bytes): %v", e.DataSize, e.Cause)
}

func (e *DeserializationError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// NewDeserializationError creates a DeserializationError
func NewDeserializationError(cause interface{}, dataSize int, context string) error {
	return &DeserializationError{Cause: cause, DataSize: dataSize, Context: context}
}

// ComparisonError represents a panic raised by the comparison function
type ComparisonError struct {
	// Cause is the recovered panic value
	Cause interface{}
	// Context provides additional information about when the comparison failed
	Context string
}

func (e *ComparisonError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("comparison panic in %s: %v", e.Context, e.Cause)
	}
	return fmt.Sprintf("comparison panic: %v", e.Cause)
}

func (e *ComparisonError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// NewComparisonError creates a ComparisonError
func NewComparisonError(cause interface{}, context string) error {
	return &ComparisonError{Cause: cause, Context: context}
}

// NewDiskError wraps an I/O error on the temp file
func NewDiskError(err error, operation, path string) error {
	if path != "" {
		return fmt.Errorf("disk error during %s on %s: %w", operation, path, err)
	}
	return fmt.Errorf("disk error during %s: %w", operation, err)
}

// ConfigError represents an error in configuration parameters
type ConfigError struct {
	// Field is the name of the configuration field that's invalid
	Field string
	// Value is the invalid value provided
	Value interface{}
	// Reason explains why the value is invalid
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %s", e.Field, e.Value, e.Reason)
}
