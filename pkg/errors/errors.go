// Package errors provides custom error types for the orgmap merge engine.
// Per-source failures (IngestionError, CycleError) are recovered by excluding the
// offending source; configuration failures (ConfigError) abort the whole run.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the orgmap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates a misconfigured run
	ErrConfig = errors.New("invalid configuration")

	// ErrIngestion indicates that one source could not be ingested
	ErrIngestion = errors.New("source ingestion failed")

	// ErrCycle indicates a cyclic parent chain inside one source
	ErrCycle = errors.New("cyclic parent chain")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error. It is always fatal for the run.
type ConfigError struct {
	Field   string
	Value   any
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(field string, value any, message string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Message: message}
}

// IngestionError reports structure inside one source that cannot be turned into a tree.
type IngestionError struct {
	Source  string
	LocalID string
	Message string
	Err     error
}

// Error implements the error interface
func (e *IngestionError) Error() string {
	if e.LocalID != "" {
		return fmt.Sprintf("ingestion of source %s failed at record %s: %s", e.Source, e.LocalID, e.Message)
	}
	return fmt.Sprintf("ingestion of source %s failed: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

// NewIngestionError creates a new IngestionError
func NewIngestionError(source, localID, message string, err error) *IngestionError {
	return &IngestionError{
		Source:  source,
		LocalID: localID,
		Message: message,
		Err:     err,
	}
}

// CycleError reports a parent chain that revisits a node before reaching a root.
// Chain lists the local ids in walk order, ending with the revisited id.
type CycleError struct {
	Source string
	Chain  []string
}

// Error implements the error interface
func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle in source %s: %s", e.Source, strings.Join(e.Chain, " -> "))
}

// Is implements errors.Is support
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle || target == ErrIngestion
}

// NewCycleError creates a new CycleError
func NewCycleError(source string, chain []string) *CycleError {
	return &CycleError{Source: source, Chain: append([]string(nil), chain...)}
}

// ParseError represents an error when parsing record files
type ParseError struct {
	Format  string // "json", "yaml", "csv"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsIngestionError checks if an error is a per-source ingestion error, cycles included
func IsIngestionError(err error) bool {
	return errors.Is(err, ErrIngestion)
}

// IsCycle checks if an error is a cycle error
func IsCycle(err error) bool {
	return errors.Is(err, ErrCycle)
}

// As is re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
