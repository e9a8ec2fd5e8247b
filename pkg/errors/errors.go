package errors

import "fmt"

// Error codes
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeSource     = "SOURCE_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeStore      = "STORE_ERROR"
	CodeValidation = "VALIDATION_ERROR"
)

type DirectoryError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *DirectoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DirectoryError) Unwrap() error {
	return e.Cause
}

// ConfigError signals missing or unusable configuration. The directory treats
// it as a fallback trigger, never a caller-visible failure.
type ConfigError struct {
	*DirectoryError
	Key string
}

func NewConfigError(message, key string) *ConfigError {
	return &ConfigError{
		DirectoryError: &DirectoryError{
			Message: message,
			Code:    CodeConfig,
			Context: map[string]any{
				"key": key,
			},
		},
		Key: key,
	}
}

// SourceError wraps transport failures against the external tabular source.
type SourceError struct {
	*DirectoryError
	StatusCode int
}

func NewSourceError(message string, statusCode int, cause error) *SourceError {
	return &SourceError{
		DirectoryError: &DirectoryError{
			Message: message,
			Code:    CodeSource,
			Context: map[string]any{
				"status_code": statusCode,
			},
			Cause: cause,
		},
		StatusCode: statusCode,
	}
}

type CacheError struct {
	*DirectoryError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		DirectoryError: &DirectoryError{
			Message: message,
			Code:    CodeCache,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// ParseError carries the identity of the row that failed to normalize so the
// drop can be logged; the row is discarded, the collection survives.
type ParseError struct {
	*DirectoryError
	Row   int
	Field string
}

func NewParseError(message string, row int, field string, cause error) *ParseError {
	return &ParseError{
		DirectoryError: &DirectoryError{
			Message: message,
			Code:    CodeParse,
			Context: map[string]any{
				"row":   row,
				"field": field,
			},
			Cause: cause,
		},
		Row:   row,
		Field: field,
	}
}

type StoreError struct {
	*DirectoryError
	Operation string
}

func NewStoreError(message, operation string, cause error) *StoreError {
	return &StoreError{
		DirectoryError: &DirectoryError{
			Message: message,
			Code:    CodeStore,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

type ValidationError struct {
	*DirectoryError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		DirectoryError: &DirectoryError{
			Message: message,
			Code:    CodeValidation,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}
