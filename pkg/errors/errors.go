package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types organized by category for better error handling

type ErrorType int

// Domain errors - request validation and data availability
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeUnknownSeries
	ErrorTypeTimeOutOfRange
	ErrorTypeTimeMisaligned
	ErrorTypeNoPrefetchedData

	// Infrastructure Errors - errors related to backends and storage
	ErrorTypeDatabase
	ErrorTypeBackend
	ErrorTypeMalformedResponse

	// System/Configuration Errors - errors related to system setup and configuration
	ErrorTypeConfiguration
	ErrorTypeConfigurationNotReady
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeUnknownSeries:
		return "UNKNOWN_SERIES_ERROR"
	case ErrorTypeTimeOutOfRange:
		return "TIME_OUT_OF_RANGE_ERROR"
	case ErrorTypeTimeMisaligned:
		return "TIME_MISALIGNED_ERROR"
	case ErrorTypeNoPrefetchedData:
		return "NO_PREFETCHED_DATA_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeBackend:
		return "BACKEND_ERROR"
	case ErrorTypeMalformedResponse:
		return "MALFORMED_RESPONSE_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeConfigurationNotReady:
		return "CONFIGURATION_NOT_READY_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Short aliases used throughout the adapters
const (
	ValidationError            = ErrorTypeValidation
	NotFoundError              = ErrorTypeNotFound
	UnknownSeriesError         = ErrorTypeUnknownSeries
	TimeOutOfRangeError        = ErrorTypeTimeOutOfRange
	TimeMisalignedError        = ErrorTypeTimeMisaligned
	NoPrefetchedDataError      = ErrorTypeNoPrefetchedData
	DatabaseError              = ErrorTypeDatabase
	BackendError               = ErrorTypeBackend
	MalformedResponseError     = ErrorTypeMalformedResponse
	ConfigurationError         = ErrorTypeConfiguration
	ConfigurationNotReadyError = ErrorTypeConfigurationNotReady
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain Error Constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

func NewUnknownSeriesError(seriesID string) *AppError {
	return New(UnknownSeriesError, fmt.Sprintf("no data source for id %q", seriesID))
}

func NewTimeOutOfRangeError(message string) *AppError {
	return New(TimeOutOfRangeError, message)
}

func NewTimeMisalignedError(message string) *AppError {
	return New(TimeMisalignedError, message)
}

func NewNoPrefetchedDataError(message string) *AppError {
	return New(NoPrefetchedDataError, message)
}

// Infrastructure Error Constructors
func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewBackendError(message string, cause error) *AppError {
	return Wrap(BackendError, message, cause)
}

func NewMalformedResponseError(message string, cause error) *AppError {
	return Wrap(MalformedResponseError, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

func NewConfigurationNotReadyError(message string) *AppError {
	return New(ConfigurationNotReadyError, message)
}

// TypeOf returns the type of the first AppError in err's chain
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries an AppError of the given type
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// Helper functions for error type checking
func IsNotFoundError(err error) bool {
	return Is(err, NotFoundError)
}

func IsValidationError(err error) bool {
	return Is(err, ValidationError)
}

func IsUnknownSeriesError(err error) bool {
	return Is(err, UnknownSeriesError)
}

func IsTimeOutOfRangeError(err error) bool {
	return Is(err, TimeOutOfRangeError)
}

func IsTimeMisalignedError(err error) bool {
	return Is(err, TimeMisalignedError)
}

func IsNoPrefetchedDataError(err error) bool {
	return Is(err, NoPrefetchedDataError)
}

func IsDatabaseError(err error) bool {
	return Is(err, DatabaseError)
}

func IsBackendError(err error) bool {
	return Is(err, BackendError)
}

func IsMalformedResponseError(err error) bool {
	return Is(err, MalformedResponseError)
}

func IsConfigurationError(err error) bool {
	return Is(err, ConfigurationError)
}

func IsConfigurationNotReadyError(err error) bool {
	return Is(err, ConfigurationNotReadyError)
}
