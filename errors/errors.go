package errors

import (
	errs "errors"
	"fmt"
	"runtime"
	"strings"
)

type ErrorLevel string

func (e ErrorLevel) String() string {
	return string(e)
}

const (
	ERR_CONFIGURATION  ErrorLevel = "configuration"
	ERR_SCHEDULING     ErrorLevel = "scheduling"
	ERR_DELIVERY       ErrorLevel = "delivery"
	ERR_INFRASTRUCTURE ErrorLevel = "infrastructure"
	ERR_UNKNOWN        ErrorLevel = "unknown"
)

// ExtendError carries the level an error occurred at plus optional code
// and metadata, so failures can be classified without string matching.
type ExtendError struct {
	Level      ErrorLevel     `json:"level"`
	Err        error          `json:"error"`
	Code       string         `json:"code,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	StackTrace string         `json:"-"`
}

func (e *ExtendError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	msg := e.Err.Error()
	if e.Code != "" {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	return msg
}

func (e *ExtendError) Unwrap() error {
	return e.Err
}

func (e *ExtendError) WithCode(code string) *ExtendError {
	e.Code = code
	return e
}

func (e *ExtendError) WithMetadata(key string, value any) *ExtendError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

func New(message string) error {
	return errs.New(message)
}

func Is(target, err error) bool {
	return errs.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errs.As(err, target)
}

func IsExtendError(err error) bool {
	var extendErr *ExtendError
	return errs.As(err, &extendErr)
}

func captureStackTrace() string {
	var sb strings.Builder
	// Skip 3 frames: captureStackTrace, wrap, and the caller of wrap
	for i := 3; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fmt.Fprintf(&sb, "%s:%d\n", file, line)
	}
	return sb.String()
}

func wrap(err error, level ErrorLevel) *ExtendError {
	if IsExtendError(err) {
		// Already classified; keep the original level, code and metadata.
		return err.(*ExtendError)
	}
	return &ExtendError{
		Level:      level,
		Err:        err,
		StackTrace: captureStackTrace(),
	}
}

// ConfigurationError marks empty, missing or structurally malformed
// trigger configuration.
func ConfigurationError(err error) *ExtendError {
	return wrap(err, ERR_CONFIGURATION)
}

// SchedulingError marks failures while acquiring or driving the timer
// executor, including rejected registrations.
func SchedulingError(err error) *ExtendError {
	return wrap(err, ERR_SCHEDULING)
}

// DeliveryError marks a failure publishing a single fired event. These are
// recovered locally: logged, never retried, and the schedule continues.
func DeliveryError(err error) *ExtendError {
	return wrap(err, ERR_DELIVERY)
}

func InfraError(err error) *ExtendError {
	return wrap(err, ERR_INFRASTRUCTURE)
}

func UnknownError(err error) *ExtendError {
	return wrap(err, ERR_UNKNOWN)
}

func getErrorLevel(err *ExtendError) ErrorLevel {
	if err == nil {
		return ERR_UNKNOWN
	}
	return err.Level
}

func GetLevel(err error) ErrorLevel {
	if IsExtendError(err) {
		var extendErr *ExtendError
		errs.As(err, &extendErr)
		return getErrorLevel(extendErr)
	}
	return ERR_UNKNOWN
}

func IsConfigurationError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_CONFIGURATION
}

func IsSchedulingError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_SCHEDULING
}

func IsDeliveryError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_DELIVERY
}

func IsInfraError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_INFRASTRUCTURE
}

func IsUnknownError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_UNKNOWN
}
