package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure. Kind names are stable and appear in results
// handed to the HTTP layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindValidation
	KindUnknownDeviceType
	KindCapabilityMismatch
	KindNotRegistered
	KindNotFound
	KindFiberFull
	KindAuthFailed
	KindProcessLocked
	KindTimeout
	KindConnection
	KindConsole
)

var kindNames = map[Kind]string{
	KindUnknown:            "UnknownError",
	KindConfiguration:      "ConfigurationError",
	KindValidation:         "ValidationError",
	KindUnknownDeviceType:  "UnknownDeviceType",
	KindCapabilityMismatch: "CapabilityMismatch",
	KindNotRegistered:      "NotRegistered",
	KindNotFound:           "NotFound",
	KindFiberFull:          "FiberFull",
	KindAuthFailed:         "AuthFailed",
	KindProcessLocked:      "ProcessLocked",
	KindTimeout:            "TimeoutError",
	KindConnection:         "ConnectionError",
	KindConsole:            "ConsoleError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kind-level sentinels for errors.Is.
var (
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrUnknownDeviceType  = &Error{Kind: KindUnknownDeviceType}
	ErrCapabilityMismatch = &Error{Kind: KindCapabilityMismatch}
	ErrNotRegistered      = &Error{Kind: KindNotRegistered}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrFiberFull          = &Error{Kind: KindFiberFull}
	ErrAuthFailed         = &Error{Kind: KindAuthFailed}
	ErrProcessLocked      = &Error{Kind: KindProcessLocked}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrConnection         = &Error{Kind: KindConnection}
	ErrConsole            = &Error{Kind: KindConsole}
)

// Error is the typed error every layer returns.
type Error struct {
	// Kind is the taxonomy entry
	Kind Kind

	// Op names the operation that failed (e.g. "snmp get", "register_onu_on_fiber")
	Op string

	// Msg is the human-readable detail
	Msg string

	// Err is the underlying cause, if any
	Err error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return e.Kind.String()
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind-level sentinels such as ErrTimeout.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Errorf builds an error of the given kind.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and a message to a cause. If err already carries a
// kind, that kind is kept: wrapping adds context, it never reclassifies.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		kind = te.Kind
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithOp returns err tagged with an operation name, preserving its kind.
func WithOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf extracts the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// StatusProcessLocked is the non-standard status the HTTP layer uses for
// lock contention and device-side login or transport failures.
const StatusProcessLocked = 452

// HTTPStatus maps err to the status code the HTTP collaborator reports.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindNotFound:
		return http.StatusNotFound
	case KindProcessLocked, KindAuthFailed, KindConnection:
		return StatusProcessLocked
	case KindConfiguration, KindValidation, KindCapabilityMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
