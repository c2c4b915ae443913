package discovery

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the client surfaces with its own exit code,
// so scripting callers can branch on the process status.
type Kind int

const (
	NetworkFailure Kind = iota + 1 // unreachable host, timeout, TLS failure
	ServerError                    // non-2xx HTTP status on fetch or dispatch
	EmptyManifest                  // fetch succeeded but zero routes parsed
	ManifestConflict               // duplicate route definitions in one manifest
	UnknownRoute                   // user path reaches no callable endpoint
	MissingParameter               // route expects more placeholder values
	ExtraArguments                 // user supplied segments beyond the route
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case ServerError:
		return "server error"
	case EmptyManifest:
		return "empty manifest"
	case ManifestConflict:
		return "manifest conflict"
	case UnknownRoute:
		return "unknown route"
	case MissingParameter:
		return "missing parameter"
	case ExtraArguments:
		return "extra arguments"
	}
	return "error"
}

// ExitCode returns the stable process exit code for the kind. Codes start at
// 2; 1 stays reserved for usage and unclassified errors.
func (k Kind) ExitCode() int {
	return int(k) + 1
}

// KindError is an error tagged with its taxonomy kind.
type KindError struct {
	Kind Kind
	msg  string
	err  error
}

func (e *KindError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *KindError) Unwrap() error { return e.err }

// Errf builds a KindError with a formatted message naming the offending
// input (path, segment, or URL).
func Errf(kind Kind, format string, args ...interface{}) *KindError {
	return &KindError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrapf is Errf with an underlying cause attached.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *KindError {
	return &KindError{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// KindOf extracts the taxonomy kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind, true
	}
	return 0, false
}
