package common

import (
	"errors"
	"fmt"
)

// RemoteKind sub-classifies a RemoteServiceError when the backend returned a
// machine-readable code.
type RemoteKind string

const (
	RemoteConflict         RemoteKind = "conflict"
	RemoteNotFound         RemoteKind = "not_found"
	RemotePermissionDenied RemoteKind = "permission_denied"
	RemoteUnavailable      RemoteKind = "unavailable"
	RemoteUnknown          RemoteKind = "unknown"
)

// RemoteServiceError wraps a backend or network failure that has no more
// specific sentinel in the taxonomy.
type RemoteServiceError struct {
	Kind    RemoteKind
	Message string
	Err     error
}

func (e *RemoteServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service error (%s)", e.Kind)
	}
	return fmt.Sprintf("remote service error (%s): %s", e.Kind, e.Message)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// IsRemoteKind reports whether err is a RemoteServiceError of the given kind.
func IsRemoteKind(err error, kind RemoteKind) bool {
	var re *RemoteServiceError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
