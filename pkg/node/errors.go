package node

import (
	"errors"

	"github.com/graphnode-go/graphnode/pkg/format"
)

// Control-plane error kinds. Operations return them synchronously,
// usually wrapped with context; match with errors.Is. Real-time-path
// faults are never surfaced through these — Process self-heals and keeps
// returning a status.
var (
	// ErrInvalidArgument reports a nil or malformed parameter.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported reports an unknown command, parameter, or I/O kind.
	ErrUnsupported = errors.New("unsupported")

	// ErrNotConfigured reports a Start command without an accepted format.
	ErrNotConfigured = errors.New("not configured")

	// ErrInvalidFormat reports a descriptor that failed validation. It is
	// the format package's validation sentinel, so errors.Is matches
	// errors produced by format.Validate directly.
	ErrInvalidFormat = format.ErrInvalid

	// ErrNotFound reports a nonexistent port or interface.
	ErrNotFound = errors.New("not found")
)
