// Package binding connects file nodes to real files outside the application
// store. A file is reached only through a Capability whose permission must be
// re-checked before every write.
package binding

import "context"

// Mode is the access level a capability is asked for.
type Mode int

const (
	ModeRead Mode = iota
	ModeReadWrite
)

func (m Mode) String() string {
	if m == ModeReadWrite {
		return "readwrite"
	}
	return "read"
}

// PermissionState is the answer to a permission query.
type PermissionState int

const (
	// StatePrompt means the user has not decided yet; a request may prompt.
	StatePrompt PermissionState = iota
	StateGranted
	StateDenied
)

func (s PermissionState) String() string {
	switch s {
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	default:
		return "prompt"
	}
}

// Capability is an opaque handle to one external file.
type Capability interface {
	// Name is the file name shown to the user, for example "chapter-1.md".
	Name() string
	// QueryPermission reports the current state without prompting.
	QueryPermission(ctx context.Context, mode Mode) (PermissionState, error)
	// RequestPermission may prompt the user and blocks until they answer.
	RequestPermission(ctx context.Context, mode Mode) (PermissionState, error)
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
