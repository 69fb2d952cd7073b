package models

import (
	"errors"
	"fmt"
)

// Structural errors. They are returned synchronously and leave state unchanged.
var (
	// ErrNotFound indicates an id that does not resolve to a node or workspace.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParent indicates a create/move target that is missing or not a folder.
	ErrInvalidParent = errors.New("invalid parent")

	// ErrCycleDetected indicates a move that would place a node under itself.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrRootDeletionForbidden indicates an attempt to delete a workspace root.
	ErrRootDeletionForbidden = errors.New("cannot delete a workspace root")

	// ErrLastWorkspaceForbidden indicates an attempt to delete the only workspace.
	ErrLastWorkspaceForbidden = errors.New("cannot delete the last workspace")

	// ErrNotAFile indicates a file-only operation applied to a folder.
	ErrNotAFile = errors.New("not a file")
)

// Persistence errors. They are logged at the persistence boundary and never
// roll back the in-memory tree.
var (
	// ErrPermissionDenied indicates the external file capability was not granted.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPersistenceUnavailable indicates the local store could not be written.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// NodeError records a failed operation on a node.
type NodeError struct {
	Op  string // "create", "rename", "delete", "move", ...
	ID  string
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err is one of the tree/registry errors that the
// caller is expected to handle.
func IsStructural(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidParent, ErrCycleDetected,
		ErrRootDeletionForbidden, ErrLastWorkspaceForbidden, ErrNotAFile,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
