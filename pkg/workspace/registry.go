package workspace

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

// Registry manages workspaces and tracks the active one. Each workspace owns
// exactly one root folder in the node store; the registry only holds its id.
type Registry struct {
	mutator    *tree.Mutator
	workspaces []*Workspace
	activeID   string
	now        func() time.Time
}

// NewRegistry creates an empty registry over m and installs itself as m's
// root set, so the mutator refuses to delete workspace roots.
func NewRegistry(m *tree.Mutator) *Registry {
	r := &Registry{
		mutator: m,
		now:     time.Now,
	}
	m.SetRoots(r)
	return r
}

// Create adds a workspace with a fresh root folder and makes it active.
func (r *Registry) Create(title string) (*Workspace, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	rootID, err := r.mutator.CreateRoot(title)
	if err != nil {
		return nil, fmt.Errorf("create root folder: %w", err)
	}

	now := r.now()
	w := &Workspace{
		ID:         uuid.NewString(),
		Title:      title,
		RootNodeID: rootID,
		Status:     StatusDrafting,
		CreatedAt:  now,
		LastUsed:   now,
	}
	r.workspaces = append(r.workspaces, w)
	r.activeID = w.ID
	return w, nil
}

// Get retrieves a workspace by id
func (r *Registry) Get(id string) (*Workspace, error) {
	for _, w := range r.workspaces {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("workspace %s: %w", id, models.ErrNotFound)
}

// List returns all workspaces in creation order
func (r *Registry) List() []*Workspace {
	return append([]*Workspace(nil), r.workspaces...)
}

// Len returns the number of workspaces.
func (r *Registry) Len() int {
	return len(r.workspaces)
}

// Active returns the active workspace, or nil when there is none.
func (r *Registry) Active() *Workspace {
	w, err := r.Get(r.activeID)
	if err != nil {
		return nil
	}
	return w
}

// IsRoot reports whether id is the root node of a registered workspace.
func (r *Registry) IsRoot(id string) bool {
	_, ok := r.ForRoot(id)
	return ok
}

// ForRoot returns the workspace whose root node is rootID.
func (r *Registry) ForRoot(rootID string) (*Workspace, bool) {
	for _, w := range r.workspaces {
		if w.RootNodeID == rootID {
			return w, true
		}
	}
	return nil, false
}

// FindByNode finds the workspace whose tree contains nodeID.
func (r *Registry) FindByNode(nodeID string) (*Workspace, error) {
	rootID, ok := tree.RootOf(r.mutator.Store(), nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, models.ErrNotFound)
	}
	w, ok := r.ForRoot(rootID)
	if !ok {
		return nil, fmt.Errorf("node %s belongs to no workspace: %w", nodeID, models.ErrNotFound)
	}
	return w, nil
}

// Delete removes a workspace and its whole tree. The last workspace cannot
// be deleted. When the active workspace is deleted the first remaining one
// becomes active. Confirming destructive intent is the caller's job.
func (r *Registry) Delete(id string) (*tree.Change, error) {
	idx := -1
	for i, w := range r.workspaces {
		if w.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("workspace %s: %w", id, models.ErrNotFound)
	}
	if len(r.workspaces) == 1 {
		return nil, fmt.Errorf("workspace %s: %w", id, models.ErrLastWorkspaceForbidden)
	}

	w := r.workspaces[idx]
	r.workspaces = append(r.workspaces[:idx:idx], r.workspaces[idx+1:]...)

	// Once unregistered the root is a dangling root and the mutator removes it
	// together with its subtree.
	change, err := r.mutator.DeleteNode(w.RootNodeID)
	if err != nil {
		change = &tree.Change{Op: tree.OpDelete, NodeID: w.RootNodeID}
	}

	if r.activeID == id {
		r.activeID = r.workspaces[0].ID
	}
	return change, nil
}

// Rename sets the title of a workspace and of its root folder.
func (r *Registry) Rename(id, title string) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("workspace title cannot be empty")
	}
	w.Title = title
	if err := r.mutator.RenameNode(w.RootNodeID, title); err != nil {
		return fmt.Errorf("rename root folder: %w", err)
	}
	return nil
}

// SetStatus changes the lifecycle status of a workspace.
func (r *Registry) SetStatus(id string, status Status) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	w.Status = status
	return nil
}

// SwitchActive makes id the active workspace.
func (r *Registry) SwitchActive(id string) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	r.activeID = id
	w.LastUsed = r.now()
	return nil
}

// Restore replaces the registry content, typically from a loaded snapshot.
// An unknown activeID falls back to the first workspace.
func (r *Registry) Restore(workspaces []*Workspace, activeID string) {
	r.workspaces = append([]*Workspace(nil), workspaces...)
	r.activeID = ""
	if len(r.workspaces) == 0 {
		return
	}
	if _, err := r.Get(activeID); err == nil {
		r.activeID = activeID
	} else {
		r.activeID = r.workspaces[0].ID
	}
}
