package service

import (
	"context"

	"github.com/mattsolo1/grove-writer/pkg/workspace"
)

// commitLocked saves the snapshot and publishes ev. Save failures only
// produce a notice.
func (s *Service) commitLocked(ctx context.Context, events ...Event) {
	_ = s.saveLocked(ctx)
	for _, ev := range events {
		s.events.publish(ev)
	}
}

// CreateWorkspace creates a book with an empty root folder and makes it
// active. The active file is cleared.
func (s *Service) CreateWorkspace(ctx context.Context, title string) (*workspace.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.registry.Create(title)
	if err != nil {
		return nil, err
	}
	s.syncSessionLocked()
	s.session.ActiveNodeID = ""

	s.Logger.WithField("book", w.ID).Debug("created book")
	s.commitLocked(ctx, Event{Type: EventWorkspaceCreated, WorkspaceID: w.ID, NodeID: w.RootNodeID})
	copied := *w
	return &copied, nil
}

// DeleteWorkspace removes a book and its whole tree. The last book cannot be
// deleted. If the active book goes, the first remaining one becomes active and
// the active file is cleared.
func (s *Service) DeleteWorkspace(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.session.ActiveWorkspaceID == id
	change, err := s.registry.Delete(id)
	if err != nil {
		return err
	}

	if wasActive || change.Affects(s.session.ActiveNodeID) {
		s.session.ActiveNodeID = ""
	}
	s.syncSessionLocked()
	s.unindexLocked(ctx, change.Removed)
	s.bridge.Forget(change.Removed)

	s.Logger.WithField("book", id).WithField("removed", len(change.Removed)).Debug("deleted book")
	s.commitLocked(ctx, Event{Type: EventWorkspaceDeleted, WorkspaceID: id})
	return nil
}

// RenameWorkspace renames a book and its root folder.
func (s *Service) RenameWorkspace(ctx context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Rename(id, title); err != nil {
		return err
	}
	s.commitLocked(ctx, Event{Type: EventWorkspaceUpdated, WorkspaceID: id})
	return nil
}

// SetWorkspaceStatus changes the lifecycle status of a book.
func (s *Service) SetWorkspaceStatus(ctx context.Context, id string, status workspace.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.SetStatus(id, status); err != nil {
		return err
	}
	s.commitLocked(ctx, Event{Type: EventWorkspaceUpdated, WorkspaceID: id})
	return nil
}

// SwitchWorkspace makes id the active book and clears the active file.
func (s *Service) SwitchWorkspace(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.SwitchActive(id); err != nil {
		return err
	}
	s.syncSessionLocked()
	s.session.ActiveNodeID = ""
	s.commitLocked(ctx, Event{Type: EventWorkspaceSwitch, WorkspaceID: id})
	return nil
}

// Workspaces returns copies of every book in creation order.
func (s *Service) Workspaces() []workspace.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.registry.List()
	out := make([]workspace.Workspace, len(list))
	for i, w := range list {
		out[i] = *w
	}
	return out
}

// Workspace returns a copy of one book.
func (s *Service) Workspace(id string) (workspace.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.registry.Get(id)
	if err != nil {
		return workspace.Workspace{}, err
	}
	return *w, nil
}

// ActiveWorkspace returns a copy of the active book.
func (s *Service) ActiveWorkspace() workspace.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w := s.registry.Active(); w != nil {
		return *w
	}
	return workspace.Workspace{}
}
