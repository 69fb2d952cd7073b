package service

import (
	"context"
	"fmt"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// Session returns a copy of the session state.
func (s *Service) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetActiveNode opens a file. Its book becomes the active book. An empty id
// clears the active node.
func (s *Service) SetActiveNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.session.ActiveNodeID = ""
		s.commitLocked(ctx, Event{Type: EventSessionChanged, WorkspaceID: s.session.ActiveWorkspaceID})
		return nil
	}

	n, ok := s.store.Get(id)
	if !ok {
		return &models.NodeError{Op: "open", ID: id, Err: models.ErrNotFound}
	}
	if !n.IsFile() {
		return &models.NodeError{Op: "open", ID: id, Err: models.ErrNotAFile}
	}
	w, err := s.registry.FindByNode(id)
	if err != nil {
		return err
	}
	if w.ID != s.session.ActiveWorkspaceID {
		if err := s.registry.SwitchActive(w.ID); err != nil {
			return err
		}
		s.syncSessionLocked()
	}
	s.session.ActiveNodeID = id
	s.commitLocked(ctx, Event{Type: EventSessionChanged, NodeID: id, WorkspaceID: w.ID})
	return nil
}

// SetViewMode selects the editor layout.
func (s *Service) SetViewMode(ctx context.Context, mode models.ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown view mode %q (expected editor, preview or split)", mode)
	}
	s.updateSession(ctx, func(sess *models.Session) {
		sess.ViewMode = mode
	})
	return nil
}

// ToggleDarkMode flips dark mode and returns the new value.
func (s *Service) ToggleDarkMode(ctx context.Context) bool {
	return s.updateSession(ctx, func(sess *models.Session) {
		sess.DarkMode = !sess.DarkMode
	}).DarkMode
}

// ToggleFocusMode flips focus mode and returns the new value.
func (s *Service) ToggleFocusMode(ctx context.Context) bool {
	return s.updateSession(ctx, func(sess *models.Session) {
		sess.FocusMode = !sess.FocusMode
	}).FocusMode
}

// ToggleSidebar flips sidebar visibility and returns the new value.
func (s *Service) ToggleSidebar(ctx context.Context) bool {
	return s.updateSession(ctx, func(sess *models.Session) {
		sess.SidebarVisible = !sess.SidebarVisible
	}).SidebarVisible
}

func (s *Service) updateSession(ctx context.Context, fn func(*models.Session)) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.session)
	s.commitLocked(ctx, Event{Type: EventSessionChanged, WorkspaceID: s.session.ActiveWorkspaceID})
	return s.session
}
