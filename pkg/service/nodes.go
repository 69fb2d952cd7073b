package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattsolo1/grove-writer/pkg/assistant"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

var _ assistant.Target = (*Service)(nil)

// resolveParentLocked maps an empty parent id to the root of the active book.
func (s *Service) resolveParentLocked(parentID string) string {
	if parentID != "" {
		return parentID
	}
	if w := s.registry.Active(); w != nil {
		return w.RootNodeID
	}
	return ""
}

// CreateNode creates a folder or file as the last child of parentID, or of
// the active book's root when parentID is empty. A new file becomes the
// active node and its book the active book.
func (s *Service) CreateNode(ctx context.Context, kind models.NodeKind, parentID, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNodeLocked(ctx, kind, parentID, title)
}

func (s *Service) createNodeLocked(ctx context.Context, kind models.NodeKind, parentID, title string) (string, error) {
	parentID = s.resolveParentLocked(parentID)
	id, err := s.mutator.CreateNode(kind, parentID, title)
	if err != nil {
		return "", err
	}

	w, _ := s.registry.FindByNode(id)
	if kind == models.KindFile {
		if c := s.Config.DefaultCategory; c != "" && c.Valid() {
			_ = s.mutator.UpdateCategory(id, c)
		}
		if w != nil && w.ID != s.session.ActiveWorkspaceID {
			_ = s.registry.SwitchActive(w.ID)
			s.syncSessionLocked()
		}
		s.session.ActiveNodeID = id
		s.reindexNodeLocked(ctx, id)
	}

	ev := Event{Type: EventNodeCreated, NodeID: id}
	if w != nil {
		ev.WorkspaceID = w.ID
	}
	s.Logger.WithField("node", id).WithField("kind", kind).Debug("created node")
	s.commitLocked(ctx, ev)
	return id, nil
}

// RenameNode sets the title of a node. Renaming a book's root renames the
// book's folder only; use RenameWorkspace for the book itself.
func (s *Service) RenameNode(ctx context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutator.RenameNode(id, title); err != nil {
		return err
	}
	s.reindexNodeLocked(ctx, id)
	s.commitLocked(ctx, s.nodeEventLocked(EventNodeRenamed, id))
	return nil
}

// DeleteNode removes a node and its subtree. The active node is cleared when
// it was part of the subtree and any external bindings are dropped.
func (s *Service) DeleteNode(ctx context.Context, id string) (*tree.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.nodeEventLocked(EventNodeDeleted, id)
	change, err := s.mutator.DeleteNode(id)
	if err != nil {
		return nil, err
	}

	if change.Affects(s.session.ActiveNodeID) {
		s.session.ActiveNodeID = ""
	}
	s.unindexLocked(ctx, change.Removed)
	s.bridge.Forget(change.Removed)

	s.Logger.WithField("node", id).WithField("removed", len(change.Removed)).Debug("deleted node")
	s.commitLocked(ctx, ev)
	return change, nil
}

// MoveNode re-parents id under newParentID, optionally at a position.
func (s *Service) MoveNode(ctx context.Context, id, newParentID string, options ...tree.MoveOption) (*tree.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, err := s.mutator.MoveNode(id, newParentID, options...)
	if err != nil {
		return nil, err
	}

	// The subtree may have crossed into another book.
	if w, err := s.registry.FindByNode(id); err == nil {
		s.reindexLocked(ctx, w, change.Moved)
	}
	s.commitLocked(ctx, s.nodeEventLocked(EventNodeMoved, id))
	return change, nil
}

// ToggleFolder flips a folder open or closed and returns the new state.
func (s *Service) ToggleFolder(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := s.mutator.ToggleFolder(id)
	if n, ok := s.store.Get(id); ok && n.IsFolder() {
		s.commitLocked(ctx, s.nodeEventLocked(EventFolderToggled, id))
	}
	return open
}

// UpdateContent replaces the text of a file and records the change in word
// count in today's writing statistics.
func (s *Service) UpdateContent(ctx context.Context, id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before int
	if n, ok := s.store.Get(id); ok {
		before = n.WordCount
	}
	if err := s.mutator.UpdateContent(id, text); err != nil {
		return err
	}
	n, _ := s.store.Get(id)
	if delta := n.WordCount - before; delta != 0 {
		s.history.Record(s.now(), delta)
		s.saveStatsLocked(ctx)
	}

	s.reindexNodeLocked(ctx, id)
	s.commitLocked(ctx, s.nodeEventLocked(EventNodeUpdated, id))
	return nil
}

// UpdateTags replaces the tags of a file. Folders are ignored.
func (s *Service) UpdateTags(ctx context.Context, id string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutator.UpdateTags(id, tags); err != nil {
		return err
	}
	s.reindexNodeLocked(ctx, id)
	s.commitLocked(ctx, s.nodeEventLocked(EventNodeUpdated, id))
	return nil
}

// UpdateCategory reassigns the category of a file. Folders are ignored.
func (s *Service) UpdateCategory(ctx context.Context, id string, category models.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutator.UpdateCategory(id, category); err != nil {
		return err
	}
	s.reindexNodeLocked(ctx, id)
	s.commitLocked(ctx, s.nodeEventLocked(EventNodeUpdated, id))
	return nil
}

// BulkReorganize creates one folder per move under parentID (the active
// book's root when empty) and moves the listed files into it. Stale ids are
// skipped and listed in the report.
func (s *Service) BulkReorganize(ctx context.Context, moves []tree.FolderMove, parentID string) (*tree.ReorganizeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentID = s.resolveParentLocked(parentID)
	report, err := s.mutator.BulkReorganize(moves, parentID)
	if report != nil {
		for _, sk := range report.Skipped {
			s.Logger.WithField("node", sk.ID).WithField("reason", sk.Reason).Debug("reorganize skipped file")
		}
	}
	if err != nil && (report == nil || len(report.Folders) == 0) {
		return report, err
	}

	s.reindexNodeLocked(ctx, parentID)
	s.commitLocked(ctx, s.nodeEventLocked(EventTreeReorganized, parentID))
	return report, err
}

func (s *Service) nodeEventLocked(t EventType, id string) Event {
	ev := Event{Type: t, NodeID: id}
	if w, err := s.registry.FindByNode(id); err == nil {
		ev.WorkspaceID = w.ID
	}
	return ev
}

// Node returns a copy of the node with the given id.
func (s *Service) Node(id string) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.store.Get(id)
	if !ok {
		return nil, &models.NodeError{Op: "get", ID: id, Err: models.ErrNotFound}
	}
	return n.Clone(), nil
}

// Tree returns the nested view of a book, or of the active book when
// workspaceID is empty.
func (s *Service) Tree(workspaceID string) (*tree.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.registry.Active()
	if workspaceID != "" {
		var err error
		if w, err = s.registry.Get(workspaceID); err != nil {
			return nil, err
		}
	}
	if w == nil {
		return nil, fmt.Errorf("no active book: %w", models.ErrNotFound)
	}
	return tree.Build(s.store, w.RootNodeID), nil
}

// Path returns the titles from the book root down to id.
func (s *Service) Path(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tree.Path(s.store, id)
}

// WordCount returns the words of a file, or the total over every file below
// a folder. Unknown ids count zero.
func (s *Service) WordCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tree.FolderWordCount(s.store, id)
}

// Validate checks the forest invariant over the whole store.
func (s *Service) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tree.Validate(s.store)
}

// Files returns copies of every file of a book in pre-order, or of the
// active book when workspaceID is empty.
func (s *Service) Files(workspaceID string) ([]*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.registry.Active()
	if workspaceID != "" {
		var err error
		if w, err = s.registry.Get(workspaceID); err != nil {
			return nil, err
		}
	}
	if w == nil {
		return nil, fmt.Errorf("no active book: %w", models.ErrNotFound)
	}

	var files []*models.Node
	_ = tree.PreOrder(s.store, w.RootNodeID, func(n *models.Node, _ int) error {
		if n.IsFile() {
			files = append(files, n.Clone())
		}
		return nil
	})
	return files, nil
}

// ResolveNode turns a user supplied reference into a node id. It accepts a
// full id, a unique id prefix, or a title that is unique in the active book.
func (s *Service) ResolveNode(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Get(ref); ok {
		return ref, nil
	}

	var byPrefix []string
	for _, id := range s.store.IDs() {
		if strings.HasPrefix(id, ref) {
			byPrefix = append(byPrefix, id)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}
	if len(byPrefix) > 1 {
		return "", fmt.Errorf("%q matches %d nodes, use a longer prefix", ref, len(byPrefix))
	}

	var byTitle []string
	if w := s.registry.Active(); w != nil {
		_ = tree.PreOrder(s.store, w.RootNodeID, func(n *models.Node, _ int) error {
			if strings.EqualFold(n.Title, ref) {
				byTitle = append(byTitle, n.ID)
			}
			return nil
		})
	}
	switch len(byTitle) {
	case 0:
		return "", &models.NodeError{Op: "resolve", ID: ref, Err: models.ErrNotFound}
	case 1:
		return byTitle[0], nil
	default:
		return "", fmt.Errorf("%d nodes are titled %q, use the id", len(byTitle), ref)
	}
}
