package tree

import (
	"time"

	"github.com/google/uuid"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

const (
	defaultFolderTitle = "New Folder"
	defaultFileTitle   = "Untitled"
)

// RootSet answers whether a node id is the root of a registered workspace.
type RootSet interface {
	IsRoot(id string) bool
}

// Mutator is the only component allowed to change the shape of the forest.
// Every method either succeeds completely or returns an error with the store
// left untouched.
type Mutator struct {
	store *Store
	roots RootSet
	newID func() string
	now   func() time.Time
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Mutator) {
		m.newID = fn
	}
}

// WithClock replaces time.Now for LastModified stamps.
func WithClock(fn func() time.Time) Option {
	return func(m *Mutator) {
		m.now = fn
	}
}

// NewMutator creates a mutator over store.
func NewMutator(store *Store, options ...Option) *Mutator {
	m := &Mutator{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// SetRoots installs the workspace root lookup used for delete protection.
func (m *Mutator) SetRoots(roots RootSet) {
	m.roots = roots
}

// Store returns the underlying node store.
func (m *Mutator) Store() *Store {
	return m.store
}

func (m *Mutator) isRegisteredRoot(id string) bool {
	return m.roots != nil && m.roots.IsRoot(id)
}

// allocateID returns an id that is neither live nor retired.
func (m *Mutator) allocateID() string {
	for {
		id := m.newID()
		if _, live := m.store.Get(id); live || m.store.Retired(id) || id == "" {
			continue
		}
		return id
	}
}

func (m *Mutator) newNode(kind models.NodeKind, parentID, title string) *models.Node {
	n := &models.Node{
		ID:           m.allocateID(),
		ParentID:     parentID,
		Title:        title,
		Kind:         kind,
		LastModified: m.now(),
	}
	switch kind {
	case models.KindFolder:
		n.Children = []string{}
		n.IsOpen = true
		if n.Title == "" {
			n.Title = defaultFolderTitle
		}
	default:
		n.Category = models.DefaultCategory
		n.Tags = []string{}
		if n.Title == "" {
			n.Title = defaultFileTitle
		}
	}
	return n
}

// CreateNode creates a folder or file as the last child of parentID and
// returns the new id. An empty title gets a kind-specific default.
func (m *Mutator) CreateNode(kind models.NodeKind, parentID, title string) (string, error) {
	if kind != models.KindFolder && kind != models.KindFile {
		return "", &models.NodeError{Op: "create", ID: parentID, Err: models.ErrInvalidParent}
	}
	parent, ok := m.store.Get(parentID)
	if !ok || !parent.IsFolder() {
		return "", &models.NodeError{Op: "create", ID: parentID, Err: models.ErrInvalidParent}
	}

	n := m.newNode(kind, parentID, title)
	m.store.Put(n)
	parent.Children = append(parent.Children, n.ID)
	parent.IsOpen = true
	return n.ID, nil
}

// CreateRoot creates a parentless folder. Only the workspace registry uses it.
func (m *Mutator) CreateRoot(title string) (string, error) {
	n := m.newNode(models.KindFolder, "", title)
	m.store.Put(n)
	return n.ID, nil
}

// RenameNode sets the title of a node. Titles need not be unique.
func (m *Mutator) RenameNode(id, title string) error {
	n, ok := m.store.Get(id)
	if !ok {
		return &models.NodeError{Op: "rename", ID: id, Err: models.ErrNotFound}
	}
	n.Title = title
	n.LastModified = m.now()
	return nil
}

// DeleteNode removes id and its whole subtree. The subtree is collected
// first and removed afterwards, so a failure can only happen before anything
// changed. A parentless node that is not a workspace root is a dangling root
// and is removed without touching any parent.
func (m *Mutator) DeleteNode(id string) (*Change, error) {
	n, ok := m.store.Get(id)
	if !ok {
		return nil, &models.NodeError{Op: "delete", ID: id, Err: models.ErrNotFound}
	}
	if m.isRegisteredRoot(id) {
		return nil, &models.NodeError{Op: "delete", ID: id, Err: models.ErrRootDeletionForbidden}
	}

	removed := m.subtree(id)

	if !n.IsRoot() {
		if parent, ok := m.store.Get(n.ParentID); ok {
			parent.Children = without(parent.Children, id)
		}
	}
	for _, rid := range removed {
		m.store.Remove(rid)
	}

	return &Change{Op: OpDelete, NodeID: id, Removed: removed}, nil
}

// ToggleFolder flips the open flag of a folder and returns the new state.
// Unknown ids and files are ignored.
func (m *Mutator) ToggleFolder(id string) bool {
	n, ok := m.store.Get(id)
	if !ok || !n.IsFolder() {
		return false
	}
	n.IsOpen = !n.IsOpen
	return n.IsOpen
}

// MoveOption customises MoveNode.
type MoveOption func(*moveOptions)

type moveOptions struct {
	index int // -1 appends
}

// AtIndex inserts the node at position i of the new parent's children.
// Out-of-range values are clamped.
func AtIndex(i int) MoveOption {
	return func(o *moveOptions) {
		o.index = i
	}
}

// MoveNode re-parents id under newParentID. Moving within the same parent
// reorders. Workspace roots cannot be moved.
func (m *Mutator) MoveNode(id, newParentID string, options ...MoveOption) (*Change, error) {
	opts := &moveOptions{index: -1}
	for _, opt := range options {
		opt(opts)
	}

	n, ok := m.store.Get(id)
	if !ok {
		return nil, &models.NodeError{Op: "move", ID: id, Err: models.ErrNotFound}
	}
	parent, ok := m.store.Get(newParentID)
	if !ok || !parent.IsFolder() {
		return nil, &models.NodeError{Op: "move", ID: id, Err: models.ErrInvalidParent}
	}
	if newParentID == id || m.isAncestor(id, newParentID) {
		return nil, &models.NodeError{Op: "move", ID: id, Err: models.ErrCycleDetected}
	}
	if m.isRegisteredRoot(id) {
		return nil, &models.NodeError{Op: "move", ID: id, Err: models.ErrInvalidParent}
	}

	m.attach(n, parent, opts.index)

	return &Change{Op: OpMove, NodeID: id, Moved: m.subtree(id)}, nil
}

// attach detaches n from its current parent and inserts it into parent.
// Callers have already ruled out cycles.
func (m *Mutator) attach(n, parent *models.Node, index int) {
	if !n.IsRoot() {
		if old, ok := m.store.Get(n.ParentID); ok {
			old.Children = without(old.Children, n.ID)
		}
	}

	children := without(parent.Children, n.ID)
	if index < 0 || index > len(children) {
		index = len(children)
	}
	children = append(children, "")
	copy(children[index+1:], children[index:])
	children[index] = n.ID

	parent.Children = children
	parent.IsOpen = true
	n.ParentID = parent.ID
}

// UpdateContent replaces a file's text and recomputes its word count.
func (m *Mutator) UpdateContent(id, text string) error {
	n, ok := m.store.Get(id)
	if !ok {
		return &models.NodeError{Op: "update content", ID: id, Err: models.ErrNotFound}
	}
	if !n.IsFile() {
		return &models.NodeError{Op: "update content", ID: id, Err: models.ErrNotAFile}
	}
	n.Content = text
	n.WordCount = CountWords(text)
	n.LastModified = m.now()
	return nil
}

// UpdateTags replaces the tag set of a file. Folders are left unchanged.
func (m *Mutator) UpdateTags(id string, tags []string) error {
	n, ok := m.store.Get(id)
	if !ok {
		return &models.NodeError{Op: "update tags", ID: id, Err: models.ErrNotFound}
	}
	if !n.IsFile() {
		return nil
	}
	n.Tags = NormalizeTags(tags)
	return nil
}

// UpdateCategory reassigns the category of a file. Folders are left unchanged.
func (m *Mutator) UpdateCategory(id string, category models.Category) error {
	n, ok := m.store.Get(id)
	if !ok {
		return &models.NodeError{Op: "update category", ID: id, Err: models.ErrNotFound}
	}
	if !n.IsFile() {
		return nil
	}
	n.Category = category
	return nil
}

// FolderMove is one entry of a bulk reorganisation: a folder to create and
// the files to move into it.
type FolderMove struct {
	TargetFolderName string   `json:"targetFolderName" yaml:"folder"`
	FileIDs          []string `json:"fileIds" yaml:"files"`
}

// SkippedFile records a file id that BulkReorganize did not move.
type SkippedFile struct {
	ID     string
	Reason string
}

// ReorganizeReport summarises a bulk reorganisation.
type ReorganizeReport struct {
	Folders []string // ids of the created folders, one per move
	Moved   []string
	Skipped []SkippedFile
}

// BulkReorganize creates one folder per move under underParent and moves the
// listed files into it. Ids that no longer resolve to a file are skipped;
// the rest of the batch still applies. A missing or non-folder underParent
// fails the whole batch before anything changes.
func (m *Mutator) BulkReorganize(moves []FolderMove, underParent string) (*ReorganizeReport, error) {
	parent, ok := m.store.Get(underParent)
	if !ok || !parent.IsFolder() {
		return nil, &models.NodeError{Op: "reorganize", ID: underParent, Err: models.ErrInvalidParent}
	}

	report := &ReorganizeReport{}
	for _, mv := range moves {
		folderID, err := m.CreateNode(models.KindFolder, underParent, mv.TargetFolderName)
		if err != nil {
			return report, err
		}
		report.Folders = append(report.Folders, folderID)
		folder, _ := m.store.Get(folderID)

		for _, fileID := range mv.FileIDs {
			n, ok := m.store.Get(fileID)
			switch {
			case !ok:
				report.Skipped = append(report.Skipped, SkippedFile{ID: fileID, Reason: "not found"})
				continue
			case !n.IsFile():
				report.Skipped = append(report.Skipped, SkippedFile{ID: fileID, Reason: "not a file"})
				continue
			}
			m.attach(n, folder, -1)
			report.Moved = append(report.Moved, fileID)
		}
	}

	return report, nil
}

// isAncestor reports whether ancestorID lies on the parent chain of id.
func (m *Mutator) isAncestor(ancestorID, id string) bool {
	steps := 0
	for cur, ok := m.store.Get(id); ok && !cur.IsRoot(); cur, ok = m.store.Get(cur.ParentID) {
		if cur.ParentID == ancestorID {
			return true
		}
		// Guards against a corrupted store that already contains a cycle.
		steps++
		if steps > m.store.Len() {
			return true
		}
	}
	return false
}

// subtree returns id and every descendant in pre-order.
func (m *Mutator) subtree(id string) []string {
	var out []string
	seen := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		n, ok := m.store.Get(cur)
		if !ok {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
