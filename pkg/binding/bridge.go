package binding

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-writer/pkg/frontmatter"
	"github.com/mattsolo1/grove-writer/pkg/models"
)

// WriteKind distinguishes writes the user asked for from timer-driven ones.
type WriteKind int

const (
	// Manual writes may prompt for permission or for a target file.
	Manual WriteKind = iota
	// Auto writes never prompt and are skipped unless the binding is granted.
	Auto
)

func (k WriteKind) String() string {
	if k == Auto {
		return "auto"
	}
	return "manual"
}

// ErrNoTarget is returned by a manual write when the user picked no file.
var ErrNoTarget = errors.New("no target file chosen")

// NodeSource looks up the current state of a node. Implementations return a
// copy that the bridge may read without holding any lock.
type NodeSource func(id string) (*models.Node, bool)

// Picker asks the user for a file to bind node to. A nil capability with a
// nil error means the user cancelled.
type Picker func(ctx context.Context, node *models.Node) (Capability, error)

// Bridge holds the external bindings of file nodes and performs writes
// through them. Bindings are never serialized.
type Bridge struct {
	source NodeSource
	picker Picker
	logger *logrus.Entry

	mu       sync.Mutex
	bindings map[string]Binding
}

// NewBridge creates a bridge reading nodes from source. picker may be nil,
// in which case manual writes of unbound nodes fail with ErrNoTarget.
func NewBridge(source NodeSource, picker Picker, logger *logrus.Entry) *Bridge {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Bridge{
		source:   source,
		picker:   picker,
		logger:   logger.WithField("sub-component", "bridge"),
		bindings: make(map[string]Binding),
	}
}

// Bind associates nodeID with c as a pending binding. The first write
// confirms the permission. Folders cannot be bound.
func (b *Bridge) Bind(nodeID string, c Capability) error {
	n, ok := b.source(nodeID)
	if !ok {
		return &models.NodeError{Op: "bind", ID: nodeID, Err: models.ErrNotFound}
	}
	if !n.IsFile() {
		return &models.NodeError{Op: "bind", ID: nodeID, Err: models.ErrNotAFile}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings[nodeID] = Pending(c)
	return nil
}

// Unbind drops the binding of nodeID, if any.
func (b *Bridge) Unbind(nodeID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bindings, nodeID)
}

// Forget drops the bindings of every id, typically the ids a delete removed.
func (b *Bridge) Forget(ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		delete(b.bindings, id)
	}
}

// BindingOf returns the binding of nodeID, None when unbound.
func (b *Bridge) BindingOf(nodeID string) Binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bindings[nodeID]
}

// Bound returns the ids of every bound node.
func (b *Bridge) Bound() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.bindings))
	for id := range b.bindings {
		ids = append(ids, id)
	}
	return ids
}

func (b *Bridge) set(nodeID string, bnd Binding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings[nodeID] = bnd
}

// keep stores bnd and reports whether nodeID still exists. A node deleted
// while the user was being asked loses the binding again. The lookup comes
// after the store so a concurrent delete is caught by either this check or
// the Forget that follows it.
func (b *Bridge) keep(nodeID string, bnd Binding) bool {
	b.set(nodeID, bnd)
	if _, ok := b.source(nodeID); !ok {
		b.Unbind(nodeID)
		return false
	}
	return true
}

// Write saves the content of nodeID to its external file.
//
// An Auto write is a no-op unless the binding is granted and the permission
// still holds; it never prompts. A Manual write asks the picker for a target
// when the node is unbound and requests permission when it is not granted.
// A denied request returns ErrPermissionDenied and leaves the binding
// pending. If the node disappears while waiting on the user the write is
// discarded.
func (b *Bridge) Write(ctx context.Context, nodeID string, kind WriteKind) error {
	log := b.logger.WithFields(logrus.Fields{"node": nodeID, "kind": kind.String()})

	n, ok := b.source(nodeID)
	if !ok {
		return &models.NodeError{Op: "write", ID: nodeID, Err: models.ErrNotFound}
	}
	if !n.IsFile() {
		return &models.NodeError{Op: "write", ID: nodeID, Err: models.ErrNotAFile}
	}

	bnd := b.BindingOf(nodeID)
	if kind == Auto {
		if !bnd.IsGranted() {
			return nil
		}
		st, err := bnd.Capability().QueryPermission(ctx, ModeReadWrite)
		if err != nil || st != StateGranted {
			// Revoked since the last check; a manual write must re-request.
			b.keep(nodeID, Pending(bnd.Capability()))
			log.WithField("state", st.String()).Debug("auto write skipped, permission no longer granted")
			return nil
		}
		return b.flush(ctx, nodeID, bnd.Capability(), log)
	}

	if bnd.IsNone() {
		if b.picker == nil {
			return fmt.Errorf("write %s: %w", nodeID, ErrNoTarget)
		}
		c, err := b.picker(ctx, n)
		if err != nil {
			log.WithError(err).Warn("target picker failed")
			return fmt.Errorf("choose target for %s: %w", nodeID, err)
		}
		if c == nil {
			return fmt.Errorf("write %s: %w", nodeID, ErrNoTarget)
		}
		bnd = Pending(c)
		if !b.keep(nodeID, bnd) {
			log.Debug("node deleted while choosing a target, discarding")
			return nil
		}
	}

	c := bnd.Capability()
	st, err := c.QueryPermission(ctx, ModeReadWrite)
	if err == nil && st != StateGranted {
		st, err = c.RequestPermission(ctx, ModeReadWrite)
	}
	if err != nil {
		log.WithError(err).Warn("permission check failed")
		return fmt.Errorf("permission for %s: %w", c.Name(), err)
	}
	if st != StateGranted {
		if !b.keep(nodeID, Pending(c)) {
			log.Debug("node deleted while asking for permission, discarding")
			return nil
		}
		log.WithField("file", c.Name()).Info("write permission denied")
		return fmt.Errorf("write %s: %w", c.Name(), models.ErrPermissionDenied)
	}
	b.set(nodeID, Granted(c))

	return b.flush(ctx, nodeID, c, log)
}

// flush re-reads the node and writes it. Called after any wait on the user,
// so the node is looked up again rather than reusing an earlier copy.
func (b *Bridge) flush(ctx context.Context, nodeID string, c Capability, log *logrus.Entry) error {
	n, ok := b.source(nodeID)
	if !ok {
		b.Unbind(nodeID)
		log.Debug("node deleted before write completed, discarding")
		return nil
	}

	data, err := Render(n, c.Name())
	if err != nil {
		return err
	}
	if err := c.Write(ctx, data); err != nil {
		log.WithError(err).WithField("file", c.Name()).Error("external write failed")
		return fmt.Errorf("write %s: %w", c.Name(), err)
	}
	log.WithField("file", c.Name()).Debug("wrote external file")
	return nil
}

// Render produces the bytes written for n to a file called name. Markdown
// files get a frontmatter header; anything else gets the bare content.
func Render(n *models.Node, name string) ([]byte, error) {
	if !IsMarkdown(name) {
		return []byte(n.Content), nil
	}
	return frontmatter.Render(frontmatter.FromNode(n), n.Content)
}

// IsMarkdown reports whether name has a markdown extension.
func IsMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
