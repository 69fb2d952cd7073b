package tree

import (
	"errors"
	"fmt"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// ErrStop can be returned from a walk function to end the walk early.
var ErrStop = errors.New("stop walk")

// WalkFunc is called for every node visited by PreOrder.
type WalkFunc func(n *models.Node, depth int) error

// PreOrder visits rootID and its descendants root-first, children in their
// stored order. This is the order used for export.
func PreOrder(s *Store, rootID string, fn WalkFunc) error {
	err := preOrder(s, rootID, 0, make(map[string]bool), fn)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

func preOrder(s *Store, id string, depth int, seen map[string]bool, fn WalkFunc) error {
	n, ok := s.Get(id)
	if !ok || seen[id] {
		return nil
	}
	seen[id] = true
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := preOrder(s, child, depth+1, seen, fn); err != nil {
			return err
		}
	}
	return nil
}

// Descendants returns every descendant of id in pre-order, excluding id.
func Descendants(s *Store, id string) []string {
	var out []string
	_ = PreOrder(s, id, func(n *models.Node, depth int) error {
		if depth > 0 {
			out = append(out, n.ID)
		}
		return nil
	})
	return out
}

// FolderWordCount sums the word counts of every file below id. For a file it
// returns the file's own count.
func FolderWordCount(s *Store, id string) int {
	total := 0
	_ = PreOrder(s, id, func(n *models.Node, _ int) error {
		if n.IsFile() {
			total += n.WordCount
		}
		return nil
	})
	return total
}

// RootOf follows parent links up to the parentless ancestor of id.
func RootOf(s *Store, id string) (string, bool) {
	n, ok := s.Get(id)
	for steps := 0; ok; steps++ {
		if n.IsRoot() {
			return n.ID, true
		}
		if steps > s.Len() {
			return "", false
		}
		n, ok = s.Get(n.ParentID)
	}
	return "", false
}

// Path returns the titles from the root down to id.
func Path(s *Store, id string) []string {
	var titles []string
	n, ok := s.Get(id)
	for steps := 0; ok && steps <= s.Len(); steps++ {
		titles = append([]string{n.Title}, titles...)
		if n.IsRoot() {
			break
		}
		n, ok = s.Get(n.ParentID)
	}
	return titles
}

// Validate checks the forest invariants: parents exist and are folders and
// list their children exactly once, children are unique and point back,
// files carry no children, and there are no cycles.
func Validate(s *Store) error {
	var errs []error
	owner := make(map[string]string)

	for _, n := range s.Nodes() {
		if n.IsFile() && len(n.Children) > 0 {
			errs = append(errs, fmt.Errorf("file %s has children", n.ID))
		}
		for _, c := range n.Children {
			if prev, dup := owner[c]; dup {
				errs = append(errs, fmt.Errorf("node %s listed by %s and %s", c, prev, n.ID))
				continue
			}
			owner[c] = n.ID
			child, ok := s.Get(c)
			if !ok {
				errs = append(errs, fmt.Errorf("folder %s lists missing child %s", n.ID, c))
				continue
			}
			if child.ParentID != n.ID {
				errs = append(errs, fmt.Errorf("child %s of %s points to parent %q", c, n.ID, child.ParentID))
			}
		}
		if n.IsRoot() {
			continue
		}
		parent, ok := s.Get(n.ParentID)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("node %s has missing parent %s", n.ID, n.ParentID))
		case !parent.IsFolder():
			errs = append(errs, fmt.Errorf("node %s has non-folder parent %s", n.ID, n.ParentID))
		case !parent.HasChild(n.ID):
			errs = append(errs, fmt.Errorf("parent %s does not list %s", n.ParentID, n.ID))
		}
		if inCycle(s, n.ID) {
			errs = append(errs, fmt.Errorf("node %s is part of a cycle", n.ID))
		}
	}

	return errors.Join(errs...)
}

func inCycle(s *Store, id string) bool {
	n, ok := s.Get(id)
	for steps := 0; ok && !n.IsRoot(); steps++ {
		if steps > s.Len() {
			return true
		}
		n, ok = s.Get(n.ParentID)
	}
	return false
}
