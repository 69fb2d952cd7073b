// Package tree holds the document forest: the node store, the mutator that
// preserves its invariants, and read-only traversal helpers.
package tree

import (
	"sort"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// Store is the authoritative id -> node mapping. It performs no validation;
// tree-wide consistency is the Mutator's job.
type Store struct {
	nodes   map[string]*models.Node
	retired map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes:   make(map[string]*models.Node),
		retired: make(map[string]struct{}),
	}
}

// Get returns the node for id.
func (s *Store) Get(id string) (*models.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Put inserts or overwrites a node.
func (s *Store) Put(n *models.Node) {
	s.nodes[n.ID] = n
}

// Remove deletes the entry for id without cascading. The id is retired and
// will never be handed out again by the Mutator.
func (s *Store) Remove(id string) {
	if _, ok := s.nodes[id]; !ok {
		return
	}
	delete(s.nodes, id)
	s.retired[id] = struct{}{}
}

// Retired reports whether id belonged to a node that has been removed.
func (s *Store) Retired(id string) bool {
	_, ok := s.retired[id]
	return ok
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// IDs returns every node id in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns every node ordered by id.
func (s *Store) Nodes() []*models.Node {
	ids := s.IDs()
	out := make([]*models.Node, len(ids))
	for i, id := range ids {
		out[i] = s.nodes[id]
	}
	return out
}

// Reset replaces the whole content of the store. Retired ids are kept.
func (s *Store) Reset(nodes []*models.Node) {
	s.nodes = make(map[string]*models.Node, len(nodes))
	for _, n := range nodes {
		s.nodes[n.ID] = n
	}
}
