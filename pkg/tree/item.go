package tree

import (
	"time"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// Item is a nested, read-only view of one node of the forest, built for
// rendering and export. It is detached from the store.
type Item struct {
	ID        string
	Title     string
	Kind      models.NodeKind
	Category  models.Category
	Tags      []string
	WordCount int // for folders, the sum over descendant files
	ModTime   time.Time
	IsOpen    bool
	Depth     int

	// Hierarchy
	Parent   *Item
	Children []*Item
}

// IsDir reports whether the item is a folder.
func (it *Item) IsDir() bool {
	return it.Kind == models.KindFolder
}

// Build returns the nested view rooted at rootID, or nil if it does not exist.
func Build(s *Store, rootID string) *Item {
	return build(s, rootID, nil, 0, make(map[string]bool))
}

func build(s *Store, id string, parent *Item, depth int, seen map[string]bool) *Item {
	n, ok := s.Get(id)
	if !ok || seen[id] {
		return nil
	}
	seen[id] = true

	item := &Item{
		ID:        n.ID,
		Title:     n.Title,
		Kind:      n.Kind,
		Category:  n.Category,
		Tags:      append([]string(nil), n.Tags...),
		WordCount: n.WordCount,
		ModTime:   n.LastModified,
		IsOpen:    n.IsOpen,
		Depth:     depth,
		Parent:    parent,
	}
	if n.IsFolder() {
		item.WordCount = 0
		for _, c := range n.Children {
			if child := build(s, c, item, depth+1, seen); child != nil {
				item.Children = append(item.Children, child)
				item.WordCount += child.WordCount
			}
		}
	}
	return item
}

// CountItems counts all items in a view.
func CountItems(root *Item) int {
	if root == nil {
		return 0
	}
	count := 1
	for _, child := range root.Children {
		count += CountItems(child)
	}
	return count
}
