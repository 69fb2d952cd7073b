package models

import "time"

// NodeKind distinguishes folders from files. It never changes after creation.
type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindFile   NodeKind = "file"
)

// Category classifies a file node. Categories are freely reassignable.
type Category string

const (
	CategoryIdea      Category = "idea"
	CategoryPlanning  Category = "planning"
	CategoryCharacter Category = "character"
	CategoryChapter   Category = "chapter"
	CategoryOther     Category = "other"
)

// DefaultCategory is assigned to newly created files.
const DefaultCategory = CategoryOther

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryIdea,
	CategoryPlanning,
	CategoryCharacter,
	CategoryChapter,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Node is a folder or a file in a document tree.
type Node struct {
	ID           string    `json:"id"`
	ParentID     string    `json:"parentId,omitempty"` // empty for roots
	Title        string    `json:"title"`
	Kind         NodeKind  `json:"kind"`
	Category     Category  `json:"category,omitempty"`
	Tags         []string  `json:"tags"`
	Content      string    `json:"content,omitempty"`
	Children     []string  `json:"children"`
	WordCount    int       `json:"wordCount,omitempty"`
	LastModified time.Time `json:"lastModified"`
	IsOpen       bool      `json:"isOpen,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n != nil && n.Kind == KindFolder
}

// IsFile reports whether the node is a file.
func (n *Node) IsFile() bool {
	return n != nil && n.Kind == KindFile
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// HasChild reports whether id is listed in the node's children.
func (n *Node) HasChild(id string) bool {
	return n.ChildIndex(id) >= 0
}

// ChildIndex returns the position of id in the node's children, or -1.
func (n *Node) ChildIndex(id string) int {
	for i, c := range n.Children {
		if c == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Tags = cloneStrings(n.Tags)
	c.Children = cloneStrings(n.Children)
	return &c
}

// cloneStrings copies s, keeping a nil slice nil and an empty one empty.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
