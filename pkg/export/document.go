// Package export turns a subtree into an ordered list of titled sections and
// renders it in one of several formats.
package export

import (
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

// Section is one node of the exported subtree.
type Section struct {
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content,omitempty" yaml:"content,omitempty"`
	Depth    int    `json:"depth" yaml:"depth"`
	IsFolder bool   `json:"isFolder,omitempty" yaml:"is_folder,omitempty"`
}

// Document is an export of a single node or a whole subtree. Sections are in
// pre-order with children in their stored order, starting with the node
// itself at depth 0.
type Document struct {
	Title    string    `json:"title" yaml:"title"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Build collects the subtree rooted at id. It returns nil when id is unknown.
func Build(s *tree.Store, id string) *Document {
	n, ok := s.Get(id)
	if !ok {
		return nil
	}

	doc := &Document{Title: n.Title, Sections: []Section{}}
	_ = tree.PreOrder(s, id, func(n *models.Node, depth int) error {
		doc.Sections = append(doc.Sections, Section{
			Title:    n.Title,
			Content:  n.Content,
			Depth:    depth,
			IsFolder: n.IsFolder(),
		})
		return nil
	})
	return doc
}

// WordCount sums the words of every file section.
func (d *Document) WordCount() int {
	total := 0
	for _, s := range d.Sections {
		if !s.IsFolder {
			total += tree.CountWords(s.Content)
		}
	}
	return total
}
