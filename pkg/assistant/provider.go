// Package assistant is the boundary to writing assistants. Providers only
// return suggestions; accepted suggestions are applied through the ordinary
// tree operations, never by the provider itself.
package assistant

import (
	"context"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

// Provider defines the interface for a source of writing suggestions.
type Provider interface {
	// Name returns the provider's name (e.g., "static").
	Name() string
	// Proofread suggests a corrected version of a file's content.
	Proofread(ctx context.Context, node *models.Node) (*Proofread, error)
	// Organize suggests folders for a set of files.
	Organize(ctx context.Context, files []*models.Node) (*Organize, error)
}

// Proofread is a suggested replacement for a file's content.
type Proofread struct {
	NodeID    string   `yaml:"node" json:"nodeId"`
	Corrected string   `yaml:"corrected" json:"corrected"`
	Changes   []string `yaml:"changes" json:"changes"`
}

// Organize is a suggested grouping of files into new folders.
type Organize struct {
	Folders []tree.FolderMove `yaml:"folders" json:"folders"`
}

// Report summarizes the application of suggestions.
type Report struct {
	Provider string
	Applied  int
	Skipped  int
	Errors   []string // Detailed error messages
}
