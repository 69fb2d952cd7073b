package workspace

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle stage of a workspace (a book).
type Status string

const (
	StatusDrafting  Status = "Drafting"
	StatusEditing   Status = "Editing"
	StatusCompleted Status = "Completed"
	StatusPlanning  Status = "Planning"
)

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusDrafting, StatusEditing, StatusCompleted, StatusPlanning} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (expected Drafting, Editing, Completed or Planning)", s)
}

const defaultTitle = "Untitled Book"

// Workspace is a named project anchored at one root folder node.
type Workspace struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	RootNodeID string    `json:"rootFolderId" yaml:"root"`
	Status     Status    `json:"status" yaml:"status"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
	LastUsed   time.Time `json:"lastUsed" yaml:"last_used"`
}

// Validate checks if the workspace record is valid
func (w *Workspace) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("workspace id cannot be empty")
	}
	if strings.TrimSpace(w.Title) == "" {
		return fmt.Errorf("workspace title cannot be empty")
	}
	if w.RootNodeID == "" {
		return fmt.Errorf("workspace %s has no root node", w.ID)
	}
	if _, err := ParseStatus(string(w.Status)); err != nil {
		return err
	}
	return nil
}
