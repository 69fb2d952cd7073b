package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCategoryValidation(t *testing.T) {
	tests := []struct {
		category Category
		isValid  bool
	}{
		{"idea", true},
		{"planning", true},
		{"character", true},
		{"chapter", true},
		{"other", true},
		{Category("villain"), false},
		{Category(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if tt.category.Valid() != tt.isValid {
				t.Errorf("Expected isValid %v for category %q", tt.isValid, tt.category)
			}
		})
	}
}

func TestNodeKinds(t *testing.T) {
	folder := &Node{ID: "f", Kind: KindFolder, Children: []string{"a", "b"}}
	file := &Node{ID: "a", ParentID: "f", Kind: KindFile}

	if !folder.IsFolder() || folder.IsFile() {
		t.Error("Expected folder to report IsFolder only")
	}
	if !file.IsFile() || file.IsFolder() {
		t.Error("Expected file to report IsFile only")
	}
	if !folder.IsRoot() {
		t.Error("Expected node without parent to be a root")
	}
	if file.IsRoot() {
		t.Error("Expected node with parent not to be a root")
	}

	var missing *Node
	if missing.IsFolder() || missing.IsFile() {
		t.Error("Expected nil node to be neither folder nor file")
	}
}

func TestChildIndex(t *testing.T) {
	folder := &Node{Kind: KindFolder, Children: []string{"a", "b", "c"}}

	if got := folder.ChildIndex("b"); got != 1 {
		t.Errorf("Expected index 1, got %d", got)
	}
	if got := folder.ChildIndex("z"); got != -1 {
		t.Errorf("Expected index -1, got %d", got)
	}
	if !folder.HasChild("c") {
		t.Error("Expected HasChild(c) to be true")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Node{
		ID:           "n",
		Kind:         KindFolder,
		Tags:         []string{"x"},
		Children:     []string{"a"},
		LastModified: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}

	c := orig.Clone()
	c.Tags[0] = "y"
	c.Children = append(c.Children, "b")

	if orig.Tags[0] != "x" {
		t.Errorf("Expected original tags untouched, got %v", orig.Tags)
	}
	if len(orig.Children) != 1 {
		t.Errorf("Expected original children untouched, got %v", orig.Children)
	}
	if (*Node)(nil).Clone() != nil {
		t.Error("Expected Clone of nil to be nil")
	}
}

func TestCloneKeepsEmptySlices(t *testing.T) {
	folder := &Node{ID: "f", Kind: KindFolder, Tags: []string{}, Children: []string{}}

	c := folder.Clone()
	if c.Children == nil || c.Tags == nil {
		t.Fatalf("Expected empty slices to stay non-nil, got tags=%v children=%v", c.Tags, c.Children)
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"children":[]`) || !strings.Contains(string(data), `"tags":[]`) {
		t.Errorf("Expected empty arrays in JSON, got %s", data)
	}

	file := &Node{ID: "x", Kind: KindFile}
	if fc := file.Clone(); fc.Children != nil || fc.Tags != nil {
		t.Errorf("Expected nil slices to stay nil, got tags=%v children=%v", fc.Tags, fc.Children)
	}
}

func TestDefaultSession(t *testing.T) {
	s := DefaultSession()
	if s.ViewMode != ViewEditor {
		t.Errorf("Expected editor view mode, got %s", s.ViewMode)
	}
	if !s.SidebarVisible {
		t.Error("Expected sidebar to be visible by default")
	}
	if s.ActiveNodeID != "" || s.ActiveWorkspaceID != "" {
		t.Error("Expected no active workspace or node by default")
	}
	if ViewMode("grid").Valid() {
		t.Error("Expected unknown view mode to be invalid")
	}
}

func TestNodeErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &NodeError{Op: "move", ID: "n1", Err: ErrCycleDetected})

	if !errors.Is(err, ErrCycleDetected) {
		t.Error("Expected errors.Is to find ErrCycleDetected")
	}
	if !IsStructural(err) {
		t.Error("Expected cycle error to be structural")
	}
	if IsStructural(ErrPermissionDenied) {
		t.Error("Expected permission error not to be structural")
	}
	if got := (&NodeError{Op: "rename", ID: "x", Err: ErrNotFound}).Error(); got != "rename x: not found" {
		t.Errorf("Unexpected error text %q", got)
	}
}
