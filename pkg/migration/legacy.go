package migration

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/storage"
	"github.com/mattsolo1/grove-writer/pkg/workspace"
)

// legacyNode is a node as stored before snapshots were versioned, when the
// whole state was a single book with a flat map of files.
type legacyNode struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Type         string          `json:"type"`
	ParentID     string          `json:"parentId"`
	Children     []string        `json:"children"`
	Content      string          `json:"content"`
	Category     string          `json:"category"`
	Tags         []string        `json:"tags"`
	IsOpen       bool            `json:"isOpen"`
	LastModified json.RawMessage `json:"lastModified"`
}

type legacyState struct {
	RootID       string                 `json:"rootId"`
	BookTitle    string                 `json:"bookTitle"`
	Files        map[string]*legacyNode `json:"files"`
	ActiveFileID string                 `json:"activeFileId"`
	ViewMode     string                 `json:"viewMode"`
	DarkMode     bool                   `json:"darkMode"`
	FocusMode    bool                   `json:"focusMode"`
}

// parseLegacyTime accepts RFC 3339 strings and millisecond epochs.
func parseLegacyTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// upgradeLegacy converts a version 0 state into a current snapshot holding
// one workspace.
func upgradeLegacy(data []byte, now time.Time, report *MigrationReport) (*storage.Snapshot, error) {
	var st legacyState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode legacy state: %w", err)
	}
	if st.RootID == "" || st.Files == nil {
		return nil, fmt.Errorf("legacy state has no root")
	}

	ids := make([]string, 0, len(st.Files))
	for id := range st.Files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snap := &storage.Snapshot{Version: storage.CurrentVersion}
	for _, key := range ids {
		ln := st.Files[key]
		if ln == nil {
			continue
		}
		id := ln.ID
		if id == "" {
			id = key
		}
		title := ln.Title
		if title == "" {
			title = ln.Name
		}
		snap.Nodes = append(snap.Nodes, &models.Node{
			ID:           id,
			ParentID:     ln.ParentID,
			Title:        title,
			Kind:         models.NodeKind(strings.ToLower(ln.Type)),
			Category:     models.Category(strings.ToLower(ln.Category)),
			Tags:         ln.Tags,
			Content:      ln.Content,
			Children:     ln.Children,
			IsOpen:       ln.IsOpen,
			LastModified: parseLegacyTime(ln.LastModified),
		})
	}

	title := strings.TrimSpace(st.BookTitle)
	if title == "" {
		if root, ok := st.Files[st.RootID]; ok && root != nil {
			title = strings.TrimSpace(root.Name + root.Title)
		}
	}
	if title == "" {
		title = "Untitled Book"
	}

	ws := &workspace.Workspace{
		ID:         uuid.NewString(),
		Title:      title,
		RootNodeID: st.RootID,
		Status:     workspace.StatusDrafting,
		CreatedAt:  now,
		LastUsed:   now,
	}
	snap.Workspaces = []*workspace.Workspace{ws}

	snap.Session = models.DefaultSession()
	snap.Session.ActiveWorkspaceID = ws.ID
	snap.Session.ActiveNodeID = st.ActiveFileID
	if vm := models.ViewMode(st.ViewMode); vm.Valid() {
		snap.Session.ViewMode = vm
	}
	snap.Session.DarkMode = st.DarkMode
	snap.Session.FocusMode = st.FocusMode

	report.AddIssue(IssueLegacyVersion, "", "upgraded single-book state %q to version %d", title, storage.CurrentVersion)
	return snap, nil
}
