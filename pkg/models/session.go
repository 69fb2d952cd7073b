package models

// ViewMode is the editor layout shown by the presentation layer.
type ViewMode string

const (
	ViewEditor  ViewMode = "editor"
	ViewPreview ViewMode = "preview"
	ViewSplit   ViewMode = "split"
)

// Session is the application session state persisted alongside the tree.
type Session struct {
	ActiveWorkspaceID string   `json:"activeBookId,omitempty"`
	ActiveNodeID      string   `json:"activeFileId,omitempty"` // a file, or empty
	ViewMode          ViewMode `json:"viewMode,omitempty"`
	DarkMode          bool     `json:"darkMode"`
	FocusMode         bool     `json:"focusMode"`
	SidebarVisible    bool     `json:"sidebarVisible"`
}

// DefaultSession returns the session used when nothing was persisted.
func DefaultSession() Session {
	return Session{
		ViewMode:       ViewEditor,
		SidebarVisible: true,
	}
}

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	switch m {
	case ViewEditor, ViewPreview, ViewSplit:
		return true
	}
	return false
}
