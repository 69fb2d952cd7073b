// Package browser is the interactive tree browser behind `gw tui`.
package browser

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-writer/pkg/search"
	"github.com/mattsolo1/grove-writer/pkg/service"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputNewFile
	inputNewFolder
	inputRename
	inputTags
	inputSearch
)

// Model is the main model for the browser TUI.
type Model struct {
	ctx     context.Context
	service *service.Service
	events  <-chan service.Event

	book     string
	root     *tree.Item
	rows     []*tree.Item
	cursor   int
	activeID string

	scrollOffset int
	width        int
	height       int

	keys  KeyMap
	help  help.Model
	input textinput.Model
	mode  inputMode

	confirmingDelete bool
	showResults      bool
	results          []*search.Result
	resultCursor     int

	statusMessage string
}

// New creates a browser over the active book of s. The model subscribes to
// service events so that changes made elsewhere (autosave, reloads) show up.
func New(ctx context.Context, s *service.Service) Model {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 50

	m := Model{
		ctx:     ctx,
		service: s,
		events:  s.Subscribe(),
		keys:    keys,
		help:    help.New(),
		input:   ti,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// eventMsg carries a service event into the update loop.
type eventMsg service.Event

func waitForEvent(ch <-chan service.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// editorFinishedMsg is sent when the editor closes
type editorFinishedMsg struct {
	nodeID  string
	path    string
	elapsed time.Duration
	err     error
}

// refresh rebuilds the visible rows, keeping the cursor on the same node
// when it still exists.
func (m *Model) refresh() {
	var selectedID string
	if it := m.selected(); it != nil {
		selectedID = it.ID
	}

	root, err := m.service.Tree("")
	if err != nil {
		m.root, m.rows = nil, nil
		m.statusMessage = err.Error()
		return
	}
	m.root = root
	m.rows = flatten(root)
	m.book = m.service.ActiveWorkspace().Title
	m.activeID = m.service.Session().ActiveNodeID

	for i, it := range m.rows {
		if it.ID == selectedID {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

// flatten lists the children of root in display order, descending only
// into open folders.
func flatten(root *tree.Item) []*tree.Item {
	var rows []*tree.Item
	var walk func(it *tree.Item)
	walk = func(it *tree.Item) {
		for _, child := range it.Children {
			rows = append(rows, child)
			if child.IsDir() && child.IsOpen {
				walk(child)
			}
		}
	}
	if root != nil {
		walk(root)
	}
	return rows
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.viewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if h > 0 && m.cursor >= m.scrollOffset+h {
		m.scrollOffset = m.cursor - h + 1
	}
}

func (m Model) selected() *tree.Item {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// targetFolder is where new nodes go: the selected folder, the parent of
// the selected file, or the book root.
func (m Model) targetFolder() string {
	it := m.selected()
	switch {
	case it == nil:
		return ""
	case it.IsDir():
		return it.ID
	case it.Parent != nil:
		return it.Parent.ID
	}
	return ""
}

// viewportHeight is the number of tree rows that fit on screen, or 0 when
// the size is not known yet.
func (m Model) viewportHeight() int {
	if m.height == 0 {
		return 0
	}
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	return h
}

// openInEditor writes the file content to a temporary file and opens it in
// the configured editor. The result is read back in editorFinishedMsg.
func (m Model) openInEditor(id string) tea.Cmd {
	n, err := m.service.Node(id)
	if err != nil {
		return func() tea.Msg { return editorFinishedMsg{nodeID: id, err: err} }
	}
	f, err := os.CreateTemp("", "gw-*.md")
	if err != nil {
		return func() tea.Msg { return editorFinishedMsg{nodeID: id, err: err} }
	}
	path := f.Name()
	_, err = f.WriteString(n.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return func() tea.Msg { return editorFinishedMsg{nodeID: id, err: err} }
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim" // fallback
	}
	cmd := exec.Command(editor, path)
	started := time.Now()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{nodeID: id, path: path, elapsed: time.Since(started), err: err}
	})
}
