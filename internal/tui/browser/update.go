package browser

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case eventMsg:
		m.refresh()
		return m, waitForEvent(m.events)

	case editorFinishedMsg:
		m.finishEdit(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.mode != inputNone:
			return m.updateInput(msg)
		case m.confirmingDelete:
			return m.updateConfirm(msg)
		case m.showResults:
			return m.updateResults(msg)
		}
		return m.updateTree(msg)
	}
	return m, nil
}

func (m Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""
	it := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.service.Unsubscribe(m.events)
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.GoToTop):
		m.cursor = 0
		m.clampCursor()
	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = len(m.rows) - 1
		m.clampCursor()

	case key.Matches(msg, m.keys.Open):
		if it == nil {
			break
		}
		if it.IsDir() {
			m.service.ToggleFolder(m.ctx, it.ID)
		} else if err := m.service.SetActiveNode(m.ctx, it.ID); err != nil {
			m.statusMessage = err.Error()
		}
		m.refresh()

	case key.Matches(msg, m.keys.Edit):
		if it == nil || it.IsDir() {
			break
		}
		return m, m.openInEditor(it.ID)

	case key.Matches(msg, m.keys.NewFile):
		return m.startInput(inputNewFile, "New file: ", "")
	case key.Matches(msg, m.keys.NewFolder):
		return m.startInput(inputNewFolder, "New folder: ", "")
	case key.Matches(msg, m.keys.Search):
		return m.startInput(inputSearch, "Search: ", "")
	case key.Matches(msg, m.keys.Rename):
		if it != nil {
			return m.startInput(inputRename, "Rename: ", it.Title)
		}
	case key.Matches(msg, m.keys.Tags):
		if it != nil && !it.IsDir() {
			return m.startInput(inputTags, "Tags: ", strings.Join(it.Tags, ", "))
		}

	case key.Matches(msg, m.keys.Delete):
		if it != nil {
			m.confirmingDelete = true
		}

	case key.Matches(msg, m.keys.Category):
		if it != nil && !it.IsDir() {
			if err := m.service.UpdateCategory(m.ctx, it.ID, nextCategory(it.Category)); err != nil {
				m.statusMessage = err.Error()
			}
			m.refresh()
		}

	case key.Matches(msg, m.keys.MoveUp):
		m.shift(it, -1)
	case key.Matches(msg, m.keys.MoveDown):
		m.shift(it, 1)
	}
	return m, nil
}

func (m Model) startInput(mode inputMode, prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		m.submit(mode, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(mode inputMode, value string) {
	it := m.selected()
	var err error

	switch mode {
	case inputNewFile, inputNewFolder:
		kind := models.KindFile
		if mode == inputNewFolder {
			kind = models.KindFolder
		}
		var id string
		if id, err = m.service.CreateNode(m.ctx, kind, m.targetFolder(), value); err == nil {
			m.refresh()
			m.selectID(id)
			return
		}
	case inputRename:
		if it != nil {
			err = m.service.RenameNode(m.ctx, it.ID, value)
		}
	case inputTags:
		if it != nil {
			err = m.service.UpdateTags(m.ctx, it.ID, strings.Split(value, ","))
		}
	case inputSearch:
		if value == "" {
			return
		}
		results, serr := m.service.Search(m.ctx, value)
		if serr != nil {
			err = serr
			break
		}
		if len(results) == 0 {
			m.statusMessage = fmt.Sprintf("No matches for %q", value)
			return
		}
		m.results = results
		m.resultCursor = 0
		m.showResults = true
		return
	}

	if err != nil {
		m.statusMessage = err.Error()
	}
	m.refresh()
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmingDelete = false
		if it := m.selected(); it != nil {
			if _, err := m.service.DeleteNode(m.ctx, it.ID); err != nil {
				m.statusMessage = err.Error()
			} else {
				m.statusMessage = fmt.Sprintf("Deleted %s", it.Title)
			}
		}
		m.refresh()
	case "n", "N", "esc", "q", "ctrl+c":
		m.confirmingDelete = false
	}
	return m, nil
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.showResults = false
	case key.Matches(msg, m.keys.Up):
		if m.resultCursor > 0 {
			m.resultCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
	case key.Matches(msg, m.keys.Open):
		r := m.results[m.resultCursor]
		m.showResults = false
		if err := m.service.SetActiveNode(m.ctx, r.NodeID); err != nil {
			m.statusMessage = err.Error()
			break
		}
		m.reveal(r.NodeID)
		m.refresh()
		m.selectID(r.NodeID)
	}
	return m, nil
}

// shift moves the selected node one place among its siblings.
func (m *Model) shift(it *tree.Item, delta int) {
	if it == nil || it.Parent == nil {
		return
	}
	idx := -1
	for i, sib := range it.Parent.Children {
		if sib.ID == it.ID {
			idx = i
			break
		}
	}
	to := idx + delta
	if idx < 0 || to < 0 || to >= len(it.Parent.Children) {
		return
	}
	if _, err := m.service.MoveNode(m.ctx, it.ID, it.Parent.ID, tree.AtIndex(to)); err != nil {
		m.statusMessage = err.Error()
	}
	m.refresh()
}

// reveal opens every closed folder above id.
func (m *Model) reveal(id string) {
	n, err := m.service.Node(id)
	for err == nil && n.ParentID != "" {
		if n, err = m.service.Node(n.ParentID); err != nil || n.ParentID == "" {
			return
		}
		if !n.IsOpen {
			m.service.ToggleFolder(m.ctx, n.ID)
		}
	}
}

func (m *Model) selectID(id string) {
	for i, it := range m.rows {
		if it.ID == id {
			m.cursor = i
			m.clampCursor()
			return
		}
	}
}

func (m *Model) finishEdit(msg editorFinishedMsg) {
	if msg.path != "" {
		defer os.Remove(msg.path)
	}
	if msg.err != nil {
		m.statusMessage = fmt.Sprintf("Editor: %v", msg.err)
		return
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		m.statusMessage = err.Error()
		return
	}
	// Time in the editor counts as writing time even when nothing changed.
	m.service.RecordActivity(m.ctx, int(msg.elapsed.Round(time.Minute)/time.Minute))

	n, err := m.service.Node(msg.nodeID)
	if err != nil {
		m.statusMessage = err.Error()
		return
	}
	if string(data) == n.Content {
		m.statusMessage = "No changes"
		return
	}
	if err := m.service.UpdateContent(m.ctx, msg.nodeID, string(data)); err != nil {
		m.statusMessage = err.Error()
		return
	}
	m.statusMessage = fmt.Sprintf("Saved %s", n.Title)
	m.refresh()
}

func nextCategory(c models.Category) models.Category {
	for i, known := range models.Categories {
		if known == c {
			return models.Categories[(i+1)%len(models.Categories)]
		}
	}
	return models.Categories[0]
}
