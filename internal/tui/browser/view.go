package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	folderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	categoryStyle = map[models.Category]lipgloss.Style{
		models.CategoryIdea:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.CategoryPlanning:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		models.CategoryCharacter: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		models.CategoryChapter:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		models.CategoryOther:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

func (m Model) View() string {
	if m.help.ShowAll {
		return "\n" + m.help.View(m.keys)
	}

	var body string
	if m.showResults {
		body = m.renderResults()
	} else {
		body = m.renderTree()
	}

	header := headerStyle.Render(m.book)
	if m.root != nil {
		header += faintStyle.Render(fmt.Sprintf("  %d words", m.root.WordCount))
	}

	var footer string
	switch {
	case m.mode != inputNone:
		footer = m.input.View()
	case m.confirmingDelete:
		if it := m.selected(); it != nil {
			footer = warningStyle.Render(fmt.Sprintf("Delete %q and everything in it? (y/n)", it.Title))
		}
	case m.statusMessage != "":
		footer = m.statusMessage
	default:
		footer = m.help.View(m.keys)
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer)
}

func (m Model) renderTree() string {
	if len(m.rows) == 0 {
		return faintStyle.Render("Empty book. Press n to create a file.")
	}

	start, end := m.scrollOffset, len(m.rows)
	if h := m.viewportHeight(); h > 0 && start+h < end {
		end = start + h
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderRow(it *tree.Item) string {
	indent := strings.Repeat("  ", it.Depth-1)
	if it.IsDir() {
		marker := "▸"
		if it.IsOpen {
			marker = "▾"
		}
		return fmt.Sprintf("%s%s %s %s", indent, marker, folderStyle.Render(it.Title),
			faintStyle.Render(fmt.Sprintf("(%d)", it.WordCount)))
	}

	title := it.Title
	if it.ID == m.activeID {
		title = activeStyle.Render("● " + title)
	} else {
		title = "  " + title
	}
	style, ok := categoryStyle[it.Category]
	if !ok {
		style = faintStyle
	}
	line := fmt.Sprintf("%s%s %s %s", indent, title, style.Render(string(it.Category)),
		faintStyle.Render(fmt.Sprintf("%dw", it.WordCount)))
	if len(it.Tags) > 0 {
		line += faintStyle.Render(" #" + strings.Join(it.Tags, " #"))
	}
	return line
}

func (m Model) renderResults() string {
	var b strings.Builder
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d results (esc to go back)", len(m.results))))
	for i, r := range m.results {
		line := fmt.Sprintf("%s  %s", r.Title, faintStyle.Render(r.Snippet))
		if i == m.resultCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}
