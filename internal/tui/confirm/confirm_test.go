package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name      string
		msg       tea.Msg
		answered  bool
		confirmed bool
	}{
		{"yes", runes("y"), true, true},
		{"upper yes", runes("Y"), true, true},
		{"no", runes("n"), true, false},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, true, false},
		{"other key", runes("x"), false, false},
		{"not a key", tea.WindowSizeMsg{Width: 80}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, cmd := New("Delete?").Update(tt.msg)
			m := model.(Model)
			assert.Equal(t, tt.answered, m.Answered)
			assert.Equal(t, tt.confirmed, m.Confirmed)
			if tt.answered {
				assert.NotNil(t, cmd)
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestViewHiddenOnceAnswered(t *testing.T) {
	m := New("Delete book \"Demo\"?")
	assert.Contains(t, m.View(), "Delete book")

	model, _ := m.Update(runes("n"))
	assert.Empty(t, model.View())
}
