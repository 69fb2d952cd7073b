package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   *Frontmatter
		wantBody string
		wantErr  bool
	}{
		{
			name:    "header and body",
			content: "---\ntitle: Chapter One\ncategory: chapter\ntags: [draft, act-1]\nmodified: 2023-01-02T11:00:00Z\n---\n\n# Chapter One\n\nIt was a dark night.",
			wantFM: &Frontmatter{
				Title:    "Chapter One",
				Category: "chapter",
				Tags:     []string{"draft", "act-1"},
				Modified: time.Date(2023, 1, 2, 11, 0, 0, 0, time.UTC),
			},
			wantBody: "# Chapter One\n\nIt was a dark night.",
		},
		{
			name:     "windows line endings",
			content:  "---\r\ntitle: Notes\r\n---\r\n\r\nbody",
			wantFM:   &Frontmatter{Title: "Notes", Tags: []string{}},
			wantBody: "body",
		},
		{
			name:     "header only",
			content:  "---\ntitle: Empty\n---",
			wantFM:   &Frontmatter{Title: "Empty", Tags: []string{}},
			wantBody: "",
		},
		{
			name:     "no header",
			content:  "# Just a title\n\nSome content.",
			wantBody: "# Just a title\n\nSome content.",
		},
		{
			name:     "unterminated header",
			content:  "---\ntitle: Open\n\nno closing line",
			wantBody: "---\ntitle: Open\n\nno closing line",
		},
		{
			name:     "invalid yaml",
			content:  "---\ntitle: [unclosed\n---\nbody",
			wantBody: "---\ntitle: [unclosed\n---\nbody",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := Parse(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantFM, fm)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestFromNode(t *testing.T) {
	n := &models.Node{
		Title:        "Harbor",
		Kind:         models.KindFile,
		Category:     models.CategoryChapter,
		Tags:         []string{"sea"},
		LastModified: time.Date(2024, 5, 1, 11, 30, 15, 999, time.FixedZone("CEST", 2*3600)),
	}

	fm := FromNode(n)
	assert.Equal(t, "Harbor", fm.Title)
	assert.Equal(t, "chapter", fm.Category)
	assert.Equal(t, []string{"sea"}, fm.Tags)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC), fm.Modified)

	fm.Tags[0] = "changed"
	assert.Equal(t, "sea", n.Tags[0])

	n.LastModified = time.Time{}
	assert.True(t, FromNode(n).Modified.IsZero())
}

func TestRender(t *testing.T) {
	data, err := Render(&Frontmatter{Title: "Plain"}, "Body text\n")
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Plain\ntags: []\n---\n\nBody text\n", string(data))
}

func TestRenderThenParse(t *testing.T) {
	original := &Frontmatter{
		Title:    "Act: One # draft",
		Category: "planning",
		Tags:     []string{"a, b", "c"},
		Modified: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	body := "\nStarts with a blank line.\n"

	data, err := Render(original, body)
	require.NoError(t, err)

	parsed, parsedBody, err := Parse(string(data))
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
	assert.Equal(t, body, parsedBody)
}

func TestNodeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want models.Category
		ok   bool
	}{
		{"chapter", models.CategoryChapter, true},
		{" Character ", models.CategoryCharacter, true},
		{"poem", "poem", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := (&Frontmatter{Category: tt.in}).NodeCategory()
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
