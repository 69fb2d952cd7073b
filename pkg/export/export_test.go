package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

func sampleStore(t *testing.T) (*tree.Store, string) {
	t.Helper()
	m := tree.NewMutator(tree.NewStore())
	root, _ := m.CreateRoot("Demo")
	drafts, _ := m.CreateNode(models.KindFolder, root, "Drafts")
	ch1, _ := m.CreateNode(models.KindFile, drafts, "Ch1")
	ch2, _ := m.CreateNode(models.KindFile, drafts, "Ch2")
	notes, _ := m.CreateNode(models.KindFile, root, "Notes")
	_ = m.UpdateContent(ch1, "Hello world")
	_ = m.UpdateContent(ch2, "Second chapter here")
	_ = m.UpdateContent(notes, "misc")
	return m.Store(), root
}

func TestBuildPreOrder(t *testing.T) {
	s, root := sampleStore(t)

	doc := Build(s, root)
	if doc == nil {
		t.Fatal("Build returned nil")
	}

	want := []struct {
		title string
		depth int
	}{
		{"Demo", 0}, {"Drafts", 1}, {"Ch1", 2}, {"Ch2", 2}, {"Notes", 1},
	}
	if len(doc.Sections) != len(want) {
		t.Fatalf("Expected %d sections, got %d", len(want), len(doc.Sections))
	}
	for i, w := range want {
		if doc.Sections[i].Title != w.title || doc.Sections[i].Depth != w.depth {
			t.Errorf("Section %d = %s@%d, want %s@%d", i, doc.Sections[i].Title, doc.Sections[i].Depth, w.title, w.depth)
		}
	}
	if !doc.Sections[1].IsFolder || doc.Sections[2].IsFolder {
		t.Error("Folder flags are wrong")
	}
	if got := doc.WordCount(); got != 6 {
		t.Errorf("WordCount() = %d, want 6", got)
	}
	if Build(s, "missing") != nil {
		t.Error("Build(missing) should be nil")
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"txt", "txt", false},
		{"text", "txt", false},
		{"md", "md", false},
		{"markdown", "md", false},
		{"json", "json", false},
		{"YAML", "yaml", false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil && exp.Extension() != tt.wantExt {
				t.Errorf("Extension() = %s, want %s", exp.Extension(), tt.wantExt)
			}
		})
	}
}

func TestMarkdownExport(t *testing.T) {
	s, root := sampleStore(t)
	var buf bytes.Buffer

	if err := (&MarkdownExporter{}).Export(Build(s, root), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	want := "# Demo\n\n## Drafts\n\n### Ch1\n\nHello world\n\n### Ch2\n\nSecond chapter here\n\n## Notes\n\nmisc\n"
	if buf.String() != want {
		t.Errorf("Markdown export mismatch\ngot:  %q\nwant: %q", buf.String(), want)
	}
}

func TestTextExportSingleFile(t *testing.T) {
	s, root := sampleStore(t)
	root1, _ := s.Get(root)
	drafts, _ := s.Get(root1.Children[0])

	var buf bytes.Buffer
	if err := (&TextExporter{}).Export(Build(s, drafts.Children[0]), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if want := "Ch1\n===\n\nHello world\n"; buf.String() != want {
		t.Errorf("Text export = %q, want %q", buf.String(), want)
	}
}

func TestStructuredExports(t *testing.T) {
	s, root := sampleStore(t)
	doc := Build(s, root)

	var jsonBuf bytes.Buffer
	if err := (&JSONExporter{}).Export(doc, &jsonBuf); err != nil {
		t.Fatalf("JSON export failed: %v", err)
	}
	var fromJSON Document
	if err := json.Unmarshal(jsonBuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("JSON output does not parse: %v", err)
	}
	if len(fromJSON.Sections) != 5 || fromJSON.Sections[4].Content != "misc" {
		t.Errorf("Unexpected JSON sections: %+v", fromJSON.Sections)
	}

	var yamlBuf bytes.Buffer
	if err := (&YAMLExporter{}).Export(doc, &yamlBuf); err != nil {
		t.Fatalf("YAML export failed: %v", err)
	}
	if !strings.Contains(yamlBuf.String(), "title: Demo") {
		t.Errorf("YAML output missing title:\n%s", yamlBuf.String())
	}
	var fromYAML Document
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("YAML output does not parse: %v", err)
	}
	if fromYAML.Sections[2].Title != "Ch1" || fromYAML.Sections[2].Depth != 2 {
		t.Errorf("Unexpected YAML section: %+v", fromYAML.Sections[2])
	}
}
