package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names.
var Formats = []string{"txt", "md", "json", "yaml"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "txt", "text":
		return &TextExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// TextExporter writes titles and content as plain text.
type TextExporter struct{}

func (e *TextExporter) Export(doc *Document, w io.Writer) error {
	for i, s := range doc.Sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", s.Title, strings.Repeat("=", len([]rune(s.Title)))); err != nil {
			return err
		}
		if s.Content != "" {
			if _, err := fmt.Fprintf(w, "\n%s\n", strings.TrimRight(s.Content, "\n")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *TextExporter) Extension() string {
	return "txt"
}

// MarkdownExporter maps depth to heading level.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	for i, s := range doc.Sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		level := s.Depth + 1
		if level > 6 {
			level = 6
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", strings.Repeat("#", level), s.Title); err != nil {
			return err
		}
		if s.Content != "" {
			if _, err := fmt.Fprintf(w, "\n%s\n", strings.TrimRight(s.Content, "\n")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

// JSONExporter writes the document as indented JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (e *JSONExporter) Extension() string {
	return "json"
}

// YAMLExporter writes the document as YAML.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(doc)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
