// Package frontmatter reads and writes the YAML header of markdown files that
// are bound to, or imported into, file nodes.
package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

var headerPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|$)(.*)`)

// Frontmatter is the header of a markdown file. Field order is the order
// written to disk.
type Frontmatter struct {
	Title    string    `yaml:"title"`
	Category string    `yaml:"category,omitempty"`
	Tags     []string  `yaml:"tags,flow"`
	Modified time.Time `yaml:"modified,omitempty"`
}

// FromNode describes a file node.
func FromNode(n *models.Node) *Frontmatter {
	fm := &Frontmatter{
		Title:    n.Title,
		Category: string(n.Category),
		Tags:     append([]string{}, n.Tags...),
	}
	if !n.LastModified.IsZero() {
		fm.Modified = n.LastModified.UTC().Truncate(time.Second)
	}
	return fm
}

// NodeCategory returns the header's category when it names a known one.
func (fm *Frontmatter) NodeCategory() (models.Category, bool) {
	c := models.Category(strings.ToLower(strings.TrimSpace(fm.Category)))
	return c, c.Valid()
}

// Parse splits content into its header and body. Content without a header
// returns a nil Frontmatter and the content unchanged. The blank line that
// Render puts after the header is not part of the body.
func Parse(content string) (*Frontmatter, string, error) {
	m := headerPattern.FindStringSubmatch(content)
	if m == nil {
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	body := strings.TrimPrefix(m[2], "\r")
	body = strings.TrimPrefix(body, "\n")
	return &fm, body, nil
}

// Render writes the header followed by a blank line and body.
func Render(fm *Frontmatter, body string) ([]byte, error) {
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("render frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}
