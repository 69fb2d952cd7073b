package assistant

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// StaticProviderName is the registered name of StaticProvider.
const StaticProviderName = "static"

// suggestionFile is the YAML layout read by StaticProvider:
//
//	proofread:
//	  - node: <file id>
//	    corrected: <text>
//	    changes: [<summary>, ...]
//	folders:
//	  - folder: Characters
//	    files: [<file id>, ...]
type suggestionFile struct {
	Proofread []Proofread `yaml:"proofread"`
	Organize  `yaml:",inline"`
}

// StaticProvider serves suggestions prepared ahead of time in a YAML file,
// for example by an external tool or a person reviewing a draft.
type StaticProvider struct {
	proofread map[string]*Proofread
	organize  *Organize
}

// LoadStaticProvider reads suggestions from path on fs.
func LoadStaticProvider(fs afero.Fs, path string) (*StaticProvider, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read suggestions: %w", err)
	}

	var f suggestionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse suggestions %s: %w", path, err)
	}

	p := &StaticProvider{
		proofread: make(map[string]*Proofread),
		organize:  &Organize{Folders: f.Folders},
	}
	for i := range f.Proofread {
		s := f.Proofread[i]
		p.proofread[s.NodeID] = &s
	}
	return p, nil
}

func (p *StaticProvider) Name() string { return StaticProviderName }

// Proofread returns the prepared suggestion for node, or nil when there is
// none.
func (p *StaticProvider) Proofread(_ context.Context, node *models.Node) (*Proofread, error) {
	s, ok := p.proofread[node.ID]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

// Organize returns the prepared folders regardless of files.
func (p *StaticProvider) Organize(_ context.Context, _ []*models.Node) (*Organize, error) {
	return p.organize, nil
}
