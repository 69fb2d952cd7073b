package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

// ProviderFactory is a function that creates a Provider instance.
type ProviderFactory func(cfg Config) (Provider, error)

// Target is the narrow set of tree operations suggestions may use.
type Target interface {
	UpdateContent(ctx context.Context, id, text string) error
	BulkReorganize(ctx context.Context, moves []tree.FolderMove, underParent string) (*tree.ReorganizeReport, error)
}

// Assistant looks up providers by name and applies their suggestions.
type Assistant struct {
	target            Target
	providerFactories map[string]ProviderFactory
}

// New creates an Assistant applying suggestions to target. The static
// provider is registered, reading files from fs.
func New(target Target, fs afero.Fs) *Assistant {
	a := &Assistant{
		target:            target,
		providerFactories: make(map[string]ProviderFactory),
	}
	a.RegisterProvider(StaticProviderName, func(cfg Config) (Provider, error) {
		if cfg.File == "" {
			return nil, fmt.Errorf("static provider needs a suggestions file")
		}
		return LoadStaticProvider(fs, cfg.File)
	})
	return a
}

// RegisterProvider registers a provider factory for a given provider name.
func (a *Assistant) RegisterProvider(name string, factory ProviderFactory) {
	a.providerFactories[name] = factory
}

// Providers lists the registered provider names.
func (a *Assistant) Providers() []string {
	names := make([]string, 0, len(a.providerFactories))
	for name := range a.providerFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provider builds the provider cfg names.
func (a *Assistant) Provider(cfg Config) (Provider, error) {
	factory, ok := a.providerFactories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported or unregistered provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// ApplyProofread replaces the content of each suggestion's file with the
// corrected text. Suggestions for files that no longer exist are skipped.
func (a *Assistant) ApplyProofread(ctx context.Context, provider string, suggestions ...*Proofread) *Report {
	report := &Report{Provider: provider}
	for _, s := range suggestions {
		if s == nil {
			continue
		}
		err := a.target.UpdateContent(ctx, s.NodeID, s.Corrected)
		switch {
		case err == nil:
			report.Applied++
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNotAFile):
			report.Skipped++
		default:
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", s.NodeID, err))
		}
	}
	return report
}

// ApplyOrganize creates the suggested folders under parentID and moves the
// files in. Stale file ids are skipped, the rest of the batch applies.
func (a *Assistant) ApplyOrganize(ctx context.Context, provider string, suggestion *Organize, parentID string) (*Report, error) {
	report := &Report{Provider: provider}
	if suggestion == nil || len(suggestion.Folders) == 0 {
		return report, nil
	}

	result, err := a.target.BulkReorganize(ctx, suggestion.Folders, parentID)
	if err != nil {
		return nil, err
	}
	report.Applied = len(result.Moved)
	report.Skipped = len(result.Skipped)
	return report, nil
}
