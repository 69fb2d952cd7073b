package service

import (
	"context"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-writer/pkg/binding"
)

// Bind associates a file node with an external capability. The binding
// starts out pending; the first manual write requests permission.
func (s *Service) Bind(id string, c binding.Capability) error {
	return s.bridge.Bind(id, c)
}

// BindFile binds id to path on fs.
func (s *Service) BindFile(id string, fs afero.Fs, path string, prompter binding.Prompter) (*binding.FileCapability, error) {
	c := binding.NewFileCapability(fs, path, prompter)
	if err := s.bridge.Bind(id, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Unbind removes the binding of id.
func (s *Service) Unbind(id string) {
	s.bridge.Unbind(id)
}

// BindingOf returns the binding of id, None when unbound.
func (s *Service) BindingOf(id string) binding.Binding {
	return s.bridge.BindingOf(id)
}

// Bound returns the ids of every bound node.
func (s *Service) Bound() []string {
	return s.bridge.Bound()
}

// WriteExternal saves a file node to its bound external file. Manual writes
// may prompt; auto writes never do. The service lock is not held while the
// user is being asked.
func (s *Service) WriteExternal(ctx context.Context, id string, kind binding.WriteKind) error {
	return s.bridge.Write(ctx, id, kind)
}

// StartAutosave starts the periodic auto write of the active file.
func (s *Service) StartAutosave(ctx context.Context) {
	s.autoWriter.Start(ctx)
}

// StopAutosave stops the auto write timer. Safe to call when stopped.
func (s *Service) StopAutosave() {
	s.autoWriter.Stop()
}

// AutosaveRunning reports whether the auto write timer is active.
func (s *Service) AutosaveRunning() bool {
	return s.autoWriter.Running()
}

// AutosaveNow performs one auto write of the active file.
func (s *Service) AutosaveNow(ctx context.Context) {
	s.autoWriter.Tick(ctx)
}
