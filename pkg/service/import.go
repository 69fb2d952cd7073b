package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-writer/pkg/binding"
	"github.com/mattsolo1/grove-writer/pkg/frontmatter"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

// ImportReport lists what ImportDirectory did.
type ImportReport struct {
	Folders []string // created folder ids
	Files   []string // created file ids
	Skipped []string // paths that were not imported
	Errors  []error
}

func isImportable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

type importedFile struct {
	id   string
	path string
}

// ImportDirectory copies the directory tree at dir into the forest under
// parentID (the active book's root when empty). Sub-directories become
// folders and markdown or text files become files, in name order. Markdown
// frontmatter supplies the title, tags and category. Every imported file is
// bound to its source through a not yet granted capability.
func (s *Service) ImportDirectory(ctx context.Context, fs afero.Fs, dir, parentID string, prompter binding.Prompter) (*ImportReport, error) {
	info, err := fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import %s: not a directory", dir)
	}

	report := &ImportReport{}
	var files []importedFile

	s.mu.Lock()
	parentID = s.resolveParentLocked(parentID)
	if p, ok := s.store.Get(parentID); !ok || !p.IsFolder() {
		s.mu.Unlock()
		return nil, &models.NodeError{Op: "import", ID: parentID, Err: models.ErrInvalidParent}
	}
	s.importDirLocked(fs, dir, parentID, report, &files)
	s.reindexNodeLocked(ctx, parentID)
	s.commitLocked(ctx, s.nodeEventLocked(EventTreeReorganized, parentID))
	s.mu.Unlock()

	for _, f := range files {
		c := binding.NewFileCapability(fs, f.path, prompter)
		if err := s.bridge.Bind(f.id, c); err != nil {
			report.Errors = append(report.Errors, err)
		}
	}

	s.Logger.WithField("dir", dir).WithField("files", len(report.Files)).Info("imported directory")
	return report, nil
}

func (s *Service) importDirLocked(fs afero.Fs, dir, parentID string, report *ImportReport, files *[]importedFile) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("read %s: %w", dir, err))
		return
	}

	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(dir, name)
		if strings.HasPrefix(name, ".") {
			report.Skipped = append(report.Skipped, path)
			continue
		}

		if e.IsDir() {
			id, err := s.mutator.CreateNode(models.KindFolder, parentID, name)
			if err != nil {
				report.Errors = append(report.Errors, err)
				continue
			}
			report.Folders = append(report.Folders, id)
			s.importDirLocked(fs, path, id, report, files)
			continue
		}

		if !isImportable(name) {
			report.Skipped = append(report.Skipped, path)
			continue
		}
		id, err := s.importFileLocked(fs, path, parentID)
		if err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		report.Files = append(report.Files, id)
		*files = append(*files, importedFile{id: id, path: path})
	}
}

func (s *Service) importFileLocked(fs afero.Fs, path, parentID string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	title := strings.TrimSuffix(name, filepath.Ext(name))
	body := string(data)
	var tags []string
	category := s.Config.DefaultCategory

	if binding.IsMarkdown(name) {
		fm, rest, err := frontmatter.Parse(body)
		if err != nil {
			s.Logger.WithError(err).WithField("file", path).Warn("ignoring malformed frontmatter")
		} else if fm != nil {
			body = rest
			if t := strings.TrimSpace(fm.Title); t != "" {
				title = t
			}
			tags = fm.Tags
			if c, ok := fm.NodeCategory(); ok {
				category = c
			}
		}
	}

	id, err := s.mutator.CreateNode(models.KindFile, parentID, title)
	if err != nil {
		return "", err
	}
	if err := s.mutator.UpdateContent(id, body); err != nil {
		return "", err
	}
	if len(tags) > 0 {
		_ = s.mutator.UpdateTags(id, tree.NormalizeTags(tags))
	}
	if category != "" && category.Valid() {
		_ = s.mutator.UpdateCategory(id, category)
	}
	return id, nil
}
