package service

import (
	"context"
	"fmt"
	"io"

	"github.com/mattsolo1/grove-writer/pkg/export"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/search"
	"github.com/mattsolo1/grove-writer/pkg/stats"
)

// SearchOption narrows a search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	allWorkspaces bool
	workspaceID   string
	category      models.Category
	limit         int
}

// AllWorkspaces searches every book instead of the active one.
func AllWorkspaces() SearchOption {
	return func(o *searchOptions) {
		o.allWorkspaces = true
	}
}

// InWorkspace restricts the search to one book.
func InWorkspace(id string) SearchOption {
	return func(o *searchOptions) {
		o.workspaceID = id
	}
}

// InCategory restricts the search to files of one category.
func InCategory(c models.Category) SearchOption {
	return func(o *searchOptions) {
		o.category = c
	}
}

// WithLimit caps the number of results.
func WithLimit(n int) SearchOption {
	return func(o *searchOptions) {
		o.limit = n
	}
}

// Search runs a full-text query over file titles, content and tags. By
// default only the active book is searched.
func (s *Service) Search(ctx context.Context, query string, options ...SearchOption) ([]*search.Result, error) {
	o := &searchOptions{}
	for _, opt := range options {
		opt(o)
	}

	opts := &search.Options{Category: o.category, Limit: o.limit}
	switch {
	case o.workspaceID != "":
		opts.WorkspaceID = o.workspaceID
	case !o.allWorkspaces:
		s.mu.Lock()
		opts.WorkspaceID = s.session.ActiveWorkspaceID
		s.mu.Unlock()
	}

	results, err := s.Index.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return results, nil
}

// Export renders the subtree of id in format and writes it to w. It returns
// the exporter used, so callers can pick a file extension.
func (s *Service) Export(id, format string, w io.Writer) (export.Exporter, error) {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if id == "" {
		if ws := s.registry.Active(); ws != nil {
			id = ws.RootNodeID
		}
	}
	doc := export.Build(s.store, id)
	s.mu.Unlock()

	if doc == nil {
		return nil, &models.NodeError{Op: "export", ID: id, Err: models.ErrNotFound}
	}
	if err := exporter.Export(doc, w); err != nil {
		return nil, fmt.Errorf("export %s as %s: %w", id, format, err)
	}
	return exporter, nil
}

// StatsSummary is a read-only digest of the writing history.
type StatsSummary struct {
	Today         stats.Entry   `json:"today"`
	DailyGoal     int           `json:"dailyGoal"`
	GoalMet       bool          `json:"goalMet"`
	CurrentStreak int           `json:"currentStreak"`
	LongestStreak int           `json:"longestStreak"`
	TotalWords    int           `json:"totalWords"`
	TotalMinutes  int           `json:"totalMinutes"`
	Recent        []stats.Entry `json:"recent"`
}

// Stats summarises the writing history, including the last days entries.
func (s *Service) Stats(days int) StatsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days < 0 {
		days = 0
	}
	today := s.now()
	words, minutes := s.history.Totals()
	return StatsSummary{
		Today:         s.history.Get(today),
		DailyGoal:     s.history.Goals.DailyWords,
		GoalMet:       s.history.GoalMet(today),
		CurrentStreak: s.history.CurrentStreak(today),
		LongestStreak: s.history.LongestStreak(),
		TotalWords:    words,
		TotalMinutes:  minutes,
		Recent:        s.history.Recent(today, days),
	}
}

// RecordActivity adds active writing minutes to today's statistics.
func (s *Service) RecordActivity(ctx context.Context, minutes int) {
	if minutes <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.RecordMinutes(s.now(), minutes)
	s.saveStatsLocked(ctx)
}
