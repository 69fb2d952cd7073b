package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-writer/pkg/migration"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/search"
	"github.com/mattsolo1/grove-writer/pkg/stats"
	"github.com/mattsolo1/grove-writer/pkg/storage"
	"github.com/mattsolo1/grove-writer/pkg/tree"
	"github.com/mattsolo1/grove-writer/pkg/workspace"
)

// CorruptKey is where an unreadable state blob is moved before the default
// state overwrites it.
const CorruptKey = storage.StateKey + ".corrupt"

// LoadReport describes the last load.
type LoadReport struct {
	Source    string // "stored", "default" or "recovered"
	Migration *migration.MigrationReport
}

// SaveSnapshot writes the current state to the state slot.
func (s *Service) SaveSnapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

// LoadSnapshot discards the in-memory state and reloads it from the slots.
// Bindings of nodes that did not survive the reload are forgotten.
func (s *Service) LoadSnapshot(ctx context.Context) *LoadReport {
	s.mu.Lock()
	s.loadLocked(ctx)
	report := s.loadReport
	var stale []string
	for _, id := range s.bridge.Bound() {
		if _, ok := s.store.Get(id); !ok {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	s.bridge.Forget(stale)
	s.events.publish(Event{Type: EventReloaded})
	return report
}

// LastLoad returns the report of the most recent load.
func (s *Service) LastLoad() *LoadReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadReport
}

func (s *Service) loadLocked(ctx context.Context) {
	log := s.Logger.WithField("component", "persistence")

	data, err := s.slots.Get(ctx, storage.StateKey)
	switch {
	case errors.Is(err, storage.ErrSlotEmpty):
		s.resetLocked(ctx)
		s.loadReport = &LoadReport{Source: "default"}
	case err != nil:
		log.WithError(err).Warn("state slot unreadable, starting with defaults")
		s.noticeLocked(logrus.WarnLevel, "Could not read saved state: %v", err)
		s.resetLocked(ctx)
		s.loadReport = &LoadReport{Source: "default"}
	default:
		m := migration.NewMigrator(migration.MigrationOptions{}, nil, log)
		snap, merr := m.Migrate(data)
		m.Complete()
		report := &LoadReport{Source: "stored", Migration: m.GetReport()}

		if merr == nil {
			merr = s.applyLocked(snap)
		}
		if merr != nil {
			log.WithError(merr).Warn("stored state is corrupt, starting with defaults")
			s.backupCorruptLocked(ctx, data)
			s.noticeLocked(logrus.WarnLevel, "Saved state was unreadable and has been set aside as %s", CorruptKey)
			s.resetLocked(ctx)
			report.Source = "recovered"
		} else if report.Migration.Changed() {
			log.WithField("issues", len(report.Migration.Issues)).Info("stored state upgraded")
			_ = s.saveLocked(ctx)
		}
		s.loadReport = report
	}

	s.loadStatsLocked(ctx)
	s.reindexAllLocked(ctx)
}

// applyLocked installs snap as the current state. It fails without touching
// anything when the snapshot does not describe a usable forest.
func (s *Service) applyLocked(snap *storage.Snapshot) error {
	if len(snap.Workspaces) == 0 {
		return fmt.Errorf("snapshot has no books")
	}

	check := tree.NewStore()
	check.Reset(snap.Nodes)
	if err := tree.Validate(check); err != nil {
		return err
	}
	for _, w := range snap.Workspaces {
		if err := w.Validate(); err != nil {
			return err
		}
	}

	s.store.Reset(snap.Nodes)
	s.registry.Restore(snap.Workspaces, snap.Session.ActiveWorkspaceID)
	s.session = snap.Session
	if !s.session.ViewMode.Valid() {
		s.session.ViewMode = models.ViewEditor
	}
	s.syncSessionLocked()
	if n, ok := s.store.Get(s.session.ActiveNodeID); !ok || !n.IsFile() {
		s.session.ActiveNodeID = ""
	}
	return nil
}

// resetLocked replaces the state with a single empty book and saves it.
func (s *Service) resetLocked(ctx context.Context) {
	s.store.Reset(nil)
	s.registry.Restore(nil, "")
	s.session = models.DefaultSession()
	if _, err := s.registry.Create(DefaultWorkspaceTitle); err != nil {
		s.Logger.WithError(err).Error("failed to create default book")
	}
	s.syncSessionLocked()
	_ = s.saveLocked(ctx)
}

func (s *Service) backupCorruptLocked(ctx context.Context, data []byte) {
	if err := s.slots.Set(ctx, CorruptKey, data); err != nil {
		s.Logger.WithError(err).WithField("slot", CorruptKey).Warn("could not back up corrupt state")
	}
}

func (s *Service) snapshotLocked() *storage.Snapshot {
	return &storage.Snapshot{
		Workspaces: s.registry.List(),
		Nodes:      s.store.Nodes(),
		Session:    s.session,
	}
}

// saveLocked writes the state slot. A failure is logged and queued as a
// notice; the in-memory state stays authoritative.
func (s *Service) saveLocked(ctx context.Context) error {
	data, err := storage.Encode(s.snapshotLocked())
	if err != nil {
		s.Logger.WithError(err).Error("failed to encode snapshot")
		return err
	}
	if err := s.slots.Set(ctx, storage.StateKey, data); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"slot":  storage.StateKey,
			"bytes": len(data),
		}).WithError(err).Warn("failed to save state")
		s.noticeLocked(logrus.WarnLevel, "Changes could not be saved: %v", err)
		return err
	}
	return nil
}

func (s *Service) loadStatsLocked(ctx context.Context) {
	data, err := s.slots.Get(ctx, storage.StatsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotEmpty) {
			s.Logger.WithError(err).Warn("stats slot unreadable")
		}
		s.history = stats.NewHistory(s.Config.Goals)
		return
	}
	h, err := stats.Decode(data)
	if err != nil {
		s.Logger.WithError(err).Warn("stats are corrupt, starting a new history")
		s.history = stats.NewHistory(s.Config.Goals)
		return
	}
	if s.Config.Goals.DailyWords > 0 {
		h.Goals = s.Config.Goals
	}
	s.history = h
}

func (s *Service) saveStatsLocked(ctx context.Context) {
	data, err := s.history.Encode()
	if err == nil {
		err = s.slots.Set(ctx, storage.StatsKey, data)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("slot", storage.StatsKey).Warn("failed to save stats")
		s.noticeLocked(logrus.WarnLevel, "Writing statistics could not be saved: %v", err)
	}
}

// syncSessionLocked copies the registry's active workspace into the session.
func (s *Service) syncSessionLocked() {
	if w := s.registry.Active(); w != nil {
		s.session.ActiveWorkspaceID = w.ID
	} else {
		s.session.ActiveWorkspaceID = ""
	}
}

// reindexAllLocked rebuilds the search index from the store.
func (s *Service) reindexAllLocked(ctx context.Context) {
	if err := s.Index.Clear(ctx); err != nil {
		s.Logger.WithError(err).Warn("failed to clear search index")
		return
	}
	for _, w := range s.registry.List() {
		s.reindexLocked(ctx, w, tree.Descendants(s.store, w.RootNodeID))
	}
}

// reindexLocked refreshes the index entries of the given file ids, which all
// belong to w.
func (s *Service) reindexLocked(ctx context.Context, w *workspace.Workspace, ids []string) {
	for _, id := range ids {
		n, ok := s.store.Get(id)
		if !ok || !n.IsFile() {
			continue
		}
		doc := &search.Document{
			NodeID:      n.ID,
			WorkspaceID: w.ID,
			Title:       n.Title,
			Content:     n.Content,
			Category:    n.Category,
			Tags:        n.Tags,
			WordCount:   n.WordCount,
			ModifiedAt:  n.LastModified,
		}
		if err := s.Index.IndexDocument(ctx, doc); err != nil {
			s.Logger.WithError(err).WithField("node", id).Warn("failed to index node")
		}
	}
}

// reindexNodeLocked reindexes the subtree of id in whichever book holds it.
func (s *Service) reindexNodeLocked(ctx context.Context, id string) {
	w, err := s.registry.FindByNode(id)
	if err != nil {
		return
	}
	s.reindexLocked(ctx, w, append([]string{id}, tree.Descendants(s.store, id)...))
}

func (s *Service) unindexLocked(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := s.Index.Remove(ctx, ids...); err != nil {
		s.Logger.WithError(err).Warn("failed to remove nodes from index")
	}
}

// Snapshot returns the encoded current state.
func (s *Service) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.Encode(s.snapshotLocked())
}

// RestoreSnapshot replaces the whole state with snap, which must already be
// migrated, and saves it. Bindings of nodes that are gone are forgotten.
func (s *Service) RestoreSnapshot(ctx context.Context, snap *storage.Snapshot) error {
	s.mu.Lock()
	if err := s.applyLocked(snap); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("restore snapshot: %w", err)
	}
	s.reindexAllLocked(ctx)
	err := s.saveLocked(ctx)
	var stale []string
	for _, id := range s.bridge.Bound() {
		if _, ok := s.store.Get(id); !ok {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	s.bridge.Forget(stale)
	s.events.publish(Event{Type: EventReloaded})
	return err
}
