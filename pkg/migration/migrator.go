// Package migration upgrades stored snapshots written by older versions and
// repairs snapshots whose tree no longer satisfies the forest invariant.
package migration

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-writer/pkg/storage"
)

// ErrUnreadable is returned for input that is not a snapshot of any known
// version.
var ErrUnreadable = errors.New("unreadable snapshot")

type Migrator struct {
	options MigrationOptions
	report  *MigrationReport
	output  io.Writer
	logger  *logrus.Entry
	now     func() time.Time
}

func NewMigrator(options MigrationOptions, output io.Writer, logger *logrus.Entry) *Migrator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New()) // Fallback to a null logger
	}
	if output == nil {
		output = io.Discard
	}
	return &Migrator{
		options: options,
		report:  NewMigrationReport(),
		output:  output,
		logger:  logger.WithField("sub-component", "migrator"),
		now:     time.Now,
	}
}

// Migrate decodes data, upgrading and repairing it as needed. The returned
// snapshot is always at storage.CurrentVersion and passes tree validation.
func (m *Migrator) Migrate(data []byte) (*storage.Snapshot, error) {
	version := storage.PeekVersion(data)
	m.report.FromVersion = version
	m.report.ToVersion = storage.CurrentVersion

	var snap *storage.Snapshot
	switch {
	case version < 0:
		err := fmt.Errorf("%w: not a JSON object", ErrUnreadable)
		m.report.AddError(err)
		return nil, err
	case version == 0:
		upgraded, err := upgradeLegacy(data, m.now(), m.report)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadable, err)
			m.report.AddError(err)
			return nil, err
		}
		snap = upgraded
	case version > storage.CurrentVersion:
		err := fmt.Errorf("%w: version %d is newer than supported version %d", ErrUnreadable, version, storage.CurrentVersion)
		m.report.AddError(err)
		return nil, err
	default:
		decoded, ok := storage.Decode(data)
		if !ok {
			err := fmt.Errorf("%w: malformed version %d snapshot", ErrUnreadable, version)
			m.report.AddError(err)
			return nil, err
		}
		snap = decoded
	}

	repair(snap, m.report)
	snap.Version = storage.CurrentVersion

	for _, issue := range m.report.Issues {
		m.logger.WithField("type", issue.Type).Debug(issue.String())
		if m.options.Verbose {
			fmt.Fprintf(m.output, "  - %s\n", issue)
		}
	}
	if m.report.DroppedNodes > 0 || m.report.DroppedWorkspaces > 0 {
		m.logger.WithFields(logrus.Fields{
			"dropped_nodes": m.report.DroppedNodes,
			"dropped_books": m.report.DroppedWorkspaces,
		}).Warn("snapshot repaired with data loss")
	}

	return snap, nil
}

func (m *Migrator) GetReport() *MigrationReport {
	return m.report
}

func (m *Migrator) Complete() {
	m.report.Complete()
}

// PrintReport writes a human readable summary of report.
func PrintReport(w io.Writer, report *MigrationReport) {
	fmt.Fprintf(w, "Snapshot version: %d -> %d\n", report.FromVersion, report.ToVersion)
	fmt.Fprintf(w, "Nodes: %d kept, %d dropped (of %d)\n", report.KeptNodes, report.DroppedNodes, report.TotalNodes)
	if report.DroppedWorkspaces > 0 {
		fmt.Fprintf(w, "Books dropped: %d\n", report.DroppedWorkspaces)
	}
	fmt.Fprintf(w, "Issues fixed: %d\n", report.IssuesFixed)
	for _, e := range report.Errors {
		fmt.Fprintf(w, "Error: %s\n", e)
	}
}
