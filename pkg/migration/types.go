package migration

import (
	"fmt"
	"time"
)

// Issue types reported while upgrading or repairing a snapshot.
const (
	IssueLegacyVersion  = "legacy_version"
	IssueMissingRoot    = "missing_root"
	IssueDuplicateRoot  = "duplicate_root"
	IssueMissingChild   = "missing_child"
	IssueDuplicateChild = "duplicate_child"
	IssueReparented     = "reparented"
	IssueUnlistedChild  = "unlisted_child"
	IssueFileChildren   = "file_children"
	IssueUnknownKind    = "unknown_kind"
	IssueBadCategory    = "bad_category"
	IssueWordCount      = "word_count"
	IssueOrphan         = "orphan"
	IssueSession        = "session"
)

type MigrationIssue struct {
	Type        string
	Description string
	NodeID      string
}

func (i MigrationIssue) String() string {
	if i.NodeID == "" {
		return fmt.Sprintf("%s: %s", i.Type, i.Description)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Type, i.Description, i.NodeID)
}

type MigrationReport struct {
	FromVersion       int
	ToVersion         int
	TotalNodes        int
	KeptNodes         int
	DroppedNodes      int
	DroppedWorkspaces int
	IssuesFixed       int
	Issues            []MigrationIssue
	Errors            []string
	StartTime         time.Time
	EndTime           time.Time
}

type MigrationOptions struct {
	Verbose bool
}

func NewMigrationReport() *MigrationReport {
	return &MigrationReport{
		StartTime: time.Now(),
	}
}

func (r *MigrationReport) AddIssue(issueType, nodeID, format string, args ...any) {
	r.Issues = append(r.Issues, MigrationIssue{
		Type:        issueType,
		Description: fmt.Sprintf(format, args...),
		NodeID:      nodeID,
	})
	r.IssuesFixed++
}

func (r *MigrationReport) AddError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// Changed reports whether the migration altered anything.
func (r *MigrationReport) Changed() bool {
	return r.FromVersion != r.ToVersion || r.IssuesFixed > 0
}

func (r *MigrationReport) Complete() {
	r.EndTime = time.Now()
}

func (r *MigrationReport) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
