package migration

import (
	"sort"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/storage"
	"github.com/mattsolo1/grove-writer/pkg/tree"
	"github.com/mattsolo1/grove-writer/pkg/workspace"
)

// Analyze reports what Repair would change in snap without touching it.
func Analyze(snap *storage.Snapshot) []MigrationIssue {
	clone := cloneSnapshot(snap)
	report := NewMigrationReport()
	repair(clone, report)
	return report.Issues
}

func cloneSnapshot(snap *storage.Snapshot) *storage.Snapshot {
	out := &storage.Snapshot{Version: snap.Version, Session: snap.Session}
	for _, w := range snap.Workspaces {
		if w == nil {
			continue
		}
		c := *w
		out.Workspaces = append(out.Workspaces, &c)
	}
	for _, n := range snap.Nodes {
		out.Nodes = append(out.Nodes, n.Clone())
	}
	return out
}

// repair rewrites snap in place so it satisfies the forest invariant. Every
// node kept is reachable from exactly one workspace root through its
// parent's children list; everything else is dropped.
func repair(snap *storage.Snapshot, report *MigrationReport) {
	nodes := make(map[string]*models.Node, len(snap.Nodes))
	var order []string
	for _, n := range snap.Nodes {
		if n == nil || n.ID == "" {
			continue
		}
		if _, dup := nodes[n.ID]; dup {
			report.AddIssue(IssueOrphan, n.ID, "dropped duplicate node record")
			report.DroppedNodes++
			continue
		}
		nodes[n.ID] = n
		order = append(order, n.ID)
	}
	sort.Strings(order)
	report.TotalNodes = len(snap.Nodes)

	normalizeNodes(nodes, order, report)

	// Workspaces need an existing folder as root, and a root serves one
	// workspace only.
	claimed := make(map[string]bool)
	var workspaces []*workspace.Workspace
	for _, w := range snap.Workspaces {
		if w == nil {
			continue
		}
		root, ok := nodes[w.RootNodeID]
		switch {
		case !ok || !root.IsFolder():
			report.AddIssue(IssueMissingRoot, w.RootNodeID, "dropped book %q without a root folder", w.Title)
			report.DroppedWorkspaces++
			continue
		case claimed[w.RootNodeID]:
			report.AddIssue(IssueDuplicateRoot, w.RootNodeID, "dropped book %q sharing a root", w.Title)
			report.DroppedWorkspaces++
			continue
		}
		claimed[w.RootNodeID] = true
		if root.ParentID != "" {
			report.AddIssue(IssueReparented, root.ID, "detached book root from %s", root.ParentID)
			root.ParentID = ""
		}
		if st, err := workspace.ParseStatus(string(w.Status)); err != nil {
			w.Status = workspace.StatusDrafting
		} else {
			w.Status = st
		}
		workspaces = append(workspaces, w)
	}

	attachUnlisted(nodes, order, claimed, report)

	// Walk from every root; the first folder to list a node owns it.
	visited := make(map[string]bool)
	for _, w := range workspaces {
		queue := []string{w.RootNodeID}
		visited[w.RootNodeID] = true
		for len(queue) > 0 {
			parent := nodes[queue[0]]
			queue = queue[1:]

			kept := []string{}
			listed := make(map[string]bool)
			for _, cid := range parent.Children {
				child, ok := nodes[cid]
				switch {
				case listed[cid]:
					report.AddIssue(IssueDuplicateChild, parent.ID, "removed repeated child %s", cid)
					continue
				case !ok:
					report.AddIssue(IssueMissingChild, parent.ID, "removed unknown child %s", cid)
					continue
				case visited[cid]:
					report.AddIssue(IssueDuplicateChild, parent.ID, "removed child %s already owned elsewhere", cid)
					continue
				}
				listed[cid] = true
				visited[cid] = true
				if child.ParentID != parent.ID {
					report.AddIssue(IssueReparented, cid, "parent set to %s", parent.ID)
					child.ParentID = parent.ID
				}
				kept = append(kept, cid)
				if child.IsFolder() {
					queue = append(queue, cid)
				}
			}
			parent.Children = kept
		}
	}

	snap.Nodes = snap.Nodes[:0]
	for _, id := range order {
		if !visited[id] {
			report.AddIssue(IssueOrphan, id, "dropped node %q unreachable from any book", nodes[id].Title)
			report.DroppedNodes++
			continue
		}
		snap.Nodes = append(snap.Nodes, nodes[id])
	}
	snap.Workspaces = workspaces
	report.KeptNodes = len(snap.Nodes)

	repairSession(snap, nodes, visited, report)
}

// normalizeNodes fixes per-node fields that do not depend on the shape.
func normalizeNodes(nodes map[string]*models.Node, order []string, report *MigrationReport) {
	for _, id := range order {
		n := nodes[id]
		if n.Kind != models.KindFolder && n.Kind != models.KindFile {
			kind := models.KindFile
			if len(n.Children) > 0 {
				kind = models.KindFolder
			}
			report.AddIssue(IssueUnknownKind, id, "kind %q treated as %s", n.Kind, kind)
			n.Kind = kind
		}

		if n.IsFolder() {
			if n.Children == nil {
				n.Children = []string{}
			}
			n.Content, n.WordCount, n.Category, n.Tags = "", 0, "", nil
			continue
		}

		if len(n.Children) > 0 {
			report.AddIssue(IssueFileChildren, id, "file listed %d children", len(n.Children))
		}
		n.Children = nil
		if !n.Category.Valid() {
			if n.Category != "" {
				report.AddIssue(IssueBadCategory, id, "unknown category %q", n.Category)
			}
			n.Category = models.DefaultCategory
		}
		n.Tags = tree.NormalizeTags(n.Tags)
		if wc := tree.CountWords(n.Content); wc != n.WordCount {
			report.AddIssue(IssueWordCount, id, "word count %d corrected to %d", n.WordCount, wc)
			n.WordCount = wc
		}
	}
}

// attachUnlisted appends nodes to the folder their parent id names when that
// folder does not list them.
func attachUnlisted(nodes map[string]*models.Node, order []string, roots map[string]bool, report *MigrationReport) {
	for _, id := range order {
		n := nodes[id]
		if n.ParentID == "" || roots[id] {
			continue
		}
		parent, ok := nodes[n.ParentID]
		if !ok || !parent.IsFolder() || parent.HasChild(id) {
			continue
		}
		parent.Children = append(parent.Children, id)
		report.AddIssue(IssueUnlistedChild, id, "re-listed under %s", parent.ID)
	}
}

func repairSession(snap *storage.Snapshot, nodes map[string]*models.Node, kept map[string]bool, report *MigrationReport) {
	s := &snap.Session
	if !s.ViewMode.Valid() {
		s.ViewMode = models.ViewEditor
	}

	known := false
	for _, w := range snap.Workspaces {
		if w.ID == s.ActiveWorkspaceID {
			known = true
			break
		}
	}
	if !known {
		next := ""
		if len(snap.Workspaces) > 0 {
			next = snap.Workspaces[0].ID
		}
		if s.ActiveWorkspaceID != "" {
			report.AddIssue(IssueSession, "", "active book %s no longer exists", s.ActiveWorkspaceID)
		}
		s.ActiveWorkspaceID = next
	}

	if s.ActiveNodeID != "" {
		n, ok := nodes[s.ActiveNodeID]
		if !ok || !kept[s.ActiveNodeID] || !n.IsFile() {
			report.AddIssue(IssueSession, s.ActiveNodeID, "cleared active file")
			s.ActiveNodeID = ""
		}
	}
}
