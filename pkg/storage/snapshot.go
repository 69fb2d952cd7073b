package storage

import (
	"encoding/json"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/workspace"
)

// CurrentVersion is the snapshot layout written by Encode.
const CurrentVersion = 1

// Snapshot is the serialized state of the application: every workspace, every
// node and the session. External file bindings are never part of it.
type Snapshot struct {
	Version    int                    `json:"version"`
	Workspaces []*workspace.Workspace `json:"books"`
	Nodes      []*models.Node         `json:"nodes"`
	Session    models.Session         `json:"session"`
}

// Encode serializes snap, stamping the current version.
func Encode(snap *Snapshot) ([]byte, error) {
	out := *snap
	out.Version = CurrentVersion
	if out.Workspaces == nil {
		out.Workspaces = []*workspace.Workspace{}
	}
	if out.Nodes == nil {
		out.Nodes = []*models.Node{}
	}
	return json.Marshal(&out)
}

// Decode parses data. Malformed input reports false instead of an error; the
// caller treats it the same as an empty slot.
func Decode(data []byte) (*Snapshot, bool) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	for _, n := range snap.Nodes {
		if n == nil || n.ID == "" {
			return nil, false
		}
	}
	for _, w := range snap.Workspaces {
		if w == nil {
			return nil, false
		}
	}
	return &snap, true
}

// PeekVersion returns the version field of an encoded snapshot, or -1 when
// data is not a JSON object. Snapshots written before versioning report 0.
func PeekVersion(data []byte) int {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return -1
	}
	return head.Version
}
