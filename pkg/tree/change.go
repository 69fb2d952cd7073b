package tree

// Op names a structural change.
type Op string

const (
	OpDelete Op = "delete"
	OpMove   Op = "move"
)

// Change describes which nodes a delete or move touched, so the owner of
// session state can decide how to react.
type Change struct {
	Op      Op
	NodeID  string
	Removed []string // delete: the node and all descendants
	Moved   []string // move: the node and all descendants
}

// Affects reports whether id was removed or moved by the change.
func (c *Change) Affects(id string) bool {
	if c == nil || id == "" {
		return false
	}
	for _, list := range [][]string{c.Removed, c.Moved} {
		for _, x := range list {
			if x == id {
				return true
			}
		}
	}
	return false
}
