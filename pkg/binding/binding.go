package binding

// Kind tells the three binding variants apart.
type Kind int

const (
	KindNone Kind = iota
	KindPending
	KindGranted
)

func (k Kind) String() string {
	switch k {
	case KindPending:
		return "pending"
	case KindGranted:
		return "granted"
	default:
		return "none"
	}
}

// Binding associates a file node with an external file. The zero value is
// None. Pending holds a capability whose write permission has not been
// confirmed; Granted holds one that was confirmed at its last check.
type Binding struct {
	kind Kind
	cap  Capability
}

// None returns the empty binding.
func None() Binding { return Binding{} }

// Pending wraps a capability that still needs a permission grant.
func Pending(c Capability) Binding {
	if c == nil {
		return Binding{}
	}
	return Binding{kind: KindPending, cap: c}
}

// Granted wraps a capability with confirmed write permission.
func Granted(c Capability) Binding {
	if c == nil {
		return Binding{}
	}
	return Binding{kind: KindGranted, cap: c}
}

func (b Binding) Kind() Kind { return b.kind }

// Capability returns the wrapped handle, nil for None.
func (b Binding) Capability() Capability { return b.cap }

func (b Binding) IsNone() bool    { return b.kind == KindNone }
func (b Binding) IsGranted() bool { return b.kind == KindGranted }
