package hooking

// ProbePos identifies a point of the dispatch process that probes observe.
type ProbePos struct {
	Name string
}

// The positions at which a dispatch invokes probes.
var (
	// ProbePosBeforeRaise fires once per raise, before any callback runs.
	// The item is the *Event.
	ProbePosBeforeRaise = &ProbePos{Name: "BeforeRaise"}

	// ProbePosAfterRaise fires once per raise, after dispatch ends. The item
	// is the *Event and the detail the error returned to the caller, if any.
	ProbePosAfterRaise = &ProbePos{Name: "AfterRaise"}

	// ProbePosBeforeCallback fires before each callback. The item is the
	// *Event the callback receives and the detail the *Callback, or nil for
	// the terminal of a chained dispatch.
	ProbePosBeforeCallback = &ProbePos{Name: "BeforeCallback"}

	// ProbePosAfterCallback fires after each callback returns, with the same
	// item and detail as ProbePosBeforeCallback.
	ProbePosAfterCallback = &ProbePos{Name: "AfterCallback"}
)

// ProbeCtx holds the information about the site where a probe fires.
type ProbeCtx struct {
	// Domain is the probeable object that raised the event.
	Domain Probeable

	// Pos identifies the stage of the dispatch.
	Pos *ProbePos

	// Item is the event being dispatched.
	Item any

	// Detail holds the callback or the error, depending on Pos.
	Detail any
}

// Probeable defines an object that accepts probes.
type Probeable interface {
	// AcceptProbe registers a probe. Probes must be registered while a single
	// goroutine works on the probeable object.
	AcceptProbe(probe Probe)

	// NumProbes returns the number of probes registered.
	NumProbes() int

	// Probes returns all the probes registered.
	Probes() []Probe

	// InvokeProbe triggers the registered probes.
	InvokeProbe(ctx ProbeCtx)
}

// A Probe observes dispatches. Probes cannot alter the dispatch.
type Probe interface {
	// Func is called at every probe position.
	Func(ctx ProbeCtx)
}

// A ProbeableBase provides a Probeable implementation to embed.
type ProbeableBase struct {
	probeList []Probe
}

// NewProbeableBase creates a ProbeableBase object.
func NewProbeableBase() *ProbeableBase {
	return &ProbeableBase{}
}

// NumProbes returns the number of probes registered.
func (b *ProbeableBase) NumProbes() int {
	return len(b.probeList)
}

// Probes returns all the probes registered.
func (b *ProbeableBase) Probes() []Probe {
	return b.probeList
}

// AcceptProbe registers a probe. Registering the same probe twice panics.
func (b *ProbeableBase) AcceptProbe(probe Probe) {
	b.mustNotHaveDuplicatedProbe(probe)
	b.probeList = append(b.probeList, probe)
}

func (b *ProbeableBase) mustNotHaveDuplicatedProbe(probe Probe) {
	for _, p := range b.probeList {
		if p == probe {
			panic("duplicated probe")
		}
	}
}

// InvokeProbe triggers the registered probes.
func (b *ProbeableBase) InvokeProbe(ctx ProbeCtx) {
	for _, p := range b.probeList {
		p.Func(ctx)
	}
}

var _ Probeable = (*ProbeableBase)(nil)
