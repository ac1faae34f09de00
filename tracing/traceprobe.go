package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/hookr/hooking"
)

// Named is implemented by the probeable domains that have a name, such as
// hooking.Entity.
type Named interface {
	Name() string
}

// CollectTrace lets the tracer collect a task for every raise on the domain.
// Attaching the same tracer to a domain twice panics.
func CollectTrace(domain hooking.Probeable, tracer Tracer) {
	for _, p := range domain.Probes() {
		p, ok := p.(*traceProbe)
		if ok && p.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domainName(domain), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptProbe(&traceProbe{t: tracer})
}

func domainName(domain hooking.Probeable) string {
	if n, ok := domain.(Named); ok && n.Name() != "" {
		return n.Name()
	}

	return fmt.Sprintf("%T", domain)
}

// A traceProbe turns dispatch probes into tasks. Raises nested in the
// callbacks of another raise become its subtasks.
type traceProbe struct {
	t        Tracer
	inflight []string
}

// Func calls the tracer interfaces when the probe is triggered.
func (p *traceProbe) Func(ctx hooking.ProbeCtx) {
	ev, ok := ctx.Item.(*hooking.Event)
	if !ok {
		return
	}

	switch ctx.Pos {
	case hooking.ProbePosBeforeRaise:
		p.start(ctx, ev)
	case hooking.ProbePosBeforeCallback:
		p.step(ctx, ev)
	case hooking.ProbePosAfterRaise:
		p.end(ctx, ev)
	}
}

func (p *traceProbe) start(ctx hooking.ProbeCtx, ev *hooking.Event) {
	kind := KindFlat
	if ev.Recursive() {
		kind = KindAround
	}

	parentID := ""
	if n := len(p.inflight); n > 0 {
		parentID = p.inflight[n-1]
	}

	p.inflight = append(p.inflight, ev.ID())

	p.t.StartTask(Task{
		ID:       ev.ID(),
		ParentID: parentID,
		Kind:     kind,
		What:     ev.Name(),
		Where:    domainName(ctx.Domain),
		Detail:   ev,
	})
}

func (p *traceProbe) step(ctx hooking.ProbeCtx, ev *hooking.Event) {
	what := StepTerminal
	if cb, ok := ctx.Detail.(*hooking.Callback); ok && cb != nil {
		what = string(cb.Handle())
	}

	p.t.StepTask(Task{
		ID:    ev.ID(),
		Steps: []TaskStep{{What: what}},
	})
}

func (p *traceProbe) end(ctx hooking.ProbeCtx, ev *hooking.Event) {
	if n := len(p.inflight); n > 0 && p.inflight[n-1] == ev.ID() {
		p.inflight = p.inflight[:n-1]
	}

	p.t.EndTask(Task{
		ID:     ev.ID(),
		Detail: ctx.Detail,
	})
}
