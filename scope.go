package roboguice

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/mstian06/roboguice/metrics"
)

// ContextScope ties instance lifetime to a context handle instead of the process.
// Each entered handle owns one segment of cached instances; segments are
// independent and are discarded when the last session for the handle exits.
type ContextScope struct {
	mu       sync.Mutex
	segments map[ContextHandle]*segment
	log      logr.Logger
	metrics  *metrics.Collector
}

type segment struct {
	mu        sync.Mutex
	handle    ContextHandle
	refs      int
	closed    bool
	supplied  map[TypeID]struct{}
	instances map[TypeID]any
	created   []TypeID
}

// Session is one enter of a context handle. Nested enters of the same handle
// produce separate sessions sharing a segment.
type Session struct {
	scope  *ContextScope
	seg    *segment
	exited atomic.Bool
}

// Handle returns the context handle this session entered.
func (s *Session) Handle() ContextHandle {
	return s.seg.handle
}

// Exited reports whether Exit has been called on this session.
func (s *Session) Exited() bool {
	return s.exited.Load()
}

// Exit is shorthand for s.scope.Exit(s).
func (s *Session) Exit() {
	if s == nil {
		return
	}
	s.scope.Exit(s)
}

// NewContextScope creates an empty scope with no current handles.
func NewContextScope(opts ...Option) *ContextScope {
	o := buildOptions(opts)
	return &ContextScope{
		segments: make(map[ContextHandle]*segment),
		log:      o.log.WithName("context-scope"),
		metrics:  o.metrics,
	}
}

// Enter makes handle the current context for the execution carried by ctx and
// returns the derived context along with its session.
// Entering the handle that is already current nests; entering a different one
// fails with ScopeReentryError.
func (cs *ContextScope) Enter(ctx *ContainerContext, handle ContextHandle) (*ContainerContext, *Session, error) {
	if ctx == nil {
		ctx = NewContainerContext(nil)
	}
	if handle == nil {
		return ctx, nil, &InvalidHandleError{Reason: "handle is nil"}
	}
	if t := reflect.TypeOf(handle); !t.Comparable() {
		return ctx, nil, &InvalidHandleError{Handle: handle, Reason: "type " + t.String() + " is not comparable"}
	}
	if cur := ctx.Session(); cur != nil && cur.Handle() != handle {
		return ctx, nil, &ScopeReentryError{Current: cur.Handle(), Requested: handle}
	}

	cs.mu.Lock()
	seg, ok := cs.segments[handle]
	if ok {
		seg.mu.Lock()
		seg.refs++
		refs := seg.refs
		seg.mu.Unlock()
		cs.mu.Unlock()
		cs.log.V(1).Info("context re-entered", "handle", handle, "refs", refs)
	} else {
		seg = newSegment(handle)
		cs.segments[handle] = seg
		cs.mu.Unlock()
		cs.metrics.ContextEntered()
		cs.log.V(1).Info("context entered", "handle", handle)
	}

	s := &Session{scope: cs, seg: seg}
	return ctx.withSession(s), s, nil
}

func newSegment(handle ContextHandle) *segment {
	seg := &segment{
		handle:    handle,
		refs:      1,
		supplied:  make(map[TypeID]struct{}),
		instances: make(map[TypeID]any),
	}
	seg.supplied[TypeIDOf[ContextHandle]()] = struct{}{}
	seg.supplied[typeIDOfValue(handle)] = struct{}{}
	if th, ok := handle.(TypedHandle); ok {
		for _, id := range th.ContextTypes() {
			seg.supplied[id] = struct{}{}
		}
	}
	return seg
}

// Exit ends session. When it is the last session for its handle, every cached
// instance for the handle is discarded and the handle stops being current.
// Discarded instances implementing Shutdowner are shut down in reverse
// creation order; failures are logged and do not stop the others.
// Exiting a nil or already exited session does nothing.
func (cs *ContextScope) Exit(s *Session) {
	if s == nil || !s.exited.CompareAndSwap(false, true) {
		return
	}

	cs.mu.Lock()
	seg := s.seg
	seg.mu.Lock()
	seg.refs--
	if seg.refs > 0 {
		refs := seg.refs
		seg.mu.Unlock()
		cs.mu.Unlock()
		cs.log.V(1).Info("nested context exited", "handle", seg.handle, "refs", refs)
		return
	}
	instances, created := seg.instances, seg.created
	seg.closed = true
	seg.instances = nil
	seg.created = nil
	seg.mu.Unlock()

	if cs.segments[seg.handle] == seg {
		delete(cs.segments, seg.handle)
	}
	cs.mu.Unlock()

	cs.metrics.ContextExited()
	cs.log.V(1).Info("context exited", "handle", seg.handle, "dropped", len(instances))

	for i := len(created) - 1; i >= 0; i-- {
		id := created[i]
		if sd, ok := instances[id].(Shutdowner); ok {
			cs.shutdown(id, sd)
		}
	}
}

func (cs *ContextScope) shutdown(id TypeID, sd Shutdowner) {
	defer func() {
		if r := recover(); r != nil {
			cs.metrics.ShutdownFailed()
			cs.log.Error(&ShutdownError{Type: string(id), Err: fmt.Errorf("panic: %v", r)}, "instance shutdown panicked", "type", id)
		}
	}()
	if err := sd.OnShutdown(NewContainerContext(nil)); err != nil {
		cs.metrics.ShutdownFailed()
		cs.log.Error(&ShutdownError{Type: string(id), Err: err}, "instance shutdown failed", "type", id)
	}
}

// GetOrCreate returns the instance cached for id under the current handle of
// ctx, calling factory and caching its result on a miss.
// Factory errors are returned unchanged and nothing is cached.
func (cs *ContextScope) GetOrCreate(ctx *ContainerContext, id TypeID, factory func() (any, error)) (any, error) {
	s := ctx.Session()
	if s == nil {
		return nil, &NoActiveContextError{Type: string(id)}
	}
	seg := s.seg

	seg.mu.Lock()
	if seg.closed {
		seg.mu.Unlock()
		return nil, &NoActiveContextError{Type: string(id)}
	}
	if v, ok := seg.instances[id]; ok {
		seg.mu.Unlock()
		cs.metrics.ScopeHit()
		return v, nil
	}
	seg.mu.Unlock()
	cs.metrics.ScopeMiss()

	// factory may resolve other scoped types, so it runs unlocked
	v, err := factory()
	if err != nil {
		return nil, err
	}

	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.closed {
		return nil, &NoActiveContextError{Type: string(id)}
	}
	if existing, ok := seg.instances[id]; ok {
		return existing, nil
	}
	seg.instances[id] = v
	seg.created = append(seg.created, id)
	return v, nil
}

// Supplied returns the current handle of ctx when the handle supplies id: it
// is the handle's own type, ContextHandle, or one of its ContextTypes.
// Supplied values are never cached instances, so GetOrCreate does not see them.
func (cs *ContextScope) Supplied(ctx *ContainerContext, id TypeID) (ContextHandle, bool) {
	s := ctx.Session()
	if s == nil {
		return nil, false
	}
	seg := s.seg
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.closed {
		return nil, false
	}
	if _, ok := seg.supplied[id]; !ok {
		return nil, false
	}
	return seg.handle, true
}

// Current returns the handle current for ctx.
func (cs *ContextScope) Current(ctx *ContainerContext) (ContextHandle, bool) {
	return ctx.Handle()
}

// Active returns the number of handles with a live segment.
func (cs *ContextScope) Active() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.segments)
}
