package roboguice

import (
	"context"
)

// ContainerContext extends the standard context.Context with the state of one
// logical execution: the current scope session and the chain of types being resolved.
// It is immutable; Enter and resolution derive new contexts from it.
type ContainerContext struct {
	context.Context
	session   *Session
	resolving *resolutionLink
}

type resolutionLink struct {
	id   TypeID
	next *resolutionLink
}

// NewContainerContext creates a new ContainerContext wrapping a standard context.Context.
// The new context has no current scope session.
func NewContainerContext(parent context.Context) *ContainerContext {
	if parent == nil {
		parent = context.Background()
	}
	return &ContainerContext{
		Context: parent,
	}
}

func (c *ContainerContext) Parent() context.Context {
	return c.Context
}

// Session returns the live session of this context, or nil when no context
// handle is current or the session has already exited.
func (c *ContainerContext) Session() *Session {
	if c == nil || c.session == nil || c.session.Exited() {
		return nil
	}
	return c.session
}

// Handle returns the current context handle.
func (c *ContainerContext) Handle() (ContextHandle, bool) {
	s := c.Session()
	if s == nil {
		return nil, false
	}
	return s.Handle(), true
}

func (c *ContainerContext) withSession(s *Session) *ContainerContext {
	return &ContainerContext{
		Context:   c.Context,
		session:   s,
		resolving: c.resolving,
	}
}

func (c *ContainerContext) isResolving(id TypeID) bool {
	for l := c.resolving; l != nil; l = l.next {
		if l.id == id {
			return true
		}
	}
	return false
}

func (c *ContainerContext) withResolving(id TypeID) *ContainerContext {
	return &ContainerContext{
		Context:   c.Context,
		session:   c.session,
		resolving: &resolutionLink{id: id, next: c.resolving},
	}
}
