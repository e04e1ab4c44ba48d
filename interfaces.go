package hxel

import (
	"context"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// Host is the platform element a component is attached to. It owns the
// attributes and attaches the isolated subtree.
//
// lib/dom provides an in-memory implementation over golang.org/x/net/html.
type Host interface {
	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	AttachShadow() Root
	// Observe routes attribute and connection notifications for the
	// attributes the observer lists back to it.
	Observe(obs Observer)
}

// Root is the isolated subtree owned by one component instance.
type Root interface {
	// GetElementByID finds an element by id within the subtree.
	GetElementByID(id string) *html.Node
	// Patch applies a rendered tree to the subtree. It reports whether the
	// subtree changed.
	Patch(ctx context.Context, tree templ.Component) (bool, error)
}

// Observer receives platform notifications. *Element implements it.
type Observer interface {
	ObservedAttributes() []string
	AttributeChanged(name, value string, present bool)
	Connected()
	Disconnected()
}

// Renderer is implemented by components to produce their render tree.
//
// Render reads the current property values and should be pure. It is never
// called synchronously with a mutation; the scheduler calls it once per
// coalesced batch of invalidations.
//
// Example:
//
//	func (c *Counter) Render(ctx context.Context) templ.Component {
//	    return counterTemplate(c.Float("count"))
//	}
type Renderer interface {
	Render(ctx context.Context) templ.Component
}

// ConnectedHook is called after the element has ingested its attributes on
// attachment to a document, before the resulting render is scheduled.
type ConnectedHook interface {
	OnConnected(ctx context.Context)
}

// DisconnectedHook is called when the element is removed from a document.
type DisconnectedHook interface {
	OnDisconnected(ctx context.Context)
}

// AttributeHook is called after an attribute change has been applied to the
// property store.
type AttributeHook interface {
	OnAttributeChanged(ctx context.Context, name, value string, present bool)
}

// RenderedHook is called after every successful patch.
type RenderedHook interface {
	OnRendered(ctx context.Context, changed bool)
}
