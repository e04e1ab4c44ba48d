package hxel

import "golang.org/x/net/html"

// LookupPolicy controls when the lookup cache is cleared.
type LookupPolicy int

const (
	// LookupInvalidateOnRender clears the cache after every render pass
	// that changed the subtree. This is the default: patching replaces
	// nodes, so cached references would point at detached nodes.
	LookupInvalidateOnRender LookupPolicy = iota
	// LookupRetain never clears the cache for the lifetime of the element.
	// A cached reference may go stale if the subtree changes shape.
	LookupRetain
)

func (p LookupPolicy) String() string {
	switch p {
	case LookupRetain:
		return "retain"
	default:
		return "render"
	}
}

// Lookup returns the element with the given id inside the component's
// subtree. Hits are memoized; misses are not, so an element added later is
// found by a later call.
func (e *Element) Lookup(id string) (*html.Node, bool) {
	if n, ok := e.lookup[id]; ok {
		e.metrics.lookedUp(e.class.name, "hit")
		return n, true
	}
	n := e.root.GetElementByID(id)
	if n == nil {
		e.metrics.lookedUp(e.class.name, "miss")
		return nil, false
	}
	e.metrics.lookedUp(e.class.name, "resolved")
	e.lookup[id] = n
	return n, true
}
