package hxel

import (
	"fmt"
	"sort"

	"github.com/pthm/hxel/lib/dom"
	"golang.org/x/net/html"
)

// Fixture hosts one component on an in-memory element for tests.
//
// The component runs on the fixture's own Loop, so nothing renders until
// Flush is called. Errors routed to the element's error handler are
// collected in Errors instead of being logged.
//
//	f, err := hxel.Mount(components.NewCounter, "x-counter", map[string]string{"count": "2"})
//	if err != nil {
//	    t.Fatal(err)
//	}
//	f.SetAttribute("count", "3")
//	f.Flush()
//	if !strings.Contains(f.HTML(), "3") {
//	    t.Fatal("count not rendered")
//	}
type Fixture struct {
	Doc       *dom.Document
	Node      *dom.Element
	Loop      *Loop
	Component Component
	Errors    []error
}

// NewFixture constructs a component on a detached host carrying attrs. It
// does not connect the host, so no render is scheduled.
func NewFixture(ctor Constructor, tag string, attrs map[string]string, opts ...Option) (*Fixture, error) {
	f := &Fixture{
		Doc:  dom.NewDocument(),
		Node: dom.NewElement(tag),
		Loop: NewLoop(),
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Node.SetAttribute(name, attrs[name])
	}

	base := []Option{
		WithScheduler(f.Loop),
		WithErrorHandler(func(err error) { f.Errors = append(f.Errors, err) }),
	}
	comp, err := ctor(DOMHost(f.Node), append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	f.Component = comp
	return f, nil
}

// Mount is NewFixture followed by Connect.
func Mount(ctor Constructor, tag string, attrs map[string]string, opts ...Option) (*Fixture, error) {
	f, err := NewFixture(ctor, tag, attrs, opts...)
	if err != nil {
		return nil, err
	}
	f.Connect()
	return f, nil
}

// MountTag mounts the element registered under tag in reg.
func MountTag(reg *Registry, tag string, attrs map[string]string, opts ...Option) (*Fixture, error) {
	reg.mu.RLock()
	def, ok := reg.elements[tag]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, tag)
	}
	return Mount(def.ctor, tag, attrs, append([]Option{WithRegistry(reg)}, opts...)...)
}

// Element returns the component's base element.
func (f *Fixture) Element() *Element {
	return f.Component.Base()
}

// Connect appends the host to the fixture document and flushes.
func (f *Fixture) Connect() {
	f.Doc.Append(f.Node)
	f.Loop.Flush()
}

// Disconnect removes the host from the fixture document.
func (f *Fixture) Disconnect() {
	f.Doc.Remove(f.Node)
}

// Flush runs every scheduled task and returns how many ran.
func (f *Fixture) Flush() int {
	return f.Loop.Flush()
}

// SetAttribute writes a host attribute as a page script would.
func (f *Fixture) SetAttribute(name, value string) {
	f.Node.SetAttribute(name, value)
}

// RemoveAttribute removes a host attribute.
func (f *Fixture) RemoveAttribute(name string) {
	f.Node.RemoveAttribute(name)
}

// Attribute reads a host attribute.
func (f *Fixture) Attribute(name string) (string, bool) {
	return f.Node.Attribute(name)
}

// Set assigns a property without flushing.
func (f *Fixture) Set(name string, v any) error {
	return f.Element().Set(name, v)
}

// HTML returns the rendered subtree.
func (f *Fixture) HTML() string {
	if root := f.Node.ShadowRoot(); root != nil {
		return root.HTML()
	}
	return ""
}

// Text returns the text content of the rendered subtree.
func (f *Fixture) Text() string {
	if root := f.Node.ShadowRoot(); root != nil {
		return root.Text()
	}
	return ""
}

// OuterHTML returns the host with its subtree as a declarative shadow root.
func (f *Fixture) OuterHTML() string {
	return f.Node.OuterHTML()
}

// RenderCount returns how many render passes have been applied.
func (f *Fixture) RenderCount() int {
	return f.Element().RenderCount()
}

// Lookup resolves an id through the element's lookup cache.
func (f *Fixture) Lookup(id string) (*html.Node, bool) {
	return f.Element().Lookup(id)
}
