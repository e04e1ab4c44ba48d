package hxel

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// Constructor builds a component instance on a host. Generated by the
// component author, typically wrapping New:
//
//	func NewCounter(host hxel.Host, opts ...hxel.Option) (hxel.Component, error) {
//	    c := &Counter{}
//	    el, err := hxel.New(CounterClass, host, c, opts...)
//	    if err != nil {
//	        return nil, err
//	    }
//	    c.Element = el
//	    return c, nil
//	}
type Constructor func(host Host, opts ...Option) (Component, error)

// Component is anything that embeds *Element.
type Component interface {
	Base() *Element
}

// definition is a registered custom element.
type definition struct {
	tag   string
	class *Class
	ctor  Constructor
}

// Registry is a process-wide table of classes and element definitions.
//
// Classes are keyed by a stable name and created once; their property
// tables are frozen when the first instance is constructed. Element
// definitions map custom element tags to constructors and resolve the
// futures returned by WhenDefined.
type Registry struct {
	mu       sync.RWMutex
	classes  map[string]*Class
	elements map[string]*definition
	waiters  map[string]chan struct{}
	pending  []*definitionWait
}

// definitionWait is a one-shot callback waiting for a set of tags.
type definitionWait struct {
	missing map[string]bool
	fn      func()
}

// DefaultRegistry is the registry used by the package-level helpers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes:  make(map[string]*Class),
		elements: make(map[string]*definition),
		waiters:  make(map[string]chan struct{}),
	}
}

// NewClass creates a class named name extending base (which may be nil).
func (reg *Registry) NewClass(name string, base *Class) (*Class, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.classes[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateClass, name)
	}
	c := &Class{
		name:  name,
		base:  base,
		reg:   reg,
		props: make(map[string]*PropertyDeclaration),
	}
	reg.classes[name] = c
	return c, nil
}

// Class returns the class registered under name.
func (reg *Registry) Class(name string) (*Class, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.classes[name]
	return c, ok
}

// Classes returns every registered class name, sorted.
func (reg *Registry) Classes() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.classes))
	for name := range reg.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var tagPattern = regexp.MustCompile(`^[a-z][a-z0-9._]*-[a-z0-9._-]*$`)

// ValidTagName reports whether tag is a valid custom element name.
func ValidTagName(tag string) bool {
	return tagPattern.MatchString(tag)
}

// DefineElement registers ctor under tag. Definition waiters for tag are
// released after the registry lock is dropped, on the caller's goroutine.
func (reg *Registry) DefineElement(tag string, class *Class, ctor Constructor) error {
	if !ValidTagName(tag) {
		return fmt.Errorf("%w: %q", ErrInvalidTagName, tag)
	}

	reg.mu.Lock()
	if _, exists := reg.elements[tag]; exists {
		reg.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateElement, tag)
	}
	reg.elements[tag] = &definition{tag: tag, class: class, ctor: ctor}

	if ch, ok := reg.waiters[tag]; ok {
		close(ch)
		delete(reg.waiters, tag)
	}

	var ready []func()
	remaining := reg.pending[:0]
	for _, w := range reg.pending {
		delete(w.missing, tag)
		if len(w.missing) == 0 {
			ready = append(ready, w.fn)
			continue
		}
		remaining = append(remaining, w)
	}
	reg.pending = remaining
	reg.mu.Unlock()

	for _, fn := range ready {
		fn()
	}
	return nil
}

// MustDefineElement is like DefineElement but panics on error.
func (reg *Registry) MustDefineElement(tag string, class *Class, ctor Constructor) {
	if err := reg.DefineElement(tag, class, ctor); err != nil {
		panic(err)
	}
}

// Defined reports whether tag has been defined.
func (reg *Registry) Defined(tag string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.elements[tag]
	return ok
}

// Tags returns every defined tag, sorted.
func (reg *Registry) Tags() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tags := make([]string, 0, len(reg.elements))
	for tag := range reg.elements {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ElementClass returns the class registered for tag.
func (reg *Registry) ElementClass(tag string) (*Class, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	def, ok := reg.elements[tag]
	if !ok {
		return nil, false
	}
	return def.class, true
}

// WhenDefined returns a channel that is closed once tag is defined. The
// channel is already closed if it is.
func (reg *Registry) WhenDefined(tag string) <-chan struct{} {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.elements[tag]; ok {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	ch, ok := reg.waiters[tag]
	if !ok {
		ch = make(chan struct{})
		reg.waiters[tag] = ch
	}
	return ch
}

// Create constructs the element registered under tag on host.
func (reg *Registry) Create(tag string, host Host, opts ...Option) (Component, error) {
	reg.mu.RLock()
	def, ok := reg.elements[tag]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, tag)
	}
	return def.ctor(host, append([]Option{WithRegistry(reg)}, opts...)...)
}

// undefined returns the subset of tags that are not defined yet. When some
// are missing and fn is non-nil, fn is called once all of them are defined;
// the returned wait can be passed to cancelWait to drop it.
func (reg *Registry) undefined(tags []string, fn func()) ([]string, *definitionWait) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var missing []string
	for _, tag := range tags {
		if _, ok := reg.elements[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 && fn != nil {
		w := &definitionWait{missing: make(map[string]bool, len(missing)), fn: fn}
		for _, tag := range missing {
			w.missing[tag] = true
		}
		reg.pending = append(reg.pending, w)
		return missing, w
	}
	return missing, nil
}

// cancelWait removes a wait registered by undefined. It is a no-op once the
// wait has fired.
func (reg *Registry) cancelWait(w *definitionWait) {
	if w == nil {
		return
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for i, p := range reg.pending {
		if p == w {
			reg.pending = append(reg.pending[:i], reg.pending[i+1:]...)
			return
		}
	}
}

// DefineClass creates a class in DefaultRegistry.
func DefineClass(name string, base *Class) (*Class, error) {
	return DefaultRegistry.NewClass(name, base)
}

// MustDefineClass is like DefineClass but panics on error.
func MustDefineClass(name string, base *Class) *Class {
	c, err := DefaultRegistry.NewClass(name, base)
	if err != nil {
		panic(err)
	}
	return c
}

// DefineElement registers an element in DefaultRegistry.
func DefineElement(tag string, class *Class, ctor Constructor) error {
	return DefaultRegistry.DefineElement(tag, class, ctor)
}

// WhenDefined waits on DefaultRegistry.
func WhenDefined(tag string) <-chan struct{} {
	return DefaultRegistry.WhenDefined(tag)
}
