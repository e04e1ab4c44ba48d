package hxel

import (
	"context"
	"log/slog"

	"github.com/spf13/cast"
	"golang.org/x/net/html"
)

// Element is the base type embedded by concrete components.
//
// Components embed *Element to gain the property store, attribute
// synchronization, computed properties, batched rendering and the lookup
// cache. The concrete component is passed to New as self so the element can
// dispatch to its Render method and lifecycle hooks.
//
// Example:
//
//	var CounterClass = hxel.MustDefineClass("counter", nil).
//	    MustDeclare("count", hxel.PropertyDeclaration{Kind: hxel.Number, Attribute: "count"})
//
//	type Counter struct {
//	    *hxel.Element
//	}
//
//	func (c *Counter) Render(ctx context.Context) templ.Component {
//	    return counterView(c.Float("count"))
//	}
//
// An Element is owned by one goroutine: the one draining its Scheduler.
// None of its methods are safe for concurrent use.
type Element struct {
	class   *Class
	host    Host
	root    Root
	self    any
	reg     *Registry
	sched   Scheduler
	ctx     context.Context
	logger  *slog.Logger
	metrics *Metrics
	onError func(error)
	policy  LookupPolicy
	gate    bool

	values  map[string]any
	attrMap map[string]string
	deps    map[string][]func()
	lookup  map[string]*html.Node

	constructing  bool
	observing     bool
	connectQueued bool
	reflecting    string
	connected     bool

	pending  bool
	resolved bool
	waiting  bool
	wait     *definitionWait
	renders  int
}

// Option configures an Element.
type Option func(*Element)

// WithScheduler sets the scheduler render passes are queued on. The default
// is DefaultLoop.
func WithScheduler(s Scheduler) Option {
	return func(e *Element) { e.sched = s }
}

// WithRegistry sets the registry used to resolve custom element tags for the
// first-render definition gate. The default is the class's registry.
func WithRegistry(reg *Registry) Option {
	return func(e *Element) { e.reg = reg }
}

// WithContext sets the context passed to Render and lifecycle hooks.
func WithContext(ctx context.Context) Option {
	return func(e *Element) { e.ctx = ctx }
}

// WithLogger sets the element logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Element) { e.logger = l }
}

// WithMetrics records invalidations, renders and lookups on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Element) { e.metrics = m }
}

// WithErrorHandler replaces the default handler, which logs at error level.
// It receives *PropertyError for bad attribute notifications and
// *RenderError for failed render passes.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Element) { e.onError = fn }
}

// WithLookupPolicy selects when the lookup cache is cleared.
func WithLookupPolicy(p LookupPolicy) Option {
	return func(e *Element) { e.policy = p }
}

// WithoutDefinitionGate renders immediately even if the tree uses custom
// element tags that are not defined yet.
func WithoutDefinitionGate() Option {
	return func(e *Element) { e.gate = false }
}

// DefaultLoop is the scheduler used when no WithScheduler option is given.
var DefaultLoop = NewLoop()

// New constructs an element of class on host.
//
// Construction seals the class, attaches the isolated subtree, seeds
// defaults for plain properties and values for attribute-backed properties
// from the host's current attributes, registers computed properties and
// subscribes to host notifications. It does not schedule a render; the
// first render follows Connected or the first mutation.
func New(class *Class, host Host, self any, opts ...Option) (*Element, error) {
	if err := class.seal(); err != nil {
		return nil, err
	}

	e := &Element{
		class:   class,
		host:    host,
		self:    self,
		reg:     class.reg,
		sched:   DefaultLoop,
		ctx:     context.Background(),
		policy:  LookupInvalidateOnRender,
		gate:    true,
		values:  make(map[string]any),
		attrMap: make(map[string]string),
		deps:    make(map[string][]func()),
		lookup:  make(map[string]*html.Node),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.onError == nil {
		e.onError = e.logError
	}

	e.constructing = true

	e.root = host.AttachShadow()

	names := class.Properties()
	var computed []string
	for _, name := range names {
		decl, _ := class.Resolve(name)
		switch {
		case decl.Attribute != "":
			e.attrMap[decl.Attribute] = name
		case decl.IsComputed():
			computed = append(computed, name)
		case decl.Default != nil:
			e.values[name] = decl.Kind.Coerce(decl.Kind.copyDefault(decl.Default))
		}
	}

	for _, attr := range class.AttributeNames() {
		value, present := host.Attribute(attr)
		if err := e.ingest(attr, value, present); err != nil {
			return nil, err
		}
	}

	for _, name := range computed {
		decl, _ := class.Resolve(name)
		e.registerComputed(name, decl)
	}

	e.constructing = false
	e.observing = true
	host.Observe(e)
	e.observing = false
	return e, nil
}

// Base returns the element itself. It lets any component embedding *Element
// satisfy Component.
func (e *Element) Base() *Element {
	return e
}

// Class returns the element's class.
func (e *Element) Class() *Class {
	return e.class
}

// Host returns the platform element.
func (e *Element) Host() Host {
	return e.host
}

// Root returns the isolated subtree.
func (e *Element) Root() Root {
	return e.root
}

// IsConnected reports whether the element is attached to a document.
func (e *Element) IsConnected() bool {
	return e.connected
}

// Set assigns a property. The value is coerced by the property's kind,
// computed dependents are updated, the linked attribute (if any) is written
// and a render is scheduled.
func (e *Element) Set(name string, v any) error {
	decl, err := e.class.Resolve(name)
	if err != nil {
		return err
	}
	e.assign(name, decl, v, true)
	return nil
}

// MustSet is like Set but panics on an unknown property.
func (e *Element) MustSet(name string, v any) {
	if err := e.Set(name, v); err != nil {
		panic(err)
	}
}

// Get returns the current value of a property, or nil when absent.
func (e *Element) Get(name string) any {
	return e.values[name]
}

// Value returns the current value of a property and whether it is defined.
func (e *Element) Value(name string) (any, bool) {
	v, ok := e.values[name]
	return v, ok && v != nil
}

// String returns a property as a string.
func (e *Element) String(name string) string {
	return cast.ToString(e.values[name])
}

// Float returns a property as a float64.
func (e *Element) Float(name string) float64 {
	return cast.ToFloat64(e.values[name])
}

// Int returns a property as an int.
func (e *Element) Int(name string) int {
	return cast.ToInt(e.values[name])
}

// Bool returns a property as a bool.
func (e *Element) Bool(name string) bool {
	return cast.ToBool(e.values[name])
}

// Values returns a copy of the property store.
func (e *Element) Values() map[string]any {
	out := make(map[string]any, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// ObservedAttributes lists the attributes backing properties.
func (e *Element) ObservedAttributes() []string {
	return e.class.AttributeNames()
}

// Connected ingests every observed attribute currently present on the host,
// runs the ConnectedHook and schedules a render.
//
// A host that is already connected when New subscribes reports it before
// the component has its *Element assigned. That notification is queued on
// the scheduler and handled on the next turn.
func (e *Element) Connected() {
	if e.observing {
		if !e.connectQueued {
			e.connectQueued = true
			e.sched.Schedule(e.queuedConnect)
		}
		return
	}
	e.connect()
}

func (e *Element) queuedConnect() {
	if !e.connectQueued {
		return
	}
	e.connectQueued = false
	e.connect()
}

func (e *Element) connect() {
	e.connected = true
	for _, attr := range e.class.AttributeNames() {
		value, present := e.host.Attribute(attr)
		if !present {
			continue
		}
		if err := e.ingest(attr, value, present); err != nil {
			e.onError(err)
		}
	}
	if hook, ok := e.self.(ConnectedHook); ok {
		hook.OnConnected(e.ctx)
	}
	e.Invalidate()
}

// Disconnected runs the DisconnectedHook and drops any wait on element
// definitions. A queued connect that has not run yet is cancelled instead.
func (e *Element) Disconnected() {
	if e.connectQueued {
		e.connectQueued = false
		return
	}
	e.connected = false
	if e.waiting {
		e.reg.cancelWait(e.wait)
		e.waiting = false
		e.wait = nil
	}
	if hook, ok := e.self.(DisconnectedHook); ok {
		hook.OnDisconnected(e.ctx)
	}
}

// assign is the single write path shared by programmatic sets and computed
// updates.
func (e *Element) assign(name string, decl *PropertyDeclaration, v any, reflect bool) {
	value := decl.Kind.Coerce(v)
	e.store(name, value)
	if reflect && decl.Attribute != "" {
		e.reflectAttribute(decl, value)
	}
	e.Invalidate()
}

// store writes the property store and runs dependents.
func (e *Element) store(name string, value any) {
	e.values[name] = value
	e.notifyDependents(name)
}

func (e *Element) logError(err error) {
	e.logger.Error("hxel: element error", "class", e.class.name, "err", err)
}
