// Package hxel provides a reactive base for custom elements rendered with
// Templ templates.
//
// A component declares typed properties on a Class, embeds *Element and
// implements Render. Property writes never render synchronously: they mark
// the element dirty and a Scheduler runs at most one render pass for any
// number of writes made in the same turn.
//
// # Classes and Properties
//
// Classes are registered by name and may extend a base class. Properties are
// declared with a Kind, an optional default, an optional attribute binding
// and, for computed properties, a compute function and its inputs:
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
// A class is sealed the first time an element is built from it. Sealing
// validates every declaration and rejects cycles between computed
// properties; later declarations fail with ErrClassSealed.
//
// # Attributes
//
// Attribute-backed properties are parsed from the host's attributes when
// they change and written back when the property is set. The write-back is
// not ingested again. Boolean kinds follow presence semantics: an attribute
// that is present is true whatever its value, and false removes it.
//
// # Computed Properties
//
// A computed property is recomputed when any of its inputs change and
// every input has a value. Computed properties may depend on other computed
// properties; dependents run in the order they were declared.
//
// # Rendering
//
// Connected schedules the first render. Each pass renders the component's
// templ.Component into the shadow root via Root.Patch. Until every custom
// tag used in the output is defined the pass is deferred, unless
// WithoutDefinitionGate is given. Lookup finds elements in the rendered
// subtree by id; results are cached until the next pass changes the subtree.
//
// # Hosts
//
// Host and Root abstract the element the component is attached to. DOMHost
// adapts the in-memory implementation in lib/dom, which the Fixture helpers
// use for tests:
//
//	fx, err := hxel.Mount(components.NewCounter, "x-counter", map[string]string{"count": "3"})
//	if err != nil {
//	    return err
//	}
//	fx.Set("count", 4)
//	fx.Flush()
//	fmt.Println(fx.HTML())
//
// # Code Generation
//
// The hxel CLI writes constructors and typed accessors for components:
//
//	//go:generate hxel generate .
//
// For Counter above this produces NewCounter, Count and SetCount in
// counter_hx.go.
package hxel
