package hxel

import (
	"fmt"
	"sync"
)

// PropertyDeclaration describes one property of a class.
//
// A declaration is immutable once registered. Attribute links the property
// to a host attribute; attribute-backed properties take their initial value
// from the attribute, never from Default.
//
// Computed properties name their inputs in ComputeFrom and derive their
// value with Compute, which receives the current input values in the same
// order:
//
//	hxel.PropertyDeclaration{
//	    Kind:        hxel.String,
//	    ComputeFrom: []string{"first", "last"},
//	    Compute: func(args ...any) any {
//	        return args[0].(string) + " " + args[1].(string)
//	    },
//	}
type PropertyDeclaration struct {
	Kind        Kind
	Default     any
	Attribute   string
	ComputeFrom []string
	Compute     func(args ...any) any
}

// IsComputed reports whether the property derives its value from others.
func (d *PropertyDeclaration) IsComputed() bool {
	return len(d.ComputeFrom) > 0 || d.Compute != nil
}

// Class is the per-type property table shared by every instance of a
// component type. Classes form a chain through their base; lookups walk
// toward the base and the nearest declaration wins.
type Class struct {
	name  string
	base  *Class
	reg   *Registry
	mu    sync.RWMutex
	props map[string]*PropertyDeclaration
	order []string

	sealOnce sync.Once
	sealErr  error
	sealed   bool
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// Base returns the base class, or nil.
func (c *Class) Base() *Class {
	return c.base
}

// Registry returns the registry the class was defined in.
func (c *Class) Registry() *Registry {
	return c.reg
}

// Declare registers decl under name.
//
// A class may re-declare a property of its base to override it, but not
// one of its own. Declarations are rejected once the first instance of the
// class, or of any subclass, has been constructed.
func (c *Class) Declare(name string, decl PropertyDeclaration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sealed {
		return propertyErr(c.name, name, ErrClassSealed)
	}
	if _, exists := c.props[name]; exists {
		return propertyErr(c.name, name, ErrDuplicateDeclaration)
	}
	if decl.ComputeFrom != nil {
		decl.ComputeFrom = append([]string(nil), decl.ComputeFrom...)
	}
	c.props[name] = &decl
	c.order = append(c.order, name)
	return nil
}

// MustDeclare is like Declare but panics on error. It returns the class so
// declarations can be chained at package level.
func (c *Class) MustDeclare(name string, decl PropertyDeclaration) *Class {
	if err := c.Declare(name, decl); err != nil {
		panic(err)
	}
	return c
}

// Resolve returns the nearest declaration of name, walking toward the base.
func (c *Class) Resolve(name string) (*PropertyDeclaration, error) {
	for cur := c; cur != nil; cur = cur.base {
		cur.mu.RLock()
		decl, ok := cur.props[name]
		cur.mu.RUnlock()
		if ok {
			return decl, nil
		}
	}
	return nil, propertyErr(c.name, name, ErrUnknownProperty)
}

// Properties returns every property visible on the class, base class
// declarations first, each name once.
func (c *Class) Properties() []string {
	var chain []*Class
	for cur := c; cur != nil; cur = cur.base {
		chain = append(chain, cur)
	}

	seen := make(map[string]bool)
	var names []string
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		cur.mu.RLock()
		for _, name := range cur.order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		cur.mu.RUnlock()
	}
	return names
}

// AttributeNames returns the attribute names the host should observe, in
// property order.
func (c *Class) AttributeNames() []string {
	var attrs []string
	seen := make(map[string]bool)
	for _, name := range c.Properties() {
		decl, err := c.Resolve(name)
		if err != nil || decl.Attribute == "" || seen[decl.Attribute] {
			continue
		}
		seen[decl.Attribute] = true
		attrs = append(attrs, decl.Attribute)
	}
	return attrs
}

// IsSealed reports whether the class no longer accepts declarations.
func (c *Class) IsSealed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sealed
}

// seal freezes the class chain and validates computed declarations. It runs
// once per class; later calls return the first result.
func (c *Class) seal() error {
	c.sealOnce.Do(func() {
		if c.base != nil {
			if err := c.base.seal(); err != nil {
				c.sealErr = err
				return
			}
		}
		c.mu.Lock()
		c.sealed = true
		c.mu.Unlock()
		c.sealErr = c.validate()
	})
	return c.sealErr
}

func (c *Class) validate() error {
	names := c.Properties()
	attrOwner := make(map[string]string)

	for _, name := range names {
		decl, _ := c.Resolve(name)
		if decl.Attribute != "" {
			if owner, taken := attrOwner[decl.Attribute]; taken {
				return propertyErr(c.name, name,
					fmt.Errorf("%w: attribute %q already bound to %q", ErrDuplicateDeclaration, decl.Attribute, owner))
			}
			attrOwner[decl.Attribute] = name
		}
		if !decl.IsComputed() {
			continue
		}
		switch {
		case decl.Compute == nil:
			return propertyErr(c.name, name, fmt.Errorf("%w: missing Compute", ErrMalformedComputed))
		case len(decl.ComputeFrom) == 0:
			return propertyErr(c.name, name, fmt.Errorf("%w: empty ComputeFrom", ErrMalformedComputed))
		case decl.Attribute != "":
			return propertyErr(c.name, name, fmt.Errorf("%w: computed property cannot be attribute-backed", ErrMalformedComputed))
		}
		for _, dep := range decl.ComputeFrom {
			if dep == name {
				return propertyErr(c.name, name, fmt.Errorf("%w: depends on itself", ErrMalformedComputed))
			}
			if _, err := c.Resolve(dep); err != nil {
				return propertyErr(c.name, name, fmt.Errorf("%w: dependency %q: %w", ErrMalformedComputed, dep, ErrUnknownProperty))
			}
		}
	}
	return c.checkCycles(names)
}

// checkCycles walks the computed graph depth first. An edge runs from a
// computed property to each property it reads.
func (c *Class) checkCycles(names []string) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return propertyErr(c.name, name, fmt.Errorf("%w: %v", ErrDependencyCycle, append(path, name)))
		case done:
			return nil
		}
		state[name] = visiting
		decl, _ := c.Resolve(name)
		for _, dep := range decl.ComputeFrom {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}
