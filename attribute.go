package hxel

// AttributeChanged applies a host attribute change to the linked property
// and schedules a render. present is false when the attribute was removed.
//
// The property is written through the same path as Set, so computed
// dependents update, but the attribute is not written back: it is already
// the source of truth for this mutation.
func (e *Element) AttributeChanged(name, value string, present bool) {
	if e.reflecting == name {
		// Echo of our own reflectAttribute write.
		return
	}
	if err := e.ingest(name, value, present); err != nil {
		e.logger.Warn("hxel: attribute change ignored", "class", e.class.name, "attribute", name)
		e.onError(err)
		return
	}
	if hook, ok := e.self.(AttributeHook); ok {
		hook.OnAttributeChanged(e.ctx, name, value, present)
	}
	e.Invalidate()
}

// ingest coerces an attribute value into the property store.
func (e *Element) ingest(attr, value string, present bool) error {
	name, ok := e.attrMap[attr]
	if !ok {
		return propertyErr(e.class.name, attr, ErrUnmappedAttribute)
	}
	decl, err := e.class.Resolve(name)
	if err != nil {
		return err
	}

	var v any
	switch {
	case decl.Kind.IsBoolean():
		v = present
	case !present:
		v = decl.Kind.Empty()
	default:
		v = decl.Kind.Parse(value)
	}
	e.store(name, v)
	return nil
}

// reflectAttribute writes a property value to its linked attribute. Boolean
// kinds use the presence-flag convention; an absent value removes the
// attribute.
func (e *Element) reflectAttribute(decl *PropertyDeclaration, value any) {
	prev := e.reflecting
	e.reflecting = decl.Attribute
	defer func() { e.reflecting = prev }()

	switch {
	case decl.Kind.IsBoolean():
		if on, _ := value.(bool); on {
			e.host.SetAttribute(decl.Attribute, "")
		} else {
			e.host.RemoveAttribute(decl.Attribute)
		}
	case value == nil:
		e.host.RemoveAttribute(decl.Attribute)
	default:
		e.host.SetAttribute(decl.Attribute, decl.Kind.Format(value))
	}
}
