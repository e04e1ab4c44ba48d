package hxel

// registerComputed subscribes a computed property to each of its inputs.
//
// The updater only runs Compute when every input is defined, and writes the
// result through the normal set path so further computed properties that
// read name update in turn. It runs once immediately when at least one input
// already holds a value.
func (e *Element) registerComputed(name string, decl *PropertyDeclaration) {
	update := func() {
		args := make([]any, len(decl.ComputeFrom))
		for i, dep := range decl.ComputeFrom {
			v, ok := e.Value(dep)
			if !ok {
				return
			}
			args[i] = v
		}
		e.assign(name, decl, decl.Compute(args...), false)
	}

	anyDefined := false
	for _, dep := range decl.ComputeFrom {
		e.deps[dep] = append(e.deps[dep], update)
		if _, ok := e.Value(dep); ok {
			anyDefined = true
		}
	}
	if anyDefined {
		update()
	}
}

// notifyDependents runs every updater registered under name, in
// registration order.
func (e *Element) notifyDependents(name string) {
	for _, update := range e.deps[name] {
		update()
	}
}

// Dependents returns the computed properties that read name, in
// registration order.
func (e *Element) Dependents(name string) []string {
	var out []string
	for _, prop := range e.class.Properties() {
		decl, _ := e.class.Resolve(prop)
		for _, dep := range decl.ComputeFrom {
			if dep == name {
				out = append(out, prop)
				break
			}
		}
	}
	return out
}
