package hxel

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/a-h/templ"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"
)

// Invalidate requests a render.
//
// The first call after the element becomes idle schedules one render pass;
// further calls before that pass runs are coalesced into it. The pending
// flag is cleared before Render is called, so a mutation made during
// rendering schedules a separate pass. Invalidation never renders
// synchronously and is not deduplicated by value: setting a property to its
// current value still schedules a pass.
func (e *Element) Invalidate() {
	if e.constructing {
		return
	}
	if e.pending {
		e.metrics.invalidated(e.class.name, true)
		return
	}
	e.pending = true
	e.metrics.invalidated(e.class.name, false)
	e.sched.Schedule(e.renderPass)
}

// Pending reports whether a render pass is scheduled.
func (e *Element) Pending() bool {
	return e.pending
}

// RenderCount returns how many render passes have been applied to the
// subtree.
func (e *Element) RenderCount() int {
	return e.renders
}

// Render is the default render hook: an empty tree.
func (e *Element) Render(ctx context.Context) templ.Component {
	return templ.NopComponent
}

func (e *Element) renderTree(ctx context.Context) templ.Component {
	if r, ok := e.self.(Renderer); ok {
		if tree := r.Render(ctx); tree != nil {
			return tree
		}
	}
	return e.Render(ctx)
}

func (e *Element) renderPass() {
	e.pending = false
	ctx := e.ctx
	start := time.Now()

	tree := e.renderTree(ctx)

	if e.gate && !e.resolved {
		ready, err := e.resolveDefinitions(ctx, tree)
		if err != nil {
			e.renderFailed("resolve", err)
			return
		}
		if !ready {
			return
		}
	}

	changed, err := e.root.Patch(ctx, tree)
	e.metrics.rendered(e.class.name, time.Since(start), err)
	if err != nil {
		e.renderFailed("patch", err)
		return
	}
	e.renders++
	if changed && e.policy == LookupInvalidateOnRender {
		clear(e.lookup)
	}
	e.logger.Debug("hxel: rendered", "class", e.class.name, "pass", e.renders, "changed", changed)

	if hook, ok := e.self.(RenderedHook); ok {
		hook.OnRendered(ctx, changed)
	}
}

func (e *Element) renderFailed(op string, err error) {
	e.onError(&RenderError{Class: e.class.name, Op: op, Err: err})
}

// resolveDefinitions holds back the first patch until every custom element
// tag used by tree is defined in the registry. When some are missing it
// arranges for a fresh invalidation once they all are.
func (e *Element) resolveDefinitions(ctx context.Context, tree templ.Component) (bool, error) {
	if e.reg == nil {
		e.resolved = true
		return true, nil
	}

	markup, err := templ.ToGoHTML(ctx, tree)
	if err != nil {
		return false, err
	}
	tags := customTags(string(markup))

	var resume func()
	if !e.waiting {
		resume = func() {
			e.sched.Schedule(func() {
				e.waiting = false
				e.wait = nil
				e.Invalidate()
			})
		}
	}
	missing, wait := e.reg.undefined(tags, resume)
	if len(missing) == 0 {
		e.resolved = true
		return true, nil
	}
	if wait != nil {
		e.waiting = true
		e.wait = wait
	}
	e.logger.Debug("hxel: waiting for element definitions", "class", e.class.name, "tags", missing)
	return false, nil
}

// customTags returns the distinct hyphenated tag names in markup.
func customTags(markup string) []string {
	tags := mapset.NewThreadUnsafeSet[string]()
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			out := tags.ToSlice()
			sort.Strings(out)
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if tag := string(name); strings.Contains(tag, "-") {
				tags.Add(tag)
			}
		}
	}
}
