// Package dom is an in-memory element model over golang.org/x/net/html.
//
// It provides the platform primitives a reactive element needs: host
// attributes with change notification, an isolated shadow subtree, id
// lookup within that subtree, and patching a rendered templ tree into it.
package dom

import (
	"bytes"
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Observer receives notifications for one element.
type Observer interface {
	ObservedAttributes() []string
	AttributeChanged(name, value string, present bool)
	Connected()
	Disconnected()
}

// Element is a host element.
type Element struct {
	node      *html.Node
	shadow    *ShadowRoot
	obs       Observer
	observed  map[string]bool
	connected bool
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return &Element{
		node: &html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: atom.Lookup([]byte(tag)),
		},
	}
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Node returns the underlying node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Attribute returns an attribute value and whether it is present.
func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Attributes returns a copy of the element's attributes.
func (e *Element) Attributes() []html.Attribute {
	return append([]html.Attribute(nil), e.node.Attr...)
}

// SetAttribute sets an attribute and notifies the observer if it watches
// name. The notification fires even when the value is unchanged.
func (e *Element) SetAttribute(name, value string) {
	setAttr(e.node, name, value)
	if e.obs != nil && e.observed[name] {
		e.obs.AttributeChanged(name, value, true)
	}
}

// RemoveAttribute removes an attribute and notifies the observer if the
// attribute was present and watched.
func (e *Element) RemoveAttribute(name string) {
	if !removeAttr(e.node, name) {
		return
	}
	if e.obs != nil && e.observed[name] {
		e.obs.AttributeChanged(name, "", false)
	}
}

// AttachShadow attaches the isolated subtree, or returns the one already
// attached.
func (e *Element) AttachShadow() *ShadowRoot {
	if e.shadow == nil {
		e.shadow = &ShadowRoot{
			host: e,
			node: &html.Node{Type: html.DocumentNode},
		}
	}
	return e.shadow
}

// ShadowRoot returns the attached subtree, or nil.
func (e *Element) ShadowRoot() *ShadowRoot {
	return e.shadow
}

// Observe installs the element's observer. If the element is already
// connected the observer is told so immediately.
func (e *Element) Observe(obs Observer) {
	e.obs = obs
	e.observed = make(map[string]bool)
	for _, name := range obs.ObservedAttributes() {
		e.observed[name] = true
	}
	if e.connected {
		obs.Connected()
	}
}

// IsConnected reports whether the element is in a document.
func (e *Element) IsConnected() bool {
	return e.connected
}

// OuterHTML renders the element with its shadow subtree as a declarative
// shadow root template.
func (e *Element) OuterHTML() string {
	clone := &html.Node{
		Type:     html.ElementNode,
		Data:     e.node.Data,
		DataAtom: e.node.DataAtom,
		Attr:     e.Attributes(),
	}
	if e.shadow != nil {
		tmpl := &html.Node{
			Type:     html.ElementNode,
			Data:     "template",
			DataAtom: atom.Template,
			Attr:     []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		tmpl.AppendChild(&html.Node{Type: html.RawNode, Data: e.shadow.HTML()})
		clone.AppendChild(tmpl)
	}
	var buf bytes.Buffer
	_ = html.Render(&buf, clone)
	return buf.String()
}

// Document holds connected elements.
type Document struct {
	elements []*Element
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Append connects el.
func (d *Document) Append(el *Element) {
	if el.connected {
		return
	}
	d.elements = append(d.elements, el)
	el.connected = true
	if el.obs != nil {
		el.obs.Connected()
	}
}

// Remove disconnects el.
func (d *Document) Remove(el *Element) {
	for i, cur := range d.elements {
		if cur != el {
			continue
		}
		d.elements = append(d.elements[:i], d.elements[i+1:]...)
		el.connected = false
		if el.obs != nil {
			el.obs.Disconnected()
		}
		return
	}
}

// Elements returns the connected elements in insertion order.
func (d *Document) Elements() []*Element {
	return append([]*Element(nil), d.elements...)
}

// HTML renders every connected element.
func (d *Document) HTML() string {
	var sb strings.Builder
	for _, el := range d.elements {
		sb.WriteString(el.OuterHTML())
	}
	return sb.String()
}

// ShadowRoot is the isolated subtree of one element.
type ShadowRoot struct {
	host    *Element
	node    *html.Node
	lastSum uint64
	hasSum  bool
	dirty   bool
}

// Host returns the element the subtree is attached to.
func (r *ShadowRoot) Host() *Element {
	return r.host
}

// Node returns the container node. Its children are the subtree.
func (r *ShadowRoot) Node() *html.Node {
	return r.node
}

// GetElementByID finds an element by id within the subtree.
func (r *ShadowRoot) GetElementByID(id string) *html.Node {
	return findByID(r.node, id)
}

// AppendChild appends n to the subtree outside of a render pass.
func (r *ShadowRoot) AppendChild(n *html.Node) {
	r.node.AppendChild(n)
	r.dirty = true
}

// AppendHTML parses markup and appends the resulting nodes.
func (r *ShadowRoot) AppendHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext())
	if err != nil {
		return err
	}
	for _, n := range nodes {
		r.AppendChild(n)
	}
	return nil
}

// Patch renders tree and replaces the subtree with the result. When the
// rendered markup is identical to the last patch and the subtree was not
// modified in between, the subtree is left untouched and Patch reports no
// change.
func (r *ShadowRoot) Patch(ctx context.Context, tree templ.Component) (bool, error) {
	var buf bytes.Buffer
	if err := tree.Render(ctx, &buf); err != nil {
		return false, err
	}

	sum := xxhash.Sum64(buf.Bytes())
	if r.hasSum && sum == r.lastSum && !r.dirty {
		return false, nil
	}

	nodes, err := html.ParseFragment(&buf, fragmentContext())
	if err != nil {
		return false, err
	}
	for c := r.node.FirstChild; c != nil; {
		next := c.NextSibling
		r.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		r.node.AppendChild(n)
	}

	r.lastSum = sum
	r.hasSum = true
	r.dirty = false
	return true, nil
}

// HTML renders the subtree.
func (r *ShadowRoot) HTML() string {
	var buf bytes.Buffer
	for c := r.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// Text returns the concatenated text content of the subtree.
func (r *ShadowRoot) Text() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(r.node)
	return sb.String()
}

func fragmentContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func findByID(n *html.Node, id string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if v, ok := attr(c, "id"); ok && v == id {
				return c
			}
		}
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of an attribute on n.
func Attr(n *html.Node, key string) (string, bool) {
	return attr(n, key)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}
