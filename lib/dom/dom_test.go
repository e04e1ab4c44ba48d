package dom

import (
	"context"
	"errors"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type change struct {
	name    string
	value   string
	present bool
}

type recorder struct {
	observed     []string
	changes      []change
	connected    int
	disconnected int
}

func (r *recorder) ObservedAttributes() []string { return r.observed }
func (r *recorder) Connected()                   { r.connected++ }
func (r *recorder) Disconnected()                { r.disconnected++ }

func (r *recorder) AttributeChanged(name, value string, present bool) {
	r.changes = append(r.changes, change{name, value, present})
}

func TestAttributes(t *testing.T) {
	el := NewElement("x-el")
	_, ok := el.Attribute("a")
	assert.False(t, ok)

	el.SetAttribute("a", "1")
	el.SetAttribute("a", "2")
	v, ok := el.Attribute("a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Len(t, el.Attributes(), 1)

	el.RemoveAttribute("a")
	_, ok = el.Attribute("a")
	assert.False(t, ok)
}

func TestObserverNotifications(t *testing.T) {
	el := NewElement("x-el")
	rec := &recorder{observed: []string{"watched"}}
	el.Observe(rec)

	el.SetAttribute("watched", "1")
	el.SetAttribute("watched", "1")
	el.SetAttribute("ignored", "1")
	el.RemoveAttribute("watched")
	el.RemoveAttribute("watched")

	assert.Equal(t, []change{
		{"watched", "1", true},
		{"watched", "1", true},
		{"watched", "", false},
	}, rec.changes)
}

func TestDocumentConnects(t *testing.T) {
	doc := NewDocument()
	el := NewElement("x-el")
	rec := &recorder{}
	el.Observe(rec)

	doc.Append(el)
	doc.Append(el)
	assert.True(t, el.IsConnected())
	assert.Equal(t, 1, rec.connected)
	assert.Len(t, doc.Elements(), 1)

	doc.Remove(el)
	assert.False(t, el.IsConnected())
	assert.Equal(t, 1, rec.disconnected)
	assert.Empty(t, doc.Elements())
}

func TestObserveConnectedElement(t *testing.T) {
	doc := NewDocument()
	el := NewElement("x-el")
	doc.Append(el)

	rec := &recorder{}
	el.Observe(rec)
	assert.Equal(t, 1, rec.connected)
}

func TestAttachShadowIsIdempotent(t *testing.T) {
	el := NewElement("x-el")
	assert.Nil(t, el.ShadowRoot())

	root := el.AttachShadow()
	assert.Same(t, root, el.AttachShadow())
	assert.Same(t, root, el.ShadowRoot())
	assert.Same(t, el, root.Host())
}

func TestPatch(t *testing.T) {
	ctx := context.Background()
	root := NewElement("x-el").AttachShadow()

	changed, err := root.Patch(ctx, templ.Raw(`<p id="a">one</p>`))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `<p id="a">one</p>`, root.HTML())

	first := root.GetElementByID("a")
	require.NotNil(t, first)

	changed, err = root.Patch(ctx, templ.Raw(`<p id="a">one</p>`))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, first, root.GetElementByID("a"))

	changed, err = root.Patch(ctx, templ.Raw(`<p id="a">two</p><div><span id="b"></span></div>`))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotSame(t, first, root.GetElementByID("a"))
	assert.NotNil(t, root.GetElementByID("b"))
	assert.Nil(t, root.GetElementByID("c"))
	assert.Equal(t, "two", root.Text())
}

func TestPatchAfterManualChange(t *testing.T) {
	ctx := context.Background()
	root := NewElement("x-el").AttachShadow()

	_, err := root.Patch(ctx, templ.Raw(`<p>x</p>`))
	require.NoError(t, err)
	require.NoError(t, root.AppendHTML(`<i id="extra"></i>`))
	assert.NotNil(t, root.GetElementByID("extra"))

	changed, err := root.Patch(ctx, templ.Raw(`<p>x</p>`))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, root.GetElementByID("extra"))
}

func TestPatchError(t *testing.T) {
	root := NewElement("x-el").AttachShadow()
	boom := errors.New("boom")

	changed, err := root.Patch(context.Background(), templ.Raw("", boom))
	assert.ErrorIs(t, err, boom)
	assert.False(t, changed)
}

func TestOuterHTML(t *testing.T) {
	el := NewElement("x-el")
	el.SetAttribute("title", "a&b")
	assert.Equal(t, `<x-el title="a&amp;b"></x-el>`, el.OuterHTML())

	_, err := el.AttachShadow().Patch(context.Background(), templ.Raw(`<b>hi</b>`))
	require.NoError(t, err)
	assert.Equal(t, `<x-el title="a&amp;b"><template shadowrootmode="open"><b>hi</b></template></x-el>`, el.OuterHTML())

	doc := NewDocument()
	doc.Append(el)
	assert.Equal(t, el.OuterHTML(), doc.HTML())
}

func TestAttr(t *testing.T) {
	root := NewElement("x-el").AttachShadow()
	require.NoError(t, root.AppendHTML(`<a id="l" href="/x"></a>`))

	n := root.GetElementByID("l")
	require.NotNil(t, n)
	v, ok := Attr(n, "href")
	assert.True(t, ok)
	assert.Equal(t, "/x", v)
	assert.Same(t, root.Node(), n.Parent)
}
