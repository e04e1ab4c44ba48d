package hxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func withID(tag, id string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
}

func TestLookupMemoizesHits(t *testing.T) {
	f, err := Mount(probeCtor(counterClass(t), func(*Element) string {
		return `<div><button id="inc">+</button></div>`
	}), "x-counter", nil)
	require.NoError(t, err)

	first, ok := f.Lookup("inc")
	require.True(t, ok)
	assert.Equal(t, "button", first.Data)

	second, ok := f.Lookup("inc")
	require.True(t, ok)
	assert.Same(t, first, second)
}

func TestLookupDoesNotCacheMisses(t *testing.T) {
	f, err := Mount(probeCtor(counterClass(t), nil), "x-counter", nil)
	require.NoError(t, err)

	_, ok := f.Lookup("late")
	assert.False(t, ok)

	added := withID("span", "late")
	f.Node.ShadowRoot().AppendChild(added)

	got, ok := f.Lookup("late")
	require.True(t, ok)
	assert.Same(t, added, got)
}

func TestLookupInvalidatedByRender(t *testing.T) {
	f, err := Mount(probeCtor(counterClass(t), func(e *Element) string {
		return `<p id="out">` + e.String("count") + `</p>`
	}), "x-counter", nil)
	require.NoError(t, err)

	before, ok := f.Lookup("out")
	require.True(t, ok)

	require.NoError(t, f.Set("count", 1))
	f.Flush()

	after, ok := f.Lookup("out")
	require.True(t, ok)
	assert.NotSame(t, before, after)
	assert.Equal(t, "1", after.FirstChild.Data)
}

func TestLookupRetainedAcrossUnchangedRender(t *testing.T) {
	f, err := Mount(probeCtor(counterClass(t), func(*Element) string {
		return `<p id="out">static</p>`
	}), "x-counter", nil)
	require.NoError(t, err)

	before, _ := f.Lookup("out")
	f.Element().Invalidate()
	f.Flush()

	after, _ := f.Lookup("out")
	assert.Same(t, before, after)
}

func TestLookupRetainPolicy(t *testing.T) {
	f, err := Mount(probeCtor(counterClass(t), func(e *Element) string {
		return `<p id="out">` + e.String("count") + `</p>`
	}), "x-counter", nil, WithLookupPolicy(LookupRetain))
	require.NoError(t, err)

	before, _ := f.Lookup("out")
	require.NoError(t, f.Set("count", 1))
	f.Flush()

	after, _ := f.Lookup("out")
	assert.Same(t, before, after)
	assert.Equal(t, "0", after.FirstChild.Data)
	assert.Equal(t, "retain", LookupRetain.String())
	assert.Equal(t, "render", LookupInvalidateOnRender.String())
}
