package hxel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concat(args ...any) any {
	out := ""
	for _, a := range args {
		out += a.(string)
	}
	return out
}

func TestDeclareDuplicate(t *testing.T) {
	c := newClass(t, "dup", nil)
	require.NoError(t, c.Declare("a", PropertyDeclaration{Kind: String}))

	err := c.Declare("a", PropertyDeclaration{Kind: Number})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateDeclaration)
	assert.True(t, IsDeclarationError(err))

	var perr *PropertyError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "dup", perr.Class)
	assert.Equal(t, "a", perr.Property)
}

func TestResolveWalksBase(t *testing.T) {
	reg := NewRegistry()
	base, _ := reg.NewClass("base", nil)
	base.MustDeclare("a", PropertyDeclaration{Kind: String, Default: "base"})
	child, _ := reg.NewClass("child", base)
	child.MustDeclare("b", PropertyDeclaration{Kind: Number})

	decl, err := child.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "base", decl.Default)

	_, err = child.Resolve("c")
	assert.True(t, IsUnknownProperty(err))

	assert.Equal(t, []string{"a", "b"}, child.Properties())
	assert.Equal(t, "child", child.Name())
	assert.Same(t, base, child.Base())
	assert.Same(t, reg, child.Registry())
}

func TestOverrideKeepsBaseOrder(t *testing.T) {
	reg := NewRegistry()
	base, _ := reg.NewClass("base", nil)
	base.MustDeclare("a", PropertyDeclaration{Kind: String}).
		MustDeclare("b", PropertyDeclaration{Kind: String})
	child, _ := reg.NewClass("child", base)
	child.MustDeclare("c", PropertyDeclaration{Kind: String}).
		MustDeclare("a", PropertyDeclaration{Kind: Number, Attribute: "a"})

	assert.Equal(t, []string{"a", "b", "c"}, child.Properties())
	assert.Equal(t, []string{"a"}, child.AttributeNames())

	decl, err := child.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "Number", decl.Kind.Name())
}

func TestSealRejectsLateDeclarations(t *testing.T) {
	c := newClass(t, "sealed", nil).
		MustDeclare("a", PropertyDeclaration{Kind: String})
	assert.False(t, c.IsSealed())

	_, err := NewFixture(probeCtor(c, nil), "x-sealed", nil)
	require.NoError(t, err)
	assert.True(t, c.IsSealed())

	err = c.Declare("b", PropertyDeclaration{Kind: String})
	assert.ErrorIs(t, err, ErrClassSealed)
	assert.Panics(t, func() { c.MustDeclare("b", PropertyDeclaration{Kind: String}) })
}

func TestValidateRejectsBadDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		decls map[string]PropertyDeclaration
		order []string
		want  error
	}{
		{
			name: "missing compute",
			decls: map[string]PropertyDeclaration{
				"a": {Kind: String},
				"b": {Kind: String, ComputeFrom: []string{"a"}},
			},
			order: []string{"a", "b"},
			want:  ErrMalformedComputed,
		},
		{
			name: "empty inputs",
			decls: map[string]PropertyDeclaration{
				"b": {Kind: String, Compute: concat},
			},
			order: []string{"b"},
			want:  ErrMalformedComputed,
		},
		{
			name: "attribute backed computed",
			decls: map[string]PropertyDeclaration{
				"a": {Kind: String},
				"b": {Kind: String, Attribute: "b", ComputeFrom: []string{"a"}, Compute: concat},
			},
			order: []string{"a", "b"},
			want:  ErrMalformedComputed,
		},
		{
			name: "self dependency",
			decls: map[string]PropertyDeclaration{
				"a": {Kind: String, ComputeFrom: []string{"a"}, Compute: concat},
			},
			order: []string{"a"},
			want:  ErrMalformedComputed,
		},
		{
			name: "unknown input",
			decls: map[string]PropertyDeclaration{
				"b": {Kind: String, ComputeFrom: []string{"nope"}, Compute: concat},
			},
			order: []string{"b"},
			want:  ErrUnknownProperty,
		},
		{
			name: "cycle",
			decls: map[string]PropertyDeclaration{
				"a": {Kind: String, ComputeFrom: []string{"c"}, Compute: concat},
				"b": {Kind: String, ComputeFrom: []string{"a"}, Compute: concat},
				"c": {Kind: String, ComputeFrom: []string{"b"}, Compute: concat},
			},
			order: []string{"a", "b", "c"},
			want:  ErrDependencyCycle,
		},
		{
			name: "shared attribute",
			decls: map[string]PropertyDeclaration{
				"a": {Kind: String, Attribute: "x"},
				"b": {Kind: Number, Attribute: "x"},
			},
			order: []string{"a", "b"},
			want:  ErrDuplicateDeclaration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClass(t, "bad", nil)
			for _, name := range tt.order {
				require.NoError(t, c.Declare(name, tt.decls[name]))
			}

			_, err := NewFixture(probeCtor(c, nil), "x-bad", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			// The first result is sticky.
			_, again := NewFixture(probeCtor(c, nil), "x-bad", nil)
			assert.Equal(t, err, again)
		})
	}
}

func TestBrokenBaseFailsSubclass(t *testing.T) {
	reg := NewRegistry()
	base, _ := reg.NewClass("base", nil)
	base.MustDeclare("a", PropertyDeclaration{Kind: String, ComputeFrom: []string{"a"}, Compute: concat})
	child, _ := reg.NewClass("child", base)

	_, err := NewFixture(probeCtor(child, nil), "x-child", nil)
	assert.ErrorIs(t, err, ErrMalformedComputed)
}

func TestDeclareCopiesInputs(t *testing.T) {
	deps := []string{"a"}
	c := newClass(t, "copy", nil).
		MustDeclare("a", PropertyDeclaration{Kind: String}).
		MustDeclare("b", PropertyDeclaration{Kind: String, ComputeFrom: deps, Compute: concat})
	deps[0] = "mutated"

	decl, err := c.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, decl.ComputeFrom)
	assert.True(t, decl.IsComputed())
}
