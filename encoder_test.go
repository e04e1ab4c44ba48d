package hxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestore(t *testing.T) {
	enc, err := NewEncoder([]byte("snapshot-key"))
	require.NoError(t, err)

	for _, sensitive := range []bool{false, true} {
		class := nameTagClass(t).
			MustDeclare("count", PropertyDeclaration{Kind: Number, Attribute: "count"})

		src, err := NewFixture(probeCtor(class, nil), "x-name-tag", map[string]string{"count": "3"})
		require.NoError(t, err)
		require.NoError(t, src.Set("first", "Jane"))

		snap, err := src.Element().Snapshot(enc, sensitive)
		require.NoError(t, err)

		dst, err := NewFixture(probeCtor(class, nil), "x-name-tag", nil)
		require.NoError(t, err)
		require.NoError(t, dst.Element().Restore(enc, snap, sensitive))

		assert.Equal(t, "Jane", dst.Element().Get("first"))
		assert.Equal(t, "Jane Doe", dst.Element().Get("full"))
		assert.Equal(t, 3.0, dst.Element().Get("count"))
		v, ok := dst.Attribute("count")
		assert.True(t, ok)
		assert.Equal(t, "3", v)
		assert.True(t, dst.Element().Pending())
	}
}

func TestRestoreRejectsTampering(t *testing.T) {
	enc, _ := NewEncoder([]byte("snapshot-key"))
	f, err := NewFixture(probeCtor(nameTagClass(t), nil), "x-name-tag", nil)
	require.NoError(t, err)

	snap, err := f.Element().Snapshot(enc, false)
	require.NoError(t, err)

	err = f.Element().Restore(enc, snap[:len(snap)-2]+"XX", false)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	assert.True(t, IsDecryptionError(err))

	err = f.Element().Restore(enc, "garbage", false)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	other, _ := NewEncoder([]byte("other-key"))
	sealed, err := f.Element().Snapshot(enc, true)
	require.NoError(t, err)
	err = f.Element().Restore(other, sealed, true)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestRestoreRejectsOtherClass(t *testing.T) {
	enc, _ := NewEncoder([]byte("snapshot-key"))
	a, err := NewFixture(probeCtor(nameTagClass(t), nil), "x-name-tag", nil)
	require.NoError(t, err)
	b, err := NewFixture(probeCtor(counterClass(t), nil), "x-counter", nil)
	require.NoError(t, err)

	snap, err := a.Element().Snapshot(enc, false)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Element().Restore(enc, snap, false), ErrInvalidFormat)
}
