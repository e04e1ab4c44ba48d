package hxel

import (
	"errors"
	"fmt"

	"github.com/pthm/hxel/lib/encoding"
)

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// NewEncoder creates a new encoder with the given key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

// snapshot is the wire shape of Element.Snapshot.
type snapshot struct {
	Class  string         `msgpack:"c"`
	Values map[string]any `msgpack:"v"`
}

// Snapshot encodes the element's non-computed property values.
//
// By default the snapshot is signed: readable but tamper-proof. Pass
// sensitive to encrypt it instead. A snapshot lets a server-rendered element
// hand its state to another instance:
//
//	s, _ := el.Snapshot(enc, false)
//	// ... later, on a fresh instance of the same class
//	err := other.Restore(enc, s, false)
func (e *Element) Snapshot(enc *Encoder, sensitive bool) (string, error) {
	snap := snapshot{Class: e.class.name, Values: make(map[string]any)}
	for _, name := range e.class.Properties() {
		decl, _ := e.class.Resolve(name)
		if decl.IsComputed() {
			continue
		}
		if v, ok := e.Value(name); ok {
			snap.Values[name] = v
		}
	}
	encoded, err := enc.Encode(snap, sensitive)
	if err != nil {
		return "", wrapEncodingError(err)
	}
	return encoded, nil
}

// Restore verifies a snapshot and applies its values through Set, so linked
// attributes are written, computed properties update and one render is
// scheduled. A snapshot taken from a different class is rejected with
// ErrInvalidFormat.
func (e *Element) Restore(enc *Encoder, encoded string, sensitive bool) error {
	var snap snapshot
	if err := enc.Decode(encoded, sensitive, &snap); err != nil {
		return wrapEncodingError(err)
	}
	if snap.Class != e.class.name {
		return fmt.Errorf("%w: snapshot of %q applied to %q", ErrInvalidFormat, snap.Class, e.class.name)
	}
	for _, name := range e.class.Properties() {
		v, ok := snap.Values[name]
		if !ok {
			continue
		}
		if err := e.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// wrapEncodingError maps encoding package errors onto hxel sentinel errors.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, encoding.ErrInvalidFormat):
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	}
	return err
}
