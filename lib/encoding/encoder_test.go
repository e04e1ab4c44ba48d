package encoding

import (
	"errors"
	"testing"
)

// testState mirrors the shape of an element snapshot.
type testState struct {
	Class  string         `msgpack:"c"`
	Values map[string]any `msgpack:"v"`
}

func TestNewEncoder(t *testing.T) {
	// Should work with any key length (derives 32-byte key)
	_, err := NewEncoder([]byte("short"))
	if err != nil {
		t.Fatalf("NewEncoder with short key failed: %v", err)
	}

	_, err = NewEncoder([]byte("this-is-a-32-byte-key-for-aes!!!"))
	if err != nil {
		t.Fatalf("NewEncoder with 32-byte key failed: %v", err)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	original := testState{
		Class:  "name-tag",
		Values: map[string]any{"first": "John", "checked": true},
	}

	encoded, err := enc.Encode(original, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(encoded) == 0 {
		t.Fatal("Encoded string is empty")
	}

	var decoded testState
	if err := enc.Decode(encoded, false, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Class != original.Class {
		t.Errorf("Class mismatch: got %q, want %q", decoded.Class, original.Class)
	}
	if decoded.Values["first"] != "John" {
		t.Errorf("first mismatch: got %v", decoded.Values["first"])
	}
	if decoded.Values["checked"] != true {
		t.Errorf("checked mismatch: got %v", decoded.Values["checked"])
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	original := testState{
		Class:  "x-counter",
		Values: map[string]any{"count": 5.0},
	}

	encoded, err := enc.Encode(original, true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded testState
	if err := enc.Decode(encoded, true, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Values["count"] != 5.0 {
		t.Errorf("count mismatch: got %v (%T)", decoded.Values["count"], decoded.Values["count"])
	}
}

func TestSignatureVerificationFailure(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	encoded, err := enc.Encode(testState{Class: "test"}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Tamper with the signature
	tampered := encoded[:len(encoded)-2] + "XX"

	var decoded testState
	err = enc.Decode(tampered, false, &decoded)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Expected ErrSignatureInvalid, got: %v", err)
	}
}

func TestDecryptionFailure(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	encoded, err := enc.Encode(testState{Class: "test"}, true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tampered := encoded[:len(encoded)-2] + "XX"

	var decoded testState
	err = enc.Decode(tampered, true, &decoded)
	if !errors.Is(err, ErrDecryptFailed) && !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected decrypt or format error, got: %v", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	// Missing signature separator
	var decoded testState
	err = enc.Decode("invalidbase64withoutseparator", false, &decoded)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got: %v", err)
	}
}

func TestDifferentKeysCannotDecode(t *testing.T) {
	enc1, _ := NewEncoder([]byte("key-one"))
	enc2, _ := NewEncoder([]byte("key-two"))

	encoded, err := enc1.Encode(testState{Class: "test"}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded testState
	if err := enc2.Decode(encoded, false, &decoded); err == nil {
		t.Error("Expected error when decoding with different key")
	}
}

func TestEmptyState(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	encoded, err := enc.Encode(testState{}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded testState
	if err := enc.Decode(encoded, false, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Class != "" || len(decoded.Values) != 0 {
		t.Error("Empty state not decoded correctly")
	}
}
