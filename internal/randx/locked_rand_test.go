package randx

import (
	"strings"
	"testing"
)

func TestAlphaNumLengthAndAlphabet(t *testing.T) {
	r := NewSeeded()
	suffix := r.AlphaNum(9)
	if len(suffix) != 9 {
		t.Fatalf("unexpected length: %d", len(suffix))
	}
	for _, ch := range suffix {
		if !strings.ContainsRune(alphaNumAlphabet, ch) {
			t.Fatalf("unexpected character: %q", ch)
		}
	}
}

func TestAlphaNumZero(t *testing.T) {
	r := New(nil)
	if r.AlphaNum(0) != "" {
		t.Fatalf("expected empty string")
	}
}

func TestIntNBounds(t *testing.T) {
	r := New(nil)
	for range 100 {
		if v := r.IntN(5); v < 0 || v >= 5 {
			t.Fatalf("out of bounds: %d", v)
		}
	}
}
