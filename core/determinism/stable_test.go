package determinism

import (
	"strings"
	"testing"
)

func TestComputeHash(t *testing.T) {
	h := ComputeHash([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if h.Hex() != want {
		t.Errorf("expected %s, got %s", want, h.Hex())
	}
	if !strings.HasSuffix(h.String(), "...") || len(h.String()) != 19 {
		t.Errorf("unexpected short form %q", h.String())
	}
	if ComputeHash([]byte("abc")) != h {
		t.Error("hash must be stable")
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"tax_rate": 1, "fob": 2, "duty_rate": 3}
	keys := SortedKeys(m)
	want := []string{"duty_rate", "fob", "tax_rate"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}
