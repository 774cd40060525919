package idgen

import "testing"

func TestHexLength(t *testing.T) {
	for _, n := range []int{1, 8, 16} {
		if got := Hex(n); len(got) != 2*n {
			t.Errorf("Hex(%d) length = %d, want %d", n, len(got), 2*n)
		}
	}
}

func TestRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := RequestID()
		if len(id) != 16 {
			t.Fatalf("unexpected id length: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
