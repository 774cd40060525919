package pagination

import "testing"

func TestLimit(t *testing.T) {
	tests := []struct {
		raw  string
		def  int
		want int
	}{
		{"", 50, 50},
		{"10", 50, 10},
		{"200", 50, 200},
		{"500", 50, 200},
		{"0", 50, 50},
		{"-3", 50, 50},
		{"abc", 50, 50},
		{"2.5", 50, 50},
	}

	for _, tt := range tests {
		if got := Limit(tt.raw, tt.def); got != tt.want {
			t.Errorf("Limit(%q, %d) = %d, want %d", tt.raw, tt.def, got, tt.want)
		}
	}
}
