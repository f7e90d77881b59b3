package byteutil

import (
	"testing"
)

func TestBtou(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"42", 42},
		{"852000", 852000},
		{"  97\n", 97},
	}
	for _, tt := range tests {
		if got := Btou([]byte(tt.in)); got != tt.want {
			t.Errorf("Btou(%q): want %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestBtoi(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"-1", -1},
		{"999", 999},
		{"\t-5\n", -5},
	}
	for _, tt := range tests {
		if got := Btoi([]byte(tt.in)); got != tt.want {
			t.Errorf("Btoi(%q): want %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestPair(t *testing.T) {
	tests := []struct {
		in  string
		sep byte
		key string
		val string
	}{
		{"ACTIVE=32", '=', "ACTIVE", "32"},
		{"gpu_loading = 57", '=', "gpu_loading", "57"},
		{"gpu/cljs0/cljs1=12", '=', "gpu/cljs0/cljs1", "12"},
		{"no separator", '=', "no separator", ""},
	}
	for _, tt := range tests {
		key, val := Pair([]byte(tt.in), tt.sep)
		if string(key) != tt.key || string(val) != tt.val {
			t.Errorf("Pair(%q): want (%q, %q), got (%q, %q)", tt.in, tt.key, tt.val, key, val)
		}
	}
}

func TestColumn(t *testing.T) {
	col, rest := Column([]byte("  390000 62500  3\n"))
	if want := "390000"; string(col) != want {
		t.Errorf("Column: want %q, got %q", want, col)
	}
	if want := "62500  3"; string(rest) != want {
		t.Errorf("Column rest: want %q, got %q", want, rest)
	}
}
