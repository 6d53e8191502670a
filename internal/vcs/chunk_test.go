package vcs

import (
	"fmt"
	"reflect"
	"testing"
)

func TestChunk(t *testing.T) {
	paths := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("p%03d", i)
		}
		return out
	}

	tests := []struct {
		name  string
		n     int
		size  int
		wants []int // batch lengths
	}{
		{"empty", 0, 80, nil},
		{"under one batch", 10, 80, []int{10}},
		{"exact multiple", 160, 80, []int{80, 80}},
		{"remainder batch", 120, 80, []int{80, 40}},
		{"size one", 3, 1, []int{1, 1, 1}},
		{"zero size clamps to one", 2, 0, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := Chunk(paths(tt.n), tt.size)
			var lens []int
			for _, b := range batches {
				lens = append(lens, len(b))
			}
			if !reflect.DeepEqual(lens, tt.wants) {
				t.Errorf("batch lengths = %v, want %v", lens, tt.wants)
			}
		})
	}
}

func TestChunkPreservesOrder(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	var flat []string
	for _, b := range Chunk(in, 2) {
		flat = append(flat, b...)
	}
	if !reflect.DeepEqual(flat, in) {
		t.Errorf("flattened = %v, want original order %v", flat, in)
	}
}
