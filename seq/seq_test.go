/*
NAME
  seq_test.go

DESCRIPTION
  seq_test.go exercises the lazy combinators against small int sequences.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package seq

import "testing"

func TestFromSliceCollect(t *testing.T) {
	got := Collect(FromSlice([]int{1, 2, 3}))
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Collect() = %v, want %v", got, want)
		}
	}
}

func TestMap(t *testing.T) {
	got := Collect(Map(FromSlice([]int{1, 2, 3}), func(v int) int { return v * 2 }))
	want := []int{2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Map() = %v, want %v", got, want)
		}
	}
}

func TestFilter(t *testing.T) {
	got := Collect(Filter(FromSlice([]int{1, 2, 3, 4, 5}), func(v int) bool { return v%2 == 0 }))
	want := []int{2, 4}
	if len(got) != len(want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Filter() = %v, want %v", got, want)
		}
	}
}

func TestLimit(t *testing.T) {
	got := Collect(Limit(FromSlice([]int{1, 2, 3, 4, 5}), 2))
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Limit() = %v, want [1 2]", got)
	}
}
