/*
NAME
  seq.go

DESCRIPTION
  seq.go provides Seq, a minimal pull-based lazy sequence abstraction
  used to compose Teletext pipeline stages without materializing whole
  packet streams in memory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// Package seq provides a minimal pull-based sequence abstraction, the
// common currency between pipeline stages: packet readers, filters,
// paginate, subpage_squash, and the CLI's output sinks all consume and
// produce Seq values rather than slices.
package seq

// Seq is a pull-based, possibly-infinite sequence of values of type T.
// Next returns the next value and true, or the zero value and false
// once the sequence is exhausted. A Seq is not safe for concurrent use.
type Seq[T any] interface {
	Next() (T, bool)
}

// Func adapts a plain function to Seq.
type Func[T any] func() (T, bool)

// Next calls f.
func (f Func[T]) Next() (T, bool) { return f() }

// FromSlice returns a Seq that yields the elements of s in order.
func FromSlice[T any](s []T) Seq[T] {
	i := 0
	return Func[T](func() (T, bool) {
		if i >= len(s) {
			var zero T
			return zero, false
		}
		v := s[i]
		i++
		return v, true
	})
}

// Collect drains in into a slice. Intended for tests and small streams;
// production sinks should consume in directly rather than collecting.
func Collect[T any](in Seq[T]) []T {
	var out []T
	for {
		v, ok := in.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Map returns a Seq that applies f to each value of in, lazily.
func Map[T, U any](in Seq[T], f func(T) U) Seq[U] {
	return Func[U](func() (U, bool) {
		v, ok := in.Next()
		if !ok {
			var zero U
			return zero, false
		}
		return f(v), true
	})
}

// Filter returns a Seq yielding only the values of in for which keep
// reports true.
func Filter[T any](in Seq[T], keep func(T) bool) Seq[T] {
	return Func[T](func() (T, bool) {
		for {
			v, ok := in.Next()
			if !ok {
				var zero T
				return zero, false
			}
			if keep(v) {
				return v, true
			}
		}
	})
}

// Limit returns a Seq yielding at most n values of in.
func Limit[T any](in Seq[T], n int) Seq[T] {
	i := 0
	return Func[T](func() (T, bool) {
		if i >= n {
			var zero T
			return zero, false
		}
		i++
		return in.Next()
	})
}
