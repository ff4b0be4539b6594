package series

import (
	"iter"
	"slices"

	"covtrend/internal/stats"
)

// Linear is an immutable ordered sequence of records.
type Linear[E any] struct {
	data []E
}

// From wraps a copy of data.
func From[E any](data []E) Linear[E] {
	return Linear[E]{data: slices.Clone(data)}
}

// Len returns the number of records.
func (s Linear[E]) Len() int {
	return len(s.data)
}

// At returns the i-th record.
func (s Linear[E]) At(i int) E {
	return s.data[i]
}

// Data returns a copy of the records.
func (s Linear[E]) Data() []E {
	return slices.Clone(s.data)
}

// All iterates over index/record pairs.
func (s Linear[E]) All() iter.Seq2[int, E] {
	return slices.All(s.data)
}

// Filter keeps the records matching pred, in order.
func (s Linear[E]) Filter(pred func(E) bool) Linear[E] {
	out := make([]E, 0, len(s.data))
	for _, e := range s.data {
		if pred(e) {
			out = append(out, e)
		}
	}
	return Linear[E]{data: out}
}

// Sort returns a stably sorted copy. A nil comparator leaves the order unchanged.
func (s Linear[E]) Sort(cmp func(a, b E) int) Linear[E] {
	out := slices.Clone(s.data)
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return Linear[E]{data: out}
}

// IsSorted reports whether the records are ordered by cmp.
func (s Linear[E]) IsSorted(cmp func(a, b E) int) bool {
	return slices.IsSortedFunc(s.data, cmp)
}

// Concat appends other after s.
func (s Linear[E]) Concat(other Linear[E]) Linear[E] {
	return Linear[E]{data: slices.Concat(s.data, other.data)}
}

// Map transforms every record, preserving order and length.
func Map[E, T any](s Linear[E], fn func(E) T) Linear[T] {
	out := make([]T, len(s.data))
	for i, e := range s.data {
		out[i] = fn(e)
	}
	return Linear[T]{data: out}
}

// GroupBy partitions records by key. Groups iterate in first-seen key order and
// keep the relative order of their records.
func GroupBy[E any, K comparable](s Linear[E], keyFn func(E) K) Grouped[K, E] {
	var keys []K
	parts := make(map[K][]E)
	for _, e := range s.data {
		k := keyFn(e)
		if _, ok := parts[k]; !ok {
			keys = append(keys, k)
		}
		parts[k] = append(parts[k], e)
	}

	groups := make(map[K]Linear[E], len(parts))
	for k, data := range parts {
		groups[k] = Linear[E]{data: data}
	}
	return Grouped[K, E]{keys: keys, groups: groups}
}

// Fill appends filler(k) for every key in required that no record has yet.
// Existing records are kept as they are, so filling twice with the same keys is a no-op.
func Fill[E any, K comparable](s Linear[E], keyFn func(E) K, required []K, filler func(K) E) Linear[E] {
	present := make(map[K]struct{}, len(s.data))
	for _, e := range s.data {
		present[keyFn(e)] = struct{}{}
	}

	out := slices.Clone(s.data)
	for _, k := range required {
		if _, ok := present[k]; ok {
			continue
		}
		present[k] = struct{}{}
		out = append(out, filler(k))
	}
	return Linear[E]{data: out}
}

// Rolling applies fn to every contiguous window of n records and returns
// max(0, Len()-n+1) results. The series must already be in the desired order;
// Rolling does not sort. A window larger than the series, or n <= 0, yields an empty series.
func Rolling[E, S any](s Linear[E], n int, fn func(window []E) S) Linear[S] {
	if n <= 0 || len(s.data) < n {
		return Linear[S]{}
	}

	out := make([]S, 0, len(s.data)-n+1)
	for i := 0; i+n <= len(s.data); i++ {
		out = append(out, fn(slices.Clone(s.data[i:i+n])))
	}
	return Linear[S]{data: out}
}

// DivideBy pairs every record with the denominator record sharing its key and
// attaches the proportion and its Wilson interval. A missing denominator key
// counts as 0, and zero denominators propagate NaN/Inf.
func DivideBy[E any, K comparable](num, den Linear[E], keyFn func(E) K, countFn func(E) float64) Linear[Proportion[E]] {
	totals := make(map[K]float64, len(den.data))
	for _, e := range den.data {
		k := keyFn(e)
		if _, ok := totals[k]; !ok {
			totals[k] = countFn(e)
		}
	}

	return Map(num, func(e E) Proportion[E] {
		k := countFn(e)
		n := totals[keyFn(e)]
		low, high := stats.WilsonInterval(k, n)
		return Proportion[E]{
			Record:         e,
			Total:          n,
			Proportion:     stats.Proportion(k, n),
			ConfidenceLow:  low,
			ConfidenceHigh: high,
		}
	})
}
