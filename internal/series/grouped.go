package series

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// Grouped maps keys to Linear series. Keys iterate in a defined order that
// SortGroups can change.
type Grouped[K comparable, E any] struct {
	keys   []K
	groups map[K]Linear[E]
}

// FromGroups builds a Grouped series that iterates in the order of keys.
// A key without an entry in groups maps to an empty series and duplicate keys are dropped.
func FromGroups[K comparable, E any](keys []K, groups map[K][]E) Grouped[K, E] {
	g := Grouped[K, E]{groups: make(map[K]Linear[E], len(keys))}
	for _, k := range keys {
		if _, ok := g.groups[k]; ok {
			continue
		}
		g.keys = append(g.keys, k)
		g.groups[k] = From(groups[k])
	}
	return g
}

// Len returns the number of groups.
func (g Grouped[K, E]) Len() int {
	return len(g.keys)
}

// Keys returns the group keys in iteration order.
func (g Grouped[K, E]) Keys() []K {
	return slices.Clone(g.keys)
}

// Get returns the series for k.
func (g Grouped[K, E]) Get(k K) (Linear[E], bool) {
	s, ok := g.groups[k]
	return s, ok
}

// All iterates over key/series pairs in key order.
func (g Grouped[K, E]) All() iter.Seq2[K, Linear[E]] {
	return func(yield func(K, Linear[E]) bool) {
		for _, k := range g.keys {
			if !yield(k, g.groups[k]) {
				return
			}
		}
	}
}

// Filter applies Linear.Filter to every group.
func (g Grouped[K, E]) Filter(pred func(E) bool) Grouped[K, E] {
	return MapGroups(g, func(_ K, s Linear[E]) Linear[E] { return s.Filter(pred) })
}

// Sort applies Linear.Sort to every group.
func (g Grouped[K, E]) Sort(cmp func(a, b E) int) Grouped[K, E] {
	return MapGroups(g, func(_ K, s Linear[E]) Linear[E] { return s.Sort(cmp) })
}

// SortGroups reorders the group keys. A nil comparator orders keys lexically by
// their fmt.Sprint form, which is String() for calendar keys.
func (g Grouped[K, E]) SortGroups(compare func(a, b K) int) Grouped[K, E] {
	if compare == nil {
		compare = func(a, b K) int { return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b)) }
	}
	keys := slices.Clone(g.keys)
	slices.SortStableFunc(keys, compare)
	return Grouped[K, E]{keys: keys, groups: g.groups}
}

// MapGroups transforms every group's series and leaves the keys alone. The other
// per-group operations are built on it.
func MapGroups[K comparable, E, T any](g Grouped[K, E], fn func(K, Linear[E]) Linear[T]) Grouped[K, T] {
	out := Grouped[K, T]{
		keys:   slices.Clone(g.keys),
		groups: make(map[K]Linear[T], len(g.keys)),
	}
	for _, k := range g.keys {
		out.groups[k] = fn(k, g.groups[k])
	}
	return out
}

// MapGrouped applies Map to every group.
func MapGrouped[K comparable, E, T any](g Grouped[K, E], fn func(E) T) Grouped[K, T] {
	return MapGroups(g, func(_ K, s Linear[E]) Linear[T] { return Map(s, fn) })
}

// FillGrouped applies Fill to every group. The filler also receives the group key.
func FillGrouped[K comparable, E any, FK comparable](g Grouped[K, E], keyFn func(E) FK, required []FK, filler func(group K, key FK) E) Grouped[K, E] {
	return MapGroups(g, func(group K, s Linear[E]) Linear[E] {
		return Fill(s, keyFn, required, func(key FK) E { return filler(group, key) })
	})
}

// RollingGrouped applies Rolling to every group.
func RollingGrouped[K comparable, E, S any](g Grouped[K, E], n int, fn func(window []E) S) Grouped[K, S] {
	return MapGroups(g, func(_ K, s Linear[E]) Linear[S] { return Rolling(s, n, fn) })
}

// DivideGroups divides each group by the denominator group with the same key.
// A group missing from den is divided by an empty series.
func DivideGroups[K comparable, E any, DK comparable](num, den Grouped[K, E], keyFn func(E) DK, countFn func(E) float64) Grouped[K, Proportion[E]] {
	return MapGroups(num, func(group K, s Linear[E]) Linear[Proportion[E]] {
		d, _ := den.Get(group)
		return DivideBy(s, d, keyFn, countFn)
	})
}

// DivideGroupsBySingle divides every group by one shared denominator.
func DivideGroupsBySingle[K comparable, E any, DK comparable](num Grouped[K, E], den Linear[E], keyFn func(E) DK, countFn func(E) float64) Grouped[K, Proportion[E]] {
	return MapGroups(num, func(_ K, s Linear[E]) Linear[Proportion[E]] {
		return DivideBy(s, den, keyFn, countFn)
	})
}

// Summarize collapses every group into one record, in key order.
func Summarize[K comparable, E, T any](g Grouped[K, E], fn func(K, Linear[E]) T) Linear[T] {
	out := make([]T, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, fn(k, g.groups[k]))
	}
	return Linear[T]{data: out}
}

// Flatten concatenates the groups in key order.
func Flatten[K comparable, E any](g Grouped[K, E]) Linear[E] {
	var out []E
	for _, k := range g.keys {
		out = append(out, g.groups[k].data...)
	}
	return Linear[E]{data: out}
}
