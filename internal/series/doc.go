// Package series implements an immutable transformation algebra over ordered records.
//
// A Linear series wraps an ordered slice of records. A Grouped series maps keys
// to Linear series. Every operation returns a new value and leaves its receiver
// untouched, so series can be shared freely between goroutines and pipeline
// stages. Operations that change the element or key type are package functions
// because Go methods cannot declare type parameters. Every per-group operation
// is expressed through MapGroups.
//
// The algebra is total. Nothing here returns an error. Division by a zero or
// missing denominator produces NaN or +Inf, and a rolling window wider than
// the series produces an empty series.
package series
