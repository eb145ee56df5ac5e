// Package uncert provides a minimal uncertainty-bearing value type with
// linear error propagation. Measured and fitted quantities (orbital period,
// zero epoch, transit centers) carry their standard deviation alongside the
// nominal value and are combined only through the arithmetic below.
package uncert

import "math"

// Value is a nominal value paired with a standard deviation. S is always
// non-negative. Values are immutable; arithmetic returns new Values.
type Value struct {
	N float64 `json:"n"`
	S float64 `json:"s"`
}

// New creates a Value with the given nominal value and standard deviation.
// A negative stddev is folded to its magnitude.
func New(nominal, stddev float64) Value {
	return Value{N: nominal, S: math.Abs(stddev)}
}

// Exact creates a Value with zero uncertainty.
func Exact(nominal float64) Value {
	return Value{N: nominal}
}

// Add returns v + o. Uncertainties combine in quadrature, assuming
// independence.
func (v Value) Add(o Value) Value {
	return Value{N: v.N + o.N, S: math.Hypot(v.S, o.S)}
}

// Sub returns v - o. Uncertainties combine in quadrature, same as Add.
func (v Value) Sub(o Value) Value {
	return Value{N: v.N - o.N, S: math.Hypot(v.S, o.S)}
}

// MulScalar returns v scaled by k; the uncertainty scales by |k|.
func (v Value) MulScalar(k float64) Value {
	return Value{N: v.N * k, S: v.S * math.Abs(k)}
}
