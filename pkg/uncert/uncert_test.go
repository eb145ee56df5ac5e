package uncert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddQuadrature(t *testing.T) {
	a := New(10, 1)
	b := New(5, 2)

	sum := a.Add(b)
	require.InDelta(t, 15, sum.N, 1e-12)
	require.InDelta(t, math.Sqrt(5), sum.S, 1e-12)
}

func TestSubQuadrature(t *testing.T) {
	a := New(10, 3)
	b := New(4, 4)

	diff := a.Sub(b)
	require.InDelta(t, 6, diff.N, 1e-12)
	require.InDelta(t, 5, diff.S, 1e-12)
}

func TestMulScalar(t *testing.T) {
	v := New(3.5, 0.0001)

	scaled := v.MulScalar(-2)
	require.InDelta(t, -7, scaled.N, 1e-12)
	require.InDelta(t, 0.0002, scaled.S, 1e-12)
}

func TestNewFoldsNegativeStddev(t *testing.T) {
	v := New(1, -0.5)
	require.Equal(t, 0.5, v.S)
}

func TestExact(t *testing.T) {
	v := Exact(2458000.5)
	require.Zero(t, v.S)
	require.Equal(t, 2458000.5, v.N)
}
