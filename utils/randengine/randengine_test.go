package randengine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/randengine"
)

func TestTriangularRange(t *testing.T) {
	e := randengine.New(1)
	sum := 0.0
	const n = 20000
	for range n {
		v := e.Triangular(0, 0.25, 1)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		sum += v
	}
	// 均值(min+mode+max)/3
	assert.InDelta(t, 1.25/3, sum/n, 0.01)
	assert.Equal(t, 2.0, e.Triangular(2, 2, 2))
	assert.Panics(t, func() { e.Triangular(1, 0, 2) })
}

func TestLogNormalMeanStd(t *testing.T) {
	e := randengine.New(2)
	const n = 50000
	sum, sum2 := 0.0, 0.0
	for range n {
		v := e.LogNormalMeanStd(20, 4)
		assert.Greater(t, v, 0.0)
		sum += v
		sum2 += v * v
	}
	mean := sum / n
	std := math.Sqrt(sum2/n - mean*mean)
	assert.InDelta(t, 20, mean, 0.2)
	assert.InDelta(t, 4, std, 0.2)
}

func TestDeterministicSeed(t *testing.T) {
	a, b := randengine.New(42), randengine.New(42)
	for range 10 {
		assert.Equal(t, a.Noise(), b.Noise())
	}
}
