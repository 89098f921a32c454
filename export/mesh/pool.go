package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Precision is the quantization step applied to stored vectors.
const Precision = 1e6

// Quantize rounds every component to the nearest 1/Precision.
func Quantize(v mgl64.Vec3) mgl64.Vec3 {
	for i := range v {
		v[i] = math.Round(v[i]*Precision) / Precision
	}
	return v
}

type poolKey [3]int64

func keyOf(v mgl64.Vec3) poolKey {
	return poolKey{
		int64(math.Round(v[0] * Precision)),
		int64(math.Round(v[1] * Precision)),
		int64(math.Round(v[2] * Precision)),
	}
}

// Pool stores quantized vectors; equal vectors share one index.
type Pool struct {
	values []mgl64.Vec3
	index  map[poolKey]int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{index: make(map[poolKey]int)}
}

// Add returns the index of v, appending it if not yet present.
func (p *Pool) Add(v mgl64.Vec3) int {
	k := keyOf(v)
	if i, ok := p.index[k]; ok {
		return i
	}
	i := len(p.values)
	p.values = append(p.values, Quantize(v))
	p.index[k] = i
	return i
}

// Len is the number of distinct values.
func (p *Pool) Len() int { return len(p.values) }

func (p *Pool) Values() []mgl64.Vec3 { return p.values }

// Get returns the value stored at index i.
func (p *Pool) Get(i int) mgl64.Vec3 { return p.values[i] }

func (p *Pool) valid(i int) bool { return i >= 0 && i < len(p.values) }

// remap replaces every stored value, merging values that become equal, and
// returns the new index of every old one.
func (p *Pool) remap(fn func(mgl64.Vec3) mgl64.Vec3) []int {
	values := p.values
	p.values = make([]mgl64.Vec3, 0, len(values))
	p.index = make(map[poolKey]int, len(values))
	moved := make([]int, len(values))
	for i, v := range values {
		moved[i] = p.Add(fn(v))
	}
	return moved
}
