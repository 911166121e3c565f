package opt

import (
	"fmt"
	"math"
)

// Domain is a box-bounded search space.
type Domain struct {
	Dim        int
	Lower      []float64
	Upper      []float64
	Continuous bool // real-valued dimensions; integer domains are not supported
}

// NewUniformDomain creates a continuous domain with the same [lower, upper]
// range on every dimension.
func NewUniformDomain(dim int, lower, upper float64) Domain {
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for i := 0; i < dim; i++ {
		lo[i] = lower
		hi[i] = upper
	}
	return Domain{Dim: dim, Lower: lo, Upper: hi, Continuous: true}
}

// Validate checks bounds are consistent with Dim.
func (d Domain) Validate() error {
	if d.Dim <= 0 {
		return &ConfigError{Field: "Domain.Dim", Reason: "must be positive"}
	}
	if len(d.Lower) != d.Dim || len(d.Upper) != d.Dim {
		return &ConfigError{Field: "Domain.Bounds", Reason: fmt.Sprintf("need %d bounds, got %d/%d", d.Dim, len(d.Lower), len(d.Upper))}
	}
	if !d.Continuous {
		return &ConfigError{Field: "Domain.Continuous", Reason: "only continuous domains are supported"}
	}
	for i := range d.Lower {
		if !(d.Lower[i] < d.Upper[i]) {
			return &ConfigError{Field: "Domain.Bounds", Reason: fmt.Sprintf("dimension %d has empty range [%g, %g]", i, d.Lower[i], d.Upper[i])}
		}
	}
	return nil
}

// Contains reports whether x lies inside the domain.
func (d Domain) Contains(x []float64) bool {
	if len(x) != d.Dim {
		return false
	}
	for i, v := range x {
		if v < d.Lower[i] || v > d.Upper[i] {
			return false
		}
	}
	return true
}

// Clamp returns a copy of x with every component clamped into the domain.
func (d Domain) Clamp(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = clamp(v, d.Lower[i], d.Upper[i])
	}
	return out
}

// span returns the scalar envelope of all per-dimension bounds.
func (d Domain) span() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := range d.Lower {
		lo = math.Min(lo, d.Lower[i])
		hi = math.Max(hi, d.Upper[i])
	}
	return lo, hi
}

func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
