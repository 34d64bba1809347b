package grid

import (
	"fmt"
	"math"
)

// RadialConfig controls subdivision of polar rings and spherical shells.
//
// TargetArc is the arc length each cell should subtend; RingDepth is the
// radial thickness of one ring or shell. With both equal (the default)
// cells come out roughly square. MaxRatio bounds ring-to-ring growth of
// the angular subdivision so inner cells never face an unbounded fan of
// outer neighbors.
type RadialConfig struct {
	TargetArc float64
	RingDepth float64
	MaxRatio  float64
}

// DefaultRadialConfig returns unit-arc, unit-depth subdivision with a
// 2x growth bound.
func DefaultRadialConfig() RadialConfig {
	return RadialConfig{TargetArc: 1, RingDepth: 1, MaxRatio: 2}
}

func (cfg RadialConfig) validate() error {
	if cfg.TargetArc <= 0 {
		return fmt.Errorf("radial config: target arc must be positive, got %v", cfg.TargetArc)
	}
	if cfg.RingDepth <= 0 {
		return fmt.Errorf("radial config: ring depth must be positive, got %v", cfg.RingDepth)
	}
	if cfg.MaxRatio < 1 {
		return fmt.Errorf("radial config: max ratio must be >= 1, got %v", cfg.MaxRatio)
	}
	return nil
}

// midRadius is the representative radius at which ring r's cells sit.
func (cfg RadialConfig) midRadius(r int) float64 {
	return (float64(r) + 0.5) * cfg.RingDepth
}

// ringCounts computes per-ring angular subdivision. The ideal count
// keeps arc length at the target; the result is clamped so counts are
// monotonically non-decreasing with radius and grow by at most
// MaxRatio per ring. Clamped inner rings catch back up to the ideal as
// radius increases.
func ringCounts(rings int, cfg RadialConfig) []int {
	counts := make([]int, rings)
	prev := 0
	for r := 0; r < rings; r++ {
		circumference := 2 * math.Pi * cfg.midRadius(r)
		n := int(math.Round(circumference / cfg.TargetArc))
		if n < 1 {
			n = 1
		}
		if n < prev {
			n = prev
		}
		if prev > 0 {
			if limit := int(math.Floor(float64(prev) * cfg.MaxRatio)); n > limit {
				n = limit
			}
		}
		counts[r] = n
		prev = n
	}
	return counts
}

// arcLength is the angular cell size at radius with the given count.
func arcLength(radius float64, count int) float64 {
	return 2 * math.Pi * radius / float64(count)
}
