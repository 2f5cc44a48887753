package action

import (
	"fmt"
	"math/rand"
)

// Probability is the chance of one outcome occurring. It is either a
// point value or a closed interval capturing epistemic uncertainty: the
// interval is the set of plausible true rates, and settling fixes one
// representative scenario.
type Probability struct {
	low      float64
	high     float64
	interval bool
}

// Point returns a precise probability.
func Point(v float64) Probability {
	return Probability{low: v, high: v}
}

// Interval returns an imprecise probability covering [low, high].
func Interval(low, high float64) Probability {
	if high < low {
		low, high = high, low
	}
	return Probability{low: low, high: high, interval: true}
}

// IsInterval reports whether the probability is imprecise.
func (p Probability) IsInterval() bool {
	return p.interval
}

// Bounds returns the interval bounds. For a point probability both
// bounds equal the point value.
func (p Probability) Bounds() (low, high float64) {
	return p.low, p.high
}

// settle resolves the probability to a point value. Point values are
// returned unchanged; interval values are drawn uniformly from the
// interval using the given source.
func (p Probability) settle(rng *rand.Rand) float64 {
	if !p.interval {
		return p.low
	}
	return p.low + rng.Float64()*(p.high-p.low)
}

func (p Probability) String() string {
	if p.interval {
		return fmt.Sprintf("[%g, %g]", p.low, p.high)
	}
	return fmt.Sprintf("%g", p.low)
}
