package ir

import "fmt"

// WeightScale is the fixed-point divisor of crush weights.
const WeightScale = 65536.0

// Weight is a crush weight in 16.16 fixed point.
type Weight int64

// Float returns the weight in natural units.
func (w Weight) Float() float64 {
	return float64(w) / WeightScale
}

// String formats the weight with three decimals, as crushtool expects.
func (w Weight) String() string {
	return fmt.Sprintf("%.3f", w.Float())
}
