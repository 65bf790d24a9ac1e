package ir

import "math"

const microsPerUnit = 1e6

// Micros converts seconds (or any unitless decimal) to fixed-point
// microseconds, rounding to the nearest unit.
func Micros(v float64) IRInt {
	return IRInt(math.Round(v * microsPerUnit))
}

// Seconds converts fixed-point microseconds back to a float.
func Seconds(n int64) float64 {
	return float64(n) / microsPerUnit
}
