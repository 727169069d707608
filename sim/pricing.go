package sim

import (
	"math"
	"math/rand"
)

const (
	// PriceFloor is the lowest price the generated path can reach.
	PriceFloor = 20.0

	DefaultDays   = 45
	DefaultSeed   = 42
	DefaultJitter = 5.0
)

// Tick is one trading day of the market path.
type Tick struct {
	Day   int     `json:"day"`
	Price float64 `json:"price"`
}

// GeneratePath builds the boom, crash and recovery curve. The result is a
// pure function of its arguments.
func GeneratePath(seed int64, days int, jitter float64) []Tick {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Tick, days)
	for i := 0; i < days; i++ {
		x := float64(i)
		v := 100 + math.Sin(x*0.5)*10
		if i > 15 {
			v -= (x - 15) * 6
		}
		if i > 30 {
			v += (x - 30) * 9
		}
		v += rng.Float64() * jitter
		out[i] = Tick{Day: i, Price: math.Max(PriceFloor, v)}
	}
	return out
}

// Drop is the fractional fall from prev to curr. Rises are negative.
func Drop(prev, curr float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (prev - curr) / prev
}
