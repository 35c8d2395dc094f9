// SPDX-License-Identifier: EPL-2.0

package audiomancer

import (
	"fmt"
	"math"
	"strings"
)

// Curve shapes a crossfade. Gains is called with t in [0, 1) across the
// overlap and returns the gain for the outgoing and incoming track.
type Curve interface {
	Gains(t float64) (out, in float64)
}

// Linear ramps both gains in a straight line. Their sum is always 1.
type Linear struct{}

func (Linear) Gains(t float64) (float64, float64) {
	return 1 - t, t
}

// EqualPower keeps the summed power of both gains at 1.
type EqualPower struct{}

func (EqualPower) Gains(t float64) (float64, float64) {
	return math.Cos(t * math.Pi / 2), math.Sin(t * math.Pi / 2)
}

// Smoothstep eases in and out of the overlap. Gains sum to 1.
type Smoothstep struct{}

func (Smoothstep) Gains(t float64) (float64, float64) {
	s := t * t * (3 - 2*t)
	return 1 - s, s
}

// ParseCurve maps a configuration name to a Curve. Names are case
// insensitive and "-" may stand in for "_".
func ParseCurve(name string) (Curve, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_") {
	case "", "linear":
		return Linear{}, nil
	case "equal_power":
		return EqualPower{}, nil
	case "smoothstep":
		return Smoothstep{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
}
