// Package angle holds zenith-referenced directions: 0 points straight up and
// a quarter turn points along the ground.
package angle

import (
	"math"

	"github.com/gehtsoft-usa/go_ballisticcalc/bmath/unit"
)

// Angle is an immutable direction in radians.
type Angle struct {
	radians float64
}

// FromDegrees builds an Angle from a degree value.
func FromDegrees(deg float64) Angle {
	return Angle{radians: unit.MustCreateAngular(deg, unit.AngularDegree).In(unit.AngularRadian)}
}

// FromRadians wraps a radian value.
func FromRadians(rad float64) Angle {
	return Angle{radians: rad}
}

// FromComponents returns the direction of travel for a velocity with
// horizontal component dx and vertical component dy.
//
// atan2(dx, dy) keeps the result zenith-referenced and resolves all four
// quadrants. A zero vector yields 0 (straight up).
func FromComponents(dx, dy float64) Angle {
	return Angle{radians: math.Atan2(dx, dy)}
}

func (a Angle) Radians() float64 { return a.radians }

func (a Angle) Degrees() float64 {
	return unit.MustCreateAngular(a.radians, unit.AngularRadian).In(unit.AngularDegree)
}
