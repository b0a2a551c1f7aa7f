// Package physics provides the atmosphere lookups and closed-form kinematics
// used to fly an artillery shell.
//
// Sign convention: y is altitude and grows upward, so Gravity returns a
// negative acceleration. Angles are zenith-referenced (see package angle):
// the horizontal projection uses sin and the vertical projection uses cos.
package physics

import (
	"math"

	"artillery-sim/internal/angle"
)

const (
	// ShellMass is the mass of a 155 mm shell, kg.
	ShellMass = 46.7
	// ShellArea is the reference cross-section of a 154.89 mm shell, m².
	ShellArea = 0.018842
	// DefaultTimeStep is the integration step, seconds.
	DefaultTimeStep = 0.01
)

// Gravity returns the vertical acceleration due to gravity at altitude (m/s², negative).
func Gravity(altitude float64) float64 {
	return -gravityTable.Lookup(altitude)
}

// AirDensity returns kg/m³ at altitude.
func AirDensity(altitude float64) float64 {
	return densityTable.Lookup(altitude)
}

// SpeedOfSound returns m/s at altitude.
func SpeedOfSound(altitude float64) float64 {
	return speedOfSoundTable.Lookup(altitude)
}

// DragCoefficient returns the shell drag coefficient at a mach number.
func DragCoefficient(mach float64) float64 {
	return dragCoefficientTable.Lookup(mach)
}

// DragForce is the quadratic drag magnitude d = ½ c ρ v² a, in newtons.
// speed is a scalar magnitude.
func DragForce(coefficient, density, speed, area float64) float64 {
	return 0.5 * coefficient * density * speed * speed * area
}

// AccelerationFromForce divides by ShellMass.
func AccelerationFromForce(force float64) float64 {
	return force / ShellMass
}

// HorizontalComponent projects magnitude onto the ground axis.
func HorizontalComponent(a angle.Angle, magnitude float64) float64 {
	return magnitude * math.Sin(a.Radians())
}

// VerticalComponent projects magnitude onto the altitude axis.
func VerticalComponent(a angle.Angle, magnitude float64) float64 {
	return magnitude * math.Cos(a.Radians())
}

// VelocityUpdate is v + a·dt.
func VelocityUpdate(v, a, dt float64) float64 {
	return v + a*dt
}

// DisplacementUpdate is s + v·dt + ½·a·dt².
func DisplacementUpdate(s, v, a, dt float64) float64 {
	return s + v*dt + 0.5*a*dt*dt
}
