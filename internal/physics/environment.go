package physics

import (
	"fmt"
	"strings"
)

// Environment supplies the atmosphere seen by a shell at a given altitude.
//
// Implementations must be safe for concurrent use; the ones in this package
// are stateless values.
type Environment interface {
	// Gravity returns vertical acceleration in m/s² (negative is down).
	Gravity(altitude float64) float64
	AirDensity(altitude float64) float64
	SpeedOfSound(altitude float64) float64
	DragCoefficient(mach float64) float64
}

// Standard uses every table: altitude-dependent gravity, density and speed
// of sound, plus the mach-dependent drag coefficient.
type Standard struct{}

func (Standard) Gravity(alt float64) float64      { return Gravity(alt) }
func (Standard) AirDensity(alt float64) float64   { return AirDensity(alt) }
func (Standard) SpeedOfSound(alt float64) float64 { return SpeedOfSound(alt) }
func (Standard) DragCoefficient(m float64) float64 {
	return DragCoefficient(m)
}

// StandardGravity is the constant gravity magnitude of the vacuum model.
const StandardGravity = 9.8

// Vacuum has constant gravity G (positive magnitude) and no drag. The zero
// value has no forces at all.
type Vacuum struct {
	G float64
}

func (v Vacuum) Gravity(float64) float64        { return -v.G }
func (Vacuum) AirDensity(float64) float64       { return 0 }
func (Vacuum) SpeedOfSound(alt float64) float64 { return SpeedOfSound(alt) }
func (Vacuum) DragCoefficient(float64) float64  { return 0 }

// GravityOnly uses the gravity table and no drag.
type GravityOnly struct{}

func (GravityOnly) Gravity(alt float64) float64      { return Gravity(alt) }
func (GravityOnly) AirDensity(float64) float64       { return 0 }
func (GravityOnly) SpeedOfSound(alt float64) float64 { return SpeedOfSound(alt) }
func (GravityOnly) DragCoefficient(float64) float64  { return 0 }

// FixedDrag uses the gravity table with a constant drag coefficient and air density.
type FixedDrag struct {
	Cd  float64
	Rho float64
}

func (FixedDrag) Gravity(alt float64) float64      { return Gravity(alt) }
func (f FixedDrag) AirDensity(float64) float64     { return f.Rho }
func (FixedDrag) SpeedOfSound(alt float64) float64 { return SpeedOfSound(alt) }
func (f FixedDrag) DragCoefficient(float64) float64 {
	return f.Cd
}

// DensityOnly uses the gravity and density tables with a constant drag coefficient.
type DensityOnly struct {
	Cd float64
}

func (DensityOnly) Gravity(alt float64) float64      { return Gravity(alt) }
func (DensityOnly) AirDensity(alt float64) float64   { return AirDensity(alt) }
func (DensityOnly) SpeedOfSound(alt float64) float64 { return SpeedOfSound(alt) }
func (d DensityOnly) DragCoefficient(float64) float64 {
	return d.Cd
}

// Model names accepted by EnvironmentByName.
const (
	ModelStandard = "standard"
	ModelVacuum   = "vacuum"
	ModelGravity  = "gravity"
	ModelDrag     = "drag"
	ModelDensity  = "density"
)

// ModelNames lists the accepted model names in increasing fidelity.
func ModelNames() []string {
	return []string{ModelVacuum, ModelGravity, ModelDrag, ModelDensity, ModelStandard}
}

// EnvironmentByName resolves a model name. The empty name is "standard".
//
// The reduced models use the same constants as the bench diagnostics:
// 9.8 m/s² for vacuum, and cd=0.3 with ρ=0.6 where they are held fixed.
func EnvironmentByName(name string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ModelStandard:
		return Standard{}, nil
	case ModelVacuum:
		return Vacuum{G: StandardGravity}, nil
	case ModelGravity:
		return GravityOnly{}, nil
	case ModelDrag:
		return FixedDrag{Cd: 0.3, Rho: 0.6}, nil
	case ModelDensity:
		return DensityOnly{Cd: 0.3}, nil
	default:
		return nil, fmt.Errorf("unknown model %q (want one of %s)", name, strings.Join(ModelNames(), ", "))
	}
}
