// Package trajectory flies a shell from launch to ground impact.
//
// The integrator advances in fixed time steps. Each step:
//
//  1. Looks up gravity, air density and speed of sound at the current altitude.
//  2. Derives mach from the current speed and looks up the drag coefficient.
//  3. Converts drag force to a deceleration and splits it along the current
//     heading, opposing motion.
//  4. Updates velocity, then position, on both axes.
//
// The flight ends on the first step whose altitude is negative. The impact
// point is then recovered by a two-point interpolation between the last two
// states, using altitude as the independent variable.
package trajectory

import (
	"errors"
	"fmt"
	"math"

	"artillery-sim/internal/angle"
	"artillery-sim/internal/interp"
	"artillery-sim/internal/physics"
)

// DefaultMaxSteps bounds a single flight. At the default 10ms step this is
// close to three hours of flight time.
const DefaultMaxSteps = 1_000_000

var ErrStepLimit = errors.New("step limit reached before ground impact")

// Params is everything needed to fly one shell.
type Params struct {
	AngleDeg    float64 `json:"angle_deg"`        // zenith-referenced
	MuzzleSpeed float64 `json:"muzzle_speed_mps"` // m/s
	TimeStep    float64 `json:"time_step_s"`      // seconds
	Area        float64 `json:"area_m2"`          // m²
	MaxSteps    int     `json:"max_steps,omitempty"`
	// KeepSamples retains every state in Result.Samples.
	KeepSamples bool `json:"keep_samples,omitempty"`
}

// DefaultParams is the 155 mm reference shot: 75°, 827 m/s, 10ms steps.
func DefaultParams() Params {
	return Params{
		AngleDeg:    75,
		MuzzleSpeed: 827,
		TimeStep:    physics.DefaultTimeStep,
		Area:        physics.ShellArea,
		MaxSteps:    DefaultMaxSteps,
	}
}

// Validate reports the first unusable parameter.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"angle_deg", p.AngleDeg},
		{"muzzle_speed_mps", p.MuzzleSpeed},
		{"time_step_s", p.TimeStep},
		{"area_m2", p.Area},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite", f.name)
		}
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("time_step_s must be > 0")
	}
	if p.MuzzleSpeed < 0 {
		return fmt.Errorf("muzzle_speed_mps must be >= 0")
	}
	if p.Area < 0 {
		return fmt.Errorf("area_m2 must be >= 0")
	}
	if p.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be >= 0")
	}
	return nil
}

// State is the projectile at one instant.
type State struct {
	T  float64 `json:"t"`  // seconds since launch
	X  float64 `json:"x"`  // ground distance, m
	Y  float64 `json:"y"`  // altitude, m
	DX float64 `json:"dx"` // horizontal velocity, m/s
	DY float64 `json:"dy"` // vertical velocity, m/s
}

// Speed is the velocity magnitude.
func (s State) Speed() float64 { return math.Hypot(s.DX, s.DY) }

// Airborne reports whether the shell is still at or above the ground.
func (s State) Airborne() bool { return s.Y >= 0 }

// Result summarises a completed flight.
type Result struct {
	Distance    float64 `json:"distance_m"`
	HangTime    float64 `json:"hang_time_s"`
	Steps       int     `json:"steps"`
	Apex        float64 `json:"apex_m"`
	ImpactSpeed float64 `json:"impact_speed_mps"`
	Samples     []State `json:"samples,omitempty"`
}

// Launch returns the state at the muzzle.
func Launch(p Params) State {
	a := angle.FromDegrees(p.AngleDeg)
	return State{
		DX: physics.HorizontalComponent(a, p.MuzzleSpeed),
		DY: physics.VerticalComponent(a, p.MuzzleSpeed),
	}
}

// Step advances s by dt under env and returns the new state.
func Step(env physics.Environment, s State, dt, area float64) State {
	gravity := env.Gravity(s.Y)
	speed := s.Speed()
	cd := env.DragCoefficient(speed / env.SpeedOfSound(s.Y))
	rho := env.AirDensity(s.Y)
	decel := physics.AccelerationFromForce(physics.DragForce(cd, rho, speed, area))

	// Drag opposes the direction of travel.
	heading := angle.FromComponents(s.DX, s.DY)
	ddx := -physics.HorizontalComponent(heading, decel)
	ddy := -physics.VerticalComponent(heading, decel)

	next := State{T: s.T + dt}
	next.DY = physics.VelocityUpdate(s.DY, gravity+ddy, dt)
	next.DX = physics.VelocityUpdate(s.DX, ddx, dt)
	next.X = physics.DisplacementUpdate(s.X, next.DX, ddx, dt)
	next.Y = physics.DisplacementUpdate(s.Y, next.DY, gravity+ddy, dt)
	return next
}

// Advance runs exactly n steps from launch, ignoring the ground. A nil env
// is the standard atmosphere.
func Advance(env physics.Environment, p Params, n int) (State, error) {
	if err := p.Validate(); err != nil {
		return State{}, err
	}
	if n < 0 {
		return State{}, fmt.Errorf("steps must be >= 0")
	}
	if env == nil {
		env = physics.Standard{}
	}
	s := Launch(p)
	for i := 0; i < n; i++ {
		s = Step(env, s, p.TimeStep, p.Area)
	}
	return s, nil
}

// Fly runs from launch until the shell crosses the ground.
func Fly(env physics.Environment, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if env == nil {
		env = physics.Standard{}
	}
	maxSteps := p.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	cur := Launch(p)
	prev := cur
	res := Result{}
	if p.KeepSamples {
		res.Samples = append(res.Samples, cur)
	}

	for cur.Airborne() {
		if res.Steps >= maxSteps {
			return Result{}, fmt.Errorf("%w (%d steps, altitude %.1fm)", ErrStepLimit, res.Steps, cur.Y)
		}
		prev = cur
		cur = Step(env, cur, p.TimeStep, p.Area)
		res.Steps++
		if cur.Y > res.Apex {
			res.Apex = cur.Y
		}
		if p.KeepSamples {
			res.Samples = append(res.Samples, cur)
		}
	}

	dist, err := interp.Segment(cur.Y, cur.X, prev.Y, prev.X, 0)
	if err != nil {
		return Result{}, fmt.Errorf("impact refinement: %w", err)
	}
	res.Distance = dist
	res.HangTime = cur.T
	res.ImpactSpeed = cur.Speed()
	return res, nil
}

// RangeVacuum is the closed-form drag-free range on flat ground for a
// zenith-referenced launch angle and gravity magnitude g.
func RangeVacuum(speed, angleDeg, g float64) float64 {
	a := angle.FromDegrees(angleDeg)
	return speed * speed * math.Sin(2*a.Radians()) / g
}
