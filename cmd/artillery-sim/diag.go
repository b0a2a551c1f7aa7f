package main

import (
	"fmt"
	"io"

	"artillery-sim/internal/physics"
	"artillery-sim/internal/trajectory"
)

// runDiagnostics prints the model build-up from pure inertia to the full
// standard atmosphere for one launch. Each stage picks its own model; the
// launch, time step and area come from p.
func runDiagnostics(w io.Writer, p trajectory.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(w, "angle: %g deg  muzzle speed: %g m/s  time step: %g s\n", p.AngleDeg, p.MuzzleSpeed, p.TimeStep)

	// The first two stages run twenty one-second steps.
	coarse := p
	coarse.TimeStep = 1
	s, err := trajectory.Advance(physics.Vacuum{}, coarse, 20)
	if err != nil {
		return fmt.Errorf("inertia: %w", err)
	}
	fmt.Fprintf(w, "1) %-17s distance=%.1fm altitude=%.1fm\n", "inertia:", s.X, s.Y)
	if s, err = trajectory.Advance(physics.Vacuum{G: physics.StandardGravity}, coarse, 20); err != nil {
		return fmt.Errorf("acceleration: %w", err)
	}
	fmt.Fprintf(w, "2) %-17s distance=%.1fm altitude=%.1fm\n", "acceleration:", s.X, s.Y)

	stages := []struct {
		name string
		env  physics.Environment
	}{
		{"ground impact:", physics.Vacuum{G: physics.StandardGravity}},
		{"gravity:", physics.GravityOnly{}},
		{"drag:", physics.FixedDrag{Cd: 0.3, Rho: 0.6}},
		{"air density:", physics.DensityOnly{Cd: 0.3}},
		{"drag coefficient:", physics.Standard{}},
	}
	full := p
	full.KeepSamples = true
	for i, st := range stages {
		res, err := trajectory.Fly(st.env, full)
		if err != nil {
			return fmt.Errorf("%s %w", st.name, err)
		}
		last := res.Samples[len(res.Samples)-1]
		fmt.Fprintf(w, "%d) %-17s distance=%.1fm altitude=%.1fm hang=%.2fs\n", i+3, st.name, last.X, last.Y, res.HangTime)
	}

	p.KeepSamples = false
	res, err := trajectory.Fly(physics.Standard{}, p)
	if err != nil {
		return fmt.Errorf("hit the ground: %w", err)
	}
	_, err = fmt.Fprintf(w, "8) %-17s distance=%.1fm hang=%.1fs\n", "hit the ground:", res.Distance, res.HangTime)
	return err
}
