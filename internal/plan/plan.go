package plan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"artillery-sim/internal/physics"
	"artillery-sim/internal/trajectory"
)

// PlanScript is a deterministic, script-driven list of shots.
//
// YAML schema (v1):
//
//	version: 1
//	defaults:
//	  muzzle_speed_mps: 827
//	  time_step: 10ms
//	  area_m2: 0.018842
//	  model: standard
//	shots:
//	  - name: "high"
//	    angle_deg: 75
//	  - name: "vacuum-check"
//	    angle_deg: 45
//	    model: vacuum
//	sweep:
//	  from_deg: 10
//	  to_deg: 80
//	  step_deg: 5
//
// Per-shot fields override defaults. Sweep shots are appended after the
// explicit shots in ascending angle order and use the defaults only.
type PlanScript struct {
	Version  int          `yaml:"version"`
	Defaults ShotDefaults `yaml:"defaults"`
	Shots    []ShotScript `yaml:"shots"`
	Sweep    *SweepScript `yaml:"sweep"`
}

type ShotDefaults struct {
	MuzzleSpeedMps float64       `yaml:"muzzle_speed_mps"`
	TimeStep       time.Duration `yaml:"time_step"`
	AreaM2         float64       `yaml:"area_m2"`
	Model          string        `yaml:"model"`
}

type ShotScript struct {
	Name           string        `yaml:"name"`
	AngleDeg       *float64      `yaml:"angle_deg"`
	MuzzleSpeedMps float64       `yaml:"muzzle_speed_mps"`
	TimeStep       time.Duration `yaml:"time_step"`
	AreaM2         float64       `yaml:"area_m2"`
	Model          string        `yaml:"model"`
}

type SweepScript struct {
	FromDeg float64 `yaml:"from_deg"`
	ToDeg   float64 `yaml:"to_deg"`
	StepDeg float64 `yaml:"step_deg"`
}

// Shot is one fully resolved entry of a plan.
type Shot struct {
	Name   string
	Model  string
	Params trajectory.Params
	env    physics.Environment
}

// Outcome pairs a shot with its flight result.
type Outcome struct {
	Shot   Shot
	Result trajectory.Result
}

// Plan is the validated, runtime representation.
type Plan struct {
	shots []Shot
}

// maxSweepShots guards against a typo such as step_deg: 0.0001.
const maxSweepShots = 10000

// LoadPlanScript reads and unmarshals a YAML plan from path.
func LoadPlanScript(path string) (PlanScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return PlanScript{}, err
	}
	return ParsePlanScriptYAML(b)
}

// ParsePlanScriptYAML parses a YAML plan. Unknown fields are errors.
func ParsePlanScriptYAML(b []byte) (PlanScript, error) {
	var s PlanScript
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return PlanScript{}, err
	}
	return s, nil
}

// NewPlan validates script and expands it into shots.
func NewPlan(script PlanScript) (*Plan, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported plan version %d", script.Version)
	}
	if len(script.Shots) == 0 && script.Sweep == nil {
		return nil, fmt.Errorf("plan needs shots or a sweep")
	}

	d := script.Defaults
	if d.MuzzleSpeedMps == 0 {
		d.MuzzleSpeedMps = trajectory.DefaultParams().MuzzleSpeed
	}
	if d.TimeStep == 0 {
		d.TimeStep = 10 * time.Millisecond
	}
	if d.AreaM2 == 0 {
		d.AreaM2 = physics.ShellArea
	}
	if d.Model == "" {
		d.Model = physics.ModelStandard
	}

	p := &Plan{}
	for i, ss := range script.Shots {
		shot, err := resolveShot(d, ss)
		if err != nil {
			return nil, fmt.Errorf("shots[%d]: %w", i, err)
		}
		if shot.Name == "" {
			shot.Name = fmt.Sprintf("shot-%d", i+1)
		}
		p.shots = append(p.shots, shot)
	}

	if sw := script.Sweep; sw != nil {
		if sw.StepDeg <= 0 {
			return nil, fmt.Errorf("sweep.step_deg must be > 0")
		}
		if sw.ToDeg < sw.FromDeg {
			return nil, fmt.Errorf("sweep.to_deg must be >= sweep.from_deg")
		}
		n := int(math.Floor((sw.ToDeg-sw.FromDeg)/sw.StepDeg+1e-9)) + 1
		if n > maxSweepShots {
			return nil, fmt.Errorf("sweep expands to %d shots (max %d)", n, maxSweepShots)
		}
		for i := 0; i < n; i++ {
			deg := sw.FromDeg + float64(i)*sw.StepDeg
			shot, err := resolveShot(d, ShotScript{AngleDeg: &deg})
			if err != nil {
				return nil, fmt.Errorf("sweep at %gdeg: %w", deg, err)
			}
			shot.Name = fmt.Sprintf("sweep-%g", deg)
			p.shots = append(p.shots, shot)
		}
	}
	return p, nil
}

func resolveShot(d ShotDefaults, ss ShotScript) (Shot, error) {
	if ss.AngleDeg == nil {
		return Shot{}, fmt.Errorf("angle_deg is required")
	}
	if *ss.AngleDeg < 0 || *ss.AngleDeg > 180 {
		return Shot{}, fmt.Errorf("angle_deg must be within [0, 180]")
	}
	params := trajectory.DefaultParams()
	params.AngleDeg = *ss.AngleDeg
	params.MuzzleSpeed = pick(ss.MuzzleSpeedMps, d.MuzzleSpeedMps)
	params.Area = pick(ss.AreaM2, d.AreaM2)
	step := ss.TimeStep
	if step == 0 {
		step = d.TimeStep
	}
	params.TimeStep = step.Seconds()
	if err := params.Validate(); err != nil {
		return Shot{}, err
	}

	model := ss.Model
	if model == "" {
		model = d.Model
	}
	env, err := physics.EnvironmentByName(model)
	if err != nil {
		return Shot{}, err
	}
	return Shot{Name: ss.Name, Model: model, Params: params, env: env}, nil
}

func pick(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Shots returns the resolved shots in execution order.
func (p *Plan) Shots() []Shot {
	if p == nil {
		return nil
	}
	out := make([]Shot, len(p.shots))
	copy(out, p.shots)
	return out
}

// KeepSamples makes every shot retain its full state history.
func (p *Plan) KeepSamples(keep bool) {
	if p == nil {
		return
	}
	for i := range p.shots {
		p.shots[i].Params.KeepSamples = keep
	}
}

// Run flies every shot in order. It stops early, returning the outcomes so
// far and ctx.Err(), if ctx is cancelled between shots.
//
// observe, if non-nil, is called after each shot (e.g. for metrics).
func (p *Plan) Run(ctx context.Context, observe func(Outcome)) ([]Outcome, error) {
	if p == nil {
		return nil, nil
	}
	out := make([]Outcome, 0, len(p.shots))
	for _, shot := range p.shots {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := trajectory.Fly(shot.env, shot.Params)
		if err != nil {
			return out, fmt.Errorf("shot %q: %w", shot.Name, err)
		}
		o := Outcome{Shot: shot, Result: res}
		if observe != nil {
			observe(o)
		}
		out = append(out, o)
	}
	return out, nil
}

// Best returns the outcome with the longest range. ok is false for no outcomes.
func Best(outcomes []Outcome) (best Outcome, ok bool) {
	for i, o := range outcomes {
		if i == 0 || o.Result.Distance > best.Result.Distance {
			best = o
			ok = true
		}
	}
	return best, ok
}
