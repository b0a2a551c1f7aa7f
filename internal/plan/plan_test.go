package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlan_ParseShotsAndSweep(t *testing.T) {
	yaml := []byte(`
version: 1
defaults:
  muzzle_speed_mps: 827
  time_step: 10ms
shots:
  - name: "high"
    angle_deg: 75
  - angle_deg: 45
    model: vacuum
    muzzle_speed_mps: 100
sweep:
  from_deg: 40
  to_deg: 50
  step_deg: 5
`)

	script, err := ParsePlanScriptYAML(yaml)
	if err != nil {
		t.Fatalf("ParsePlanScriptYAML: %v", err)
	}
	p, err := NewPlan(script)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	shots := p.Shots()
	if len(shots) != 5 {
		t.Fatalf("shots=%d want 5", len(shots))
	}
	wantNames := []string{"high", "shot-2", "sweep-40", "sweep-45", "sweep-50"}
	for i, want := range wantNames {
		if shots[i].Name != want {
			t.Fatalf("shots[%d].Name=%q want %q", i, shots[i].Name, want)
		}
	}
	if shots[1].Model != "vacuum" || shots[1].Params.MuzzleSpeed != 100 {
		t.Fatalf("override not applied: %+v", shots[1])
	}
	if shots[2].Model != "standard" || shots[2].Params.MuzzleSpeed != 827 {
		t.Fatalf("defaults not applied: %+v", shots[2])
	}
	if shots[0].Params.TimeStep != 0.01 {
		t.Fatalf("time step=%v want 0.01", shots[0].Params.TimeStep)
	}

	outcomes, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("outcomes=%d want 5", len(outcomes))
	}

	// Among the standard sweep shots 45° flies furthest.
	best, ok := Best(outcomes[2:])
	if !ok {
		t.Fatalf("Best ok=false")
	}
	if best.Shot.Name != "sweep-45" {
		t.Fatalf("best=%q want sweep-45", best.Shot.Name)
	}
}

func degPtr(v float64) *float64 { return &v }

func TestPlan_ParseRejectsUnknownFields(t *testing.T) {
	_, err := ParsePlanScriptYAML([]byte("shots:\n  - name: typo\n    angle: 45\n"))
	if err == nil || !strings.Contains(err.Error(), "field angle not found") {
		t.Fatalf("err=%v want unknown field angle", err)
	}

	// An empty document parses; NewPlan reports what is missing.
	script, err := ParsePlanScriptYAML(nil)
	if err != nil {
		t.Fatalf("ParsePlanScriptYAML(nil): %v", err)
	}
	if _, err := NewPlan(script); err == nil {
		t.Fatalf("expected error for empty plan")
	}
}

func TestPlan_SweepIncludesEndpointDespiteRounding(t *testing.T) {
	p, err := NewPlan(PlanScript{Sweep: &SweepScript{FromDeg: 0.1, ToDeg: 0.3, StepDeg: 0.1}})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if got := len(p.Shots()); got != 3 {
		t.Fatalf("shots=%d want 3", got)
	}
}

func TestPlan_Validation(t *testing.T) {
	cases := []struct {
		name   string
		script PlanScript
		want   string
	}{
		{"Version", PlanScript{Version: 2, Shots: []ShotScript{{AngleDeg: degPtr(45)}}}, "unsupported plan version 2"},
		{"Empty", PlanScript{}, "plan needs shots or a sweep"},
		{"Angle", PlanScript{Shots: []ShotScript{{AngleDeg: degPtr(181)}}}, "shots[0]: angle_deg must be within [0, 180]"},
		{"MissingAngle", PlanScript{Shots: []ShotScript{{Name: "typo", MuzzleSpeedMps: 300}}}, "shots[0]: angle_deg is required"},
		{"Model", PlanScript{Shots: []ShotScript{{AngleDeg: degPtr(10), Model: "wind"}}}, `shots[0]: unknown model "wind" (want one of vacuum, gravity, drag, density, standard)`},
		{"Speed", PlanScript{Shots: []ShotScript{{AngleDeg: degPtr(10), MuzzleSpeedMps: -1}}}, "shots[0]: muzzle_speed_mps must be >= 0"},
		{"SweepStep", PlanScript{Sweep: &SweepScript{FromDeg: 10, ToDeg: 20}}, "sweep.step_deg must be > 0"},
		{"SweepOrder", PlanScript{Sweep: &SweepScript{FromDeg: 20, ToDeg: 10, StepDeg: 1}}, "sweep.to_deg must be >= sweep.from_deg"},
		{"SweepSize", PlanScript{Sweep: &SweepScript{FromDeg: 0, ToDeg: 90, StepDeg: 0.001}}, "sweep expands to 90001 shots (max 10000)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlan(tc.script)
			if err == nil || err.Error() != tc.want {
				t.Fatalf("err=%v want %q", err, tc.want)
			}
		})
	}
}

func TestPlan_RunHonoursCancel(t *testing.T) {
	p, err := NewPlan(PlanScript{Sweep: &SweepScript{FromDeg: 10, ToDeg: 80, StepDeg: 10}})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())

	seen := 0
	outcomes, err := p.Run(ctx, func(Outcome) {
		seen++
		if seen == 2 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("outcomes=%d want 2", len(outcomes))
	}
}

func TestLoadPlanScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte("shots:\n  - angle_deg: 30\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	script, err := LoadPlanScript(path)
	if err != nil {
		t.Fatalf("LoadPlanScript: %v", err)
	}
	if len(script.Shots) != 1 || script.Shots[0].AngleDeg == nil || *script.Shots[0].AngleDeg != 30 {
		t.Fatalf("script=%+v", script)
	}
}

func TestBest_Empty(t *testing.T) {
	if _, ok := Best(nil); ok {
		t.Fatalf("Best(nil) ok=true")
	}
}

func TestLoadPlanScript_Example(t *testing.T) {
	script, err := LoadPlanScript("../../configs/sweep.yaml")
	if err != nil {
		t.Fatalf("LoadPlanScript: %v", err)
	}
	p, err := NewPlan(script)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if got := len(p.Shots()); got != 17 {
		t.Fatalf("shots=%d want 17", got)
	}
}
