package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"artillery-sim/internal/physics"
	"artillery-sim/internal/trajectory"
)

func flight(t *testing.T, env physics.Environment, angleDeg float64) trajectory.Result {
	t.Helper()
	p := trajectory.DefaultParams()
	p.AngleDeg = angleDeg
	p.KeepSamples = true
	res, err := trajectory.Fly(env, p)
	if err != nil {
		t.Fatalf("Fly: %v", err)
	}
	return res
}

func TestProfile_StopsAtImpact(t *testing.T) {
	samples := []trajectory.State{
		{X: 0, Y: 0},
		{X: 10, Y: 5},
		{X: 20, Y: -1},
		{X: 30, Y: -8},
	}
	pts := Profile(samples, 18)
	if len(pts) != 3 {
		t.Fatalf("points=%d want 3", len(pts))
	}
	if pts[2].X != 18 || pts[2].Y != 0 {
		t.Fatalf("impact point=%+v", pts[2])
	}
	if got := len(Profile(samples, 0)); got != 2 {
		t.Fatalf("points without impact=%d want 2", got)
	}
}

func TestSave_WritesFormats(t *testing.T) {
	std := flight(t, physics.Standard{}, 75)
	vac := flight(t, physics.Vacuum{G: physics.StandardGravity}, 75)
	series := []Series{
		{Name: "standard", Samples: std.Samples, Impact: std.Distance},
		{Name: "vacuum", Samples: vac.Samples, Impact: vac.Distance},
	}

	tmp := t.TempDir()
	for name, magic := range map[string][]byte{
		"profile.png": []byte("\x89PNG"),
		"profile.svg": []byte("<?xml"),
		"profile.pdf": []byte("%PDF"),
	} {
		path := filepath.Join(tmp, name)
		if err := Save(path, 6, 3, series...); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !bytes.HasPrefix(b, magic) {
			t.Fatalf("%s starts with %q", name, b[:min(len(b), 8)])
		}
	}
}

func TestSave_Errors(t *testing.T) {
	tmp := t.TempDir()
	ok := []Series{{Samples: []trajectory.State{{}, {X: 1, Y: 1}}}}

	cases := []struct {
		name   string
		path   string
		w, h   float64
		series []Series
		want   string
	}{
		{"Format", "x.gif", 4, 4, ok, `unsupported plot format ".gif" (want .png, .svg or .pdf)`},
		{"Size", "x.png", 0, 4, ok, "plot size must be > 0"},
		{"Empty", "x.png", 4, 4, nil, "nothing to plot"},
		{"NoSamples", "x.png", 4, 4, []Series{{Name: "a"}}, `series "a" has no airborne samples`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Save(filepath.Join(tmp, tc.path), tc.w, tc.h, tc.series...)
			if err == nil || err.Error() != tc.want {
				t.Fatalf("err=%v want %q", err, tc.want)
			}
		})
	}
}
