package record

import (
	"strings"
	"testing"
	"time"

	"artillery-sim/internal/trajectory"
)

type fakeSleeper struct {
	slept []time.Duration
}

func (fs *fakeSleeper) Sleep(d time.Duration) {
	fs.slept = append(fs.slept, d)
}

func TestReaderReadAll(t *testing.T) {
	in := strings.NewReader(`
# comment

START high angle
0, 0, 0, 214.04, 798.82
10000000, 2.14, 7.98, 214.0, 798.7
START
5,1,2,3,4
`)

	recs, err := NewReader(in).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected 5 records, got %d", len(recs))
	}
	if recs[0].State != nil || recs[0].Flight != "high angle" {
		t.Fatalf("expected START marker for %q, got %+v", "high angle", recs[0])
	}
	if recs[1].At != 0 || recs[1].State.DY != 798.82 || recs[1].Flight != "high angle" {
		t.Fatalf("unexpected record 1: %+v %+v", recs[1], recs[1].State)
	}
	if recs[2].At != 10*time.Millisecond {
		t.Fatalf("expected At=10ms, got %s", recs[2].At)
	}
	if recs[2].State.T != 0.01 || recs[2].State.X != 2.14 {
		t.Fatalf("unexpected state 2: %+v", *recs[2].State)
	}
	if recs[3].State != nil || recs[3].Flight != "" {
		t.Fatalf("expected unnamed START marker, got %+v", recs[3])
	}
	if recs[4].Flight != "" || recs[4].State.DY != 4 {
		t.Fatalf("unexpected record 4: %+v", recs[4])
	}
}

func TestReaderReadAll_InvalidLines(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Fields", "1,2,3\n", `invalid recording line (want 5 fields, got 3): "1,2,3"`},
		{"Timestamp", "x,1,2,3,4\n", `invalid recording timestamp "x": strconv.ParseInt: parsing "x": invalid syntax`},
		{"Negative", "-5,1,2,3,4\n", "invalid recording timestamp (negative): -5"},
		{"Value", "5,1,two,3,4\n", `invalid recording value "two": strconv.ParseFloat: parsing "two": invalid syntax`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tc.in)).ReadAll()
			if err == nil || err.Error() != tc.want {
				t.Fatalf("err=%v want %q", err, tc.want)
			}
		})
	}
}

func TestPlay_RespectsTimingAndStart(t *testing.T) {
	fs := &fakeSleeper{}
	st := func(x float64) *trajectory.State { return &trajectory.State{X: x} }

	recs := []Record{
		{Flight: "a"},
		{Flight: "a", At: 0, State: st(1)},
		{Flight: "a", At: 100 * time.Millisecond, State: st(2)},
		{Flight: "b"},
		{Flight: "b", At: 0, State: st(3)},
		{Flight: "b", At: 50 * time.Millisecond, State: st(4)},
	}

	var got []string
	var xs []float64
	err := Play(recs, 2.0, fs, func(flight string, s trajectory.State) error {
		got = append(got, flight)
		xs = append(xs, s.X)
		return nil
	})
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if strings.Join(got, "") != "aabb" {
		t.Fatalf("flights=%v want a a b b", got)
	}
	if len(xs) != 4 || xs[0] != 1 || xs[3] != 4 {
		t.Fatalf("xs=%v", xs)
	}
	want := []time.Duration{50 * time.Millisecond, 25 * time.Millisecond}
	if len(fs.slept) != len(want) || fs.slept[0] != want[0] || fs.slept[1] != want[1] {
		t.Fatalf("slept=%v want %v", fs.slept, want)
	}
}

func TestPlay_Errors(t *testing.T) {
	recs := []Record{{State: &trajectory.State{}}}
	noop := func(string, trajectory.State) error { return nil }

	if err := Play(recs, 0, nil, noop); err == nil {
		t.Fatalf("expected error for zero speed")
	}
	if err := Play(recs, 1, nil, nil); err == nil {
		t.Fatalf("expected error for nil callback")
	}
	if err := Play(nil, 1, nil, noop); err == nil {
		t.Fatalf("expected error for no records")
	}
}
