package record

import (
	"os"
	"path/filepath"
	"testing"

	"artillery-sim/internal/physics"
	"artillery-sim/internal/trajectory"
)

func TestRecordReplay_RoundTripStatesInOrder(t *testing.T) {
	p := trajectory.DefaultParams()
	p.KeepSamples = true
	res, err := trajectory.Fly(physics.Standard{}, p)
	if err != nil {
		t.Fatalf("Fly() error: %v", err)
	}

	for _, name := range []string{"flight.log", "flight.log.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			w, err := CreateWriter(path)
			if err != nil {
				t.Fatalf("CreateWriter() error: %v", err)
			}
			if err := w.WriteFlight("reference 75deg", res.Samples); err != nil {
				_ = w.Close()
				t.Fatalf("WriteFlight() error: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error: %v", err)
			}
			if err := w.WriteState(trajectory.State{}); err == nil {
				t.Fatalf("expected error writing after Close")
			}

			recs, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if len(recs) != len(res.Samples)+1 {
				t.Fatalf("records=%d want %d", len(recs), len(res.Samples)+1)
			}

			var out []trajectory.State
			fs := &fakeSleeper{}
			err = Play(recs, 1e9, fs, func(flight string, s trajectory.State) error {
				if flight != "reference 75deg" {
					t.Fatalf("flight=%q", flight)
				}
				out = append(out, s)
				return nil
			})
			if err != nil {
				t.Fatalf("Play() error: %v", err)
			}
			for i := range out {
				a, b := out[i], res.Samples[i]
				if a.X != b.X || a.Y != b.Y || a.DX != b.DX || a.DY != b.DY {
					t.Fatalf("sample %d mismatch\n got: %+v\nwant: %+v", i, a, b)
				}
			}
		})
	}
}

func TestCreateWriter_CompressedIsSmaller(t *testing.T) {
	p := trajectory.DefaultParams()
	p.KeepSamples = true
	res, err := trajectory.Fly(physics.Standard{}, p)
	if err != nil {
		t.Fatalf("Fly() error: %v", err)
	}

	tmp := t.TempDir()
	sizes := map[string]int64{}
	for _, name := range []string{"a.log", "a.log.zst"} {
		path := filepath.Join(tmp, name)
		w, err := CreateWriter(path)
		if err != nil {
			t.Fatalf("CreateWriter() error: %v", err)
		}
		if err := w.WriteFlight("x", res.Samples); err != nil {
			t.Fatalf("WriteFlight() error: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error: %v", err)
		}
		sizes[name] = fi.Size()
	}
	if sizes["a.log.zst"] >= sizes["a.log"] {
		t.Fatalf("compressed=%d plain=%d", sizes["a.log.zst"], sizes["a.log"])
	}
}

func TestStartFlight_RejectsNewline(t *testing.T) {
	w, err := CreateWriter(filepath.Join(t.TempDir(), "x.log"))
	if err != nil {
		t.Fatalf("CreateWriter() error: %v", err)
	}
	defer w.Close()
	if err := w.StartFlight("a\nb"); err == nil {
		t.Fatalf("expected error")
	}
}
