// Package plot renders trajectory profiles (altitude over ground distance).
package plot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"artillery-sim/internal/trajectory"
)

// Series is one labelled flight.
type Series struct {
	Name    string
	Samples []trajectory.State
	// Impact, when non-zero, is marked on the ground line.
	Impact float64
}

// Profile converts states to plot points, stopping at the first sample
// below ground and replacing it with the refined impact point when known.
func Profile(samples []trajectory.State, impact float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		if s.Y < 0 {
			if impact > 0 {
				pts = append(pts, plotter.XY{X: impact, Y: 0})
			}
			break
		}
		pts = append(pts, plotter.XY{X: s.X, Y: s.Y})
	}
	return pts
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf":
		return true
	}
	return false
}

// Save writes the profiles to path. The format follows the extension.
func Save(path string, widthIn, heightIn float64, series ...Series) error {
	if !supported(path) {
		return fmt.Errorf("unsupported plot format %q (want .png, .svg or .pdf)", filepath.Ext(path))
	}
	if widthIn <= 0 || heightIn <= 0 {
		return errors.New("plot size must be > 0")
	}
	if len(series) == 0 {
		return errors.New("nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Trajectory"
	p.X.Label.Text = "distance (m)"
	p.Y.Label.Text = "altitude (m)"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := Profile(s.Samples, s.Impact)
		if len(pts) == 0 {
			return fmt.Errorf("series %q has no airborne samples", s.Name)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}

		if s.Impact > 0 {
			sc, err := plotter.NewScatter(plotter.XYs{{X: s.Impact, Y: 0}})
			if err != nil {
				return fmt.Errorf("series %q impact: %w", s.Name, err)
			}
			sc.GlyphStyle.Color = line.Color
			p.Add(sc)
		}
	}
	p.Legend.Top = true

	return p.Save(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, path)
}
