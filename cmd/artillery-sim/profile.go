package main

import (
	"fmt"
	"io"
	"strings"

	"artillery-sim/internal/plot"
	"artillery-sim/internal/trajectory"
)

const (
	defaultProfileWidth = 80
	minProfileWidth     = 20
	maxProfileWidth     = 240
	profileRows         = 16
)

func profileWidth(termCols int) int {
	switch {
	case termCols <= 0:
		return defaultProfileWidth
	case termCols < minProfileWidth:
		return minProfileWidth
	case termCols > maxProfileWidth:
		return maxProfileWidth
	}
	return termCols
}

// renderProfile draws altitude over distance as text, width columns wide.
func renderProfile(w io.Writer, samples []trajectory.State, impact float64, width int) error {
	pts := plot.Profile(samples, impact)
	if len(pts) == 0 {
		return fmt.Errorf("no airborne samples")
	}
	width = profileWidth(width)

	var maxX, maxY float64
	for _, p := range pts {
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	grid := make([][]byte, profileRows)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", width))
	}
	for _, p := range pts {
		col, row := 0, profileRows-1
		if maxX > 0 {
			col = int(p.X / maxX * float64(width-1))
		}
		if maxY > 0 {
			row = profileRows - 1 - int(p.Y/maxY*float64(profileRows-1))
		}
		grid[row][col] = '*'
	}

	if _, err := fmt.Fprintf(w, "apex %.0fm\n", maxY); err != nil {
		return err
	}
	for _, line := range grid {
		if _, err := fmt.Fprintf(w, "%s\n", strings.TrimRight(string(line), " ")); err != nil {
			return err
		}
	}
	footer := fmt.Sprintf("%.0fm", maxX)
	pad := width - len(footer) - 2
	if pad < 1 {
		pad = 1
	}
	_, err := fmt.Fprintf(w, "%s\n0m%s%s\n", strings.Repeat("-", width), strings.Repeat(" ", pad), footer)
	return err
}
