package main

import (
	"fmt"
	"io"
	"strings"

	"artillery-sim/internal/record"
)

func printRecordingSummary(w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	recs, err := record.ReadFile(path)
	if err != nil {
		return err
	}

	s := record.Summarize(recs)

	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "flights: %d\n", s.Flights)
	fmt.Fprintf(w, "landed: %d\n", s.Landed)
	fmt.Fprintf(w, "samples: %d\n", s.Samples)
	if s.Samples > 0 {
		fmt.Fprintf(w, "max_altitude_m: %.1f\n", s.MaxAltitude)
		fmt.Fprintf(w, "max_distance_m: %.1f\n", s.MaxDistance)
	}
	_, err = fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)
	return err
}
