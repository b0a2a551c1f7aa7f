package record

import (
	"math"
	"time"
)

// Summary describes a recording without replaying it.
type Summary struct {
	Flights     int
	Samples     int
	MaxAltitude float64
	MaxDistance float64
	MaxDuration time.Duration
	// Landed counts flights whose last sample is below ground.
	Landed int
}

func Summarize(records []Record) Summary {
	s := Summary{}
	if len(records) == 0 {
		return s
	}

	flights := 0
	var last *Record
	closeFlight := func() {
		if last != nil && last.State.Y < 0 {
			s.Landed++
		}
		last = nil
	}

	for i := range records {
		r := &records[i]
		if r.State == nil {
			closeFlight()
			flights++
			continue
		}
		if s.Samples == 0 {
			s.MaxAltitude = math.Inf(-1)
			s.MaxDistance = math.Inf(-1)
		}
		s.Samples++
		s.MaxAltitude = math.Max(s.MaxAltitude, r.State.Y)
		s.MaxDistance = math.Max(s.MaxDistance, r.State.X)
		if r.At > s.MaxDuration {
			s.MaxDuration = r.At
		}
		last = r
	}
	closeFlight()

	if flights == 0 && s.Samples > 0 {
		flights = 1
	}
	s.Flights = flights
	return s
}
