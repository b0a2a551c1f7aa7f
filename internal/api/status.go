package api

import (
	"sync/atomic"
	"time"
)

type Status struct {
	startUnixNano int64
	shotsFlown    uint64
	shotErrors    uint64
	lastShot      atomic.Value // LastShot
	defaults      atomic.Value // map[string]any
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.lastShot.Store(LastShot{})
	s.defaults.Store(map[string]any{})
	return s
}

// LastShot is the most recent shot served over HTTP.
type LastShot struct {
	Model      string  `json:"model,omitempty"`
	AngleDeg   float64 `json:"angle_deg"`
	DistanceM  float64 `json:"distance_m"`
	HangTimeS  float64 `json:"hang_time_s"`
	FlownAtUTC string  `json:"flown_at_utc,omitempty"`
}

func (s *Status) SetDefaults(info map[string]any) {
	if info != nil {
		s.defaults.Store(info)
	}
}

func (s *Status) MarkShot(nowUTC time.Time, shot LastShot) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	shot.FlownAtUTC = nowUTC.UTC().Format(time.RFC3339Nano)
	s.lastShot.Store(shot)
	atomic.AddUint64(&s.shotsFlown, 1)
}

func (s *Status) MarkError() {
	atomic.AddUint64(&s.shotErrors, 1)
}

type StatusSnapshot struct {
	Service    string         `json:"service"`
	NowUTC     string         `json:"now_utc"`
	UptimeSec  int64          `json:"uptime_sec"`
	ShotsFlown uint64         `json:"shots_flown"`
	ShotErrors uint64         `json:"shot_errors"`
	LastShot   *LastShot      `json:"last_shot,omitempty"`
	Defaults   map[string]any `json:"defaults"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()

	snap := StatusSnapshot{
		Service:    "artillery-sim",
		NowUTC:     nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:  int64(nowUTC.Sub(start).Seconds()),
		ShotsFlown: atomic.LoadUint64(&s.shotsFlown),
		ShotErrors: atomic.LoadUint64(&s.shotErrors),
		Defaults:   s.defaults.Load().(map[string]any),
	}
	if last := s.lastShot.Load().(LastShot); last.FlownAtUTC != "" {
		snap.LastShot = &last
	}
	return snap
}
