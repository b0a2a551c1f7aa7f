package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"artillery-sim/internal/trajectory"
)

// Recording format: line-oriented text, optionally zstd-compressed when the
// file name ends in ".zst".
//
// - Blank lines ignored.
// - Lines starting with '#' ignored.
// - Line "START <name>" begins a flight; the name may be empty.
// - Data lines are: <t_ns>,<x>,<y>,<dx>,<dy>
//   where t_ns is nanoseconds since launch and the rest are metres and m/s
//   formatted so that they parse back to the identical float64.

// Record is either a flight marker (State == nil) or one sample.
type Record struct {
	Flight string
	At     time.Duration
	State  *trajectory.State
}

type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (rr *Reader) ReadAll() ([]Record, error) {
	s := bufio.NewScanner(rr.r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	recs := make([]Record, 0, 1024)
	flight := ""
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "START" || strings.HasPrefix(line, "START ") {
			flight = strings.TrimSpace(strings.TrimPrefix(line, "START"))
			recs = append(recs, Record{Flight: flight})
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return nil, fmt.Errorf("invalid recording line (want 5 fields, got %d): %q", len(fields), line)
		}
		tsStr := strings.TrimSpace(fields[0])
		tsNs, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid recording timestamp %q: %w", tsStr, err)
		}
		if tsNs < 0 {
			return nil, fmt.Errorf("invalid recording timestamp (negative): %d", tsNs)
		}

		var v [4]float64
		for i := range v {
			f := strings.TrimSpace(fields[i+1])
			v[i], err = strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid recording value %q: %w", f, err)
			}
		}

		at := time.Duration(tsNs)
		st := trajectory.State{T: at.Seconds(), X: v[0], Y: v[1], DX: v[2], DY: v[3]}
		recs = append(recs, Record{Flight: flight, At: at, State: &st})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// ReadFile reads a recording from path, decompressing ".zst" files.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return NewReader(r).ReadAll()
}

func compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

type Writer struct {
	f      *os.File
	zw     *zstd.Encoder
	w      *bufio.Writer
	closed bool
}

func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	ww := &Writer{f: f}
	var dst io.Writer = f
	if compressed(path) {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		ww.zw = zw
		dst = zw
	}
	ww.w = bufio.NewWriterSize(dst, 64*1024)
	if _, err := ww.w.WriteString("# artillery-sim trajectory recording\n"); err != nil {
		_ = ww.Close()
		return nil, err
	}
	return ww, nil
}

// StartFlight writes a flight marker. Names must fit on one line.
func (ww *Writer) StartFlight(name string) error {
	if ww.closed {
		return errors.New("recording writer is closed")
	}
	if strings.ContainsAny(name, "\r\n") {
		return errors.New("flight name must not contain newlines")
	}
	line := "START"
	if name = strings.TrimSpace(name); name != "" {
		line += " " + name
	}
	_, err := ww.w.WriteString(line + "\n")
	return err
}

func (ww *Writer) WriteState(s trajectory.State) error {
	if ww.closed {
		return errors.New("recording writer is closed")
	}
	at := time.Duration(s.T * float64(time.Second))
	if at < 0 {
		at = 0
	}
	_, err := fmt.Fprintf(ww.w, "%d,%s,%s,%s,%s\n", at.Nanoseconds(), ff(s.X), ff(s.Y), ff(s.DX), ff(s.DY))
	return err
}

// WriteFlight writes a marker followed by every state.
func (ww *Writer) WriteFlight(name string, states []trajectory.State) error {
	if err := ww.StartFlight(name); err != nil {
		return err
	}
	for _, s := range states {
		if err := ww.WriteState(s); err != nil {
			return err
		}
	}
	return nil
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (ww *Writer) Flush() error {
	if ww.closed {
		return nil
	}
	return ww.w.Flush()
}

func (ww *Writer) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	if err := ww.w.Flush(); err != nil {
		if ww.zw != nil {
			_ = ww.zw.Close()
		}
		_ = ww.f.Close()
		return err
	}
	if ww.zw != nil {
		if err := ww.zw.Close(); err != nil {
			_ = ww.f.Close()
			return err
		}
	}
	return ww.f.Close()
}

type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Play replays samples with their relative timing.
//
// cb is invoked for each sample record with the flight it belongs to. Flight
// markers reset the origin.
//
// speedMultiplier: 1.0 = real time, 10.0 = ten times faster.
func Play(records []Record, speedMultiplier float64, sleeper Sleeper, cb func(flight string, s trajectory.State) error) error {
	if speedMultiplier <= 0 {
		return fmt.Errorf("speedMultiplier must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	if cb == nil {
		return errors.New("callback is nil")
	}
	if len(records) == 0 {
		return errors.New("no records")
	}

	var lastAt time.Duration
	var haveLast bool
	for _, r := range records {
		if r.State == nil {
			lastAt = 0
			haveLast = false
			continue
		}

		if haveLast {
			wait := r.At - lastAt
			if wait < 0 {
				wait = 0
			}
			wait = time.Duration(float64(wait) / speedMultiplier)
			if wait > 0 {
				sleeper.Sleep(wait)
			}
		}

		if err := cb(r.Flight, *r.State); err != nil {
			return err
		}

		lastAt = r.At
		haveLast = true
	}
	return nil
}
