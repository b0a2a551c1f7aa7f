package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"artillery-sim/internal/interp"
	"artillery-sim/internal/metrics"
	"artillery-sim/internal/physics"
	"artillery-sim/internal/trajectory"
)

const (
	maxBodyBytes = 64 << 10

	// maxResponseSamples bounds the trajectory returned with keep_samples.
	maxResponseSamples = 100_000
)

// Options configures the HTTP handler. Zero values fall back to the
// reference shot on the standard model.
type Options struct {
	Defaults trajectory.Params
	Model    string
	Status   *Status
	Logs     *LogBuffer
}

type server struct {
	defaults trajectory.Params
	model    string
	status   *Status
}

// ShotRequest is the body of POST /api/shots. Omitted fields take the
// server defaults.
type ShotRequest struct {
	Model string `json:"model,omitempty"`
	trajectory.Params
}

type ShotResponse struct {
	Model  string            `json:"model"`
	Params trajectory.Params `json:"params"`
	Result trajectory.Result `json:"result"`
}

type RangeResponse struct {
	Model        string            `json:"model"`
	AngleDeg     float64           `json:"angle_deg"`
	MuzzleSpeed  float64           `json:"muzzle_speed_mps"`
	Result       trajectory.Result `json:"result"`
	VacuumRangeM float64           `json:"vacuum_range_m"`
}

type TableLookupResponse struct {
	Table string  `json:"table"`
	Key   float64 `json:"key"`
	Value float64 `json:"value"`
}

type TableResponse struct {
	Table   string          `json:"table"`
	Samples []interp.Sample `json:"samples"`
}

func Handler(opts Options) http.Handler {
	s := &server{defaults: opts.Defaults, model: opts.Model, status: opts.Status}
	if s.defaults.TimeStep == 0 {
		s.defaults = trajectory.DefaultParams()
	}
	if s.model == "" {
		s.model = physics.ModelStandard
	}
	if s.status == nil {
		s.status = NewStatus()
	}

	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Routes live on the root router so a method mismatch yields 405.
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/shots", s.handleShot).Methods(http.MethodPost)
	r.HandleFunc("/api/range", s.handleRange).Methods(http.MethodGet)
	r.HandleFunc("/api/tables", s.handleTableNames).Methods(http.MethodGet)
	r.HandleFunc("/api/tables/{name}", s.handleTable).Methods(http.MethodGet)
	if opts.Logs != nil {
		r.HandleFunc("/api/logs", opts.Logs.serveHTTP).Methods(http.MethodGet)
	}

	return r
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Snapshot(time.Now().UTC()))
}

func (s *server) handleShot(w http.ResponseWriter, r *http.Request) {
	req := ShotRequest{Params: s.defaults}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid shot request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		req.Model = s.model
	}

	res, status, err := s.fly(req.Model, req.Params)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, ShotResponse{Model: req.Model, Params: req.Params, Result: res})
}

func (s *server) handleRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := s.defaults
	p.KeepSamples = false

	var err error
	if p.AngleDeg, err = floatParam(q.Get("angle_deg"), p.AngleDeg); err != nil {
		http.Error(w, "angle_deg: "+err.Error(), http.StatusBadRequest)
		return
	}
	if p.MuzzleSpeed, err = floatParam(q.Get("muzzle_speed_mps"), p.MuzzleSpeed); err != nil {
		http.Error(w, "muzzle_speed_mps: "+err.Error(), http.StatusBadRequest)
		return
	}
	model := strings.TrimSpace(q.Get("model"))
	if model == "" {
		model = s.model
	}

	res, status, err := s.fly(model, p)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, RangeResponse{
		Model:        model,
		AngleDeg:     p.AngleDeg,
		MuzzleSpeed:  p.MuzzleSpeed,
		Result:       res,
		VacuumRangeM: trajectory.RangeVacuum(p.MuzzleSpeed, p.AngleDeg, physics.StandardGravity),
	})
}

// fly runs one shot and returns an HTTP status to use on error.
func (s *server) fly(model string, p trajectory.Params) (trajectory.Result, int, error) {
	env, err := physics.EnvironmentByName(model)
	if err != nil {
		return trajectory.Result{}, http.StatusBadRequest, err
	}
	if p.AngleDeg < 0 || p.AngleDeg > 180 {
		return trajectory.Result{}, http.StatusBadRequest, errors.New("angle_deg must be within [0, 180]")
	}
	if p.MaxSteps > trajectory.DefaultMaxSteps {
		return trajectory.Result{}, http.StatusBadRequest, fmt.Errorf("max_steps must be <= %d", trajectory.DefaultMaxSteps)
	}
	if err := p.Validate(); err != nil {
		return trajectory.Result{}, http.StatusBadRequest, err
	}

	keep := p.KeepSamples
	p.KeepSamples = false
	res, err := trajectory.Fly(env, p)
	if err != nil {
		s.status.MarkError()
		metrics.ObserveShotError(model)
		if errors.Is(err, trajectory.ErrStepLimit) {
			return trajectory.Result{}, http.StatusUnprocessableEntity, err
		}
		return trajectory.Result{}, http.StatusInternalServerError, err
	}
	if keep {
		if n := res.Steps + 1; n > maxResponseSamples {
			return trajectory.Result{}, http.StatusUnprocessableEntity,
				fmt.Errorf("keep_samples would return %d samples (max %d); raise time_step_s", n, maxResponseSamples)
		}
		p.KeepSamples = true
		if res, err = trajectory.Fly(env, p); err != nil {
			return trajectory.Result{}, http.StatusInternalServerError, err
		}
	}
	metrics.ObserveShot(model, res)
	s.status.MarkShot(time.Now().UTC(), LastShot{
		Model:     model,
		AngleDeg:  p.AngleDeg,
		DistanceM: res.Distance,
		HangTimeS: res.HangTime,
	})
	log.Printf("api shot model=%s angle=%.2f speed=%.1f distance=%.1fm steps=%d", model, p.AngleDeg, p.MuzzleSpeed, res.Distance, res.Steps)
	return res, http.StatusOK, nil
}

func (s *server) handleTableNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tables": physics.TableNames()})
}

func (s *server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	tbl, err := physics.TableByName(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("key"))
	if raw == "" {
		writeJSON(w, http.StatusOK, TableResponse{Table: name, Samples: tbl.Samples()})
		return
	}
	key, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(key) || math.IsInf(key, 0) {
		http.Error(w, "key must be a finite number", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, TableLookupResponse{Table: name, Key: key, Value: tbl.Lookup(key)})
}

func floatParam(raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func Serve(ctx context.Context, listenAddr string, opts Options) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           Handler(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
