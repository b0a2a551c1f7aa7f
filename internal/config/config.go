package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"artillery-sim/internal/physics"
	"artillery-sim/internal/trajectory"
)

type Config struct {
	Shot   ShotConfig   `yaml:"shot"`
	Record RecordConfig `yaml:"record"`
	Plot   PlotConfig   `yaml:"plot"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// ShotConfig describes the default shot. angle_deg is zenith-referenced:
// 0 fires straight up, 90 fires along the ground. Pointer fields keep an
// explicit zero apart from an omitted value.
type ShotConfig struct {
	AngleDeg       *float64      `yaml:"angle_deg"`
	MuzzleSpeedMps *float64      `yaml:"muzzle_speed_mps"`
	TimeStep       time.Duration `yaml:"time_step"`
	AreaM2         float64       `yaml:"area_m2"`
	MaxSteps       int           `yaml:"max_steps"`
	Model          string        `yaml:"model"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type PlotConfig struct {
	Enable   bool    `yaml:"enable"`
	Path     string  `yaml:"path"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// Params converts the shot section into integrator parameters.
func (s ShotConfig) Params() trajectory.Params {
	p := trajectory.DefaultParams()
	if s.AngleDeg != nil {
		p.AngleDeg = *s.AngleDeg
	}
	if s.MuzzleSpeedMps != nil {
		p.MuzzleSpeed = *s.MuzzleSpeedMps
	}
	p.TimeStep = s.TimeStep.Seconds()
	p.Area = s.AreaM2
	p.MaxSteps = s.MaxSteps
	return p
}

// Environment resolves the shot's model name.
func (s ShotConfig) Environment() (physics.Environment, error) {
	return physics.EnvironmentByName(s.Model)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, err := Parse(nil)
	if err != nil {
		// Defaults are static and always valid.
		panic(err)
	}
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) && allUnknownFields(te.Errors) {
			return Config{}, fmt.Errorf("config contains unknown fields: %s", strings.Join(stripLines(te.Errors), "; "))
		}
		return Config{}, err
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills unset fields with defaults and checks the result.
func Validate(cfg *Config) error {
	// Shot defaults.
	if cfg.Shot.AngleDeg == nil {
		a := trajectory.DefaultParams().AngleDeg
		cfg.Shot.AngleDeg = &a
	}
	if *cfg.Shot.AngleDeg < 0 || *cfg.Shot.AngleDeg > 180 {
		return fmt.Errorf("shot.angle_deg must be within [0, 180]")
	}
	if cfg.Shot.MuzzleSpeedMps == nil {
		v := trajectory.DefaultParams().MuzzleSpeed
		cfg.Shot.MuzzleSpeedMps = &v
	}
	if *cfg.Shot.MuzzleSpeedMps < 0 {
		return fmt.Errorf("shot.muzzle_speed_mps must be >= 0")
	}
	if cfg.Shot.TimeStep == 0 {
		cfg.Shot.TimeStep = 10 * time.Millisecond
	}
	if cfg.Shot.TimeStep < 0 {
		return fmt.Errorf("shot.time_step must be > 0")
	}
	if cfg.Shot.AreaM2 == 0 {
		cfg.Shot.AreaM2 = physics.ShellArea
	}
	if cfg.Shot.AreaM2 < 0 {
		return fmt.Errorf("shot.area_m2 must be > 0")
	}
	if cfg.Shot.MaxSteps == 0 {
		cfg.Shot.MaxSteps = trajectory.DefaultMaxSteps
	}
	if cfg.Shot.MaxSteps < 0 {
		return fmt.Errorf("shot.max_steps must be > 0")
	}
	if cfg.Shot.Model == "" {
		cfg.Shot.Model = physics.ModelStandard
	}
	if _, err := physics.EnvironmentByName(cfg.Shot.Model); err != nil {
		return fmt.Errorf("shot.model: %w", err)
	}

	if cfg.Record.Enable && cfg.Record.Path == "" {
		return fmt.Errorf("record.path is required when record.enable is true")
	}

	if cfg.Plot.Enable {
		if cfg.Plot.Path == "" {
			return fmt.Errorf("plot.path is required when plot.enable is true")
		}
		switch strings.ToLower(filepath.Ext(cfg.Plot.Path)) {
		case ".png", ".svg", ".pdf":
		default:
			return fmt.Errorf("plot.path must end in .png, .svg or .pdf")
		}
	}
	if cfg.Plot.WidthIn <= 0 {
		cfg.Plot.WidthIn = 8
	}
	if cfg.Plot.HeightIn <= 0 {
		cfg.Plot.HeightIn = 4
	}

	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = ":8080"
	}

	return nil
}

func allUnknownFields(msgs []string) bool {
	for _, m := range msgs {
		if !strings.Contains(m, " not found in type ") {
			return false
		}
	}
	return len(msgs) > 0
}

// stripLines drops the "line N: " prefix yaml.v3 puts on each error.
func stripLines(msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if strings.HasPrefix(m, "line ") {
			if i := strings.Index(m, ": "); i >= 0 {
				m = m[i+2:]
			}
		}
		out = append(out, m)
	}
	return out
}
