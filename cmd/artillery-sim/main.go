package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"artillery-sim/internal/api"
	"artillery-sim/internal/config"
	"artillery-sim/internal/plan"
	"artillery-sim/internal/plot"
	"artillery-sim/internal/record"
	"artillery-sim/internal/trajectory"
)

type options struct {
	configPath  string
	angle       *float64
	speed       *float64
	model       string
	planPath    string
	recordPath  string
	plotPath    string
	summaryPath string
	replayPath  string
	replaySpeed float64
	serve       bool
	diag        bool
	profile     bool
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%v", err)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	var angle, speed float64
	fs.StringVar(&o.configPath, "config", "", "Path to YAML config (built-in defaults when empty)")
	fs.Float64Var(&angle, "angle", 0, "Launch angle in degrees from vertical (overrides config)")
	fs.Float64Var(&speed, "speed", 0, "Muzzle speed in m/s (overrides config)")
	fs.StringVar(&o.model, "model", "", "Physics model: vacuum, gravity, drag, density or standard (overrides config)")
	fs.StringVar(&o.planPath, "plan", "", "Fly a YAML firing plan instead of a single shot")
	fs.StringVar(&o.recordPath, "record", "", "Write the trajectory recording to this path (.zst compresses)")
	fs.StringVar(&o.plotPath, "plot", "", "Render the profile to this .png, .svg or .pdf")
	fs.StringVar(&o.summaryPath, "summary", "", "Print a summary of a recording and exit")
	fs.StringVar(&o.replayPath, "replay", "", "Replay a recording and exit")
	fs.Float64Var(&o.replaySpeed, "replay-speed", 10, "Replay speed multiplier")
	fs.BoolVar(&o.serve, "serve", false, "Serve the HTTP API until interrupted")
	fs.BoolVar(&o.diag, "diag", false, "Print the model build-up for the configured angle, speed, time step and area and exit")
	fs.BoolVar(&o.profile, "profile", true, "Print a text profile of a single shot")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "angle":
			o.angle = &angle
		case "speed":
			o.speed = &speed
		}
	})
	return o, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, fmt.Errorf("config load failed: %w", err)
		}
	}
	if o.angle != nil {
		cfg.Shot.AngleDeg = o.angle
	}
	if o.speed != nil {
		cfg.Shot.MuzzleSpeedMps = o.speed
	}
	if o.model != "" {
		cfg.Shot.Model = o.model
	}
	if o.recordPath != "" {
		cfg.Record.Enable = true
		cfg.Record.Path = o.recordPath
	}
	if o.plotPath != "" {
		cfg.Plot.Enable = true
		cfg.Plot.Path = o.plotPath
	}
	if err := config.Validate(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	switch {
	case o.summaryPath != "":
		return printRecordingSummary(stdout, o.summaryPath)
	case o.replayPath != "":
		return replayRecording(stdout, o.replayPath, o.replaySpeed)
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	params := cfg.Shot.Params()

	switch {
	case o.diag:
		return runDiagnostics(stdout, params)
	case o.serve:
		return serve(ctx, cfg)
	case o.planPath != "":
		return runPlan(ctx, cfg, o.planPath, stdout)
	}
	return runShot(cfg, o.profile, stdout)
}

func runShot(cfg config.Config, profile bool, stdout io.Writer) error {
	env, err := cfg.Shot.Environment()
	if err != nil {
		return err
	}
	p := cfg.Shot.Params()
	p.KeepSamples = profile || cfg.Record.Enable || cfg.Plot.Enable

	log.Printf("shot angle=%.2f speed=%.1f model=%s dt=%s", p.AngleDeg, p.MuzzleSpeed, cfg.Shot.Model, cfg.Shot.TimeStep)
	res, err := trajectory.Fly(env, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "distance: %.1f m\n", res.Distance)
	fmt.Fprintf(stdout, "hang_time: %.2f s\n", res.HangTime)
	fmt.Fprintf(stdout, "apex: %.1f m\n", res.Apex)
	fmt.Fprintf(stdout, "impact_speed: %.1f m/s\n", res.ImpactSpeed)
	fmt.Fprintf(stdout, "steps: %d\n", res.Steps)

	if profile {
		if err := renderProfile(stdout, res.Samples, res.Distance, terminalWidth(os.Stdout)); err != nil {
			return err
		}
	}

	name := fmt.Sprintf("%s %gdeg %gmps", cfg.Shot.Model, p.AngleDeg, p.MuzzleSpeed)
	outcomes := []plan.Outcome{{Shot: plan.Shot{Name: name, Model: cfg.Shot.Model, Params: p}, Result: res}}
	return writeOutputs(cfg, outcomes)
}

func runPlan(ctx context.Context, cfg config.Config, path string, stdout io.Writer) error {
	script, err := plan.LoadPlanScript(path)
	if err != nil {
		return fmt.Errorf("plan load failed: %w", err)
	}
	pl, err := plan.NewPlan(script)
	if err != nil {
		return fmt.Errorf("plan invalid: %w", err)
	}
	pl.KeepSamples(cfg.Record.Enable || cfg.Plot.Enable)

	log.Printf("plan path=%s shots=%d", path, len(pl.Shots()))
	outcomes, err := pl.Run(ctx, func(o plan.Outcome) {
		log.Printf("shot name=%s distance=%.1fm hang=%.2fs", o.Shot.Name, o.Result.Distance, o.Result.HangTime)
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tmodel\tangle_deg\tspeed_mps\tdistance_m\thang_s\tapex_m")
	for _, o := range outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%.1f\t%.2f\t%.1f\n", o.Shot.Name, o.Shot.Model,
			o.Shot.Params.AngleDeg, o.Shot.Params.MuzzleSpeed, o.Result.Distance, o.Result.HangTime, o.Result.Apex)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if best, ok := plan.Best(outcomes); ok {
		fmt.Fprintf(stdout, "best: %s (%.1f m)\n", best.Shot.Name, best.Result.Distance)
	}
	return writeOutputs(cfg, outcomes)
}

// writeOutputs writes the recording and plot when enabled.
func writeOutputs(cfg config.Config, outcomes []plan.Outcome) error {
	if cfg.Record.Enable {
		w, err := record.CreateWriter(cfg.Record.Path)
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		for _, o := range outcomes {
			if err := w.WriteFlight(o.Shot.Name, o.Result.Samples); err != nil {
				_ = w.Close()
				return fmt.Errorf("record: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("record: %w", err)
		}
		log.Printf("recording written path=%s flights=%d", cfg.Record.Path, len(outcomes))
	}

	if cfg.Plot.Enable {
		series := make([]plot.Series, 0, len(outcomes))
		for _, o := range outcomes {
			series = append(series, plot.Series{Name: o.Shot.Name, Samples: o.Result.Samples, Impact: o.Result.Distance})
		}
		if err := plot.Save(cfg.Plot.Path, cfg.Plot.WidthIn, cfg.Plot.HeightIn, series...); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		log.Printf("plot written path=%s", cfg.Plot.Path)
	}
	return nil
}

func replayRecording(stdout io.Writer, path string, speed float64) error {
	recs, err := record.ReadFile(path)
	if err != nil {
		return err
	}
	return record.Play(recs, speed, nil, func(flight string, s trajectory.State) error {
		_, err := fmt.Fprintf(stdout, "%s t=%.2f x=%.1f y=%.1f speed=%.1f\n", flight, s.T, s.X, s.Y, s.Speed())
		return err
	})
}

func serve(ctx context.Context, cfg config.Config) error {
	logs := api.NewLogBuffer(2000)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))

	status := api.NewStatus()
	status.SetDefaults(map[string]any{
		"model":            cfg.Shot.Model,
		"angle_deg":        cfg.Shot.Params().AngleDeg,
		"muzzle_speed_mps": cfg.Shot.Params().MuzzleSpeed,
		"time_step":        cfg.Shot.TimeStep.String(),
	})

	log.Printf("artillery-sim starting")
	log.Printf("http listen=%s model=%s", cfg.HTTP.Listen, cfg.Shot.Model)
	err := api.Serve(ctx, cfg.HTTP.Listen, api.Options{
		Defaults: cfg.Shot.Params(),
		Model:    cfg.Shot.Model,
		Status:   status,
		Logs:     logs,
	})
	log.Printf("artillery-sim stopping")
	return err
}
