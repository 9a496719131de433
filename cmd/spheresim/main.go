package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/spheresim/internal/analysis"
	"github.com/san-kum/spheresim/internal/automation"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/experiment"
	"github.com/san-kum/spheresim/internal/export"
	"github.com/san-kum/spheresim/internal/integrators"
	"github.com/san-kum/spheresim/internal/logging"
	"github.com/san-kum/spheresim/internal/optim"
	"github.com/san-kum/spheresim/internal/server"
	"github.com/san-kum/spheresim/internal/storage"
	"github.com/san-kum/spheresim/internal/viz"
)

var (
	dataDir    string
	radius     float64
	gravity    float64
	mass       float64
	force      float64
	duration   float64
	px, py, pz float64
	vx, vy, vz float64
	accel      float64
	pitch      float64
	integrator string
	configFile string
	preset     string
	// sweep
	forceMin   float64
	forceMax   float64
	forceSteps int
	// monte carlo
	trials  int
	perturb float64
	seed    int64
	// output
	outFile string
	plane   string
	svgMode string
	gifPath string
	theme   string
	addr    string
	noSave  bool
	// optimize
	gridRanges []string
	metric    string
	maximize  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spheresim",
		Short: "point mass on the inside of a sphere",
		RunE: func(cmd *cobra.Command, args []string) error {
			// no subcommand: simulate the defaults and open the player
			return runLive(cmd, []string{config.ModelDynamic})
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spheresim", "data directory")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.Themes[0].Name, "player theme: "+strings.Join(viz.ThemeNames(), ", "))

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation and play it without saving",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&gifPath, "gif", "spheresim.gif", "gif output path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot height, speed and surface offset",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane: xy, xz or zy")
	exportSVGCmd.Flags().StringVar(&svgMode, "mode", "plane", "plane or wireframe")

	playCmd := &cobra.Command{
		Use:   "play [run_id]",
		Short: "scrub through a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  playRun,
	}
	playCmd.Flags().StringVar(&gifPath, "gif", "spheresim.gif", "gif output path")

	serveCmd := &cobra.Command{
		Use:   "serve [run_id]",
		Short: "serve a saved run over websocket",
		Args:  cobra.ExactArgs(1),
		RunE:  serveRun,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run in parallel over a range of drive forces",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepForces,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&forceMin, "min", 0, "lowest drive force")
	sweepCmd.Flags().Float64Var(&forceMax, "max", 40, "highest drive force")
	sweepCmd.Flags().IntVar(&forceSteps, "steps", 9, "number of forces")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial velocity and count detachments",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.5, "velocity perturbation (m/s)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = clock)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the height",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "height against radial velocity",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same dynamic run",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	optimizeCmd := &cobra.Command{
		Use:   "optimize [model]",
		Short: "grid search run parameters for the best metric value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  optimizeParams,
	}
	addSimFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&gridRanges, "grid", nil, "parameter range name=lo:hi:n (repeatable)")
	optimizeCmd.Flags().StringVar(&metric, "metric", "contact_fraction", "metric to optimise")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the dynamic model",
		Args:  cobra.NoArgs,
		RunE:  benchModel,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models := config.ListModels()
			if len(args) == 1 {
				models = args
			}
			for _, model := range models {
				presets := config.ListPresets(model)
				if len(presets) == 0 {
					fmt.Printf("no presets for model: %s\n", model)
					continue
				}
				fmt.Printf("presets for %s:\n", model)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [file] [model]",
		Short: "write a config file from a preset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, args[1:])
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	addSimFlags(initCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd,
		exportSVGCmd, playCmd, serveCmd, sweepCmd, monteCarloCmd, scenarioCmd, analyzeCmd, phaseCmd,
		compareCmd, optimizeCmd, benchCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&radius, "radius", d.Radius, "sphere radius (m)")
	f.Float64Var(&gravity, "gravity", d.Gravity, "gravitational acceleration (m/s^2)")
	f.Float64Var(&mass, "mass", d.Mass, "particle mass (kg)")
	f.Float64Var(&force, "force", d.DriveForce, "tangential drive force (N)")
	f.Float64Var(&duration, "time", d.Duration, "duration (s)")
	f.Float64Var(&px, "px", d.InitState.Position[0], "initial x")
	f.Float64Var(&py, "py", d.InitState.Position[1], "initial y")
	f.Float64Var(&pz, "pz", d.InitState.Position[2], "initial z")
	f.Float64Var(&vx, "vx", d.InitState.Velocity[0], "initial vx")
	f.Float64Var(&vy, "vy", d.InitState.Velocity[1], "initial vy")
	f.Float64Var(&vz, "vz", d.InitState.Velocity[2], "initial vz")
	f.Float64Var(&accel, "accel", d.Spiral.Acceleration, "spiral acceleration (m/s^2)")
	f.Float64Var(&pitch, "pitch", d.Spiral.Pitch, "spiral pitch")
	f.StringVar(&integrator, "integrator", d.Integrator, "integrator: symplectic, euler or verlet")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig layers preset, config file and explicitly set flags, in that
// order, over the model defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := config.ModelDynamic
	if len(args) > 0 {
		model = args[0]
	}

	cfg := config.DefaultConfig()
	cfg.Model = model
	if preset != "" {
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	set := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("radius", &cfg.Radius, radius)
	set("gravity", &cfg.Gravity, gravity)
	set("mass", &cfg.Mass, mass)
	set("force", &cfg.DriveForce, force)
	set("time", &cfg.Duration, duration)
	set("px", &cfg.InitState.Position[0], px)
	set("py", &cfg.InitState.Position[1], py)
	set("pz", &cfg.InitState.Position[2], pz)
	set("vx", &cfg.InitState.Velocity[0], vx)
	set("vy", &cfg.InitState.Velocity[1], vy)
	set("vz", &cfg.InitState.Velocity[2], vz)
	set("accel", &cfg.Spiral.Acceleration, accel)
	set("pitch", &cfg.Spiral.Pitch, pitch)
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveRunID accepts "latest" for the most recent run.
func resolveRunID(st *storage.Store, id string) (string, error) {
	if id == "latest" {
		return st.Latest()
	}
	return id, nil
}

func loadRun(id string) (*storage.RunMetadata, dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	runID, err := resolveRunID(st, id)
	if err != nil {
		return nil, dynamo.Trajectory{}, notFound(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, dynamo.Trajectory{}, notFound(err)
	}
	traj, _, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, dynamo.Trajectory{}, notFound(err)
	}
	return meta, traj, nil
}

// output opens outFile, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger := logging.FromEnv()
	ctx := logging.WithRunID(cmd.Context(), "")

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	result, err := experiment.New(cfg, experiment.NewRegistry(), logger).Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", result.Samples())
	fmt.Printf("stop: %s\n", result.StopReason)
	if len(result.Events) > 0 {
		fmt.Printf("transitions: %d (first at t=%.3fs, %s)\n",
			len(result.Events), result.Events[0].Time, result.Events[0].Cause)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	result, err := experiment.New(cfg, nil, logging.FromEnv()).Run(context.Background())
	if err != nil {
		return err
	}
	return viz.RunPlayer(result.Trajectory, viz.PlayerConfig{
		Title:   cfg.Model,
		Radius:  cfg.Radius,
		Gravity: cfg.Gravity,
		Dt:      result.Dt,
		Phases:  result.Phases,
		GIFPath: gifPath,
		Theme:   theme,
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tRADIUS\tFORCE\tDURATION\tSAMPLES\tSTOP")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.2fs\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Radius,
			run.DriveForce,
			run.Duration,
			run.Samples,
			run.StopReason,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if traj.Len() < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", traj.Len())

	series := []struct {
		caption string
		data    []float64
	}{
		{"height y (m)", analysis.Heights(traj)},
		{"speed |v| (m/s)", analysis.Speeds(traj)},
		{"surface offset |p|-R (m)", analysis.SurfaceOffsets(traj, meta.Radius)},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRunID(st, args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return export.WriteJSON(w, *meta, traj)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if traj.Empty() {
		return fmt.Errorf("no data to export")
	}

	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "px", "py", "pz", "vx", "vy", "vz", "speed", "height"}); err != nil {
		return err
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	times := traj.Times(meta.Dt)
	for i := range traj.Positions {
		p, v := traj.Positions[i], traj.Velocities[i]
		row := []string{
			format(times[i]),
			format(p[0]), format(p[1]), format(p[2]),
			format(v[0]), format(v[1]), format(v[2]),
			format(v.Len()), format(p[1]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()

	switch svgMode {
	case "plane":
		return export.TrajectorySVG(w, traj, meta.Radius, export.Plane(plane), 600, 600)
	case "wireframe":
		return export.WireframeSVG(w, traj, meta.Radius, 80, 40)
	}
	return fmt.Errorf("unknown svg mode %q (want plane or wireframe)", svgMode)
}

func playRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return viz.RunPlayer(traj, viz.PlayerConfig{
		Title:   meta.ID,
		Radius:  meta.Radius,
		Gravity: meta.Gravity,
		Dt:      meta.Dt,
		GIFPath: gifPath,
		Theme:   theme,
	})
}

func serveRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("serving %s (%d frames) on %s\n", meta.ID, traj.Len(), addr)
	return server.New(*meta, traj, logging.FromEnv()).ListenAndServe(ctx, addr)
}

func sweepForces(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Model != config.ModelDynamic {
		return fmt.Errorf("sweep varies the drive force, which only the %s model uses", config.ModelDynamic)
	}

	forces := experiment.ForceRange(forceMin, forceMax, forceSteps)
	fmt.Printf("sweeping %d drive forces in [%.2f, %.2f] N\n\n", len(forces), forceMin, forceMax)

	start := time.Now()
	results, err := experiment.Sweep(cmd.Context(), cfg, forces, nil, logging.FromEnv())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORCE\tSAMPLES\tSTOP\tDETACH\tCONTACT\tMAX SPEED\tDRIVE WORK")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%.2f\terror: %v\n", r.Force, r.Err)
			continue
		}
		fmt.Fprintf(w, "%.2f\t%d\t%s\t%.0f\t%.1f%%\t%.3f\t%.3f\n",
			r.Force, r.Samples, r.StopReason,
			r.Metrics["detachments"],
			100*r.Metrics["contact_fraction"],
			r.Metrics["max_speed"],
			r.Metrics["drive_work"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	}, nil)
	if err != nil {
		return err
	}

	attached, detached := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("stayed attached: %d\n", attached)
	fmt.Printf("detached: %d\n", detached)

	contact := make([]float64, len(results))
	for i, r := range results {
		contact[i] = r.ContactFraction
	}
	if len(contact) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(contact,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("contact fraction per trial"),
		))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	results, runErr := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), st, logging.FromEnv())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tSAMPLES\tSTOP\tRUN ID")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.Name, r.Config.Model, r.Result.Samples(), r.Result.StopReason, id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if traj.Len() < 4 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	heights := analysis.Heights(traj)
	ps := analysis.PowerSpectrum(heights)
	plotData := ps[:max(2, len(ps)/4)]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (height)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(heights, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	crossings := analysis.Crossings(traj, meta.Dt, 0)
	fmt.Printf("upward equator crossings: %d\n", len(crossings))
	if len(crossings) > 0 {
		fmt.Printf("first crossing: %.3f s\n", crossings[0])
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if traj.Empty() {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: height y, y-axis: radial velocity\n\n")
	fmt.Print(analysis.NewPhasePortrait(traj).ToASCII(70, 20))
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.4f, duration=%.1fs)\n\n", base.Tuning.Dt, base.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tTIME\tENERGY DRIFT\tSURFACE DEV\tDETACH\tMAX SPEED")

	for _, name := range args {
		if _, ok := integrators.ByName(name); !ok {
			fmt.Fprintf(w, "%s\tunknown integrator\n", name)
			continue
		}
		cfg := *base
		cfg.Integrator = name

		start := time.Now()
		result, err := experiment.New(&cfg, nil, nil).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%v\t%.3e\t%.3e\t%.0f\t%.3f\n",
			name, time.Since(start),
			result.Metrics["energy_drift"],
			result.Metrics["surface_deviation"],
			result.Metrics["detachments"],
			result.Metrics["max_speed"],
		)
	}
	return w.Flush()
}

func optimizeParams(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(gridRanges) == 0 {
		return fmt.Errorf("at least one --grid range is required")
	}

	names := make([]string, 0, len(gridRanges))
	ranges := make([][]float64, 0, len(gridRanges))
	for _, spec := range gridRanges {
		name, vals, err := optim.ParseRange(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	g := optim.NewGridSearch(names, ranges)
	goal := "minimising"
	if maximize {
		goal = "maximising"
	}
	fmt.Printf("%s %s over %d runs...\n", goal, metric, g.Evaluations())

	start := time.Now()
	params, val, err := g.Search(cmd.Context(), base, metric, maximize)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\nbest %s: %.6f\n", time.Since(start), metric, val)
	for _, name := range names {
		fmt.Printf("  %s = %.4f\n", name, params[name])
	}
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	durations := []float64{1, 5, 15, 60}
	names := []string{"symplectic", "euler", "verlet"}

	fmt.Printf("benchmarking %s\n\n", config.ModelDynamic)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tINTEGRATOR\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, name := range names {
			cfg := config.DefaultConfig()
			cfg.Duration = dur
			cfg.Integrator = name

			start := time.Now()
			result, err := experiment.New(cfg, nil, nil).Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			steps := result.Samples()
			stepsPerSec := float64(steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%.0fs\t%s\t%d\t%v\t%.0f\n", dur, name, steps, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

// notFound reports a missing run with a hint.
func notFound(err error) error {
	if errors.Is(err, storage.ErrRunNotFound) {
		return fmt.Errorf("%w (see: spheresim list)", err)
	}
	return err
}
