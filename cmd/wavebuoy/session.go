package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cobra"

	"github.com/san-kum/wavebuoy/internal/analysis"
	"github.com/san-kum/wavebuoy/internal/config"
	"github.com/san-kum/wavebuoy/internal/dynamo"
	"github.com/san-kum/wavebuoy/internal/metrics"
	"github.com/san-kum/wavebuoy/internal/objective"
	"github.com/san-kum/wavebuoy/internal/optim"
	"github.com/san-kum/wavebuoy/internal/plot"
	"github.com/san-kum/wavebuoy/internal/sim"
	"github.com/san-kum/wavebuoy/internal/storage"
	"github.com/san-kum/wavebuoy/internal/wave"
)

const (
	trajectoryChart = "trajectory.png"
	scanChart       = "scan.png"
)

var errNoData = errors.New("no wave data: set data.path in the config, WAVEBUOY_DATA_PATH, or --data")

// session is everything a command needs to evaluate candidates.
type session struct {
	cfg    *config.Config
	series wave.Series
	field  *wave.Field
	eval   *objective.Evaluator
	store  *storage.Store
	logger l.Wrapper
}

func newLogger() l.Wrapper {
	if quiet {
		return l.NewNopLoggerWrapper()
	}
	return l.NewConsoleLoggerWrapper()
}

// loadConfig layers defaults, the config file, the preset flag, the
// environment and finally command-line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	flags := cmd.Flags()
	if flags.Changed("popsize") {
		cfg.Optimizer.PopSize = popSize
	}
	if flags.Changed("maxiter") {
		cfg.Optimizer.MaxIter = maxIter
	}
	if flags.Changed("seed") {
		cfg.Optimizer.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Optimizer.Workers = workers
	}
	if noPolish {
		cfg.Optimizer.Polish = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSession(cmd *cobra.Command, logger l.Wrapper) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Data.Path == "" {
		return nil, errNoData
	}

	series, report, err := wave.LoadCSV(cfg.Data.Path, cfg.Data.Columns)
	if err != nil {
		return nil, err
	}
	logger.WithFields(l.StringField("path", cfg.Data.Path), l.IntField("kept", report.Kept),
		l.IntField("dropped", report.Dropped)).Info("wave data loaded")
	if report.Dropped > 0 {
		logger.WithFields(l.IntField("rows", report.Rows)).Warn("rows with missing values dropped")
	}

	forcing, err := wave.NewField(series)
	if err != nil {
		return nil, err
	}

	simulator := sim.New(cfg.Solver)
	eval, err := objective.New(cfg.Objective, forcing, cfg.Buoy(), cfg.Features, simulator, logger)
	if err != nil {
		return nil, err
	}

	st := storage.New(cfg.Output.Dir)
	if err := st.Init(); err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		series: series,
		field:  forcing,
		eval:   eval,
		store:  st,
		logger: logger,
	}, nil
}

// objective adapts the evaluator to the optimizer's vector form.
func (s *session) objective() optim.Objective {
	return func(ctx context.Context, x []float64) float64 {
		return s.eval.Evaluate(ctx, objective.FromVector(x))
	}
}

func (s *session) optimize(ctx context.Context, obj optim.Objective, progress func(optim.Progress)) (optim.Result, error) {
	return optim.DifferentialEvolution(ctx, obj, s.cfg.Bounds(), s.cfg.Optimizer, progress)
}

func (s *session) scan(ctx context.Context, obj optim.Objective) ([]storage.ScanRow, optim.GridPoint, error) {
	points, best, err := optim.NewGridSearch(s.cfg.ScanRanges()).
		SkipAbove(0.5*s.cfg.Objective.Penalty).
		Workers(s.cfg.Optimizer.Workers).
		Search(ctx, obj)
	if err != nil {
		return nil, optim.GridPoint{}, err
	}

	rows := make([]storage.ScanRow, len(points))
	for i, p := range points {
		rows[i] = storage.ScanRow{Mass: p.X[0], Damping: p.X[1], PowerW: -p.F}
	}
	return rows, best, nil
}

// report re-evaluates c in detail, saves the run and prints a summary.
func (s *session) report(ctx context.Context, kind string, c objective.Candidate, res *optim.Result, scan []storage.ScanRow) error {
	ev := s.eval.Inspect(ctx, c)
	if err := ctx.Err(); err != nil {
		return err
	}
	buoy := s.eval.Buoy(c)

	rows := make([]storage.TrajectoryRow, len(ev.Times))
	zs := make([]float64, len(ev.Times))
	vs := make([]float64, len(ev.Times))
	for i, t := range ev.Times {
		z, v := ev.States[i][0], ev.States[i][1]
		zs[i], vs[i] = z, v
		rows[i] = storage.TrajectoryRow{
			Time:         t,
			Displacement: z,
			Velocity:     v,
			Forcing:      s.field.ForcingAt(t, buoy.Params.KHydrostatic),
			Acceleration: buoy.Acceleration(t, z, v),
		}
	}

	var peak *analysis.Peak
	if p, ok := analysis.FindMaxAcceleration(ev.Times, zs, vs, buoy, s.cfg.Objective.SteadyStateCutoff); ok {
		peak = &p
	}

	eta := 1.0
	if s.cfg.Objective.PTOEfficiency {
		eta = buoy.Params.EtaPTO
	}
	var collected map[string]float64
	if len(ev.Times) > 0 {
		from := ev.Times[0] + s.cfg.Objective.SteadyStateCutoff
		collected = metrics.Collect(ev.Times, ev.States,
			metrics.NewMeanPower(c.Damping, eta, from),
			metrics.NewAbsorbedEnergy(c.Damping, eta, from),
			metrics.NewPeakDisplacement(),
			metrics.NewPeakPTOForce(c.Damping),
			metrics.NewRMSVelocity(),
			metrics.NewPeakEnergy(buoy),
		)
	}

	opt := &storage.Optimum{
		Mass:            c.Mass,
		Damping:         c.Damping,
		TotalMass:       buoy.TotalMass(),
		Score:           ev.Score,
		PowerW:          ev.PowerW,
		AnnualEnergyMWh: storage.AnnualEnergyMWh(ev.PowerW),
		Reason:          ev.Reason.String(),
	}
	if res != nil {
		opt.Generations = res.Generations
		opt.Evaluations = res.Evaluations
		opt.Converged = res.Converged
		opt.Polished = res.Polished
		opt.Message = res.Message
	}

	meta := storage.RunMetadata{
		Kind:      kind,
		Timestamp: time.Now(),
		DataPath:  s.cfg.Data.Path,
		Samples:   s.series.Len(),
		Optimum:   opt,
		Peak:      peak,
		Metrics:   collected,
		Buoy:      buoy.GetParams(),
		Config:    s.cfg,
	}
	runID, err := s.store.Save(meta, rows, scan)
	if err != nil {
		return err
	}

	if pngOut {
		if err := writeCharts(s.store.Dir(runID), rows, peak, scan); err != nil {
			return err
		}
	}

	printSummary(runID, opt, peak, ev)
	if len(rows) > 0 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(column(rows, func(r storage.TrajectoryRow) float64 { return r.Displacement }),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("displacement z (m)"),
		))
	}
	return nil
}

func writeCharts(dir string, rows []storage.TrajectoryRow, peak *analysis.Peak, scan []storage.ScanRow) error {
	if len(rows) > 0 {
		if err := plot.Trajectory(filepath.Join(dir, trajectoryChart), rows, peak); err != nil {
			return err
		}
	}
	if len(scan) > 0 {
		if err := plot.ScanCurves(filepath.Join(dir, scanChart), scan); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(runID string, opt *storage.Optimum, peak *analysis.Peak, ev objective.Evaluation) {
	lines := []string{
		titleStyle.Render("wavebuoy run " + runID),
		field("structural mass", fmt.Sprintf("%.0f kg", opt.Mass)),
		field("total mass", fmt.Sprintf("%.0f kg", opt.TotalMass)),
		field("PTO damping", fmt.Sprintf("%.0f N·s/m", opt.Damping)),
	}
	if ev.Feasible() {
		lines = append(lines,
			field("mean power", goodStyle.Render(fmt.Sprintf("%.2f kW", opt.PowerW/1000))),
			field("annual energy", fmt.Sprintf("%.1f MWh/yr", opt.AnnualEnergyMWh)),
			field("max displacement", fmt.Sprintf("%.3f m", ev.MaxDisplacement)),
			field("max PTO force", fmt.Sprintf("%.1f kN", ev.MaxPTOForce/1000)),
		)
	} else {
		status := ev.Reason.String()
		if ev.Err != nil {
			status += ": " + ev.Err.Error()
		}
		lines = append(lines, field("status", warnStyle.Render(status)))
	}
	if peak != nil {
		lines = append(lines, field("peak acceleration",
			fmt.Sprintf("%.3f m/s² (%.3f g) at t=%.2f s", peak.Accel, peak.G, peak.Time)))
	} else {
		lines = append(lines, field("peak acceleration", warnStyle.Render("none after cutoff")))
	}
	if opt.Generations > 0 {
		lines = append(lines, field("optimizer", fmt.Sprintf("%d generations, %d evaluations", opt.Generations, opt.Evaluations)))
	}
	fmt.Println(panel.Render(strings.Join(lines, "\n")))
}

func column(rows []storage.TrajectoryRow, value func(storage.TrajectoryRow) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = value(r)
	}
	return out
}

func states(rows []storage.TrajectoryRow) ([]float64, []dynamo.State) {
	ts := make([]float64, len(rows))
	xs := make([]dynamo.State, len(rows))
	for i, r := range rows {
		ts[i] = r.Time
		xs[i] = dynamo.State{r.Displacement, r.Velocity}
	}
	return ts, xs
}
