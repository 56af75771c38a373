package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
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
	"github.com/san-kum/wavebuoy/internal/storage"
	"github.com/san-kum/wavebuoy/internal/tui"
	"github.com/san-kum/wavebuoy/internal/wave"
)

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger().WithFields(l.StringField(l.ClsKey, "optimize"))

	s, err := newSession(cmd, logger)
	if err != nil {
		return err
	}
	memo := optim.Memoize(s.objective())

	var scan []storage.ScanRow
	if withScan {
		scan, _, err = s.scan(ctx, memo.Evaluate)
		if err != nil {
			return err
		}
		logger.WithFields(l.IntField("feasible", len(scan))).Info("scan finished")
	}

	start := time.Now()
	res, err := s.optimize(ctx, memo.Evaluate, func(p optim.Progress) {
		logger.WithFields(
			l.IntField("generation", p.Generation),
			l.StringField("best", objective.FromVector(p.Best).String()),
			l.StringField("power", fmt.Sprintf("%.2f kW", -p.F/1000)),
			l.IntField("evaluations", p.Evaluations),
		).Info("generation done")
	})
	if err != nil {
		return err
	}

	hits, misses := memo.Stats()
	logger.WithFields(
		l.StringField("elapsed", time.Since(start).Truncate(time.Millisecond).String()),
		l.StringField("cache", fmt.Sprintf("%d hits, %d misses", hits, misses)),
		l.StringField("message", res.Message),
	).Info("optimization finished")

	return s.report(ctx, "optimize", objective.FromVector(res.X), &res, scan)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// log lines would tear the live view
	s, err := newSession(cmd, l.NewNopLoggerWrapper())
	if err != nil {
		return err
	}
	memo := optim.Memoize(s.objective())

	res, err := tui.Watch(ctx, "optimize "+s.cfg.Data.Path, s.cfg.Optimizer.MaxIter, []string{"mass", "damping"},
		func(ctx context.Context, progress func(optim.Progress)) (optim.Result, error) {
			return s.optimize(ctx, memo.Evaluate, progress)
		})
	if err != nil {
		return err
	}

	return s.report(ctx, "optimize", objective.FromVector(res.X), &res, nil)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger().WithFields(l.StringField(l.ClsKey, "scan"))

	s, err := newSession(cmd, logger)
	if err != nil {
		return err
	}

	rows, best, err := s.scan(ctx, s.objective())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("scan: every lattice point violates a constraint")
	}
	logger.WithFields(l.IntField("feasible", len(rows)), l.StringField("best", objective.FromVector(best.X).String())).Info("scan finished")

	return s.report(ctx, "scan", objective.FromVector(best.X), nil, rows)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger().WithFields(l.StringField(l.ClsKey, "simulate"))

	s, err := newSession(cmd, logger)
	if err != nil {
		return err
	}

	return s.report(ctx, "simulate", objective.Candidate{Mass: mass, Damping: damping}, nil, nil)
}

func runWave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Data.Path == "" {
		return errNoData
	}
	step := cfg.Data.ResampleStep
	if resampleStep > 0 {
		step = resampleStep
	}

	series, report, err := wave.LoadCSV(cfg.Data.Path, cfg.Data.Columns)
	if err != nil {
		return err
	}
	d, err := wave.Diagnose(series, step)
	if err != nil {
		return err
	}

	lines := []string{
		titleStyle.Render("wave record " + cfg.Data.Path),
		field("rows kept", fmt.Sprintf("%d of %d", report.Kept, report.Rows)),
		field("duration", fmt.Sprintf("%.1f s", d.Duration)),
		field("mean elevation", fmt.Sprintf("%.4f m", d.MeanElevation)),
		field("significant height", fmt.Sprintf("%.3f m", d.SignificantH)),
		field("max |elevation|", fmt.Sprintf("%.3f m", d.MaxAbsElevation)),
		field("mean velocity", fmt.Sprintf("%.4f m/s", d.MeanVelocity)),
		field("rms velocity", fmt.Sprintf("%.4f m/s", d.RMSVelocity)),
	}
	if d.DominantPeriod > 0 {
		lines = append(lines,
			field("dominant period", fmt.Sprintf("%.2f s", d.DominantPeriod)),
			field("dominant omega", fmt.Sprintf("%.3f rad/s", d.DominantOmega)),
		)
	} else {
		lines = append(lines, field("dominant period", warnStyle.Render("flat record")))
	}
	fmt.Println(panel.Render(strings.Join(lines, "\n")))

	resampled, err := series.Resample(step)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(resampled.Elevations(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("elevation (m)"),
	))
	return nil
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.Output.Dir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tMASS\tDAMPING\tPOWER\tSTATUS")

	for _, run := range runs {
		mass, damp, power, status := "-", "-", "-", "-"
		if o := run.Optimum; o != nil {
			mass = fmt.Sprintf("%.0f kg", o.Mass)
			damp = fmt.Sprintf("%.0f Ns/m", o.Damping)
			power = fmt.Sprintf("%.2f kW", o.PowerW/1000)
			status = o.Reason
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(run.ID),
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			mass, damp, power, status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	scan, err := loadScan(st, runID)
	if err != nil {
		return err
	}

	if pngOut {
		dir := st.Dir(runID)
		if err := writeCharts(dir, rows, meta.Peak, scan); err != nil {
			return err
		}
		fmt.Printf("charts written to %s\n", dir)
		return nil
	}

	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("samples: %d\n\n", len(rows))

	panels := []struct {
		caption string
		value   func(storage.TrajectoryRow) float64
	}{
		{"displacement z (m)", func(r storage.TrajectoryRow) float64 { return r.Displacement }},
		{"velocity v (m/s)", func(r storage.TrajectoryRow) float64 { return r.Velocity }},
		{"wave forcing (kN)", func(r storage.TrajectoryRow) float64 { return r.Forcing / 1000 }},
		{"acceleration (m/s²)", func(r storage.TrajectoryRow) float64 { return r.Acceleration }},
	}
	for _, p := range panels {
		graph := asciigraph.Plot(column(rows, p.value),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if curves, labels := scanCurves(scan); len(curves) > 0 {
		fmt.Println(asciigraph.PlotMany(curves,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power (kW) vs mass, one curve per damping"),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Yellow,
				asciigraph.Cyan, asciigraph.Magenta, asciigraph.White),
		))
		for _, lbl := range labels {
			fmt.Println("  " + lbl)
		}
	}

	return nil
}

// scanCurves groups scan rows into power-by-mass series, one per damping.
func scanCurves(scan []storage.ScanRow) ([][]float64, []string) {
	byDamping := make(map[float64][]storage.ScanRow)
	for _, r := range scan {
		byDamping[r.Damping] = append(byDamping[r.Damping], r)
	}
	dampings := make([]float64, 0, len(byDamping))
	for c := range byDamping {
		dampings = append(dampings, c)
	}
	sort.Float64s(dampings)

	var curves [][]float64
	var labels []string
	for _, c := range dampings {
		rs := byDamping[c]
		if len(rs) < 2 {
			continue
		}
		sort.Slice(rs, func(i, j int) bool { return rs[i].Mass < rs[j].Mass })
		curve := make([]float64, len(rs))
		for i, r := range rs {
			curve[i] = r.PowerW / 1000
		}
		curves = append(curves, curve)
		labels = append(labels, fmt.Sprintf("c = %.0f kN·s/m (%.0f..%.0f kg)", c/1000, rs[0].Mass, rs[len(rs)-1].Mass))
	}
	return curves, labels
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data")
	}

	ts, xs := states(rows)
	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	from := ts[0] + cfg.Objective.SteadyStateCutoff

	portrait := analysis.NewPhasePortrait(ts, xs, xAxis, yAxis, from)
	if portrait == nil {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("x-axis: x%d, y-axis: x%d, t > %.1f s\n\n", xAxis, yAxis, from)
	fmt.Println(portrait.Render(70, 20))

	ms := []dynamo.Metric{metrics.NewPeakDisplacement(), metrics.NewRMSVelocity()}
	if o := meta.Optimum; o != nil {
		eta := 1.0
		if cfg.Objective.PTOEfficiency {
			eta = cfg.Buoy().EtaPTO
		}
		ms = append(ms,
			metrics.NewMeanPower(o.Damping, eta, from),
			metrics.NewAbsorbedEnergy(o.Damping, eta, from),
			metrics.NewPeakPTOForce(o.Damping),
		)
	}
	values := metrics.Collect(ts, xs, ms...)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, values[name])
	}
	if meta.Peak != nil {
		fmt.Printf("  peak_acceleration: %.6g m/s² at %.3f s\n", meta.Peak.Accel, meta.Peak.Time)
	}
	if p, ok := values["mean_power_w"]; ok {
		fmt.Printf("  annual_energy_mwh: %.1f\n", storage.AnnualEnergyMWh(p))
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	rows, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.ExportCSV(os.Stdout, rows)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	scan, err := loadScan(st, runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, rows, scan)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIAMETER\tDRAFT\tETA\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.1f m\t%.1f m\t%.2f\t%s\n",
			name, p.Geometry.Diameter, p.Geometry.Draft, p.Geometry.EtaPTO, p.Description)
	}
	return w.Flush()
}

// loadScan returns nil when the run has no scan.
func loadScan(st *storage.Store, runID string) ([]storage.ScanRow, error) {
	scan, err := st.LoadScan(runID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return scan, err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
