package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configFile string
	dataPath   string
	preset     string
	outDir     string
	quiet      bool
	// Optimizer overrides
	popSize  int
	maxIter  int
	seed     int64
	workers  int
	noPolish bool
	withScan bool
	pngOut   bool
	// Single candidate
	mass    float64
	damping float64
	// Phase plot axes
	xAxis int
	yAxis int
	// Resampling step for wave diagnostics
	resampleStep float64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "wavebuoy",
		Short:         "wave energy buoy simulation and optimization",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "wave probe csv (overrides config)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "buoy geometry preset")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "run output directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "search mass and PTO damping for maximum power",
		RunE:  runOptimize,
	}
	addOptimizerFlags(optimizeCmd)
	optimizeCmd.Flags().BoolVar(&withScan, "scan", false, "also sweep the mass x damping lattice")
	optimizeCmd.Flags().BoolVar(&pngOut, "png", false, "write PNG charts into the run directory")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "optimize with a live progress view",
		RunE:  runWatch,
	}
	addOptimizerFlags(watchCmd)
	watchCmd.Flags().BoolVar(&pngOut, "png", false, "write PNG charts into the run directory")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "sweep the mass x damping lattice",
		RunE:  runScan,
	}
	scanCmd.Flags().BoolVar(&pngOut, "png", false, "write PNG charts into the run directory")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate one mass and damping pair",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().Float64Var(&mass, "mass", 1e5, "buoy structural mass (kg)")
	simulateCmd.Flags().Float64Var(&damping, "damping", 2e5, "PTO damping (N·s/m)")
	simulateCmd.Flags().BoolVar(&pngOut, "png", false, "write PNG charts into the run directory")

	waveCmd := &cobra.Command{
		Use:   "wave",
		Short: "wave record diagnostics",
		RunE:  runWave,
	}
	waveCmd.Flags().Float64Var(&resampleStep, "step", 0, "resampling step in seconds (default from config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&pngOut, "png", false, "write PNG charts instead of terminal graphs")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "phase portrait and steady-state metrics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	analyzeCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list buoy geometry presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(optimizeCmd, watchCmd, scanCmd, simulateCmd, waveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}

func addOptimizerFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&popSize, "popsize", 0, "population multiplier (default from config)")
	cmd.Flags().IntVar(&maxIter, "maxiter", 0, "maximum generations (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel evaluations (default from config)")
	cmd.Flags().BoolVar(&noPolish, "no-polish", false, "skip the Nelder-Mead polish")
}
