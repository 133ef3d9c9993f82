// Command symreg evolves an expression that fits a target function by genetic programming
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/symreg/config"
	"github.com/lixenwraith/symreg/gp"
	"github.com/lixenwraith/symreg/parameter"
	"github.com/lixenwraith/symreg/report"
	"github.com/lixenwraith/symreg/status"
)

const defaultConfigFile = "symreg.toml"

// options holds parsed command-line flags
type options struct {
	configPath  string
	seed        uint64
	generations int
	population  int
	tui         bool
	plotPath    string
	metricsAddr string
	debug       bool

	// set records flags given explicitly on the command line
	set map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	opts := &options{set: make(map[string]bool)}
	fs.StringVar(&opts.configPath, "config", "", "TOML config file (default: ./"+defaultConfigFile+" if present)")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed, 0 for a random seed")
	fs.IntVar(&opts.generations, "generations", parameter.GPGenerations, "Maximum number of generations")
	fs.IntVar(&opts.population, "pop", parameter.GPPopulationSize, "Population size")
	fs.BoolVar(&opts.tui, "tui", false, "Show a live terminal dashboard")
	fs.StringVar(&opts.plotPath, "plot", "", "Write a fitness plot to this path (png, svg, pdf)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	fs.BoolVar(&opts.debug, "debug", false, "Write debug logs to "+filepath.Join(logDir, logFileName))

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// loadConfig resolves the config file, applies flag overrides and validates the result.
// It returns the source description for logging
func loadConfig(opts *options) (gp.Config, string, error) {
	cfg := config.Default()
	source := "defaults"

	path := opts.configPath
	if path == "" {
		found, err := config.Discover(defaultConfigFile)
		if err != nil && !errors.Is(err, config.ErrNoConfig) {
			return gp.Config{}, "", err
		}
		path = found
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return gp.Config{}, "", err
		}
		cfg = loaded
		source = path
	}

	if opts.set["seed"] {
		cfg.Seed = opts.seed
	}
	if opts.set["generations"] {
		cfg.Generations = opts.generations
	}
	if opts.set["pop"] {
		cfg.PopulationSize = opts.population
	}

	built, err := cfg.Build()
	if err != nil {
		return gp.Config{}, "", err
	}
	return built, source, nil
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the process exit code so every deferred cleanup runs before exit
func realMain(args []string, stdout, stderr io.Writer) (code int) {
	// Panic recovery; deferred screen cleanup in run has already restored the terminal
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "\n\x1b[31mSYMREG CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(stderr, "Stack Trace:\n%s\n", debug.Stack())
			code = 1
		}
	}()

	fs := flag.NewFlagSet("symreg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts, err := parseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if logFile := setupLogging(opts.debug); logFile != nil {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, stdout); err != nil {
		log.Printf("run failed: %v", err)
		fmt.Fprintf(stderr, "symreg: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	cfg, source, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log.Printf("config: %s", source)

	sys, err := gp.New(cfg)
	if err != nil {
		return err
	}
	log.Printf("seed: %d, population: %d, generations: %d", sys.Seed(), cfg.PopulationSize, cfg.Generations)

	metrics := status.NewRegistry()
	runMetrics := metrics.Run()
	sys.AddObserver(func(gs gp.GenerationStats) {
		runMetrics.Record(gs.Generation, gs.Evaluations, gs.PopulationSize, gs.BestFitness, gs.MeanFitness, gs.BestSize, gs.BestExpression)
	})

	if opts.metricsAddr != "" {
		srv := serveMetrics(opts.metricsAddr, metrics)
		log.Printf("metrics: exporting %d run metrics", metrics.TotalCount())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runMetrics.Start()
	var res *gp.Result
	if opts.tui {
		res, err = runDashboard(ctx, sys)
	} else {
		progress := report.NewProgress(out)
		sys.AddObserver(progress.Observe)
		res, err = sys.Run(ctx)
	}
	if err != nil {
		runMetrics.Finish(false)
		if res != nil && len(res.History) > 0 {
			log.Printf("run %s interrupted in phase %s after %d generations, best=%g",
				res.RunID, sys.Phase(), len(res.History), res.BestFitness)
			fmt.Fprintf(out, "\ninterrupted after %d generations, best so far: %s (fitness %s)\n",
				len(res.History), res.Best, report.FormatFitness(res.BestFitness))
		}
		return err
	}
	runMetrics.Finish(res.Solved)

	final := res.Final()
	log.Printf("run %s finished in phase %s: generations=%d evaluations=%d best=%g solved=%t",
		res.RunID, sys.Phase(), len(res.History), final.Evaluations, res.BestFitness, res.Solved)

	report.NewProgress(out).Summary(res)
	fmt.Fprintln(out)
	if err := report.WriteComparison(out, res.Compare(parameter.GPDemoPoints)); err != nil {
		return fmt.Errorf("write comparison: %w", err)
	}

	if opts.plotPath != "" {
		title := fmt.Sprintf("symreg run %s (seed %d)", res.RunID, res.Seed)
		if err := report.PlotHistory(res.History, title, opts.plotPath); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		fmt.Fprintf(out, "\nfitness plot written to %s\n", opts.plotPath)
	}
	return nil
}

// serveMetrics exposes the run registry and Go runtime metrics over HTTP
func serveMetrics(addr string, metrics *status.Registry) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		status.NewCollector(metrics, "symreg"),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("metrics: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()
	return srv
}

// runDashboard evolves on a background goroutine while the dashboard owns the terminal.
// Quitting the dashboard before the run ends cancels it
func runDashboard(ctx context.Context, sys *gp.System) (*gp.Result, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	cfg := sys.Config()
	title := fmt.Sprintf("symreg  seed %d  pop %d  gens %d", sys.Seed(), cfg.PopulationSize, cfg.Generations)
	dash := report.NewDashboard(screen, title)
	sys.AddObserver(dash.Observe)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		res *gp.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := sys.Run(runCtx)
		if err == nil {
			dash.Finish(res)
		}
		done <- outcome{res, err}
	}()

	if err := dash.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("dashboard: %v", err)
	}
	cancel()

	o := <-done
	return o.res, o.err
}
