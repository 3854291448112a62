package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/analysis"
	"github.com/san-kum/adexsim/internal/automation"
	"github.com/san-kum/adexsim/internal/config"
	"github.com/san-kum/adexsim/internal/experiment"
	"github.com/san-kum/adexsim/internal/export"
	"github.com/san-kum/adexsim/internal/integrators"
	"github.com/san-kum/adexsim/internal/optim"
	"github.com/san-kum/adexsim/internal/recorder"
	"github.com/san-kum/adexsim/internal/sim"
	"github.com/san-kum/adexsim/internal/storage"
)

var (
	dataDir string
	verbose bool

	configFile     string
	preset         string
	modelOpts      []string
	integrator     string
	controller     string
	dt             float64
	duration       float64
	eTar           float64
	maxSpikes      int
	recordInterval float64
	paramSets      []string

	noSave    bool
	csvOut    string
	jsonOut   string
	plotAfter bool

	exportFormat string
	listQuery    storage.Query

	samples int
	maxFreq float64

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	workers    int

	trials int
	jitter float64
	mcSeed uint64
)

var logger = slog.Default()

func main() {
	rootCmd := &cobra.Command{
		Use:           "adexsim",
		Short:         "adaptive exponential integrate-and-fire neuron simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".adexsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "stream the trajectory to a CSV file")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write a JSON export of the run")
	runCmd.Flags().BoolVar(&plotAfter, "plot", false, "plot the membrane potential")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&listQuery.Model, "model", "", "only runs of this model")
	listCmd.Flags().StringVar(&listQuery.Integrator, "integrator", "", "only runs of this integrator")
	listCmd.Flags().IntVar(&listQuery.MinSpikes, "min-spikes", 0, "only runs with at least this many output spikes")
	listCmd.Flags().IntVar(&listQuery.Limit, "limit", 0, "maximum number of runs")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata or trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json (metadata), csv (trajectory) or svg (voltage plot)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spike train statistics and membrane potential spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&samples, "samples", 4096, "resampled trace length")
	analyzeCmd.Flags().Float64Var(&maxFreq, "max-freq", 500, "highest plotted frequency [Hz]")

	thresholdCmd := &cobra.Command{
		Use:   "threshold",
		Short: "show derived working parameters and effective threshold",
		Args:  cobra.NoArgs,
		RunE:  showThreshold,
	}
	addConfigFlags(thresholdCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one physical parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "w", "swept parameter")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.01e-6, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0.1e-6, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel simulations (0 = all CPUs)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator]...",
		Short: "compare integrators on the same configuration",
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a spike train configuration with random jitter",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&jitter, "jitter", 0.001, "input spike jitter [s]")
	monteCarloCmd.Flags().Uint64Var(&mcSeed, "seed", 1, "seed of the first trial")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, analyzeCmd, thresholdCmd, sweepCmd, compareCmd, scenarioCmd, monteCarloCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringSliceVar(&modelOpts, "model", nil, "model options: "+strings.Join(adexp.OptionNames(), ", "))
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator: "+strings.Join(integrators.Names(), ", "))
	cmd.Flags().StringVar(&controller, "controller", config.ControllerNone, "controller")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "fixed step [s], 0 = derived from parameters")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration [s]")
	cmd.Flags().Float64Var(&eTar, "etar", integrators.DefaultETar, "adaptive error target")
	cmd.Flags().IntVar(&maxSpikes, "max-spikes", config.DefaultMaxSpikes, "output spike limit of the max-spikes controller")
	cmd.Flags().Float64Var(&recordInterval, "record-interval", 0, "minimum interval between recorded samples [s]")
	cmd.Flags().StringArrayVar(&paramSets, "set", nil, "override a physical parameter, name=value")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = modelOpts
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("etar") {
		cfg.ETar = eTar
	}
	if flags.Changed("max-spikes") {
		cfg.MaxSpikes = maxSpikes
	}
	if flags.Changed("record-interval") {
		cfg.RecordInterval = recordInterval
	}

	for _, set := range paramSets {
		name, raw, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected name=value", set)
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %q: %w", set, err)
		}
		if !cfg.Params.SetParam(strings.TrimSpace(name), val) {
			return nil, fmt.Errorf("--set %q: unknown parameter", set)
		}
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var extra []sim.Recorder
	var csvRec *recorder.CSV
	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		defer f.Close()
		csvRec = recorder.NewCSV(f, recorder.UnitsOf(cfg.Params), cfg.RecordEvery())
		extra = append(extra, csvRec)
	}

	out, err := experiment.New(cfg, experiment.WithLogger(logger)).Run(cmd.Context(), extra...)
	if err != nil {
		return err
	}

	if csvRec != nil {
		if err := csvRec.Flush(); err != nil {
			return fmt.Errorf("write %s: %w", csvOut, err)
		}
	}

	runID := "-"
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(cfg, out); err != nil {
			return err
		}
		if err := indexRun(st, runID); err != nil {
			logger.Warn("run not indexed", "run", runID, "err", err)
		}
	}

	if jsonOut != "" {
		if err := storage.ExportJSONFile(jsonOut, cfg, out); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	header(w, "run "+out.Model.String())
	pairs := [][2]string{
		kv("run id", "%s", runID),
		kv("integrator", "%s", cfg.Integrator),
		kv("controller", "%s", cfg.Controller),
		kv("simulated", "%s", out.Result.T),
		kv("steps", "%d", out.Result.Steps),
		kv("input spikes", "%d", out.Result.InputSpikes),
		kv("output spikes", "%d", out.Result.OutputSpikes),
		kv("elapsed", "%v", out.Elapsed.Round(time.Microsecond)),
	}
	if out.Accepted+out.Rejected > 0 {
		pairs = append(pairs, kv("accepted/rejected", "%d/%d", out.Accepted, out.Rejected))
	}
	keyValues(w, pairs...)

	fmt.Fprintln(w)
	header(w, "metrics")
	keyValues(w, metricPairs(out.Metrics)...)

	if plotAfter && len(out.Trace.Rows) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, plotTrace(out.Trace.Rows, func(r recorder.Row) float64 { return r.V * 1e3 }, "v [mV]"))
	}
	return nil
}

func metricPairs(m map[string]float64) [][2]string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]string, len(names))
	for i, name := range names {
		pairs[i] = kv(name, "%.6g", m[name])
	}
	return pairs
}

func plotTrace(rows []recorder.Row, field func(recorder.Row) float64, caption string) string {
	data := make([]float64, len(rows))
	for i, r := range rows {
		data[i] = field(r)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s, %.1f..%.1f ms", caption, rows[0].T.Sec()*1e3, rows[len(rows)-1].T.Sec()*1e3)),
	)
}

func indexRun(st *storage.Store, runID string) error {
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ix, err := st.OpenIndex()
	if err != nil {
		return err
	}
	defer ix.Close()
	return ix.Add(*meta)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if listQuery != (storage.Query{}) {
		return queryRuns(cmd, st)
	}

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("no runs found"))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tINTEG\tCTRL\tSPIKES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3fs\t%s\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Integrator,
			run.Controller,
			len(run.OutputSpikes),
		)
	}

	return w.Flush()
}

func queryRuns(cmd *cobra.Command, st *storage.Store) error {
	ix, err := st.OpenIndex()
	if err != nil {
		return err
	}
	defer ix.Close()

	added, err := ix.Sync(st)
	if err != nil {
		return err
	}
	logger.Debug("index synced", "added", added)

	entries, err := ix.Find(listQuery)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("no matching runs"))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tINTEG\tSPIKES")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3fs\t%s\t%d\n",
			e.ID, e.Model, e.Timestamp.Format("2006-01-02 15:04:05"), e.Duration, e.Integrator, e.OutputSpikes)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rows, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return fmt.Errorf("no data to plot")
	}

	w := cmd.OutOrStdout()
	header(w, "run "+meta.ID)
	keyValues(w,
		kv("model", "%s", meta.Model),
		kv("samples", "%d", len(rows)),
		kv("output spikes", "%d", len(meta.OutputSpikes)),
	)
	fmt.Fprintln(w)

	plots := []struct {
		caption string
		field   func(recorder.Row) float64
	}{
		{"membrane potential [mV]", func(r recorder.Row) float64 { return r.V * 1e3 }},
		{"excitatory conductance [nS]", func(r recorder.Row) float64 { return r.GE * 1e9 }},
		{"inhibitory conductance [nS]", func(r recorder.Row) float64 { return r.GI * 1e9 }},
		{"adaptation current [pA]", func(r recorder.Row) float64 { return r.W * 1e12 }},
	}
	for _, p := range plots {
		fmt.Fprintln(w, plotTrace(rows, p.field, p.caption))
		fmt.Fprintln(w)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	switch exportFormat {
	case "json":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	case "svg":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		rows, err := st.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		svg := export.TraceToSVG(rows, meta.OutputSpikes, export.DefaultTraceOptions())
		if svg == "" {
			return fmt.Errorf("no data to export")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), svg)
		return err
	case "csv":
		rows, err := st.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		w := csv.NewWriter(cmd.OutOrStdout())
		if err := storage.WriteTrajectory(w, rows); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	}
	return fmt.Errorf("unknown export format: %s", exportFormat)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	in, out, err := st.LoadSpikes(runID)
	if err != nil {
		return err
	}

	firstInput := math.NaN()
	if len(in) > 0 {
		firstInput = in[0]
	}
	stats := analysis.SpikeStats(out, meta.Duration, firstInput)

	w := cmd.OutOrStdout()
	header(w, "spike train "+meta.ID)
	keyValues(w,
		kv("output spikes", "%d", stats.Count),
		kv("firing rate", "%.3f Hz", stats.Rate),
		kv("isi mean", "%s", msOrDash(stats.ISIMean)),
		kv("isi cv", "%.4g", stats.ISICV),
		kv("first spike latency", "%s", msOrDash(stats.Latency)),
	)
	fmt.Fprintln(w)

	times := make([]float64, len(rows))
	volts := make([]float64, len(rows))
	for i, r := range rows {
		times[i] = r.T.Sec()
		volts[i] = r.V
	}
	resampled, step := analysis.Resample(times, volts, samples)
	if resampled == nil {
		return fmt.Errorf("not enough samples for a spectrum")
	}
	ps := analysis.PowerSpectrum(resampled, 1/step)

	n := len(ps.Freqs)
	for n > 2 && ps.Freqs[n-1] > maxFreq {
		n--
	}
	plotData := make([]float64, n-1)
	for i := range plotData {
		plotData[i] = math.Log10(ps.Power[i+1] + 1e-30)
	}

	header(w, "membrane potential spectrum")
	fmt.Fprintln(w, asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("log10 power, %.1f..%.1f Hz", ps.Freqs[1], ps.Freqs[n-1])),
	))
	fmt.Fprintln(w)

	freq, _ := ps.Peak()
	pairs := [][2]string{kv("dominant frequency", "%.3f Hz", freq)}
	if freq > 0 {
		pairs = append(pairs, kv("period", "%.3f ms", 1e3/freq))
	}
	keyValues(w, pairs...)
	return nil
}

func msOrDash(sec float64) string {
	if math.IsNaN(sec) {
		return "-"
	}
	return fmt.Sprintf("%.3f ms", sec*1e3)
}

func showThreshold(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p := adexp.NewWorkingParameters(cfg.Params)
	eL := cfg.Params.EL

	w := cmd.OutOrStdout()
	header(w, "working parameters")
	vec := p.Vector()
	pairs := make([][2]string, len(vec))
	for i, v := range vec {
		pairs[i] = kv(vec.Name(i), "%.6g", v)
	}
	keyValues(w, pairs...)
	fmt.Fprintln(w)

	header(w, "derived")
	keyValues(w,
		kv("effective threshold", "%.4f mV", (p.ESpikeEff()+eL)*1e3),
		kv("reduced threshold", "%.4f mV", (p.ESpikeEffRed()+eL)*1e3),
		kv("max exponent", "%.6g", p.MaxIThExponent()),
		kv("recommended step", "%s", p.TDelta()),
		kv("refractory period", "%s", p.TauRef()),
	)
	fmt.Fprintln(w)

	if err := p.Validate(); err != nil {
		fmt.Fprintln(w, warnStyle.Render("invalid:"), err)
		return nil
	}
	fmt.Fprintln(w, okStyle.Render("valid"))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sw := optim.NewSweep(sweepParam, optim.Linspace(sweepFrom, sweepTo, sweepSteps))
	if workers > 0 {
		sw.Workers = workers
	}

	logger.Debug("starting sweep", "param", sweepParam, "from", sweepFrom, "to", sweepTo, "steps", sweepSteps)
	start := time.Now()
	points, err := sw.Run(cmd.Context(), cfg)
	if points == nil {
		return err
	}
	logger.Info("sweep finished", "param", sweepParam, "points", len(points), "elapsed", time.Since(start))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSPIKES\tFIRST\tMAX V\n", strings.ToUpper(sweepParam))
	var counts []float64
	for _, pt := range points {
		if pt.Skipped {
			fmt.Fprintf(w, "%.6g\t%s\n", pt.Value, subtleStyle.Render("skipped: "+pt.Reason))
			continue
		}
		first := "-"
		if pt.FirstSpike >= 0 {
			first = fmt.Sprintf("%.3f ms", pt.FirstSpike*1e3)
		}
		fmt.Fprintf(w, "%.6g\t%d\t%s\t%.3f mV\n", pt.Value, pt.OutputSpikes, first, pt.MaxVoltage*1e3)
		counts = append(counts, float64(pt.OutputSpikes))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(counts) > 1 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(counts,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("output spikes over "+sweepParam),
		))
	}

	if pt, ok := optim.Threshold(points, 1); ok {
		fmt.Fprintln(cmd.OutOrStdout())
		keyValues(cmd.OutOrStdout(), kv("first spiking "+sweepParam, "%.6g", pt.Value))
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("sweep interrupted, results are partial"))
	}
	return err
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	out := cmd.OutOrStdout()
	header(out, fmt.Sprintf("integrators on %s, %.3fs", strings.Join(cfg.Model, "|"), cfg.Duration))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tSPIKES\tFIRST\tMAX V\tTIME")

	for _, name := range names {
		run := cfg.Clone()
		run.Integrator = name
		res, err := experiment.New(run, experiment.WithLogger(logger)).Run(cmd.Context())
		if err != nil {
			if ctxErr := cmd.Context().Err(); ctxErr != nil {
				w.Flush()
				return ctxErr
			}
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		spikes := res.Trace.OutputSpikeTimes()
		first := "-"
		if len(spikes) > 0 {
			first = fmt.Sprintf("%.4f ms", spikes[0]*1e3)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%.4f mV\t%v\n",
			name, res.Result.Steps, res.Result.OutputSpikes, first,
			res.Metrics["max_voltage"]*1e3, res.Elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, runErr := automation.RunScenario(cmd.Context(), sc, st, logger)

	out := cmd.OutOrStdout()
	header(out, "scenario "+sc.Name)
	if sc.Description != "" {
		fmt.Fprintln(out, subtleStyle.Render(sc.Description))
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tSTEPS\tSPIKES\tRUN ID")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Name, r.Outcome.Model, r.Outcome.Result.Steps, r.Outcome.Result.OutputSpikes, id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:      cfg,
		NumTrials: trials,
		Jitter:    jitter,
		Seed:      mcSeed,
	}, logger)
	if len(results) == 0 {
		return err
	}

	counts := make([]float64, len(results))
	for i, r := range results {
		counts[i] = float64(r.OutputSpikes)
	}
	mean, stable, unstable := automation.MonteCarloStats(results)

	out := cmd.OutOrStdout()
	header(out, "monte carlo")
	keyValues(out,
		kv("trials", "%d", len(results)),
		kv("mean output spikes", "%.3f", mean),
		kv("stable/unstable", "%d/%d", stable, unstable),
	)
	if len(counts) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(counts,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("output spikes per trial"),
		))
	}
	return err
}

func showPresets(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}

	header(w, "presets")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		model := "adexp"
		if len(cfg.Model) > 0 {
			model = strings.Join(cfg.Model, "|")
		}
		fmt.Fprintf(w, "  %s  %s\n", valueStyle.Render(fmt.Sprintf("%-14s", name)), subtleStyle.Render(model+", "+cfg.Integrator))
	}
	return nil
}
