package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/app"
	"github.com/san-kum/skyglow/internal/automation"
	"github.com/san-kum/skyglow/internal/config"
	"github.com/san-kum/skyglow/internal/logger"
	"github.com/san-kum/skyglow/internal/scene"
	"github.com/san-kum/skyglow/internal/server"
	"github.com/san-kum/skyglow/internal/store"
	"github.com/san-kum/skyglow/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	logFile    string
	preset     string
	mode       string
	variant    string

	addr       string
	staticDir  string
	frameSrc   string
	fps        int
	profileOut string

	tourFile string
	theme    string

	traceName string
	svgOut    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "skyglow",
		Short:         "light pollution map with an orbiting camera",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", ".skyglow", "data directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "also log to this file, rotated")
	pf.StringVar(&preset, "preset", "", "animation preset")
	pf.StringVar(&mode, "mode", string(scene.DefaultMode), "initial visualization mode")
	pf.StringVar(&variant, "variant", config.VariantCamera, "what the orbit moves (camera, light)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the map page and drive it over a websocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().StringVar(&staticDir, "static", "public", "directory served under /static/")
	serveCmd.Flags().StringVar(&frameSrc, "frames", config.FrameSourceClient, "frame pacing (client, ticker)")
	serveCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate for ticker pacing")
	serveCmd.Flags().StringVar(&profileOut, "profile", "", "write a cpu profile to this directory")
	serveCmd.Flags().StringVar(&tourFile, "tour", "", "play a scripted tour (yaml)")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal controller",
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&theme, "theme", "night", "colour theme")

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "list visualization modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tLAYERS\tDESCRIPTION")
			for _, m := range scene.Modes() {
				layers, err := scene.Compose(m)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", m, len(layers), m.Label())
			}
			return w.Flush()
		},
	}

	composeCmd := &cobra.Command{
		Use:   "compose [mode]",
		Short: "print the scene for a mode as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  composeScene,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list animation presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tVARIANT\tLOOP\tTICK")
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, p.Variant, p.FullLoopDuration, p.TickSize)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "skyglow.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "record one orbit cycle offline",
		RunE:  recordTrace,
	}
	traceCmd.Flags().StringVar(&traceName, "name", "", "trace name (defaults to preset or variant)")

	tracesCmd := &cobra.Command{
		Use:   "traces",
		Short: "list recorded traces",
		RunE:  listTraces,
	}

	previewCmd := &cobra.Command{
		Use:   "preview [trace_id]",
		Short: "plot a recorded trace",
		Args:  cobra.ExactArgs(1),
		RunE:  previewTrace,
	}
	previewCmd.Flags().StringVar(&svgOut, "svg", "", "also write the orbit path as svg")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [trace_id]",
		Short: "export a trace to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := traceStore(cmd)
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			samples, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}
			return store.ExportJSON(os.Stdout, *meta, samples)
		},
	}

	rootCmd.AddCommand(serveCmd, tuiCmd, modesCmd, composeCmd, presetsCmd, initCmd, traceCmd, tracesCmd, previewCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the preset and changed
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Logging.LogFile = logFile
	}
	if flags.Changed("mode") {
		cfg.Scene.Mode = mode
	}
	if flags.Changed("variant") {
		cfg.Animation.Variant = variant
	}
	if flags.Lookup("addr") != nil {
		if flags.Changed("addr") {
			cfg.Server.Addr = addr
		}
		if flags.Changed("static") {
			cfg.Server.StaticDir = staticDir
		}
		if flags.Changed("frames") {
			cfg.Server.FrameSource = frameSrc
		}
		if flags.Changed("fps") {
			cfg.Server.FPS = fps
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	if profileOut != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileOut), profile.NoShutdownHook).Stop()
	}

	var (
		frames anim.FrameSource
		acks   *anim.SignalFrames
	)
	switch cfg.Server.FrameSource {
	case config.FrameSourceTicker:
		t := anim.NewTickerFrames(cfg.Server.FPS)
		defer t.Stop()
		frames = t
	default:
		acks = anim.NewSignalFrames()
		frames = acks
	}

	a, err := app.New(cfg, frames, log)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Server, a, acks, log.Named("server"))

	var tour *automation.Scenario
	if tourFile != "" {
		if tour, err = automation.LoadScenario(tourFile); err != nil {
			return fmt.Errorf("tour: %w", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	log.Info("skyglow starting",
		zap.String("mode", cfg.Scene.Mode),
		zap.String("variant", cfg.Animation.Variant),
		zap.String("frames", cfg.Server.FrameSource))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(ctx) })
	if tour != nil {
		g.Go(func() error {
			return automation.RunScenario(ctx, tour, a, log.Named("tour"))
		})
	}
	return g.Wait()
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := tui.SetTheme(theme); err != nil {
		return err
	}
	// the terminal belongs to the TUI, so no console core
	log, err := logger.NewWithFileConfig(cfg.Logging.Level, fileCfg, nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	frames := anim.NewTickerFrames(cfg.Server.FPS)
	defer frames.Stop()

	a, err := app.New(cfg, frames, log)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return tui.Run(ctx, a)
}

func composeScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Scene.Mode = args[0]
	}
	cfg.Animation.Enabled = false

	a, err := app.New(cfg, anim.NewSignalFrames(), nil)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(a.Scene())
}

func traceStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return store.New(filepath.Join(cfg.DataDir, "traces")), cfg, nil
}

func recordTrace(cmd *cobra.Command, args []string) error {
	st, cfg, err := traceStore(cmd)
	if err != nil {
		return err
	}
	name := traceName
	if name == "" {
		name = preset
	}
	if name == "" {
		name = cfg.Animation.Variant
	}

	if err := st.Init(); err != nil {
		return err
	}

	acfg := cfg.AnimConfig()
	base, lights := cfg.ViewState(), cfg.Lights()
	samples := store.Trace(acfg, base, lights)
	id, err := st.Save(store.NewMetadata(name, cfg.Animation.Variant, acfg, base, lights), samples)
	if err != nil {
		return err
	}

	fmt.Printf("trace: %s\n", id)
	fmt.Printf("samples: %d over %s\n", len(samples), acfg.TickSize*time.Duration(acfg.FullLoopDuration))
	return nil
}

func listTraces(cmd *cobra.Command, args []string) error {
	st, _, err := traceStore(cmd)
	if err != nil {
		return err
	}
	traces, err := st.List()
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		fmt.Println("no traces found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tTIME\tLOOP\tTICK\tSAMPLES")
	for _, t := range traces {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\n",
			t.ID,
			t.Variant,
			t.Timestamp.Format("2006-01-02 15:04:05"),
			t.FullLoopDuration,
			t.TickSize,
			t.Samples,
		)
	}
	return w.Flush()
}

func previewTrace(cmd *cobra.Command, args []string) error {
	st, _, err := traceStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("trace: %s\n", meta.ID)
	fmt.Printf("variant: %s\n", meta.Variant)
	fmt.Printf("samples: %d\n\n", len(samples))

	channels := []struct {
		caption string
		value   func(store.Sample) float64
	}{
		{"bearing", func(s store.Sample) float64 { return s.Bearing }},
		{"pitch", func(s store.Sample) float64 { return s.Pitch }},
		{"light x", func(s store.Sample) float64 { return s.LightX }},
		{"light y", func(s store.Sample) float64 { return s.LightY }},
	}
	if meta.Variant == config.VariantLight {
		channels = channels[2:]
	} else {
		channels = channels[:2]
	}

	for _, ch := range channels {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = ch.value(s)
		}
		plot(os.Stdout, data, ch.caption)
	}

	if svgOut != "" {
		x, y := store.AxisBearing, store.AxisPitch
		if meta.Variant == config.VariantLight {
			x, y = store.AxisLightX, store.AxisLightY
		}
		if err := os.WriteFile(svgOut, []byte(store.PathSVG(samples, x, y, 600, 400, scene.DefaultSpecular)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func plot(w io.Writer, data []float64, caption string) {
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(w, graph)
	fmt.Fprintln(w)
}
