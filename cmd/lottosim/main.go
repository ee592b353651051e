// Package main provides the CLI entrypoint for lottosim.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lottosim/internal/config"
	"github.com/verte-zerg/lottosim/internal/engine"
	"github.com/verte-zerg/lottosim/internal/logging"
	"github.com/verte-zerg/lottosim/internal/model"
	"github.com/verte-zerg/lottosim/internal/stats"
	"github.com/verte-zerg/lottosim/internal/tui"
)

const (
	defaultIterations = 1000
	maxIterations     = 1_000_000
	defaultMainMin    = 1
	defaultMainMax    = 31
	defaultMainCount  = 6
	defaultBonusMin   = 1
	defaultBonusMax   = 12
	defaultOutput     = outputTUI
)

const (
	outputTUI   = "tui"
	outputPlain = "plain"
	outputJSON  = "json"
)

type runConfig struct {
	Iterations int
	Main       model.RangeSpec
	Bonus      model.RangeSpec
	Seed       int64
	Output     string
	LogLevel   string
	Timeout    time.Duration
}

var (
	runIterations int
	runMainMin    int
	runMainMax    int
	runMainCount  int
	runBonusMin   int
	runBonusMax   int
	runSeed       int64
	runOutput     string
	runLogLevel   string
	runTimeout    time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lottosim",
		Short:         "Lottery draw simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runSimulationCmd,
	}

	rootCmd.Flags().IntVar(&runIterations, "iterations", defaultIterations, "number of simulated draws")
	rootCmd.Flags().IntVar(&runMainMin, "main-min", defaultMainMin, "smallest main number")
	rootCmd.Flags().IntVar(&runMainMax, "main-max", defaultMainMax, "largest main number")
	rootCmd.Flags().IntVar(&runMainCount, "main-count", defaultMainCount, "main numbers per draw")
	rootCmd.Flags().IntVar(&runBonusMin, "bonus-min", defaultBonusMin, "smallest bonus number")
	rootCmd.Flags().IntVar(&runBonusMax, "bonus-max", defaultBonusMax, "largest bonus number")
	rootCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed (0 seeds from the clock)")
	rootCmd.Flags().StringVar(&runOutput, "output", defaultOutput, "output mode: tui, plain or json")
	rootCmd.Flags().StringVar(&runLogLevel, "log-level", logging.DefaultLevel, "log level: debug, info, warn, error")
	rootCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abandon the run after this long (0 disables)")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runSimulationCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := resolveConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	eng := engine.New(engine.WithLogger(logger))
	start := model.NewStartMessage(cfg.Iterations, cfg.Main, cfg.Bonus, cfg.Seed)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	switch cfg.Output {
	case outputTUI:
		program := tea.NewProgram(tui.NewModel(ctx, eng, start), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	case outputJSON:
		return runJSON(ctx, eng, start, cmd.OutOrStdout())
	default:
		return runPlain(ctx, eng, start, cmd.OutOrStdout(), logger)
	}
}

func resolveConfig(cmd *cobra.Command, fileCfg config.FileConfig) runConfig {
	sim := fileCfg.Simulation
	applyIntConfig(cmd, "iterations", &runIterations, sim.Iterations)
	applyIntConfig(cmd, "main-min", &runMainMin, sim.Main.Min)
	applyIntConfig(cmd, "main-max", &runMainMax, sim.Main.Max)
	applyIntConfig(cmd, "main-count", &runMainCount, sim.Main.Count)
	applyIntConfig(cmd, "bonus-min", &runBonusMin, sim.Bonus.Min)
	applyIntConfig(cmd, "bonus-max", &runBonusMax, sim.Bonus.Max)
	applyInt64Config(cmd, "seed", &runSeed, sim.Seed)
	applyStringConfig(cmd, "output", &runOutput, sim.Output)
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.Log.Level)

	bonusCount := 1
	if sim.Bonus.Count != nil {
		bonusCount = *sim.Bonus.Count
	}
	logLevel := runLogLevel
	if !cmd.Flags().Changed("log-level") {
		logLevel = logging.ResolveLevel(logLevel)
	}
	return runConfig{
		Iterations: runIterations,
		Main:       model.RangeSpec{Min: runMainMin, Max: runMainMax, Count: runMainCount},
		Bonus:      model.RangeSpec{Min: runBonusMin, Max: runBonusMax, Count: bonusCount},
		Seed:       runSeed,
		Output:     strings.ToLower(strings.TrimSpace(runOutput)),
		LogLevel:   logLevel,
		Timeout:    runTimeout,
	}
}

func runPlain(ctx context.Context, eng *engine.Engine, start model.StartMessage, out io.Writer, logger *log.Logger) error {
	stream, err := eng.Start(ctx, start)
	if err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}
	var terminal *model.Message
	for msg := range stream {
		switch msg.Type {
		case model.MessageProgress:
			logErrf("\rProgress %3.0f%%", msg.CompletedFraction*100)
		default:
			m := msg
			terminal = &m
		}
	}
	logErrln()
	if terminal == nil {
		return unfinishedError(ctx)
	}
	if terminal.Type == model.MessageError {
		return fmt.Errorf("simulation failed: %s", terminal.Message)
	}
	logger.Debug("rendering report", "run", terminal.RunID)
	return renderReport(out, start, *terminal)
}

func renderReport(out io.Writer, start model.StartMessage, terminal model.Message) error {
	s := terminal.Statistics
	if s == nil {
		return fmt.Errorf("simulation finished without statistics")
	}
	if _, err := fmt.Fprintf(out, "Run %s\n\n", terminal.RunID); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSummary(out, *s); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderFrequencyChart(out, "Main numbers", s.MainFrequency, start.MainRangeSpec, 0, s.MostFrequentMain, false); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	if err := stats.RenderFrequencyChart(out, "Bonus numbers", s.BonusFrequency, start.BonusRangeSpec, 0, []int{s.MostFrequentBonus}, false); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	if err := stats.RenderDraws(out, terminal.TrailingDraws); err != nil {
		return fmt.Errorf("failed to write draws: %w", err)
	}
	return nil
}

func runJSON(ctx context.Context, eng *engine.Engine, start model.StartMessage, out io.Writer) error {
	enc := json.NewEncoder(out)
	stream, err := eng.Start(ctx, start)
	if err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}
	var terminal *model.Message
	for msg := range stream {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		if msg.IsTerminal() {
			m := msg
			terminal = &m
		}
	}
	if terminal == nil {
		return unfinishedError(ctx)
	}
	if terminal.Type == model.MessageError {
		return fmt.Errorf("simulation failed: %s", terminal.Message)
	}
	return nil
}

func unfinishedError(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return fmt.Errorf("simulation did not finish: %w", cause)
	}
	return fmt.Errorf("simulation did not finish")
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lottosim configuration
# Uncomment a value to enable it. CLI flags override config values.

[simulation]
# iterations = %d         # Number of simulated draws (1-%d)
# seed = 0                # Random seed, 0 seeds from the clock
# output = %q             # tui, plain or json

[simulation.main]
# min = %d
# max = %d
# count = %d

[simulation.bonus]
# min = %d
# max = %d
# count = 1               # One bonus number per draw

[log]
# level = %q              # debug, info, warn, error
`,
		defaultIterations,
		maxIterations,
		defaultOutput,
		defaultMainMin,
		defaultMainMax,
		defaultMainCount,
		defaultBonusMin,
		defaultBonusMax,
		logging.DefaultLevel,
	)
}

func validateConfig(cfg runConfig) error {
	if cfg.Iterations <= 0 || cfg.Iterations > maxIterations {
		return fmt.Errorf("--iterations must be between 1 and %d", maxIterations)
	}
	if err := cfg.Main.Validate(); err != nil {
		return fmt.Errorf("invalid main range: %w", err)
	}
	if cfg.Bonus.Count != 1 {
		return fmt.Errorf("bonus count must be 1")
	}
	if err := cfg.Bonus.Validate(); err != nil {
		return fmt.Errorf("invalid bonus range: %w", err)
	}
	switch cfg.Output {
	case outputTUI, outputPlain, outputJSON:
	default:
		return fmt.Errorf("--output must be one of %s, %s, %s", outputTUI, outputPlain, outputJSON)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
