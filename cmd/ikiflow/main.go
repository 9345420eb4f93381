// Package main provides the CLI entrypoint for ikiflow.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
	"github.com/verte-zerg/ikiflow/internal/clock"
	"github.com/verte-zerg/ikiflow/internal/config"
	"github.com/verte-zerg/ikiflow/internal/history"
	"github.com/verte-zerg/ikiflow/internal/lock"
	"github.com/verte-zerg/ikiflow/internal/model"
	"github.com/verte-zerg/ikiflow/internal/prefs"
	"github.com/verte-zerg/ikiflow/internal/session"
	"github.com/verte-zerg/ikiflow/internal/stats"
	"github.com/verte-zerg/ikiflow/internal/statsui"
	"github.com/verte-zerg/ikiflow/internal/trigger"
	"github.com/verte-zerg/ikiflow/internal/tui"
	"github.com/verte-zerg/ikiflow/internal/usage"
	"github.com/verte-zerg/ikiflow/internal/window"
)

const (
	defaultFocus   = 25
	defaultBreak   = 5
	defaultTopApps = 5
)

var (
	timerFocus    int
	timerBreak    int
	timerExtend   int
	timerContext  bool
	timerApps     []string
	timerCooldown time.Duration
	timerPoll     time.Duration

	summaryApps int

	exportFormat string
	exportOutput string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ikiflow",
		Short:         "Focus timer with app usage tracking",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}

	rootCmd.Flags().IntVar(&timerFocus, "focus", defaultFocus, "focus minutes (default: last used)")
	rootCmd.Flags().IntVar(&timerBreak, "break", defaultBreak, "break minutes (default: last used)")
	rootCmd.Flags().IntVar(&timerExtend, "extend", session.DefaultExtendMinutes, "minutes added by extend at check-in")
	rootCmd.Flags().BoolVar(&timerContext, "context", false, "propose sessions when a trigger app is in front")
	rootCmd.Flags().StringSliceVar(&timerApps, "trigger-app", nil, "trigger app title substring (repeatable)")
	rootCmd.Flags().DurationVar(&timerCooldown, "cooldown", trigger.DefaultCooldown, "minimum time between prompts for one app")
	rootCmd.Flags().DurationVar(&timerPoll, "poll", trigger.DefaultPollInterval, "foreground window poll interval")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lk, err := lock.Acquire(config.DefaultLockPath())
	if err != nil {
		if errors.Is(err, apperrors.ErrLocked) {
			return fmt.Errorf("another ikiflow timer is already running")
		}
		return err
	}
	defer func() {
		if rerr := lk.Release(); rerr != nil {
			logErrf("failed to release lock: %v\n", rerr)
		}
	}()

	st, err := prefs.Open(config.DefaultPrefsPath())
	if err != nil {
		return fmt.Errorf("failed to open prefs: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close prefs: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	applyIntConfig(cmd, "focus", &timerFocus, fileCfg.Timer.Focus)
	applyIntConfig(cmd, "break", &timerBreak, fileCfg.Timer.Break)
	applyIntConfig(cmd, "extend", &timerExtend, fileCfg.Timer.Extend)
	applyBoolConfig(cmd, "context", &timerContext, fileCfg.Context.Enabled)
	applySliceConfig(cmd, "trigger-app", &timerApps, fileCfg.Context.Apps)
	applyDurationConfig(cmd, "cooldown", &timerCooldown, fileCfg.Context.Cooldown)
	applyDurationConfig(cmd, "poll", &timerPoll, fileCfg.Context.Poll)
	applyPrefConfig(ctx, cmd, st, "focus", prefs.KeyLastFocus, &timerFocus)
	applyPrefConfig(ctx, cmd, st, "break", prefs.KeyLastBreak, &timerBreak)

	cfg := model.Config{
		FocusMinutes:    timerFocus,
		BreakMinutes:    timerBreak,
		ExtendMinutes:   timerExtend,
		ContextEnabled:  timerContext,
		TriggerApps:     timerApps,
		TriggerCooldown: timerCooldown,
		PollInterval:    timerPoll,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	hist, err := history.Open(config.DefaultHistoryPath(), clock.System{})
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	source := window.System{}
	rules := usage.DefaultRules().WithOverrides(appRules(fileCfg))
	machine := session.New(hist, usage.NewSampler(source, rules))

	var tr *trigger.Trigger
	if cfg.ContextEnabled && len(cfg.TriggerApps) > 0 {
		tr = trigger.New(ctx, trigger.Options{
			Apps:     cfg.TriggerApps,
			Cooldown: cfg.TriggerCooldown,
			FocusKey: prefs.KeyLastFocus,
			BreakKey: prefs.KeyLastBreak,
			Source:   source,
			Prefs:    st,
		})
	}

	model := tui.NewModel(tui.Options{
		Config:   cfg,
		Machine:  machine,
		Trigger:  tr,
		Presets:  st,
		Records:  hist,
		FocusKey: prefs.KeyLastFocus,
		BreakKey: prefs.KeyLastBreak,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
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

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the stats dashboard",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	hist, err := history.Open(config.DefaultHistoryPath(), nil)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	model := statsui.NewModel(hist, clock.System{})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print streak, week, month and top apps",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().IntVar(&summaryApps, "apps", defaultTopApps, "number of top apps to show")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	if summaryApps < 0 {
		return fmt.Errorf("--apps must be >= 0")
	}
	hist, err := history.Open(config.DefaultHistoryPath(), nil)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	records, err := hist.Load(context.Background())
	if err != nil {
		logErrf("failed to read history, showing empty stats: %v\n", err)
		records = []model.SessionRecord{}
	}
	return writeSummary(cmd.OutOrStdout(), records, time.Now(), summaryApps, 0)
}

func writeSummary(w io.Writer, records []model.SessionRecord, now time.Time, apps, width int) error {
	if err := stats.RenderSummary(w, stats.Summarize(records, now)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	if err := stats.RenderWeek(w, stats.WeekSeries(records, now), width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderMonth(w, now.Year(), now.Month(), stats.MonthMap(records, now.Year(), now.Month())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if apps == 0 {
		return nil
	}
	if err := stats.RenderTopApps(w, stats.TopApps(records, apps)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the session history",
	}
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the session history",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	export.Flags().StringVar(&exportFormat, "format", history.FormatJSON, "output format (json|yaml)")
	export.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	cmd.AddCommand(export)
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	switch format {
	case history.FormatJSON, history.FormatYAML, "yml":
	default:
		return fmt.Errorf("--format must be json or yaml")
	}
	hist, err := history.Open(config.DefaultHistoryPath(), nil)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	records, err := hist.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if exportOutput == "" {
		return history.Export(cmd.OutOrStdout(), records, format)
	}
	file, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}
	if err := history.Export(file, records, format); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to export history: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", exportOutput, err)
	}
	logErrf("Wrote %d sessions to %s\n", len(records), exportOutput)
	return nil
}

func appRules(cfg config.FileConfig) usage.Rules {
	rules := make(usage.Rules, 0, len(cfg.Apps.Rules))
	for _, r := range cfg.Apps.Rules {
		rules = append(rules, usage.Rule{Match: r.Match, Name: r.Name})
	}
	return rules
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applySliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

// applyPrefConfig prefers the last used value over config defaults unless
// the flag was given.
func applyPrefConfig(ctx context.Context, cmd *cobra.Command, st *prefs.Store, name, key string, target *int) {
	if cmd.Flags().Changed(name) {
		return
	}
	*target = st.IntOr(ctx, key, *target)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# ikiflow configuration
# Uncomment a value to enable it. CLI flags override config values.
# Focus and break fall back to the last used durations when set.

[timer]
# focus = %d              # Focus minutes
# break = %d               # Break minutes
# extend = %d              # Minutes added by extend at check-in

[context]
# enabled = false         # Propose a session when a trigger app is in front
# apps = ["Figma", "Visual Studio Code"]
# cooldown = %q         # Minimum time between prompts for one app
# poll = %q             # Foreground window poll interval

# Window title rules, checked before the built-in ones.
# [[apps.rule]]
# match = "obsidian"
# name = "Obsidian"
`,
		defaultFocus,
		defaultBreak,
		session.DefaultExtendMinutes,
		trigger.DefaultCooldown.String(),
		trigger.DefaultPollInterval.String(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.FocusMinutes <= 0 {
		return fmt.Errorf("--focus must be > 0")
	}
	if cfg.BreakMinutes < 0 {
		return fmt.Errorf("--break must be >= 0")
	}
	if cfg.ExtendMinutes <= 0 {
		return fmt.Errorf("--extend must be > 0")
	}
	if cfg.TriggerCooldown < 0 {
		return fmt.Errorf("--cooldown must be >= 0")
	}
	if cfg.ContextEnabled && cfg.PollInterval < time.Second {
		return fmt.Errorf("--poll must be at least 1s")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
