// teamtrack tracks a team's work intervals and turns them into
// productivity reports, served over a TUI, a JSON API or the CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/teamtrack/internal/analytics"
	"github.com/sadopc/teamtrack/internal/config"
	"github.com/sadopc/teamtrack/internal/export"
	"github.com/sadopc/teamtrack/internal/server"
	"github.com/sadopc/teamtrack/internal/store"
	"github.com/sadopc/teamtrack/internal/tui"
)

var (
	version   = "0.1.0"
	cfgFile   string
	logLevel  string
	logFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "teamtrack",
	Short: "Team time tracking and productivity reports",
	Long: `teamtrack logs who worked on what and when, and derives reports
from those intervals: daily summaries, per-project efficiency and
completion, per-member productivity and consistency, and team-wide
work patterns.

Running teamtrack without a subcommand opens the TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return runServe(addr)
	},
}

var reportCmd = &cobra.Command{
	Use:       "report <summary|projects|users|patterns>",
	Short:     "Print a report as JSON",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"summary", "projects", "users", "patterns"},
	RunE: func(cmd *cobra.Command, args []string) error {
		rng, _ := cmd.Flags().GetString("range")
		sortKey, _ := cmd.Flags().GetString("sort")
		projectID, _ := cmd.Flags().GetInt64("project")
		userID, _ := cmd.Flags().GetInt64("user")
		return runReport(args[0], rng, sortKey, projectID, userID)
	},
}

var exportCmd = &cobra.Command{
	Use:       "export <intervals|summary>",
	Short:     "Export raw intervals or a summary report to a file",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"intervals", "summary"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		rng, _ := cmd.Flags().GetString("range")
		return runExport(args[0], format, out, rng)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("teamtrack %s\n", version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/teamtrack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	serveCmd.Flags().String("addr", "", "listen address (overrides config)")

	reportCmd.Flags().String("range", "week", "report window (day, week, month, quarter, year)")
	reportCmd.Flags().String("sort", "hours", "sort key (hours, efficiency, completion, productivity, consistency, name)")
	reportCmd.Flags().Int64("project", 0, "drill into one project (projects report only)")
	reportCmd.Flags().Int64("user", 0, "drill into one member (users report only)")

	exportCmd.Flags().StringP("format", "f", "csv", "export format (csv, json)")
	exportCmd.Flags().StringP("out", "o", "", "output path (default: teamtrack-<what>-<date>.<format>)")
	exportCmd.Flags().String("range", "week", "summary window (day, week, month, quarter, year)")

	rootCmd.AddCommand(tuiCmd, serveCmd, reportCmd, exportCmd, versionCmd)
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(cfg, "teamtrack", "config.yaml")
	}
	return config.Load(path)
}

func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(s, cfg.Location())
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runServe(addrOverride string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := cfg.ListenAddr
	if addrOverride != "" {
		addr = addrOverride
	}

	logger := newLogger()
	engine := analytics.NewEngine(s.Analytics(), cfg.Location())
	srv := server.New(engine, logger, cfg.Location(), cfg.RateLimit, cfg.RateBurst)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting report API", "addr", addr)
	return srv.ListenAndServe(ctx, addr)
}

func runReport(kind, rng, sortKey string, projectID, userID int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	loc := cfg.Location()
	engine := analytics.NewEngine(s.Analytics(), loc)
	w := analytics.WindowForRange(analytics.Range(rng), time.Now(), loc)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var rep any
	switch kind {
	case "summary":
		rep, err = engine.Summary(ctx, w, analytics.Filters{})
	case "projects":
		if projectID > 0 {
			rep, err = engine.ProjectDetail(ctx, w, projectID)
		} else {
			rep, err = engine.Projects(ctx, w, analytics.Filters{}, analytics.SortKey(sortKey))
		}
	case "users":
		if userID > 0 {
			rep, err = engine.UserDetail(ctx, w, userID)
		} else {
			rep, err = engine.Users(ctx, w, analytics.Filters{}, analytics.SortKey(sortKey))
		}
	case "patterns":
		rep, err = engine.Patterns(ctx, w, analytics.Filters{})
	default:
		return fmt.Errorf("unknown report %q", kind)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func runExport(what, format, out, rng string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	if out == "" {
		out = fmt.Sprintf("teamtrack-%s-%s.%s", what, time.Now().Format("2006-01-02"), format)
	}

	switch what {
	case "intervals":
		intervals, err := s.ListIntervals(store.IntervalFilter{})
		if err != nil {
			return err
		}
		users := make(map[int64]*store.User)
		ulist, err := s.ListUsers(true)
		if err != nil {
			return err
		}
		for i := range ulist {
			users[ulist[i].ID] = &ulist[i]
		}
		projects := make(map[int64]*store.Project)
		plist, err := s.ListProjects(true)
		if err != nil {
			return err
		}
		for i := range plist {
			projects[plist[i].ID] = &plist[i]
		}

		if format == "csv" {
			err = export.IntervalsToCSV(intervals, users, projects, out)
		} else {
			err = export.IntervalsToJSON(intervals, users, projects, out)
		}
		if err != nil {
			return err
		}

	case "summary":
		loc := cfg.Location()
		engine := analytics.NewEngine(s.Analytics(), loc)
		w := analytics.WindowForRange(analytics.Range(rng), time.Now(), loc)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rep, err := engine.Summary(ctx, w, analytics.Filters{})
		if err != nil {
			return err
		}
		if format == "csv" {
			err = export.SummaryToCSV(rep, out)
		} else {
			err = export.SummaryToJSON(rep, out)
		}
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown export %q", what)
	}

	fmt.Printf("exported to %s\n", out)
	return nil
}
