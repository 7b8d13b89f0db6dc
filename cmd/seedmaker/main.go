// Command seedmaker finds Stardew Valley seeds matching a declarative set
// of conditions, reports on known seeds, and serves the HTTP API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sdv-tools/seed-maker-go/internal/api"
	"github.com/sdv-tools/seed-maker-go/internal/finder"
	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/store"
)

var (
	verbose      bool
	gameDataPath string
	localeName   string
	steps        int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "seedmaker",
	Short: "Stardew Valley seed finder",
	Long: `seedmaker searches the 32-bit seed space for game seeds whose predicted
outcomes (weather, geodes, garbage cans, night events) match a declarative
configuration file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var findCmd = &cobra.Command{
	Use:   "find <config-file>",
	Short: "Search the seed space for matching seeds",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

var reportCmd = &cobra.Command{
	Use:   "report <config-file> <seed>",
	Short: "Explain what a known seed produces for a configuration",
	Args:  cobra.ExactArgs(2),
	RunE:  runReport,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP search API",
	RunE:  runServe,
}

func loadEnvironment() (*gamedata.GameData, *gamedata.Locale, error) {
	data := gamedata.Default()
	if gameDataPath != "" {
		loaded, err := gamedata.Load(gameDataPath)
		if err != nil {
			return nil, nil, err
		}
		data = loaded
	}
	locale, err := gamedata.NewLocale(data, localeName)
	if err != nil {
		return nil, nil, err
	}
	return data, locale, nil
}

func loadFinder(path string) (*finder.Finder, *gamedata.GameData, *gamedata.Locale, error) {
	data, locale, err := loadEnvironment()
	if err != nil {
		return nil, nil, nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := finder.ParseConfig(raw)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := finder.New(data, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return f, data, locale, nil
}

func runFind(cmd *cobra.Command, args []string) error {
	f, data, locale, err := loadFinder(args[0])
	if err != nil {
		return err
	}

	logger.Info("search started",
		zap.String("rng", string(f.Variant())),
		zap.Int("max_seeds", f.MaxSeeds()))
	start := time.Now()

	var seeds []int32
	total := int64(2147483647)
	for ev := range f.FindAsync(cmd.Context(), steps) {
		if !ev.Complete {
			fmt.Fprintf(os.Stderr, "\rSearching... %5.1f%%", 100*float64(ev.Processed)/float64(total))
			continue
		}
		fmt.Fprintln(os.Stderr)
		if ev.Err != nil {
			return ev.Err
		}
		if ev.Result.FirstErr != nil {
			logger.Warn("some candidates failed evaluation",
				zap.Uint64("failed", ev.Result.EvalErrors),
				zap.Error(ev.Result.FirstErr))
		}
		seeds = ev.Result.Seeds
	}

	rc := finder.ReportContext{Data: data, Locale: locale}
	for _, seed := range seeds {
		fmt.Printf("Seed: %d\n", seed)
		var buf strings.Builder
		if err := f.Report(&buf, rc, seed); err != nil {
			logger.Warn("report failed", zap.Int32("seed", seed), zap.Error(err))
			continue
		}
		fmt.Print(indent(buf.String()))
		fmt.Println()
	}

	logger.Info("search finished",
		zap.Int("seeds_found", len(seeds)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	f, data, locale, err := loadFinder(args[0])
	if err != nil {
		return err
	}
	seed, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid seed %q: %w", args[1], err)
	}
	rc := finder.ReportContext{Data: data, Locale: locale}
	var buf strings.Builder
	if err := f.Report(&buf, rc, int32(seed)); err != nil {
		return err
	}
	fmt.Printf("Seed: %d\n%s", seed, indent(buf.String()))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("load server config: %w", err)
	}
	if gameDataPath != "" {
		cfg.GameDataPath = gameDataPath
	}

	data := gamedata.Default()
	if cfg.GameDataPath != "" {
		if data, err = gamedata.Load(cfg.GameDataPath); err != nil {
			return err
		}
	}
	locale, err := gamedata.NewLocale(data, cfg.Locale)
	if err != nil {
		return err
	}

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	server := api.NewServer(db, data, locale, logger)
	httpServer := &http.Server{Addr: cfg.Addr, Handler: server.Routes()}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", cfg.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n") + "\n"
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&gameDataPath, "game-data", "", "path to a game data export (defaults to the embedded dataset)")
	rootCmd.PersistentFlags().StringVar(&localeName, "locale", "en-EN", "locale for report display names")
	findCmd.Flags().IntVar(&steps, "steps", 1000, "progress reporting resolution")

	rootCmd.AddCommand(findCmd, reportCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
