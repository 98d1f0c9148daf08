package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"milp-runner/internal/cache"
	"milp-runner/internal/config"
	"milp-runner/internal/filewalker"
	"milp-runner/internal/lp"
	"milp-runner/internal/report"
	"milp-runner/internal/solver"
	"milp-runner/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "milp-runner",
		Short: "Parse algebraic MILP/LP problem files and solve them via a solver engine",
		Long: `milp-runner reads textual linear and mixed-integer optimization problems
("3x + 2y - z <= 10" notation), converts them into solver-ready models,
dispatches them to a solver engine, and writes solution reports.`,
	}

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(batchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <input-file> <output-file>",
		Short: "Parse a problem file, solve it, and write a solution report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			useDual, _ := cmd.Flags().GetBool("dual")
			lpOnly, _ := cmd.Flags().GetBool("lp-only")
			format, _ := cmd.Flags().GetString("format")
			timeLimit, _ := cmd.Flags().GetFloat64("time-limit")
			return runSolve(args[0], args[1], useDual, lpOnly, format, timeLimit)
		},
	}

	cmd.Flags().Bool("dual", false, "Use the dual simplex method (default is primal)")
	cmd.Flags().Bool("lp-only", false, "Solve the continuous relaxation, ignoring integrality")
	cmd.Flags().String("format", report.FormatText, "Report format: text, json or tsv")
	cmd.Flags().Float64("time-limit", 0, "Solver time limit in seconds (0 = no limit)")

	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse and validate problem files without solving",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, _ := cmd.Flags().GetBool("dump")
			return runCheck(args, dump)
		},
	}

	cmd.Flags().Bool("dump", false, "Print the canonical rendering of each model")

	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Solve every model file under a directory tree",
		Long: `Discovers *.lp and *.milp files under the input directory, solves them
concurrently, and mirrors solution reports into the output directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			useDual, _ := cmd.Flags().GetBool("dual")
			format, _ := cmd.Flags().GetString("format")
			return runBatch(args[0], args[1], useDual, format)
		},
	}

	cmd.Flags().Bool("dual", false, "Use the dual simplex method (default is primal)")
	cmd.Flags().String("format", report.FormatText, "Report format: text, json or tsv")

	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// initCache connects the optional Postgres-backed solution cache. Cache
// trouble is never fatal: a solve proceeds without caching.
func initCache(ctx context.Context, cfg *config.Config) (*cache.SolutionCache, *pgxpool.Pool) {
	if !cfg.CacheEnabled {
		return nil, nil
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("Solution cache unavailable, continuing without it")
		return nil, nil
	}
	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		log.Warn().Err(err).Msg("Solution cache unreachable, continuing without it")
		return nil, nil
	}

	solutionCache := cache.New(pgPool)
	if err := solutionCache.EnsureSchema(ctx); err != nil {
		pgPool.Close()
		log.Warn().Err(err).Msg("Solution cache schema failed, continuing without it")
		return nil, nil
	}
	if err := solutionCache.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload solution cache")
	}

	log.Info().Msg("Connected to PostgreSQL solution cache")
	return solutionCache, pgPool
}

// cacheKey extends the canonical model text with the solve mode: the
// relaxation of a MIP has a different solution than the MIP itself.
func cacheKey(modelText string, opts solver.Options) string {
	if opts.MIP {
		return modelText
	}
	return modelText + "// relaxation\n"
}

// runSolve handles the `solve` command.
func runSolve(inputPath, outputPath string, useDual, lpOnly bool, format string, timeLimit float64) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	model, err := lp.ParseFile(inputPath)
	if err != nil {
		return err
	}
	if err := model.Validate(); err != nil {
		return fmt.Errorf("validate model: %w", err)
	}

	log.Info().
		Str("input", inputPath).
		Int("variables", model.NumVars()).
		Int("constraints", model.NumConstraints()).
		Bool("mip", model.IsMIP()).
		Msg("Model parsed")

	opts := solver.Options{
		UseDual: useDual,
		MIP:     model.IsMIP() && !lpOnly,
	}
	if timeLimit > 0 {
		opts.TimeLimit = time.Duration(timeLimit * float64(time.Second))
	}

	solutionCache, pgPool := initCache(ctx, cfg)
	if pgPool != nil {
		defer pgPool.Close()
	}

	modelText := model.Format()
	key := cacheKey(modelText, opts)

	var sol *solver.Solution
	if solutionCache != nil {
		if cached, ok := solutionCache.Get(ctx, key); ok {
			log.Info().Msg("Solution served from cache")
			sol = cached
		}
	}

	if sol == nil {
		engine := solver.NewClient(cfg.SolverURL, cfg.SolverAPIKey, cfg.RequestTimeout)
		sol, err = engine.Solve(ctx, model, opts)
		if err != nil {
			return fmt.Errorf("solve: %w", err)
		}
		if solutionCache != nil {
			if err := solutionCache.Set(ctx, key, sol); err != nil {
				log.Warn().Err(err).Msg("Failed to cache solution")
			}
		}
	}

	if err := report.WriteFile(outputPath, format, model, sol); err != nil {
		return err
	}

	log.Info().
		Str("status", string(sol.Status)).
		Float64("objective", sol.Objective).
		Str("output", outputPath).
		Msg("Solve complete")

	return nil
}

// runCheck handles the `check` command.
func runCheck(paths []string, dump bool) error {
	for _, path := range paths {
		model, err := lp.ParseFile(path)
		if err != nil {
			return err
		}
		if err := model.Validate(); err != nil {
			return fmt.Errorf("validate %s: %w", path, err)
		}

		log.Info().
			Str("file", path).
			Int("variables", model.NumVars()).
			Int("constraints", model.NumConstraints()).
			Bool("mip", model.IsMIP()).
			Msg("Model OK")

		if dump {
			fmt.Print(model.Format())
		}
	}
	return nil
}

// reportExt maps a report format to its file extension.
func reportExt(format string) string {
	switch format {
	case report.FormatJSON:
		return ".json"
	case report.FormatTSV:
		return ".tsv"
	default:
		return ".sol"
	}
}

// runBatch handles the `batch` command.
func runBatch(inputDir, outputDir string, useDual bool, format string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	w := filewalker.NewWalker()
	entries, err := w.Walk(inputDir)
	if err != nil {
		return fmt.Errorf("walk input directory: %w", err)
	}
	if len(entries) == 0 {
		log.Warn().Str("dir", inputDir).Msg("No model files found")
		return nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	inputAbs, _ := filepath.Abs(inputDir)
	outputAbs, _ := filepath.Abs(outputDir)

	solutionCache, pgPool := initCache(ctx, cfg)
	if pgPool != nil {
		defer pgPool.Close()
	}

	engine := solver.NewClient(cfg.SolverURL, cfg.SolverAPIKey, cfg.RequestTimeout)

	// Caps concurrent solver calls; parsing and report writing run at full
	// pool width.
	semaphore := make(chan struct{}, cfg.MaxConcurrentSolves)

	solvePool := worker.NewPool[filewalker.FileEntry, string](cfg.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) (string, error) {
			model, err := lp.ParseFile(entry.Path)
			if err != nil {
				return "", err
			}
			if err := model.Validate(); err != nil {
				return "", fmt.Errorf("validate %s: %w", entry.Path, err)
			}

			opts := solver.Options{UseDual: useDual, MIP: model.IsMIP()}
			key := cacheKey(model.Format(), opts)

			var sol *solver.Solution
			if solutionCache != nil {
				if cached, ok := solutionCache.Get(ctx, key); ok {
					sol = cached
				}
			}

			if sol == nil {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case semaphore <- struct{}{}: // Acquire.
				}
				sol, err = engine.Solve(ctx, model, opts)
				<-semaphore // Release.
				if err != nil {
					return "", fmt.Errorf("solve %s: %w", entry.Path, err)
				}
				if solutionCache != nil {
					if err := solutionCache.Set(ctx, key, sol); err != nil {
						log.Warn().Err(err).Msg("Failed to cache solution")
					}
				}
			}

			relPath, err := filepath.Rel(inputAbs, entry.Path)
			if err != nil {
				return "", fmt.Errorf("compute relative path: %w", err)
			}
			outPath := filepath.Join(outputAbs,
				strings.TrimSuffix(relPath, filepath.Ext(relPath))+reportExt(format))

			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return "", fmt.Errorf("create output directory: %w", err)
			}
			if err := report.WriteFile(outPath, format, model, sol); err != nil {
				return "", err
			}

			return outPath, nil
		},
	)

	results := solvePool.Execute(ctx, entries)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	log.Info().
		Int("files", len(entries)).
		Int("failed", failed).
		Str("output", outputDir).
		Msg("Batch complete")

	if failed == len(entries) {
		return fmt.Errorf("all %d models failed", failed)
	}
	return nil
}
