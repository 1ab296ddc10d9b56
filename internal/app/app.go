// Package app wires configuration, providers, storage and the
// pipeline together and runs the mode selected on the command line.
package app

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yaadfeed/yaadfeed/internal/batch"
	"github.com/yaadfeed/yaadfeed/internal/config"
	"github.com/yaadfeed/yaadfeed/internal/images"
	"github.com/yaadfeed/yaadfeed/internal/ingest"
	"github.com/yaadfeed/yaadfeed/internal/llm"
	"github.com/yaadfeed/yaadfeed/internal/logger"
	"github.com/yaadfeed/yaadfeed/internal/metrics"
	"github.com/yaadfeed/yaadfeed/internal/ratelimit"
	"github.com/yaadfeed/yaadfeed/internal/rss"
	"github.com/yaadfeed/yaadfeed/internal/scraper"
	"github.com/yaadfeed/yaadfeed/internal/store"
	"github.com/yaadfeed/yaadfeed/internal/textgen"
)

const usage = `yaadfeed - news content pipeline

Usage:
  yaadfeed [flags]

Flags:
  --mode string   run mode: generate, update-images, scrape, stats, clear (default "generate")
  --count int     number of articles to generate or images to update (default 10)
  --yes           confirm destructive modes (clear)
  --help          show this help

Environment:
  OPENAI_API_KEY   required
  GEMINI_API_KEY   required when AI_PROVIDER=gemini
  DATABASE_URL     required
  AI_PROVIDER      openai or gemini (default "openai")
`

// Run executes one pipeline invocation and returns the exit code.
func Run() int {
	mode := flag.String("mode", "generate", "run mode: generate, update-images, scrape, stats, clear")
	count := flag.Int("count", 10, "number of articles to generate or images to update")
	yes := flag.Bool("yes", false, "confirm destructive modes")
	help := flag.Bool("help", false, "show help")
	flag.Parse()

	if *help {
		fmt.Print(usage)
		return 0
	}

	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("store unavailable", "error", err)
		metrics.Global.SetError(err.Error())
		return 1
	}
	defer st.Close()

	clients, err := llm.New(cfg)
	if err != nil {
		logger.Error("AI provider unavailable", "error", err)
		metrics.Global.SetError(err.Error())
		return 1
	}
	defer clients.Close()

	limiter := ratelimit.NewAIRateLimiter(cfg.MaxAIText, cfg.MaxAIImages)

	imgs := images.NewService(clients.Image, limiter, images.Options{
		Dir:           cfg.ImagesDir,
		PublicURL:     cfg.ImagesPublicURL,
		LockWait:      cfg.LockWaitDelay,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	})
	defer imgs.Close()

	runner := batch.NewRunner(textgen.New(clients.Text), imgs, st, limiter, cfg.ItemDelay)

	var runErr error
	switch *mode {
	case "generate":
		var report *batch.Report
		report, runErr = runner.Generate(ctx, *count)
		printJSON(report)
	case "update-images":
		var report *batch.Report
		report, runErr = runner.UpdateImages(ctx, *count)
		printJSON(report)
	case "scrape":
		runErr = runScrape(ctx, cfg, st, imgs)
	case "stats":
		var stats *store.Stats
		stats, runErr = st.GetStats(ctx)
		if runErr == nil {
			printJSON(stats)
		}
	case "clear":
		if !*yes {
			fmt.Fprintln(os.Stderr, "clear removes every article; pass --yes to confirm")
			return 2
		}
		var removed int64
		removed, runErr = st.ClearAll(ctx)
		if runErr == nil {
			logger.Info("store cleared", "removed", removed)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n\n%s", *mode, usage)
		return 2
	}

	if runErr != nil {
		logger.Error("run failed", "mode", *mode, "error", runErr)
		metrics.Global.SetError(runErr.Error())
		return 1
	}

	if cfg.PruneAfterRun {
		if _, err := runner.Prune(ctx, cfg.PruneDays); err != nil {
			logger.Warn("prune failed", "error", err)
		}
	}

	return 0
}

func runScrape(ctx context.Context, cfg *config.Config, st store.Store, imgs *images.Service) error {
	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return fmt.Errorf("load feeds config: %w", err)
	}

	pipeline := ingest.New(
		rss.NewFetcher(cfg.RequestTimeout),
		scraper.NewExtractor(cfg.RequestTimeout),
		st, imgs, cfg.ItemDelay)

	report, err := pipeline.Run(ctx, feeds, cfg.MaxPerFeed)
	if report != nil {
		printJSON(report)
	}
	return err
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
