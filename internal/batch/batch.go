// Package batch orchestrates the generation modes: authoring fresh
// articles from the topic pool and backfilling images for articles
// that still carry placeholders or remote URLs.
package batch

import (
	"context"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/images"
	"github.com/yaadfeed/yaadfeed/internal/logger"
	"github.com/yaadfeed/yaadfeed/internal/metrics"
	"github.com/yaadfeed/yaadfeed/internal/ratelimit"
	"github.com/yaadfeed/yaadfeed/internal/store"
	"github.com/yaadfeed/yaadfeed/internal/textgen"
)

// Report summarizes one batch run.
type Report struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Items   []string `json:"items"`
}

// Runner executes batch jobs against the store.
type Runner struct {
	generator *textgen.Generator
	images    *images.Service
	store     store.Store
	limiter   *ratelimit.AIRateLimiter
	itemDelay time.Duration
}

func NewRunner(gen *textgen.Generator, imgs *images.Service, st store.Store, limiter *ratelimit.AIRateLimiter, itemDelay time.Duration) *Runner {
	return &Runner{
		generator: gen,
		images:    imgs,
		store:     st,
		limiter:   limiter,
		itemDelay: itemDelay,
	}
}

// Generate authors count articles from the topic pool. A failed item
// is logged and skipped; the run keeps going.
func (r *Runner) Generate(ctx context.Context, count int) (*Report, error) {
	started := time.Now()
	report := &Report{}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if r.limiter != nil && !r.limiter.CanUseText() {
			logger.Warn("text budget exhausted, stopping generation", "generated", report.Count)
			break
		}

		topic, category := r.generator.RandomTopic()
		logger.Info("generating article", "n", i+1, "total", count, "topic", topic)

		if r.limiter != nil {
			_ = r.limiter.UseText()
		}
		article := r.generator.Generate(ctx, topic, category)

		if r.images != nil {
			article.ImageURL = r.images.ImageFor(ctx, article.Title, article.Category, article.Keywords, article.Summary, false)
		} else {
			article.ImageURL = images.PlaceholderFor(article.Category)
		}

		created, err := r.store.Create(ctx, article)
		if err != nil {
			logger.Error("store article failed", "slug", article.Slug, "error", err)
			metrics.Global.IncrementErrors()
			continue
		}
		if created == nil {
			logger.Debug("generated article already exists", "slug", article.Slug)
			metrics.Global.IncrementSkipped()
			continue
		}

		report.Count++
		report.Items = append(report.Items, created.Slug)

		if r.itemDelay > 0 && i < count-1 {
			select {
			case <-time.After(r.itemDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
	}

	report.Success = true
	metrics.Global.RecordRunDuration(time.Since(started))
	metrics.Global.SetLastRun()
	logger.Info("generation run complete", "count", report.Count, "duration", time.Since(started))
	return report, nil
}

// UpdateImages regenerates images for articles whose image is
// missing, remote, or a placeholder.
func (r *Runner) UpdateImages(ctx context.Context, limit int) (*Report, error) {
	started := time.Now()
	report := &Report{}

	articles, err := r.store.NeedsImages(ctx, limit)
	if err != nil {
		return report, err
	}
	logger.Info("updating images", "candidates", len(articles))

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		path := ""
		if r.images != nil {
			path = r.images.ImageFor(ctx, a.Title, a.Category, a.Keywords, a.Summary, true)
		} else {
			path = images.PlaceholderFor(a.Category)
		}

		if path == a.ImageURL {
			continue
		}
		if err := r.store.UpdateImage(ctx, a.Slug, path); err != nil {
			logger.Error("update image failed", "slug", a.Slug, "error", err)
			metrics.Global.IncrementErrors()
			continue
		}

		report.Count++
		report.Items = append(report.Items, a.Slug)

		if r.itemDelay > 0 {
			select {
			case <-time.After(r.itemDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
	}

	report.Success = true
	metrics.Global.RecordRunDuration(time.Since(started))
	metrics.Global.SetLastRun()
	logger.Info("image update complete", "updated", report.Count, "duration", time.Since(started))
	return report, nil
}

// Prune removes articles older than the retention window.
func (r *Runner) Prune(ctx context.Context, days int) (int64, error) {
	deleted, err := r.store.DeleteOlderThan(ctx, days)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Info("pruned old articles", "deleted", deleted, "days", days)
	}
	return deleted, nil
}
