// Package ingest drives the scrape half of the pipeline: pull feeds,
// deduplicate, enrich thin items, link artists, attach images and
// persist.
package ingest

import (
	"context"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/artists"
	"github.com/yaadfeed/yaadfeed/internal/images"
	"github.com/yaadfeed/yaadfeed/internal/logger"
	"github.com/yaadfeed/yaadfeed/internal/metrics"
	"github.com/yaadfeed/yaadfeed/internal/news"
	"github.com/yaadfeed/yaadfeed/internal/rss"
	"github.com/yaadfeed/yaadfeed/internal/scraper"
	"github.com/yaadfeed/yaadfeed/internal/store"
)

// Content shorter than this is considered a teaser worth a full
// page fetch before persisting.
const minContentLen = 600

// Report summarizes one ingestion run.
type Report struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  int      `json:"errors"`
	Sources []string `json:"sources"`
}

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	fetcher   *rss.Fetcher
	extractor *scraper.Extractor
	store     store.Store
	images    *images.Service
	itemDelay time.Duration
}

func New(fetcher *rss.Fetcher, extractor *scraper.Extractor, st store.Store, imgs *images.Service, itemDelay time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		store:     st,
		images:    imgs,
		itemDelay: itemDelay,
	}
}

// Run pulls every feed, processes each item and returns the counts.
// Individual item failures are counted, never fatal.
func (p *Pipeline) Run(ctx context.Context, feeds []rss.Feed, maxPerFeed int) (*Report, error) {
	report := &Report{}

	for _, feed := range feeds {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		items, err := p.fetcher.Fetch(ctx, feed)
		if err != nil {
			logger.Warn("feed unreachable, skipping", "feed", feed.Name, "error", err)
			continue
		}
		report.Sources = append(report.Sources, feed.Name)

		if maxPerFeed > 0 && len(items) > maxPerFeed {
			items = items[:maxPerFeed]
		}

		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			metrics.Global.IncrementProcessed()

			added, err := p.processItem(ctx, feed, item)
			switch {
			case err != nil:
				logger.Error("item failed", "feed", feed.Name, "title", item.Title, "error", err)
				metrics.Global.IncrementErrors()
				report.Errors++
			case added:
				metrics.Global.IncrementAdded()
				report.Added++
			default:
				metrics.Global.IncrementSkipped()
				report.Skipped++
			}

			if p.itemDelay > 0 {
				select {
				case <-time.After(p.itemDelay):
				case <-ctx.Done():
					return report, ctx.Err()
				}
			}
		}
	}

	logger.Info("ingestion run complete",
		"added", report.Added,
		"skipped", report.Skipped,
		"errors", report.Errors,
		"sources", len(report.Sources))
	return report, nil
}

// processItem returns whether the item was added. A false return with
// nil error means the item was a duplicate or unusable.
func (p *Pipeline) processItem(ctx context.Context, feed rss.Feed, item rss.Item) (bool, error) {
	title := news.CleanHTML(item.Title)
	if title == "" || item.Link == "" {
		return false, nil
	}

	exists, err := p.store.Exists(ctx, title, item.Link)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Debug("duplicate item", "title", title)
		return false, nil
	}

	article := p.buildArticle(ctx, feed, item, title)

	if p.images != nil {
		article.ImageURL = p.images.ImageFor(ctx, article.Title, article.Category, article.Keywords, article.Summary, false)
	} else {
		article.ImageURL = images.PlaceholderFor(article.Category)
	}

	created, err := p.store.Create(ctx, article)
	if err != nil {
		return false, err
	}
	if created == nil {
		// Lost the race to another writer.
		return false, nil
	}

	p.linkArtists(ctx, created)
	return true, nil
}

func (p *Pipeline) buildArticle(ctx context.Context, feed rss.Feed, item rss.Item, title string) *news.Article {
	content := news.CleanHTML(item.Content)
	if content == "" {
		content = news.CleanHTML(item.Description)
	}

	// Thin teaser: try the article page itself.
	if len(content) < minContentLen && p.extractor != nil {
		if full, err := p.extractor.Extract(ctx, item.Link); err == nil && len(full.Content) > len(content) {
			content = full.Content
		} else if err != nil {
			logger.Debug("full page fetch failed", "url", item.Link, "error", err)
		}
	}

	category := news.Categorize(title, content)
	published := item.Published
	if published.IsZero() {
		published = time.Now()
	}

	author := news.CleanHTML(item.Author)
	if author == "" {
		author = feed.Name
	}

	article := &news.Article{
		Title:       title,
		Slug:        news.Slugify(title),
		Summary:     news.Summarize(content, news.MaxSummaryLen),
		Content:     content,
		Category:    category,
		Source:      feed.Name,
		URL:         item.Link,
		PublishedAt: published,
		Author:      author,
		Tags:        news.ExtractTags(title + " " + content),
		Keywords:    news.ExtractKeywords(title+" "+content, 10),
		ReadTime:    news.ReadTime(content),
		Artists:     artists.ExtractMentions(title + " " + content),
	}
	return article
}

// linkArtists records mentions best effort; a failed write never
// fails the item.
func (p *Pipeline) linkArtists(ctx context.Context, article *news.Article) {
	for _, name := range article.Artists {
		if err := p.store.RecordArtistMention(ctx, name, article.Slug); err != nil {
			logger.Warn("record artist mention failed", "artist", name, "slug", article.Slug, "error", err)
		}
	}
}
