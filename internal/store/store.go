// Package store persists articles and artist mentions. The pipeline talks to
// the Store interface; Postgres backs it in production and MemoryStore backs
// it in tests.
package store

import (
	"context"

	"github.com/yaadfeed/yaadfeed/internal/news"
)

// Stats summarizes the stored corpus.
type Stats struct {
	Total         int64
	ByCategory    map[string]int64
	BySource      map[string]int64
	WithImages    int64
	WithoutImages int64
}

// Store is the content store consumed by the ingestion and generation
// pipelines.
type Store interface {
	// Exists reports whether an article with the same title or the same
	// canonical URL is already stored.
	Exists(ctx context.Context, title, url string) (bool, error)

	// Create inserts an article. A duplicate key (slug or url) is an
	// idempotent no-op: it returns (nil, nil), not an error.
	Create(ctx context.Context, a *news.Article) (*news.Article, error)

	// UpdateImage patches the asset reference of an existing article.
	UpdateImage(ctx context.Context, slug, imageURL string) error

	// IncrementViewCount bumps the view counter by one.
	IncrementViewCount(ctx context.Context, slug string) error

	// NeedsImages lists articles whose asset reference is missing, remote,
	// or a placeholder, up to limit.
	NeedsImages(ctx context.Context, limit int) ([]news.Article, error)

	// RecordArtistMention registers that an article mentioned an artist.
	// Callers treat failures as best-effort.
	RecordArtistMention(ctx context.Context, artist, slug string) error

	// DeleteOlderThan prunes articles published more than days ago and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, days int) (int64, error)

	// ClearAll removes every article and returns the number removed.
	ClearAll(ctx context.Context) (int64, error)

	// GetStats returns corpus statistics.
	GetStats(ctx context.Context) (*Stats, error)

	Close()
}
