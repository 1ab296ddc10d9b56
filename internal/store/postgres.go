package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yaadfeed/yaadfeed/internal/logger"
	"github.com/yaadfeed/yaadfeed/internal/news"
)

// Postgres is the durable Store implementation.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, pings and initializes the schema.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pg := &Postgres{pool: pool}
	if err := pg.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.Info("content store connected")
	return pg, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		slug VARCHAR(80) UNIQUE NOT NULL,
		summary TEXT,
		content TEXT,
		category VARCHAR(50),
		source VARCHAR(100),
		url TEXT UNIQUE NOT NULL,
		published_at TIMESTAMPTZ NOT NULL,
		author TEXT,
		tags TEXT[],
		keywords TEXT[],
		is_popular BOOLEAN NOT NULL DEFAULT FALSE,
		view_count INTEGER NOT NULL DEFAULT 0,
		read_time INTEGER NOT NULL DEFAULT 0,
		image_url TEXT,
		artists TEXT[],
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_articles_title ON articles(title);
	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
	CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);

	CREATE TABLE IF NOT EXISTS artist_mentions (
		id BIGSERIAL PRIMARY KEY,
		artist TEXT NOT NULL,
		article_slug VARCHAR(80) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (artist, article_slug)
	);

	CREATE INDEX IF NOT EXISTS idx_artist_mentions_artist ON artist_mentions(artist);
	`

	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *Postgres) Exists(ctx context.Context, title, url string) (bool, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE title = $1 OR url = $2`,
		title, url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return count > 0, nil
}

func (p *Postgres) Create(ctx context.Context, a *news.Article) (*news.Article, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO articles
			(title, slug, summary, content, category, source, url,
			 published_at, author, tags, keywords, is_popular, view_count,
			 read_time, image_url, artists)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT DO NOTHING
		RETURNING slug`,
		a.Title, a.Slug, a.Summary, a.Content, a.Category, a.Source, a.URL,
		a.PublishedAt, a.Author, a.Tags, a.Keywords, a.IsPopular, a.ViewCount,
		a.ReadTime, a.ImageURL, a.Artists)

	var slug string
	if err := row.Scan(&slug); err != nil {
		if err == pgx.ErrNoRows {
			// Duplicate slug or url: idempotent no-op.
			logger.Debug("article already exists", "slug", a.Slug)
			return nil, nil
		}
		return nil, fmt.Errorf("insert article: %w", err)
	}

	created := *a
	return &created, nil
}

func (p *Postgres) UpdateImage(ctx context.Context, slug, imageURL string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE articles SET image_url = $1, updated_at = NOW() WHERE slug = $2`,
		imageURL, slug)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	return nil
}

func (p *Postgres) IncrementViewCount(ctx context.Context, slug string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE articles SET view_count = view_count + 1, updated_at = NOW() WHERE slug = $1`,
		slug)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (p *Postgres) NeedsImages(ctx context.Context, limit int) ([]news.Article, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := p.pool.Query(ctx, `
		SELECT title, slug, summary, category, keywords, COALESCE(image_url, '')
		FROM articles
		WHERE image_url IS NULL
		   OR image_url = ''
		   OR image_url LIKE 'http%'
		   OR image_url LIKE '%placeholder%'
		ORDER BY published_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query articles needing images: %w", err)
	}
	defer rows.Close()

	var out []news.Article
	for rows.Next() {
		var a news.Article
		if err := rows.Scan(&a.Title, &a.Slug, &a.Summary, &a.Category, &a.Keywords, &a.ImageURL); err != nil {
			logger.Warn("scan article row", "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) RecordArtistMention(ctx context.Context, artist, slug string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO artist_mentions (artist, article_slug)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		artist, slug)
	if err != nil {
		return fmt.Errorf("record artist mention: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM articles WHERE published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune old articles: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) ClearAll(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM articles`)
	if err != nil {
		return 0, fmt.Errorf("clear articles: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByCategory: make(map[string]int64),
		BySource:   make(map[string]int64),
	}

	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE image_url IS NOT NULL AND image_url <> '')
		FROM articles`).Scan(&stats.Total, &stats.WithImages)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	stats.WithoutImages = stats.Total - stats.WithImages

	rows, err := p.pool.Query(ctx,
		`SELECT COALESCE(category, ''), COUNT(*) FROM articles GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err == nil {
			stats.ByCategory[category] = count
		}
	}

	srows, err := p.pool.Query(ctx,
		`SELECT COALESCE(source, ''), COUNT(*) FROM articles GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var source string
		var count int64
		if err := srows.Scan(&source, &count); err == nil {
			stats.BySource[source] = count
		}
	}

	return stats, nil
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
