package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/news"
)

// Memory is an in-process Store used in tests and dry runs.
type Memory struct {
	mu       sync.Mutex
	articles []news.Article
	mentions map[string]map[string]bool // artist -> slugs
}

func NewMemory() *Memory {
	return &Memory{mentions: make(map[string]map[string]bool)}
}

func (m *Memory) Exists(_ context.Context, title, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.Title == title || a.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) Create(_ context.Context, a *news.Article) (*news.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.articles {
		if existing.Slug == a.Slug || existing.URL == a.URL {
			return nil, nil
		}
	}
	m.articles = append(m.articles, *a)
	created := *a
	return &created, nil
}

func (m *Memory) UpdateImage(_ context.Context, slug, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.articles {
		if m.articles[i].Slug == slug {
			m.articles[i].ImageURL = imageURL
		}
	}
	return nil
}

func (m *Memory) IncrementViewCount(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.articles {
		if m.articles[i].Slug == slug {
			m.articles[i].ViewCount++
		}
	}
	return nil
}

func (m *Memory) NeedsImages(_ context.Context, limit int) ([]news.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	var out []news.Article
	for _, a := range m.articles {
		if len(out) >= limit {
			break
		}
		if a.ImageURL == "" ||
			strings.HasPrefix(a.ImageURL, "http") ||
			strings.Contains(a.ImageURL, "placeholder") {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) RecordArtistMention(_ context.Context, artist, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mentions[artist] == nil {
		m.mentions[artist] = make(map[string]bool)
	}
	m.mentions[artist][slug] = true
	return nil
}

func (m *Memory) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -days)
	var kept []news.Article
	var deleted int64
	for _, a := range m.articles {
		if a.PublishedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	m.articles = kept
	return deleted, nil
}

func (m *Memory) ClearAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.articles))
	m.articles = nil
	return n, nil
}

func (m *Memory) GetStats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &Stats{
		ByCategory: make(map[string]int64),
		BySource:   make(map[string]int64),
	}
	for _, a := range m.articles {
		stats.Total++
		stats.ByCategory[a.Category]++
		stats.BySource[a.Source]++
		if a.ImageURL != "" {
			stats.WithImages++
		}
	}
	stats.WithoutImages = stats.Total - stats.WithImages
	return stats, nil
}

// Articles returns a copy of everything stored, for assertions.
func (m *Memory) Articles() []news.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]news.Article, len(m.articles))
	copy(out, m.articles)
	return out
}

// Mentions reports the slugs recorded for an artist.
func (m *Memory) Mentions(artist string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for slug := range m.mentions[artist] {
		out = append(out, slug)
	}
	return out
}

func (m *Memory) Close() {}
