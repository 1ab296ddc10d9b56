package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsProcessed    int64
	ArticlesAdded     int64
	DuplicatesSkipped int64
	ItemErrors        int64
	ImagesGenerated   int64
	ImageCacheHits    int64
	ImageFallbacks    int64
	TextGenerated     int64
	TextFallbacks     int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsProcessed++
}

func (m *Metrics) IncrementAdded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesAdded++
}

func (m *Metrics) IncrementSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemErrors++
}

func (m *Metrics) IncrementImagesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImagesGenerated++
}

func (m *Metrics) IncrementImageCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImageCacheHits++
}

func (m *Metrics) IncrementImageFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImageFallbacks++
}

func (m *Metrics) IncrementTextGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextGenerated++
}

func (m *Metrics) IncrementTextFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextFallbacks++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"items_processed":      m.ItemsProcessed,
		"articles_added":       m.ArticlesAdded,
		"duplicates_skipped":   m.DuplicatesSkipped,
		"item_errors":          m.ItemErrors,
		"images_generated":     m.ImagesGenerated,
		"image_cache_hits":     m.ImageCacheHits,
		"image_fallbacks":      m.ImageFallbacks,
		"text_generated":       m.TextGenerated,
		"text_fallbacks":       m.TextFallbacks,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"avg_run_duration_ms":  m.AverageRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
