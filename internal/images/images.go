// Package images maintains the content-addressed cache of generated
// article images. Every lookup resolves to a usable path: a cached
// file, a freshly generated one, or a category placeholder.
package images

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/cache"
	"github.com/yaadfeed/yaadfeed/internal/llm"
	"github.com/yaadfeed/yaadfeed/internal/logger"
	"github.com/yaadfeed/yaadfeed/internal/metrics"
	"github.com/yaadfeed/yaadfeed/internal/ratelimit"
	"github.com/yaadfeed/yaadfeed/internal/retry"
)

var knownCategories = map[string]bool{
	"sports": true, "politics": true, "business": true,
	"entertainment": true, "health": true, "education": true,
	"culture": true, "music": true, "dancehall": true,
	"general": true, "technology": true,
}

var musicTerms = []string{
	"dancehall", "reggae", "soca", "bashment", "riddim",
	"artist", "music", "song", "album", "concert", "festival",
	"vybz kartel", "shenseea", "spice", "skillibeng", "chronic law",
	"popcaan", "mavado", "beenie man", "bounty killer", "sean paul",
	"koffee", "protoje", "shaggy", "bob marley", "damian marley",
	"machel montano", "bunji garlin", "stylo g", "admiral t",
	"burna boy", "wizkid", "davido", "stonebwoy", "shatta wale",
	"afrobeats", "afro-fusion", "afropop", "amapiano", "reggaeton",
	"calypso", "zouk", "caribbean music", "jamaican music",
}

// Service generates, caches and serves article images.
type Service struct {
	provider  llm.ImageProvider
	limiter   *ratelimit.AIRateLimiter
	dir       string
	publicURL string
	lockWait  time.Duration

	retryCfg retry.Config

	mu         sync.Mutex
	generating map[string]bool

	memo   *cache.Cache
	client *http.Client
}

type Options struct {
	Dir           string
	PublicURL     string
	LockWait      time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func NewService(provider llm.ImageProvider, limiter *ratelimit.AIRateLimiter, opts Options) *Service {
	if opts.LockWait <= 0 {
		opts.LockWait = 3 * time.Second
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 2
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	return &Service{
		provider:   provider,
		limiter:    limiter,
		dir:        opts.Dir,
		publicURL:  strings.TrimRight(opts.PublicURL, "/"),
		lockWait:   opts.LockWait,
		retryCfg:   retry.Config{MaxAttempts: opts.RetryAttempts, Delay: opts.RetryDelay},
		generating: make(map[string]bool),
		memo:       cache.New(),
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Service) Close() {
	s.memo.Close()
}

// Filename derives the stable cache key for an article's image.
func Filename(title, category string, keywords []string) string {
	first := keywords
	if len(first) > 3 {
		first = first[:3]
	}
	content := fmt.Sprintf("%s-%s-%s", title, category, strings.Join(first, "-"))
	hash := fmt.Sprintf("%x", md5.Sum([]byte(content)))
	return fmt.Sprintf("%s-%s.jpg", category, hash[:12])
}

// ImageFor resolves an image for the article. It always returns a
// servable path; failures degrade to the category placeholder.
func (s *Service) ImageFor(ctx context.Context, title, category string, keywords []string, summary string, force bool) string {
	filename := Filename(title, category, keywords)

	if !force {
		if path, ok := s.cachedPath(filename); ok {
			logger.Debug("image cache hit", "file", filename)
			metrics.Global.IncrementImageCacheHits()
			if s.limiter != nil {
				s.limiter.RecordCacheHit()
			}
			return path
		}
	}

	if s.provider == nil {
		metrics.Global.IncrementImageFallbacks()
		return PlaceholderFor(category)
	}

	if s.limiter != nil && !s.limiter.CanUseImages() {
		logger.Warn("image budget exhausted, using placeholder", "file", filename)
		metrics.Global.IncrementImageFallbacks()
		return PlaceholderFor(category)
	}

	// Another goroutine may already be rendering this exact image.
	// Wait once, recheck the cache, and settle for the placeholder
	// rather than paying for a duplicate generation.
	if !s.acquire(filename) {
		select {
		case <-time.After(s.lockWait):
		case <-ctx.Done():
			return PlaceholderFor(category)
		}
		if path, ok := s.cachedPath(filename); ok {
			metrics.Global.IncrementImageCacheHits()
			return path
		}
		metrics.Global.IncrementImageFallbacks()
		return PlaceholderFor(category)
	}
	defer s.release(filename)

	path, err := s.generate(ctx, filename, title, category, keywords, summary)
	if err != nil {
		logger.Error("image generation failed", "file", filename, "error", err)
		metrics.Global.IncrementImageFallbacks()
		return PlaceholderFor(category)
	}

	metrics.Global.IncrementImagesGenerated()
	return path
}

func (s *Service) generate(ctx context.Context, filename, title, category string, keywords []string, summary string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create images directory: %w", err)
	}

	// CanUseImages ran before the lock; a concurrent generation may
	// have spent the last slot since, so the reservation itself decides.
	if s.limiter != nil {
		if err := s.limiter.UseImage(); err != nil {
			return "", err
		}
	}

	prompt := BuildPrompt(title, category, keywords, summary)
	logger.Info("generating image", "file", filename)

	var remoteURL string
	err := retry.WithRetry(ctx, s.retryCfg, func() error {
		url, err := s.provider.GenerateImage(ctx, prompt)
		if err != nil {
			return err
		}
		remoteURL = url
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := s.download(ctx, remoteURL, filename); err != nil {
		return "", err
	}

	s.memo.Set(filename, "1", memoTTL)
	return s.publicURL + "/" + filename, nil
}

// download fetches the rendered image and installs it atomically so a
// concurrent cache check never observes a partial file.
func (s *Service) download(ctx context.Context, url, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download image: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(s.dir, filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, filename)); err != nil {
		return fmt.Errorf("install image: %w", err)
	}

	logger.Debug("saved image", "file", filename)
	return nil
}

// cachedPath reports whether a complete cached image exists.
func (s *Service) cachedPath(filename string) (string, bool) {
	if _, ok := s.memo.Get(filename); ok {
		return s.publicURL + "/" + filename, true
	}

	info, err := os.Stat(filepath.Join(s.dir, filename))
	if err != nil || info.Size() == 0 {
		return "", false
	}

	s.memo.Set(filename, "1", memoTTL)
	return s.publicURL + "/" + filename, true
}

func (s *Service) acquire(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating[filename] {
		return false
	}
	s.generating[filename] = true
	return true
}

func (s *Service) release(filename string) {
	s.mu.Lock()
	delete(s.generating, filename)
	s.mu.Unlock()
}

// PlaceholderFor maps a category to its static placeholder path.
// Unknown categories collapse to the general placeholder.
func PlaceholderFor(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if !knownCategories[c] {
		c = "general"
	}
	return "/images/placeholder-" + c + ".jpg"
}

// IsMusicContent reports whether the article is about music, which
// selects the music prompt family over the category table.
func IsMusicContent(title, summary string, keywords []string) bool {
	content := strings.ToLower(title + " " + summary + " " + strings.Join(keywords, " "))
	for _, term := range musicTerms {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}

const memoTTL = 10 * time.Minute

const realisticBase = "realistic photography, natural lighting, professional quality, no cartoons, no illustrations, no artistic interpretations"

// BuildPrompt composes the rendering prompt from content type and category.
func BuildPrompt(title, category string, keywords []string, summary string) string {
	first := keywords
	if len(first) > 3 {
		first = first[:3]
	}
	keywordStr := strings.Join(first, ", ")
	lowTitle := strings.ToLower(title)

	if IsMusicContent(title, summary, keywords) {
		switch {
		case strings.Contains(lowTitle, "concert") || strings.Contains(lowTitle, "festival"):
			return fmt.Sprintf("Real jamaican music festival with authentic stage setup, genuine crowd of people, actual musicians performing, vibrant colorful lighting, tropical outdoor venue, %s, %s, documentary style photography", keywordStr, realisticBase)
		case strings.Contains(lowTitle, "album") || strings.Contains(lowTitle, "song"):
			return fmt.Sprintf("Authentic jamaican recording studio interior, real music equipment and mixing board, actual musician at work, professional lighting, modern studio environment, %s, %s, music industry photography", keywordStr, realisticBase)
		default:
			return fmt.Sprintf("Real jamaican dancehall scene, authentic caribbean music venue, actual performers and audience, natural vibrant atmosphere, genuine cultural setting, %s, %s, cultural documentation photography", keywordStr, realisticBase)
		}
	}

	switch strings.ToLower(category) {
	case "sports":
		return fmt.Sprintf("Authentic jamaican sports venue, real athletes in action, actual sporting event, genuine crowd atmosphere, professional sports photography, %s, %s, sports journalism quality", keywordStr, realisticBase)
	case "politics":
		return fmt.Sprintf("Real jamaican government building exterior, actual architectural structure, professional political environment, authentic caribbean architecture, formal institutional setting, %s, %s, news photography quality", keywordStr, realisticBase)
	case "business":
		return fmt.Sprintf("Authentic jamaican business district, real modern office buildings, actual professionals at work, genuine commercial environment, contemporary architecture, %s, %s, corporate photography quality", keywordStr, realisticBase)
	case "entertainment":
		return fmt.Sprintf("Real jamaican cultural event, authentic caribbean celebration, actual people enjoying festivities, genuine traditional atmosphere, vibrant natural colors, %s, %s, event photography quality", keywordStr, realisticBase)
	case "health":
		return fmt.Sprintf("Actual jamaican healthcare facility, real medical environment, authentic hospital or clinic interior, professional healthcare setting, clean modern facilities, %s, %s, medical documentation photography", keywordStr, realisticBase)
	case "education":
		return fmt.Sprintf("Real jamaican educational institution, authentic school or university campus, actual students and learning environment, genuine academic setting, tropical campus architecture, %s, %s, educational photography quality", keywordStr, realisticBase)
	case "culture":
		return fmt.Sprintf("Authentic jamaican cultural scene, real traditional arts and crafts, actual cultural practitioners, genuine heritage preservation, natural cultural setting, %s, %s, cultural documentation photography", keywordStr, realisticBase)
	case "technology":
		return fmt.Sprintf("Modern jamaican tech office, real computer equipment and workstations, actual tech professionals at work, contemporary digital environment, professional workspace, %s, %s, tech industry photography", keywordStr, realisticBase)
	default:
		return fmt.Sprintf("Beautiful authentic jamaican landscape, real tropical caribbean scenery, actual jamaican location, natural environmental setting, genuine island atmosphere, %s, %s, travel photography quality", keywordStr, realisticBase)
	}
}
