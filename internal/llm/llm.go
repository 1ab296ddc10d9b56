// Package llm wraps the hosted model providers behind small
// text and image interfaces so the pipeline never talks to a
// vendor SDK directly.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/config"
)

// TextProvider produces free-form text from a prompt.
type TextProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ImageProvider renders a prompt and returns a URL to the result.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Clients bundles the providers selected by configuration.
type Clients struct {
	Text  TextProvider
	Image ImageProvider

	closers []func()
}

// New builds providers from config. Image generation always goes
// through OpenAI; text goes through whichever provider is selected.
func New(cfg *config.Config) (*Clients, error) {
	c := &Clients{}

	oa := NewOpenAI(cfg.OpenAIAPIKey, cfg.RequestTimeout)
	c.Image = oa

	switch cfg.AIProvider {
	case "openai":
		c.Text = oa
	case "gemini":
		g, err := NewGemini(cfg.GeminiAPIKey, cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		c.Text = g
		c.closers = append(c.closers, g.Close)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}

	return c, nil
}

func (c *Clients) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 60 * time.Second
	}
	return context.WithTimeout(ctx, d)
}
