package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/yaadfeed/yaadfeed/internal/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36"

// Feed describes one external source.
type Feed struct {
	URL     string `yaml:"url"`
	Name    string `yaml:"name"`
	BaseURL string `yaml:"baseUrl"`
}

// FeedsConfig is the YAML config structure:
//
// feeds:
//   - url: https://...
//     name: jamaica-gleaner
//     baseUrl: https://...
type FeedsConfig struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds reads the feed list from a YAML file.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// Item is one entry pulled out of a feed, markup already stripped.
type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	Published   time.Time
}

// Fetcher downloads and parses feeds. Zero value is not usable; use
// NewFetcher.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads one feed and parses its items. It tries gofeed first and
// falls back to a loose tag scanner so one malformed feed cannot sink the
// run.
func (f *Fetcher) Fetch(ctx context.Context, feed Feed) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", feed.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", feed.Name, err)
	}

	return ParseItems(string(body), feed), nil
}

// FetchAll downloads every feed, skipping the unreachable ones. Returns the
// combined items and the names of sources that answered.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []Feed) ([]Item, []string) {
	var all []Item
	var sources []string

	for _, feed := range feeds {
		items, err := f.Fetch(ctx, feed)
		if err != nil {
			logger.Warn("feed unreachable, skipping", "feed", feed.Name, "error", err)
			continue
		}
		all = append(all, items...)
		sources = append(sources, feed.Name)
		logger.Info("feed loaded", "feed", feed.Name, "items", len(items))
	}

	logger.Info("feeds processed", "ok", len(sources), "total", len(feeds))
	return all, sources
}

// ParseItems parses raw feed XML, preferring gofeed and degrading to the
// loose scanner on parse failure.
func ParseItems(raw string, feed Feed) []Item {
	parser := gofeed.NewParser()
	parsed, err := parser.ParseString(raw)
	if err == nil {
		return fromGofeed(parsed)
	}

	logger.Warn("feed parse failed, trying loose scan", "feed", feed.Name, "error", err)
	return looseParse(raw)
}

func fromGofeed(parsed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil || strings.TrimSpace(it.Title) == "" || strings.TrimSpace(it.Link) == "" {
			continue
		}
		item := Item{
			Title:       cleanTitle(it.Title),
			Link:        strings.TrimSpace(it.Link),
			Description: it.Description,
			Content:     it.Content,
		}
		if item.Content == "" {
			item.Content = it.Description
		}
		if it.Author != nil {
			item.Author = strings.TrimSpace(it.Author.Name)
		}
		if it.PublishedParsed != nil {
			item.Published = *it.PublishedParsed
		} else {
			item.Published = time.Now()
		}
		items = append(items, item)
	}
	return items
}

var (
	itemRe  = regexp.MustCompile(`(?is)<item[^>]*>(.*?)</item>`)
	cdataRe = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*)\]\]>\s*$`)
)

// looseParse extracts items by tag scanning. It tolerates broken XML by
// skipping items it cannot make sense of.
func looseParse(raw string) []Item {
	var items []Item
	for _, m := range itemRe.FindAllStringSubmatch(raw, -1) {
		body := m[1]

		title := cleanTitle(extractTag(body, "title"))
		link := strings.TrimSpace(extractTag(body, "link"))
		if title == "" || link == "" {
			continue
		}

		item := Item{
			Title:       title,
			Link:        link,
			Description: extractTag(body, "description"),
			Content:     extractTag(body, "content:encoded"),
			Author:      strings.TrimSpace(extractTag(body, "author")),
			Published:   time.Now(),
		}
		if item.Content == "" {
			item.Content = item.Description
		}
		if pub := extractTag(body, "pubDate"); pub != "" {
			for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
				if t, err := time.Parse(layout, strings.TrimSpace(pub)); err == nil {
					item.Published = t
					break
				}
			}
		}
		items = append(items, item)
	}
	return items
}

func extractTag(xml, tag string) string {
	re := regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `[^>]*>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	m := re.FindStringSubmatch(xml)
	if m == nil {
		return ""
	}
	return stripCDATA(m[1])
}

func stripCDATA(s string) string {
	if m := cdataRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func cleanTitle(s string) string {
	s = stripCDATA(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
