package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/news"
	"github.com/yaadfeed/yaadfeed/internal/rss"
	"github.com/yaadfeed/yaadfeed/internal/scraper"
	"github.com/yaadfeed/yaadfeed/internal/store"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>Shenseea announces island tour</title>
    <link>%s/articles/shenseea-tour</link>
    <description>%s</description>
    <pubDate>Mon, 02 Jan 2023 15:04:05 +0000</pubDate>
  </item>
  <item>
    <title>Already Stored Story</title>
    <link>%s/articles/already-stored</link>
    <description>This one is a duplicate and must be skipped.</description>
  </item>
</channel>
</rss>`

func longDescription() string {
	return strings.TrimSpace(strings.Repeat("The dancehall star revealed a full slate of tour dates across the island. ", 12))
}

func testServer(t *testing.T, description string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feed" {
			fmt.Fprintf(w, feedTemplate, srv.URL, description, srv.URL)
			return
		}
		w.Write([]byte(`<html><body><article>
			<p>First paragraph of the full article body with plenty of tour detail.</p>
			<p>Second paragraph quoting the artist about the upcoming shows.</p>
			<p>Third paragraph covering ticket information and venues.</p>
			<p>Fourth paragraph with closing notes.</p>
		</article></body></html>`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(st store.Store) *Pipeline {
	return New(rss.NewFetcher(5*time.Second), scraper.NewExtractor(5*time.Second), st, nil, 0)
}

func TestRun_AddsSkipsAndCounts(t *testing.T) {
	srv := testServer(t, longDescription())
	st := store.NewMemory()

	// Pre-seed the duplicate.
	st.Create(context.Background(), &news.Article{
		Title:       "Already Stored Story",
		Slug:        "already-stored-story",
		URL:         srv.URL + "/articles/already-stored",
		PublishedAt: time.Now(),
	})

	p := newPipeline(st)
	report, err := p.Run(context.Background(), []rss.Feed{{URL: srv.URL + "/feed", Name: "test-feed"}}, 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Added != 1 {
		t.Errorf("added = %d, want 1", report.Added)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", report.Skipped)
	}
	if report.Errors != 0 {
		t.Errorf("errors = %d, want 0", report.Errors)
	}
	if len(report.Sources) != 1 || report.Sources[0] != "test-feed" {
		t.Errorf("sources = %v", report.Sources)
	}

	articles := st.Articles()
	if len(articles) != 2 {
		t.Fatalf("store has %d articles, want 2", len(articles))
	}
}

func TestRun_NewArticleIsNormalized(t *testing.T) {
	srv := testServer(t, longDescription())
	st := store.NewMemory()

	p := newPipeline(st)
	if _, err := p.Run(context.Background(), []rss.Feed{{URL: srv.URL + "/feed", Name: "test-feed"}}, 10); err != nil {
		t.Fatal(err)
	}

	var got *news.Article
	for _, a := range st.Articles() {
		if a.Title == "Shenseea announces island tour" {
			got = &a
		}
	}
	if got == nil {
		t.Fatal("new article not stored")
	}

	if got.Slug != "shenseea-announces-island-tour" {
		t.Errorf("slug = %q", got.Slug)
	}
	if got.Category != "entertainment" {
		t.Errorf("category = %q", got.Category)
	}
	if got.Source != "test-feed" {
		t.Errorf("source = %q", got.Source)
	}
	if got.Summary == "" || got.ReadTime < 1 {
		t.Errorf("summary/readtime missing: %q %d", got.Summary, got.ReadTime)
	}
	if !strings.Contains(got.ImageURL, "placeholder") {
		t.Errorf("without an image service a placeholder is expected, got %q", got.ImageURL)
	}
	found := false
	for _, name := range got.Artists {
		if name == "Shenseea" {
			found = true
		}
	}
	if !found {
		t.Errorf("artist mention not linked: %v", got.Artists)
	}
	if len(st.Mentions("Shenseea")) != 1 {
		t.Errorf("mention rows = %d, want 1", len(st.Mentions("Shenseea")))
	}
}

func TestRun_ShortTeaserGetsEnriched(t *testing.T) {
	srv := testServer(t, "Short teaser.")
	st := store.NewMemory()

	p := newPipeline(st)
	if _, err := p.Run(context.Background(), []rss.Feed{{URL: srv.URL + "/feed", Name: "test-feed"}}, 10); err != nil {
		t.Fatal(err)
	}

	for _, a := range st.Articles() {
		if a.Title != "Shenseea announces island tour" {
			continue
		}
		if !strings.Contains(a.Content, "Second paragraph quoting the artist") {
			t.Errorf("content was not enriched from the article page: %q", a.Content)
		}
		return
	}
	t.Fatal("article not stored")
}

func TestRun_UnreachableFeedIsNotFatal(t *testing.T) {
	st := store.NewMemory()
	p := newPipeline(st)

	report, err := p.Run(context.Background(), []rss.Feed{{URL: "http://127.0.0.1:1/feed", Name: "dead"}}, 10)
	if err != nil {
		t.Fatalf("unreachable feed must not fail the run: %v", err)
	}
	if len(report.Sources) != 0 || report.Added != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_MaxPerFeed(t *testing.T) {
	srv := testServer(t, longDescription())
	st := store.NewMemory()

	p := newPipeline(st)
	report, err := p.Run(context.Background(), []rss.Feed{{URL: srv.URL + "/feed", Name: "test-feed"}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if report.Added+report.Skipped != 1 {
		t.Errorf("processed %d items, want 1", report.Added+report.Skipped)
	}
}
