package images

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/ratelimit"
)

type fakeProvider struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (f *fakeProvider) GenerateImage(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.url, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, provider *fakeProvider) *Service {
	t.Helper()
	s := NewService(provider, nil, Options{
		Dir:        t.TempDir(),
		PublicURL:  "/images/generated",
		LockWait:   50 * time.Millisecond,
		RetryDelay: 10 * time.Millisecond,
	})
	t.Cleanup(s.Close)
	return s
}

func TestFilename_StableAndDistinct(t *testing.T) {
	keywords := []string{"reggae", "festival", "kingston", "extra"}
	first := Filename("Sumfest returns", "entertainment", keywords)
	if got := Filename("Sumfest returns", "entertainment", keywords); got != first {
		t.Errorf("filename not stable: %q vs %q", got, first)
	}

	if !strings.HasPrefix(first, "entertainment-") || !strings.HasSuffix(first, ".jpg") {
		t.Errorf("unexpected filename shape: %q", first)
	}
	// category-<12 hex>.jpg
	hash := strings.TrimSuffix(strings.TrimPrefix(first, "entertainment-"), ".jpg")
	if len(hash) != 12 {
		t.Errorf("hash length = %d, want 12: %q", len(hash), first)
	}

	other := Filename("Sumfest cancelled", "entertainment", keywords)
	if other == first {
		t.Errorf("different titles produced the same filename: %q", first)
	}

	// Only the first three keywords participate.
	same := Filename("Sumfest returns", "entertainment", []string{"reggae", "festival", "kingston", "different"})
	if same != first {
		t.Errorf("fourth keyword changed the filename: %q vs %q", same, first)
	}
}

func TestImageFor_GeneratesThenHitsCache(t *testing.T) {
	srv := imageServer(t)
	provider := &fakeProvider{url: srv.URL + "/img.jpg"}
	s := newTestService(t, provider)

	ctx := context.Background()
	path := s.ImageFor(ctx, "Sumfest returns", "entertainment", []string{"reggae"}, "", false)
	if !strings.HasPrefix(path, "/images/generated/entertainment-") {
		t.Fatalf("unexpected path %q", path)
	}

	filename := Filename("Sumfest returns", "entertainment", []string{"reggae"})
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		t.Fatalf("image file not written: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("file content = %q", data)
	}

	again := s.ImageFor(ctx, "Sumfest returns", "entertainment", []string{"reggae"}, "", false)
	if again != path {
		t.Errorf("cache hit returned %q, want %q", again, path)
	}
	if provider.callCount() != 1 {
		t.Errorf("provider called %d times, want 1", provider.callCount())
	}
}

func TestImageFor_ForceRegenerates(t *testing.T) {
	srv := imageServer(t)
	provider := &fakeProvider{url: srv.URL + "/img.jpg"}
	s := newTestService(t, provider)

	ctx := context.Background()
	s.ImageFor(ctx, "Story", "culture", nil, "", false)
	s.ImageFor(ctx, "Story", "culture", nil, "", true)
	if provider.callCount() != 2 {
		t.Errorf("provider called %d times, want 2 with force", provider.callCount())
	}
}

func TestImageFor_DownloadFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	provider := &fakeProvider{url: srv.URL + "/gone.jpg"}
	s := newTestService(t, provider)

	path := s.ImageFor(context.Background(), "Story", "sports", nil, "", false)
	if path != "/images/placeholder-sports.jpg" {
		t.Errorf("path = %q, want sports placeholder", path)
	}

	// No partial or temp file may survive a failed download.
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir not empty after failed download: %v", entries)
	}
}

func TestGenerate_ExhaustedImageBudget(t *testing.T) {
	srv := imageServer(t)
	provider := &fakeProvider{url: srv.URL + "/img.jpg"}
	limiter := ratelimit.NewAIRateLimiter(0, 1)
	if err := limiter.UseImage(); err != nil {
		t.Fatalf("spending the only slot: %v", err)
	}

	s := NewService(provider, limiter, Options{
		Dir:        t.TempDir(),
		PublicURL:  "/images/generated",
		RetryDelay: 10 * time.Millisecond,
	})
	t.Cleanup(s.Close)

	filename := Filename("Story", "sports", nil)
	if _, err := s.generate(context.Background(), filename, "Story", "sports", nil, ""); err == nil {
		t.Fatal("generate succeeded with no image budget left")
	}
	if provider.callCount() != 0 {
		t.Errorf("provider called %d times, want 0 once the budget is spent", provider.callCount())
	}
	if _, err := os.Stat(filepath.Join(s.dir, filename)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("image file written despite exhausted budget: %v", err)
	}
}

func TestImageFor_ProviderFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	s := newTestService(t, provider)

	path := s.ImageFor(context.Background(), "Story", "sports", nil, "", false)
	if path != "/images/placeholder-sports.jpg" {
		t.Errorf("path = %q, want sports placeholder", path)
	}
}

func TestImageFor_NilProviderFallsBack(t *testing.T) {
	s := NewService(nil, nil, Options{Dir: t.TempDir(), PublicURL: "/images/generated"})
	defer s.Close()

	path := s.ImageFor(context.Background(), "Story", "health", nil, "", false)
	if path != "/images/placeholder-health.jpg" {
		t.Errorf("path = %q", path)
	}
}

func TestPlaceholderFor_UnknownCategory(t *testing.T) {
	if got := PlaceholderFor("astrology"); got != "/images/placeholder-general.jpg" {
		t.Errorf("got %q", got)
	}
	if got := PlaceholderFor("Sports"); got != "/images/placeholder-sports.jpg" {
		t.Errorf("got %q", got)
	}
	if got := PlaceholderFor(""); got != "/images/placeholder-general.jpg" {
		t.Errorf("got %q", got)
	}
}

func TestIsMusicContent(t *testing.T) {
	if !IsMusicContent("New dancehall riddim drops", "", nil) {
		t.Error("dancehall title should be music content")
	}
	if !IsMusicContent("Surprise show announced", "Burna Boy lands in Kingston", nil) {
		t.Error("artist name in summary should be music content")
	}
	if IsMusicContent("Parliament passes budget", "Tax measures announced", nil) {
		t.Error("politics should not be music content")
	}
}

func TestBuildPrompt_SelectsFamily(t *testing.T) {
	music := BuildPrompt("Reggae festival lights up Kingston", "entertainment", []string{"reggae"}, "")
	if !strings.Contains(music, "music festival") {
		t.Errorf("festival title should use the festival prompt: %q", music)
	}

	sports := BuildPrompt("National trials begin", "sports", nil, "")
	if !strings.Contains(sports, "sports venue") {
		t.Errorf("sports category should use the sports prompt: %q", sports)
	}

	general := BuildPrompt("Island life", "unheard-of", nil, "")
	if !strings.Contains(general, "jamaican landscape") {
		t.Errorf("unknown category should use the landscape prompt: %q", general)
	}
}

func TestImageFor_ConcurrentSameImage(t *testing.T) {
	srv := imageServer(t)
	provider := &fakeProvider{url: srv.URL + "/img.jpg"}
	s := newTestService(t, provider)

	var wg sync.WaitGroup
	paths := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i] = s.ImageFor(context.Background(), "Race Story", "sports", nil, "", false)
		}(i)
	}
	wg.Wait()

	for _, p := range paths {
		if p == "" {
			t.Fatal("empty path from concurrent call")
		}
		if !strings.HasPrefix(p, "/images/") {
			t.Errorf("unservable path %q", p)
		}
	}
	if provider.callCount() > 1 {
		t.Errorf("provider called %d times for the same image, want 1", provider.callCount())
	}
}
