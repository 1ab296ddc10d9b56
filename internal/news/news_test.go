package news

import (
	"strings"
	"testing"
)

func TestSlugify_Basic(t *testing.T) {
	got := Slugify("Reggae Revival Movement Gaining International Attention!")
	want := "reggae-revival-movement-gaining-international-attention"
	if got != want {
		t.Errorf("Slugify = %q, want %q", got, want)
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	title := "Jamaica's Economy & Tourism — What's Next?"
	first := Slugify(title)
	for i := 0; i < 5; i++ {
		if got := Slugify(title); got != first {
			t.Fatalf("Slugify not deterministic: %q vs %q", got, first)
		}
	}
}

func TestSlugify_StripsAndCollapses(t *testing.T) {
	got := Slugify("  Vybz   Kartel -- releases  NEW  album!!  ")
	want := "vybz-kartel-releases-new-album"
	if got != want {
		t.Errorf("Slugify = %q, want %q", got, want)
	}
}

func TestSlugify_MaxLength(t *testing.T) {
	long := strings.Repeat("reggae music ", 20)
	got := Slugify(long)
	if len(got) > MaxSlugLen {
		t.Errorf("slug too long: %d chars: %q", len(got), got)
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Errorf("slug has dangling hyphen: %q", got)
	}
}

func TestSummarize_WholeSentences(t *testing.T) {
	content := "Kingston hosted the festival. Thousands attended over two days. " +
		strings.Repeat("More detail follows in the body paragraphs. ", 20)
	got := Summarize(content, 120)
	if !strings.HasPrefix(got, "Kingston hosted the festival.") {
		t.Errorf("summary should start with first sentence, got %q", got)
	}
	if len(got) > 130 {
		t.Errorf("summary too long: %d chars", len(got))
	}
}

func TestSummarize_FallbackTruncation(t *testing.T) {
	content := strings.Repeat("a", 500) // no sentence boundary
	got := Summarize(content, 100)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected hard truncation with ellipsis, got %q", got)
	}
	if len(got) != 103 {
		t.Errorf("expected 103 chars, got %d", len(got))
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize("   ", 100); got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
}

func TestCategorize_PriorityOrder(t *testing.T) {
	// Mentions both sports and politics terms; sports is checked first.
	got := Categorize("Minister opens new athletics stadium", "The government funded the track and field facility.")
	if got != "sports" {
		t.Errorf("Categorize = %q, want sports", got)
	}
}

func TestCategorize_Default(t *testing.T) {
	if got := Categorize("Weather update", "Sunny skies across the island today."); got != DefaultCategory {
		t.Errorf("Categorize = %q, want %q", got, DefaultCategory)
	}
}

func TestCategorize_Entertainment(t *testing.T) {
	if got := Categorize("New dancehall riddim drops", ""); got != "entertainment" {
		t.Errorf("Categorize = %q, want entertainment", got)
	}
}

func TestExtractKeywords_FrequencyOrder(t *testing.T) {
	text := "reggae reggae reggae festival festival kingston"
	got := ExtractKeywords(text, 3)
	want := []string{"reggae", "festival", "kingston"}
	if len(got) != len(want) {
		t.Fatalf("got %d keywords %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractKeywords_FiltersStopAndShortWords(t *testing.T) {
	got := ExtractKeywords("the and for are big cat dog festival", 10)
	for _, kw := range got {
		if len(kw) <= 3 {
			t.Errorf("short word leaked into keywords: %q", kw)
		}
		if stopWords[kw] {
			t.Errorf("stop word leaked into keywords: %q", kw)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	in := `<p>Jamaica&#39;s   tourism <b>grows</b></p><script>alert(1)</script>`
	got := CleanHTML(in)
	want := "Jamaica's tourism grows"
	if got != want {
		t.Errorf("CleanHTML = %q, want %q", got, want)
	}
}

func TestReadTime(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 0},
		{1, 1},
		{250, 1},
		{251, 2},
		{600, 3},
	}
	for _, tc := range cases {
		content := strings.TrimSpace(strings.Repeat("word ", tc.words))
		if got := ReadTime(content); got != tc.want {
			t.Errorf("ReadTime(%d words) = %d, want %d", tc.words, got, tc.want)
		}
	}
}
