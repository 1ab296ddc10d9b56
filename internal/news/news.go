// Package news defines the normalized article shape and the pure text
// helpers (slug, summary, category, keywords) shared by the scrape and
// generate pipelines.
package news

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Article is a normalized unit of content, produced either from an external
// feed item or by the synthetic-content generator.
type Article struct {
	Title       string
	Slug        string
	Summary     string
	Content     string
	Category    string
	Source      string
	URL         string
	PublishedAt time.Time
	Author      string
	Tags        []string
	Keywords    []string
	IsPopular   bool
	ViewCount   int
	ReadTime    int
	ImageURL    string
	Artists     []string
}

const (
	MaxSlugLen      = 60
	MaxSummaryLen   = 200
	DefaultCategory = "general"
)

// category keyword tables, checked in order; first match wins.
var categoryTable = []struct {
	Name     string
	Keywords []string
}{
	{"sports", []string{
		"football", "cricket", "athletics", "track", "field", "olympic",
		"world cup", "reggae boyz", "netball", "basketball", "swimming",
		"boxing", "usain bolt", "shelly-ann", "athlete",
	}},
	{"entertainment", []string{
		"music", "reggae", "dancehall", "concert", "festival", "artist",
		"singer", "bob marley", "shaggy", "sean paul", "koffee", "spice",
		"popcaan", "skillibeng", "movie", "film", "celebrity",
	}},
	{"politics", []string{
		"government", "minister", "parliament", "election", "political",
		"policy", "pnp", "jlp", "constituency", "senator",
	}},
	{"business", []string{
		"economy", "business", "trade", "investment", "gdp", "financial",
		"bank", "tourism", "hotel", "export", "import", "economic",
		"market", "company", "corporate",
	}},
	{"culture", []string{
		"culture", "heritage", "tradition", "patois", "craft", "cuisine",
		"history", "independence", "emancipation",
	}},
	{"health", []string{
		"health", "hospital", "medical", "doctor", "pandemic", "vaccine",
		"disease", "treatment", "healthcare", "medicine", "clinic",
	}},
	{"education", []string{
		"school", "university", "education", "student", "teacher", "exam",
		"csec", "cape", "utech", "uwi", "academic",
	}},
}

var commonTags = []string{
	"jamaica", "kingston", "montego bay", "spanish town", "portmore",
	"reggae", "dancehall", "bob marley", "usain bolt", "blue mountains",
	"tourism", "economy", "government", "education", "health", "sports",
	"entertainment", "culture", "politics", "business",
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"day": true, "get": true, "has": true, "him": true, "his": true,
	"how": true, "its": true, "may": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "who": true, "did": true,
	"man": true, "men": true, "put": true, "say": true, "she": true,
	"too": true, "use": true, "this": true, "that": true, "with": true,
	"from": true, "have": true, "will": true, "been": true, "they": true,
	"their": true, "were": true, "said": true, "more": true, "about": true,
}

var (
	slugStripRe   = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRe       = regexp.MustCompile(`\s+`)
	hyphenRe      = regexp.MustCompile(`-+`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	nonWordRe     = regexp.MustCompile(`[^\w\s]`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
)

// Slugify derives a stable URL-safe slug from a title: lowercase, strip
// everything outside [a-z0-9 -], spaces to hyphens, collapse runs, trim,
// cap at MaxSlugLen.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLen {
		s = s[:MaxSlugLen]
		s = strings.Trim(s, "-")
	}
	return s
}

// Summarize greedily accumulates whole sentences until maxLen is reached,
// falling back to a hard truncation when no sentence boundary fits.
func Summarize(content string, maxLen int) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = MaxSummaryLen
	}

	var summary strings.Builder
	for _, sentence := range sentenceEndRe.Split(content, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if summary.Len()+len(sentence) > maxLen {
			break
		}
		summary.WriteString(sentence)
		summary.WriteString(". ")
	}

	if out := strings.TrimSpace(summary.String()); out != "" {
		return out
	}
	if len(content) > maxLen {
		return content[:maxLen] + "..."
	}
	return content
}

// Categorize scans the category table over lowercased title+content; the
// first category with any keyword hit wins, otherwise DefaultCategory.
func Categorize(title, content string) string {
	text := strings.ToLower(title) + " " + strings.ToLower(content)

	for _, cat := range categoryTable {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				return cat.Name
			}
		}
	}
	return DefaultCategory
}

// ExtractTags returns the common tags present in the text.
func ExtractTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, tag := range commonTags {
		if strings.Contains(lower, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ExtractKeywords returns up to limit keywords by descending frequency after
// stop-word and short-word filtering.
func ExtractKeywords(text string, limit int) []string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), "")
	words := strings.Fields(cleaned)

	frequency := map[string]int{}
	var order []string
	for _, word := range words {
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		if frequency[word] == 0 {
			order = append(order, word)
		}
		frequency[word]++
	}

	// Stable selection: sort by count, ties broken by first appearance.
	out := make([]string, 0, limit)
	for len(out) < limit {
		best, bestIdx := "", -1
		for i, w := range order {
			if w == "" {
				continue
			}
			if bestIdx == -1 || frequency[w] > frequency[best] {
				best, bestIdx = w, i
			}
		}
		if bestIdx == -1 {
			break
		}
		out = append(out, best)
		order[bestIdx] = ""
	}
	return out
}

// CleanHTML strips markup and decodes the common entities, collapsing the
// result to single-spaced plain text. Best-effort, not a validating parser.
func CleanHTML(html string) string {
	if html == "" {
		return ""
	}
	s := scriptStyleRe.ReplaceAllString(html, "")
	s = tagRe.ReplaceAllString(s, " ")
	replacer := strings.NewReplacer(
		"&quot;", `"`,
		"&apos;", "'",
		"&#39;", "'",
		"&lt;", "<",
		"&gt;", ">",
		"&nbsp;", " ",
		"&amp;", "&",
	)
	s = replacer.Replace(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ReadTime estimates reading minutes at 250 words per minute, minimum 1
// for non-empty content.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / 250.0))
}
