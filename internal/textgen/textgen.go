// Package textgen turns topics into full articles through a text
// provider, with a deterministic parser for the labeled response
// format and a complete fallback when the provider misbehaves.
package textgen

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/llm"
	"github.com/yaadfeed/yaadfeed/internal/logger"
	"github.com/yaadfeed/yaadfeed/internal/metrics"
	"github.com/yaadfeed/yaadfeed/internal/news"
)

const defaultAuthor = "YaadFeed Editorial Team"

// Categories that generated articles draw from.
var Categories = []string{
	"politics", "business", "sports", "entertainment", "health",
	"education", "culture", "music", "dancehall", "technology",
}

// Topics is the pool of story seeds for batch generation.
var Topics = []string{
	// Music and culture
	"Reggae Revival movement gaining international attention",
	"New dancehall riddim taking over the airwaves",
	"Jamaican artist collaborates with international superstar",
	"Bob Marley Museum unveils new exhibition",
	"Jamaica Music Conference announces lineup",
	"Dancehall Queen competition returns to Kingston",
	"Jamaican sound system culture documentary wins award",
	"Reggae artist wins Grammy nomination",
	"Skillibeng and Popcaan announce joint tour",
	"Shenseea signs major record deal",
	"Koffee headlines international reggae festival",

	// Caribbean and diaspora
	"UK dancehall scene explodes with new talent",
	"Canadian Caribbean artists dominate charts",
	"Trinidadian soca meets Jamaican dancehall collaboration",
	"Machel Montano and Sean Paul announce Caribbean unity concert",
	"Bunji Garlin brings soca energy to dancehall festival",
	"Stylo G represents UK at Jamaica Music Conference",
	"Admiral T brings French Caribbean flavor to reggae scene",

	// Afrobeats
	"Burna Boy announces Jamaica collaboration album",
	"Wizkid and Popcaan team up for Caribbean-African fusion",
	"Davido visits Jamaica to explore reggae roots",
	"Ghanaian dancehall artist Stonebwoy tours Caribbean",
	"Shatta Wale collaborates with Jamaican producers",
	"Afrobeats influence grows in Caribbean music scene",
	"Nigerian artists embrace reggae and dancehall sounds",

	// Sports
	"Jamaican sprinter breaks world record at Diamond League",
	"West Indies cricket team prepares for upcoming series",
	"Jamaica football team advances in World Cup qualifiers",
	"Young Jamaican boxer wins international championship",
	"Jamaica dominates at Pan American Games",
	"New athletics training facility opens in Kingston",
	"Jamaican swimmer qualifies for Olympics",

	// Business and economy
	"Jamaica Stock Exchange reaches all-time high",
	"New tech startup raises millions in funding",
	"Tourism numbers exceed pre-pandemic levels",
	"Jamaican coffee exports increase by 25%",
	"Digital payment adoption grows across the island",
	"Jamaican diaspora investment reaches record levels",
	"Music industry contributes billions to Jamaica economy",

	// Politics and society
	"Education reform bill passes in Parliament",
	"New healthcare initiatives launched nationwide",
	"Jamaica leads Caribbean climate change discussions",
	"Crime reduction strategies show positive results",
	"Youth empowerment programs expand island-wide",
	"Infrastructure development projects commence",

	// Culture and entertainment
	"Carnival celebrations break attendance records",
	"New Jamaican film premieres at international festival",
	"Cultural festival celebrates Jamaican heritage",
	"Jamaican cuisine festival attracts food tourists",
	"Art gallery showcases emerging Jamaican artists",
	"Jamaican fashion week features international designers",

	// Technology
	"Kingston tech hub attracts international startups",
	"Jamaican developers create breakthrough app",
	"Caribbean fintech revolution spreads across region",
	"Music streaming platform focuses on Caribbean content",
	"Digital healthcare solutions expand to rural areas",
	"Educational technology transforms Jamaican classrooms",
}

// Generator produces complete articles from topics.
type Generator struct {
	provider llm.TextProvider
	rng      *rand.Rand
}

func New(provider llm.TextProvider) *Generator {
	return &Generator{
		provider: provider,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RandomTopic picks a topic and category from the pools.
func (g *Generator) RandomTopic() (topic, category string) {
	return Topics[g.rng.Intn(len(Topics))], Categories[g.rng.Intn(len(Categories))]
}

// Generate produces an article for the topic. It never returns an
// error: any provider failure degrades to the fallback article.
func (g *Generator) Generate(ctx context.Context, topic, category string) *news.Article {
	if g.provider == nil {
		metrics.Global.IncrementTextFallbacks()
		return g.fallbackArticle(topic, category)
	}

	raw, err := g.provider.Complete(ctx, buildPrompt(topic, category))
	if err != nil {
		logger.Warn("text generation failed, using fallback", "topic", topic, "error", err)
		metrics.Global.IncrementTextFallbacks()
		return g.fallbackArticle(topic, category)
	}

	article := parseResponse(raw, topic, category)
	article.IsPopular = g.rng.Float64() > 0.7
	article.PublishedAt = time.Now()
	metrics.Global.IncrementTextGenerated()
	return article
}

func buildPrompt(topic, category string) string {
	return fmt.Sprintf(`Generate a complete Jamaican news article about: "%s"

Category: %s

Please structure your response EXACTLY as follows:

TITLE: [Write an engaging headline]

SUMMARY: [Write a 2-3 sentence summary]

KEYWORDS: [List 5-7 relevant keywords separated by commas]

CONTENT: [Write the full article content (400-600 words). Include:
- Strong lead paragraph
- Multiple body paragraphs with facts and quotes
- Jamaican context and perspective
- Engaging conclusion
- Use some Jamaican expressions naturally]

AUTHOR: [Choose a realistic Jamaican journalist name]

Requirements:
- Use professional journalism style
- Include realistic quotes from officials or experts
- Reference real Jamaican locations and institutions
- Maintain authenticity to Jamaican culture
- Write in present/recent past tense
- Include specific details and numbers where appropriate`, topic, category)
}

// parseResponse walks the labeled sections line by line. Any label
// the model omitted gets a default so the result is always complete.
func parseResponse(raw, topic, category string) *news.Article {
	article := &news.Article{Category: category}

	var contentLines []string
	inContent := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "TITLE:"):
			inContent = false
			article.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "TITLE:"))
		case strings.HasPrefix(trimmed, "SUMMARY:"):
			inContent = false
			article.Summary = strings.TrimSpace(strings.TrimPrefix(trimmed, "SUMMARY:"))
		case strings.HasPrefix(trimmed, "KEYWORDS:"):
			inContent = false
			for _, kw := range strings.Split(strings.TrimPrefix(trimmed, "KEYWORDS:"), ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					article.Keywords = append(article.Keywords, kw)
				}
			}
		case strings.HasPrefix(trimmed, "CONTENT:"):
			inContent = true
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "CONTENT:")); rest != "" {
				contentLines = append(contentLines, rest)
			}
		case strings.HasPrefix(trimmed, "AUTHOR:"):
			inContent = false
			article.Author = strings.TrimSpace(strings.TrimPrefix(trimmed, "AUTHOR:"))
		case inContent && trimmed != "":
			contentLines = append(contentLines, trimmed)
		}
	}

	article.Content = strings.Join(contentLines, "\n\n")
	applyDefaults(article, topic, category)
	article.Slug = news.Slugify(article.Title)
	article.ReadTime = news.ReadTime(article.Content)
	return article
}

func applyDefaults(article *news.Article, topic, category string) {
	if article.Title == "" {
		article.Title = topic
	}
	if article.Summary == "" {
		article.Summary = fmt.Sprintf("Latest developments in %s from Jamaica.", category)
	}
	if len(article.Keywords) == 0 {
		article.Keywords = []string{category, "jamaica", "news"}
	}
	if article.Author == "" {
		article.Author = defaultAuthor
	}
	if article.Content == "" {
		article.Content = fallbackContent(topic, category)
	}
}

func (g *Generator) fallbackArticle(topic, category string) *news.Article {
	content := fallbackContent(topic, category)
	return &news.Article{
		Title:       topic,
		Slug:        news.Slugify(topic),
		Summary:     fmt.Sprintf("Latest developments in %s from Jamaica's dynamic landscape.", category),
		Content:     content,
		Category:    category,
		Keywords:    []string{category, "jamaica", "news", "caribbean"},
		Author:      defaultAuthor,
		ReadTime:    news.ReadTime(content),
		PublishedAt: time.Now(),
		IsPopular:   g.rng.Float64() > 0.7,
	}
}

func fallbackContent(topic, category string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Jamaica continues to make headlines in the %s sector with %s.

This developing story represents the ongoing evolution of Jamaica's %s landscape, showcasing the island's dynamic spirit and forward-thinking approach.

Local experts and community leaders are closely monitoring these developments, which are expected to have significant impact on the broader Caribbean region.

"This is an exciting time for Jamaica," said a local official. "We're seeing tremendous growth and innovation across all sectors."

The initiative aligns with Jamaica's broader goals of sustainable development and community empowerment, reflecting the nation's commitment to progress while honoring its rich cultural heritage.

Further updates on this story will be provided as more information becomes available.

Stay tuned to YaadFeed for the latest news and developments from Jamaica and the Caribbean diaspora.`, category, topic, category))
}
