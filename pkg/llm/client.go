package llm

import (
	"context"
	"strings"
	"worldmon/internal/model"
)

type NewsItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Summary string `json:"summary,omitempty"`
}

type MarketQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Category      string  `json:"category,omitempty"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Sentiment     string  `json:"sentiment"`
}

type TechItem struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Score    int    `json:"score"`
	Comments int    `json:"comments"`
	IsHot    bool   `json:"is_hot"`
}

type TopicSection struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Sentiment string   `json:"sentiment"`
}

// MonitorOutput is the structured report the synthesis model must produce.
// Sections are pointers so a missing one is detectable instead of silently
// zero-valued.
type MonitorOutput struct {
	ExecutiveSummary string        `json:"executive_summary"`
	News             *TopicSection `json:"news"`
	Markets          *TopicSection `json:"markets"`
	Social           *TopicSection `json:"social"`
	TopNews          []NewsItem    `json:"top_news,omitempty"`
	MarketQuotes     []MarketQuote `json:"market_quotes,omitempty"`
	TopTech          []TechItem    `json:"top_tech,omitempty"`
	MarketSentiment  string        `json:"market_sentiment,omitempty"`
}

// Sections maps each recognized topic to its section, nil when absent.
func (o *MonitorOutput) Sections() map[string]*TopicSection {
	return map[string]*TopicSection{
		model.TopicNews:    o.News,
		model.TopicMarkets: o.Markets,
		model.TopicSocial:  o.Social,
	}
}

type ArabifyResult struct {
	OriginalText  string
	ArabifiedText string
	Note          string
	ModelUsed     string
}

// Tool is a named capability the synthesis model may call. Call returns a
// JSON payload; provider failures are already degraded inside the payload.
type Tool struct {
	Name        string
	Description string
	Call        func(ctx context.Context) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context) (*MonitorOutput, error)
}

type Arabifier interface {
	Arabify(ctx context.Context, text string) (*ArabifyResult, error)
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
