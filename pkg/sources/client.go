package sources

import (
	"context"
	"fmt"
	"log/slog"
)

// Item is one normalized entry from a provider. Only the fields a provider
// actually fills are serialized.
type Item struct {
	Title         string  `json:"title"`
	URL           string  `json:"url,omitempty"`
	Source        string  `json:"source,omitempty"`
	Summary       string  `json:"summary,omitempty"`
	Score         int     `json:"score,omitempty"`
	Comments      int     `json:"num_comments,omitempty"`
	Domain        string  `json:"domain,omitempty"`
	Symbol        string  `json:"symbol,omitempty"`
	Price         float64 `json:"price,omitempty"`
	Change        float64 `json:"change,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`
	Hot           bool    `json:"is_hot,omitempty"`
}

// Result is the normalized payload handed to the synthesis agent.
type Result struct {
	Source string `json:"source"`
	Items  []Item `json:"items"`
	Count  int    `json:"count"`
	Note   string `json:"note,omitempty"`
}

type Client interface {
	Fetch(ctx context.Context) ([]Item, error)
	Name() string
}

// FetchResult runs a client and absorbs its failure: a provider error
// becomes an empty result with a note, never an error for the caller.
func FetchResult(ctx context.Context, c Client) Result {
	items, err := c.Fetch(ctx)
	if err != nil {
		slog.Error("source fetch failed", "source", c.Name(), "error", err)
		return Result{Source: c.Name(), Items: []Item{}, Note: "fetch failed: " + err.Error()}
	}
	if items == nil {
		items = []Item{}
	}
	return Result{Source: c.Name(), Items: items, Count: len(items)}
}

type unconfigured struct {
	name string
}

// Unconfigured stands in for a provider whose credentials are absent, so the
// matching tool degrades instead of disappearing.
func Unconfigured(name string) Client {
	return &unconfigured{name: name}
}

func (u *unconfigured) Name() string {
	return u.name
}

func (u *unconfigured) Fetch(ctx context.Context) ([]Item, error) {
	return nil, fmt.Errorf("%s credentials not configured", u.name)
}
