package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

const redditUserAgent = "worldmon/1.0 (personal monitoring bot)"

var newsSubreddits = []string{"news", "worldnews", "technews"}

// RedditClient reads the public hot listings of a set of news subreddits.
// No credentials required.
type RedditClient struct {
	httpClient *http.Client
	subreddits []string
}

func NewRedditClient() *RedditClient {
	return &RedditClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		subreddits: newsSubreddits,
	}
}

func (c *RedditClient) Name() string {
	return "reddit_news"
}

// Fetch collects hot posts across the subreddits. A single subreddit failing
// is logged and skipped; Fetch errors only when every subreddit failed.
func (c *RedditClient) Fetch(ctx context.Context) ([]Item, error) {
	var items []Item
	var failures int

	for _, subreddit := range c.subreddits {
		posts, err := c.fetchSubreddit(ctx, subreddit)
		if err != nil {
			slog.Error("error fetching subreddit", "subreddit", subreddit, "error", err)
			failures++
			continue
		}
		items = append(items, posts...)
	}

	if failures == len(c.subreddits) {
		return nil, fmt.Errorf("all %d subreddits failed", failures)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if len(items) > 20 {
		items = items[:20]
	}

	return items, nil
}

func (c *RedditClient) fetchSubreddit(ctx context.Context, subreddit string) ([]Item, error) {
	url := fmt.Sprintf("https://www.reddit.com/r/%s/hot.json?limit=15", subreddit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit r/%s returned %d", subreddit, resp.StatusCode)
	}

	var raw redditListing
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("reddit decode: %w", err)
	}

	items := make([]Item, 0, len(raw.Data.Children))
	for _, child := range raw.Data.Children {
		p := child.Data
		if p.Stickied {
			continue
		}

		items = append(items, Item{
			Source:   "reddit/r/" + subreddit,
			Title:    p.Title,
			URL:      p.URL,
			Score:    p.Score,
			Comments: p.NumComments,
			Domain:   p.Domain,
		})
	}

	return items, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Domain      string `json:"domain"`
	Stickied    bool   `json:"stickied"`
}
