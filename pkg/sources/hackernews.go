package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

const hnAPIBase = "https://hacker-news.firebaseio.com/v0"

// hot threshold: stories above this score get the is_hot flag
const hnHotScore = 200

// HackerNewsClient fetches the current top stories from the official
// HackerNews API.
type HackerNewsClient struct {
	httpClient *http.Client
}

func NewHackerNewsClient() *HackerNewsClient {
	return &HackerNewsClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HackerNewsClient) Name() string {
	return "hackernews"
}

func (c *HackerNewsClient) Fetch(ctx context.Context) ([]Item, error) {
	ids, err := c.fetchTopStoryIDs(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > 30 {
		ids = ids[:30]
	}

	// independent story lookups, fetched concurrently
	results := make([]*Item, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			results[i] = c.fetchStory(ctx, id)
		}(i, id)
	}
	wg.Wait()

	var items []Item
	for _, it := range results {
		if it != nil {
			items = append(items, *it)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if len(items) > 20 {
		items = items[:20]
	}

	return items, nil
}

func (c *HackerNewsClient) fetchTopStoryIDs(ctx context.Context) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hnAPIBase+"/topstories.json", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hackernews fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hackernews topstories returned %d", resp.StatusCode)
	}

	var ids []int64
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("hackernews decode: %w", err)
	}

	return ids, nil
}

// fetchStory returns nil on any failure; a missing story just drops out of
// the listing.
func (c *HackerNewsClient) fetchStory(ctx context.Context, id int64) *Item {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/item/%d.json", hnAPIBase, id), nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var story hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil
	}

	if story.Type != "story" {
		return nil
	}

	storyURL := story.URL
	if storyURL == "" {
		storyURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
	}

	return &Item{
		Source:   "hackernews",
		Title:    story.Title,
		URL:      storyURL,
		Score:    story.Score,
		Comments: story.Descendants,
		Domain:   extractDomain(story.URL),
		Hot:      story.Score > hnHotScore,
	}
}

func extractDomain(rawURL string) string {
	if rawURL == "" {
		return "news.ycombinator.com"
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

type hnStory struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
}
