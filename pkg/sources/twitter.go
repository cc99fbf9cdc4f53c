package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const twitterAPIBase = "https://api.twitter.com/2"

var tweetIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:twitter\.com|x\.com)/\w+/status/(\d+)`),
	regexp.MustCompile(`mobile\.twitter\.com/\w+/status/(\d+)`),
}

// ExtractTweetID pulls the status id out of twitter.com, x.com and
// mobile.twitter.com URLs, query params included. Returns "" when the URL is
// not a tweet link.
func ExtractTweetID(rawURL string) string {
	for _, pattern := range tweetIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

type Tweet struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	AuthorName     string `json:"author_name"`
	AuthorUsername string `json:"author_username"`
	CreatedAt      string `json:"created_at,omitempty"`
	URL            string `json:"url"`
}

// TwitterClient fetches single tweets through the Twitter API v2 with a
// bearer token.
type TwitterClient struct {
	bearerToken string
	httpClient  *http.Client
}

func NewTwitterClient(bearerToken string) *TwitterClient {
	return &TwitterClient{
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TwitterClient) FetchTweet(ctx context.Context, tweetURL string) (*Tweet, error) {
	if c.bearerToken == "" {
		return nil, fmt.Errorf("twitter API not configured")
	}

	tweetID := ExtractTweetID(tweetURL)
	if tweetID == "" {
		return nil, fmt.Errorf("invalid Twitter/X URL format")
	}

	params := url.Values{}
	params.Set("tweet.fields", "text,author_id,created_at")
	params.Set("expansions", "author_id")
	params.Set("user.fields", "name,username")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/tweets/%s?%s", twitterAPIBase, tweetID, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter fetch: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("invalid Twitter API credentials")
	case http.StatusNotFound:
		return nil, fmt.Errorf("tweet not found or deleted")
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("twitter rate limit exceeded, try again later")
	default:
		return nil, fmt.Errorf("twitter API returned %d", resp.StatusCode)
	}

	var raw tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("twitter decode: %w", err)
	}

	tweet := &Tweet{
		ID:        raw.Data.ID,
		Text:      raw.Data.Text,
		CreatedAt: raw.Data.CreatedAt,
		URL:       tweetURL,
	}
	if len(raw.Includes.Users) > 0 {
		tweet.AuthorName = raw.Includes.Users[0].Name
		tweet.AuthorUsername = raw.Includes.Users[0].Username
	}

	return tweet, nil
}

type tweetResponse struct {
	Data struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}
