package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"worldmon/pkg/llm"
	"worldmon/pkg/sources"

	"github.com/gin-gonic/gin"
)

type TweetFetcher interface {
	FetchTweet(ctx context.Context, url string) (*sources.Tweet, error)
}

type ArabifyHandler struct {
	tweets   TweetFetcher
	arabifer llm.Arabifier
}

func NewArabifyHandler(tweets TweetFetcher, arabifier llm.Arabifier) *ArabifyHandler {
	return &ArabifyHandler{tweets: tweets, arabifer: arabifier}
}

// ArabifyTweet fetches a tweet by URL and converts its text to Egyptian
// Arabic.
func (h *ArabifyHandler) ArabifyTweet(c *gin.Context) {
	var req ArabifyTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if sources.ExtractTweetID(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Twitter/X URL format"})
		return
	}

	tweet, err := h.tweets.FetchTweet(c.Request.Context(), req.URL)
	if err != nil {
		slog.Error("error fetching tweet", "url", req.URL, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.arabifer.Arabify(c.Request.Context(), tweet.Text)
	if err != nil {
		slog.Error("error arabifying tweet", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to arabify tweet"})
		return
	}

	c.JSON(http.StatusOK, ArabifyResponse{
		OriginalText:   result.OriginalText,
		ArabifiedText:  result.ArabifiedText,
		AuthorName:     tweet.AuthorName,
		AuthorUsername: tweet.AuthorUsername,
		Note:           result.Note,
	})
}

// ArabifyText converts raw text directly, without a tweet lookup.
func (h *ArabifyHandler) ArabifyText(c *gin.Context) {
	var req ArabifyTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text cannot be empty"})
		return
	}

	result, err := h.arabifer.Arabify(c.Request.Context(), req.Text)
	if err != nil {
		slog.Error("error arabifying text", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to arabify text"})
		return
	}

	c.JSON(http.StatusOK, ArabifyResponse{
		OriginalText:  result.OriginalText,
		ArabifiedText: result.ArabifiedText,
		Note:          result.Note,
	})
}

// PreviewTweet fetches tweet content without converting, so clients can
// validate a URL before arabifying.
func (h *ArabifyHandler) PreviewTweet(c *gin.Context) {
	url := c.Query("url")

	if sources.ExtractTweetID(url) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Twitter/X URL format"})
		return
	}

	tweet, err := h.tweets.FetchTweet(c.Request.Context(), url)
	if err != nil {
		slog.Error("error fetching tweet", "url", url, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tweet)
}
