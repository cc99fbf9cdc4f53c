package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"worldmon/db"
	"worldmon/internal/broadcast"
	"worldmon/internal/handler"
	"worldmon/internal/monitor"
	"worldmon/internal/repository"
	"worldmon/pkg/llm"
	"worldmon/pkg/sources"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("error migrating DB: %v", err)
	}

	var runLock monitor.RunLock
	if os.Getenv("REDIS_URL") != "" {
		if err := db.ConnectRedis(); err != nil {
			slog.Warn("redis unavailable, running without distributed run lock", "error", err)
		} else {
			defer db.CloseRedis()
			runLock = db.NewRunLock(db.Redis)
		}
	}

	reportRepo := repository.NewReportRepository(db.DB)
	hub := broadcast.NewHub()

	agent := llm.NewOpenAIClient(
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("MONITOR_MODEL"),
		buildTools(),
	)

	coordinator := monitor.NewCoordinator(reportRepo, agent, hub, runLock)

	scheduler := monitor.NewScheduler(coordinator, monitorInterval())
	scheduler.Start()

	twitterClient := sources.NewTwitterClient(os.Getenv("TWITTER_BEARER_TOKEN"))
	arabifier := llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"))

	reportHandler := handler.NewReportHandler(reportRepo, coordinator)
	arabifyHandler := handler.NewArabifyHandler(twitterClient, arabifier)
	wsHandler := handler.NewWSHandler(hub)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	api := r.Group("/api/v1")
	api.GET("/reports", reportHandler.ListReports)
	api.GET("/reports/latest", reportHandler.GetLatestReport)
	api.GET("/reports/search", reportHandler.SearchReports)
	api.GET("/reports/stats", reportHandler.GetStats)
	api.GET("/reports/:id", reportHandler.GetReport)
	api.POST("/reports/trigger", reportHandler.TriggerReport)
	api.POST("/arabify/tweet", arabifyHandler.ArabifyTweet)
	api.POST("/arabify/text", arabifyHandler.ArabifyText)
	api.GET("/arabify/preview", arabifyHandler.PreviewTweet)

	// websocket at root level for easier reverse-proxying
	r.GET("/ws/reports", wsHandler.HandleReports)
	r.GET("/health", reportHandler.GetHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("error during server shutdown", "error", err)
	}
}

// buildTools wires one fetcher capability per topic. A provider without
// credentials stays registered but degrades, so the synthesis model always
// sees the full capability set.
func buildTools() []llm.Tool {
	var marketsClient sources.Client
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		marketsClient = sources.NewFinnhubClient(key)
	} else {
		marketsClient = sources.Unconfigured("finnhub")
	}

	return []llm.Tool{
		{
			Name:        "fetch_news",
			Description: "Fetch current news headlines from several news communities. Returns titles, links and engagement scores.",
			Call:        sourceTool(sources.NewRedditClient()),
		},
		{
			Name:        "fetch_markets",
			Description: "Fetch real stock quotes for major indexes and holdings (SPY, QQQ, AAPL, ...). Returns price, change and change percent per symbol.",
			Call:        sourceTool(marketsClient),
		},
		{
			Name:        "fetch_social",
			Description: "Fetch trending tech stories from HackerNews. Returns top stories with scores and comment counts.",
			Call:        sourceTool(sources.NewHackerNewsClient()),
		},
	}
}

func sourceTool(c sources.Client) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		result := sources.FetchResult(ctx, c)
		payload, err := json.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(payload), nil
	}
}

func monitorInterval() time.Duration {
	const defaultMinutes = 60

	minutes := defaultMinutes
	if raw := os.Getenv("MONITOR_INTERVAL_MINUTES"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			slog.Warn("invalid MONITOR_INTERVAL_MINUTES, using default", "value", raw, "default", defaultMinutes)
		} else {
			minutes = parsed
		}
	}

	return time.Duration(minutes) * time.Minute
}
