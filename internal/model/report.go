package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	RunKindScheduled = "scheduled"
	RunKindManual    = "manual"

	TopicNews    = "news"
	TopicMarkets = "markets"
	TopicSocial  = "social"
)

// Topics returns the closed set of report topics in persistence order.
func Topics() []string {
	return []string{TopicNews, TopicMarkets, TopicSocial}
}

type Report struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	RunKind      string
	Status       string
	Summary      string
	FullReport   []byte
	ErrorMessage string
}

type Section struct {
	ID           uuid.UUID
	ReportID     uuid.UUID
	CreatedAt    time.Time
	Topic        string
	Title        string
	Summary      string
	Items        []byte
	SourcesCount int
}

// Item is one fine-grained data point under a section. Topic attaches it to
// the matching section when the completion transaction writes the rows.
type Item struct {
	ID        uuid.UUID
	SectionID uuid.UUID
	Topic     string
	Source    string
	SourceURL string
	Title     string
	Content   string
	Sentiment string
	Tags      []string
	Raw       []byte
}

type ReportStats struct {
	Total             int
	Completed         int
	Failed            int
	SuccessRate       float64
	LatestCompletedAt *time.Time
}
