package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
	"worldmon/internal/model"
	"worldmon/pkg/llm"

	"github.com/google/uuid"
)

const runTimeout = 10 * time.Minute

type ReportStore interface {
	CreateRunningReport(runKind string) (uuid.UUID, error)
	CompleteReport(id uuid.UUID, summary string, fullReport []byte, sections []model.Section, items []model.Item) error
	FailReport(id uuid.UUID, errMsg string) error
}

type Notifier interface {
	BroadcastReportUpdate(reportID string)
}

// RunLock is an optional second guard for multi-instance deployments.
type RunLock interface {
	Acquire(ctx context.Context) bool
	Release(ctx context.Context)
}

// Coordinator owns the run lifecycle: at most one run in flight, report row
// committed before any external call, terminal state set exactly once,
// broadcast only after the completion transaction commits.
type Coordinator struct {
	store    ReportStore
	agent    llm.Synthesizer
	notifier Notifier
	lock     RunLock
	inFlight atomic.Bool
}

func NewCoordinator(store ReportStore, agent llm.Synthesizer, notifier Notifier, lock RunLock) *Coordinator {
	return &Coordinator{
		store:    store,
		agent:    agent,
		notifier: notifier,
		lock:     lock,
	}
}

func (c *Coordinator) TriggerScheduled() bool {
	return c.trigger(model.RunKindScheduled)
}

// TriggerManual is fire-and-forget: it returns immediately, reporting only
// whether a run was started. A trigger during an in-flight run is dropped.
func (c *Coordinator) TriggerManual() bool {
	return c.trigger(model.RunKindManual)
}

func (c *Coordinator) trigger(runKind string) bool {
	if !c.inFlight.CompareAndSwap(false, true) {
		slog.Info("run already in flight, dropping trigger", "run_kind", runKind)
		return false
	}

	go func() {
		defer c.inFlight.Store(false)
		c.run(context.Background(), runKind)
	}()

	return true
}

func (c *Coordinator) run(ctx context.Context, runKind string) {
	if c.lock != nil {
		if !c.lock.Acquire(ctx) {
			slog.Info("run lock held elsewhere, dropping run", "run_kind", runKind)
			return
		}
		defer c.lock.Release(ctx)
	}

	reportID, err := c.store.CreateRunningReport(runKind)
	if err != nil {
		slog.Error("error creating report row", "run_kind", runKind, "error", err)
		return
	}

	slog.Info("monitoring run started", "report_id", reportID, "run_kind", runKind)

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	output, err := c.agent.Synthesize(ctx)
	if err != nil {
		c.fail(reportID, err)
		return
	}

	fullReport, err := json.Marshal(output)
	if err != nil {
		c.fail(reportID, fmt.Errorf("marshaling report: %w", err))
		return
	}

	sections, err := buildSections(output)
	if err != nil {
		c.fail(reportID, fmt.Errorf("encoding sections: %w", err))
		return
	}
	items := buildItems(output)

	if err := c.store.CompleteReport(reportID, output.ExecutiveSummary, fullReport, sections, items); err != nil {
		c.fail(reportID, fmt.Errorf("persisting report: %w", err))
		return
	}

	slog.Info("monitoring run completed", "report_id", reportID, "sections", len(sections), "items", len(items))

	c.notifier.BroadcastReportUpdate(reportID.String())
}

// fail is the last line of defense: no error leaves the run without the
// report reaching a terminal state.
func (c *Coordinator) fail(reportID uuid.UUID, runErr error) {
	slog.Error("monitoring run failed", "report_id", reportID, "error", runErr)
	if err := c.store.FailReport(reportID, runErr.Error()); err != nil {
		slog.Error("error marking report failed", "report_id", reportID, "error", err)
	}
}

// buildSections computes one section per topic from the synthesis output.
// The item list persisted on the section is derived from the key points here,
// not in the store.
func buildSections(output *llm.MonitorOutput) ([]model.Section, error) {
	sections := make([]model.Section, 0, len(model.Topics()))
	for _, topic := range model.Topics() {
		section := output.Sections()[topic]
		itemsJSON, err := json.Marshal([]map[string]interface{}{
			{"key_points": section.KeyPoints},
		})
		if err != nil {
			return nil, err
		}
		sections = append(sections, model.Section{
			Topic:        topic,
			Title:        section.Title,
			Summary:      section.Summary,
			Items:        itemsJSON,
			SourcesCount: len(section.KeyPoints),
		})
	}
	return sections, nil
}

// buildItems turns the rich output lists into fine-grained item rows, one
// per news story, quote and tech story.
func buildItems(output *llm.MonitorOutput) []model.Item {
	var items []model.Item

	for _, n := range output.TopNews {
		source := n.Source
		if source == "" {
			source = "news"
		}
		items = append(items, model.Item{
			Topic:     model.TopicNews,
			Source:    source,
			SourceURL: n.URL,
			Title:     n.Title,
			Content:   n.Summary,
		})
	}

	for _, q := range output.MarketQuotes {
		raw, _ := json.Marshal(q)
		items = append(items, model.Item{
			Topic:     model.TopicMarkets,
			Source:    "finnhub",
			Title:     q.Symbol,
			Content:   fmt.Sprintf("%.2f (%+.2f, %+.2f%%)", q.Price, q.Change, q.ChangePercent),
			Sentiment: q.Sentiment,
			Raw:       raw,
		})
	}

	for _, t := range output.TopTech {
		var tags []string
		if t.IsHot {
			tags = []string{"hot"}
		}
		items = append(items, model.Item{
			Topic:     model.TopicSocial,
			Source:    "hackernews",
			SourceURL: t.URL,
			Title:     t.Title,
			Content:   fmt.Sprintf("%d points, %d comments", t.Score, t.Comments),
			Tags:      tags,
		})
	}

	return items
}
