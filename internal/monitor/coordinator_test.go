package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"worldmon/internal/model"
	"worldmon/pkg/llm"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

type fakeStore struct {
	mu           sync.Mutex
	createdKinds []string
	completed    []uuid.UUID
	sections     []model.Section
	items        []model.Item
	failedID     uuid.UUID
	failedMsg    string
	completeErr  error
	done         chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{done: make(chan struct{}, 10)}
}

func (f *fakeStore) CreateRunningReport(runKind string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdKinds = append(f.createdKinds, runKind)
	return uuid.New(), nil
}

func (f *fakeStore) CompleteReport(id uuid.UUID, summary string, fullReport []byte, sections []model.Section, items []model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, id)
	f.sections = sections
	f.items = items
	f.done <- struct{}{}
	return nil
}

func (f *fakeStore) FailReport(id uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedID = id
	f.failedMsg = errMsg
	f.done <- struct{}{}
	return nil
}

type fakeSynth struct {
	output  *llm.MonitorOutput
	err     error
	release chan struct{}
}

func (f *fakeSynth) Synthesize(ctx context.Context) (*llm.MonitorOutput, error) {
	if f.release != nil {
		<-f.release
	}
	return f.output, f.err
}

type fakeNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeNotifier) BroadcastReportUpdate(reportID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, reportID)
}

func (f *fakeNotifier) broadcasts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

func validOutput() *llm.MonitorOutput {
	section := func(title string) *llm.TopicSection {
		return &llm.TopicSection{
			Title:     title,
			Summary:   "summary of " + title,
			KeyPoints: []string{"point one", "point two"},
			Sentiment: "neutral",
		}
	}
	return &llm.MonitorOutput{
		ExecutiveSummary: "Calm day across all fronts.",
		News:             section("News"),
		Markets:          section("Markets"),
		Social:           section("Tech"),
		TopNews: []llm.NewsItem{
			{Title: "Headline", URL: "https://example.com/a", Source: "reddit/r/news"},
		},
		MarketQuotes: []llm.MarketQuote{
			{Symbol: "SPY", Price: 512.3, Change: 1.2, ChangePercent: 0.23, Sentiment: "positive"},
		},
		TopTech: []llm.TechItem{
			{Title: "Show HN", URL: "https://example.com/hn", Score: 321, Comments: 88, IsHot: true},
		},
		MarketSentiment: "neutral",
	}
}

func waitDone(t *testing.T, store *fakeStore) {
	t.Helper()
	select {
	case <-store.done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not reach a terminal state in time")
	}
}

func TestRunCompleted(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	coord := NewCoordinator(store, &fakeSynth{output: validOutput()}, notifier, nil)

	started := coord.TriggerScheduled()
	assert.Equal(t, true, started)

	waitDone(t, store)

	// broadcast happens after CompleteReport returns; give it a moment
	deadline := time.Now().Add(time.Second)
	for notifier.broadcasts() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	assert.Equal(t, []string{model.RunKindScheduled}, store.createdKinds)
	assert.Equal(t, 1, len(store.completed))
	assert.Equal(t, 3, len(store.sections))
	assert.Equal(t, 1, notifier.broadcasts())
	assert.Equal(t, store.completed[0].String(), notifier.ids[0])

	topics := map[string]bool{}
	for _, s := range store.sections {
		topics[s.Topic] = true
		assert.Equal(t, 2, s.SourcesCount)
	}
	assert.Equal(t, true, topics[model.TopicNews])
	assert.Equal(t, true, topics[model.TopicMarkets])
	assert.Equal(t, true, topics[model.TopicSocial])

	assert.Equal(t, 3, len(store.items))
}

func TestRunFailed(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	coord := NewCoordinator(store, &fakeSynth{err: errors.New("model timeout")}, notifier, nil)

	started := coord.TriggerManual()
	assert.Equal(t, true, started)

	waitDone(t, store)

	assert.Equal(t, []string{model.RunKindManual}, store.createdKinds)
	assert.Equal(t, 0, len(store.completed))
	assert.Equal(t, "model timeout", store.failedMsg)
	assert.Equal(t, 0, notifier.broadcasts())
}

func TestPersistenceFailureMarksRunFailed(t *testing.T) {
	store := newFakeStore()
	store.completeErr = errors.New("connection lost")
	notifier := &fakeNotifier{}
	coord := NewCoordinator(store, &fakeSynth{output: validOutput()}, notifier, nil)

	coord.TriggerManual()
	waitDone(t, store)

	assert.Equal(t, 0, len(store.completed))
	assert.NotEqual(t, "", store.failedMsg)
	assert.Equal(t, 0, notifier.broadcasts())
}

func TestSingleFlight(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	release := make(chan struct{})
	coord := NewCoordinator(store, &fakeSynth{output: validOutput(), release: release}, notifier, nil)

	started := coord.TriggerScheduled()
	assert.Equal(t, true, started)

	// a trigger while the first run is in flight is dropped, not queued
	assert.Equal(t, false, coord.TriggerManual())
	assert.Equal(t, false, coord.TriggerScheduled())

	close(release)
	waitDone(t, store)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, len(store.createdKinds))
}

type deniedLock struct{}

func (deniedLock) Acquire(ctx context.Context) bool { return false }
func (deniedLock) Release(ctx context.Context)      {}

func TestRunLockDeniedDropsRun(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	coord := NewCoordinator(store, &fakeSynth{output: validOutput()}, notifier, deniedLock{})

	started := coord.TriggerScheduled()
	assert.Equal(t, true, started)

	// the run is dropped before a report row is created
	deadline := time.Now().Add(500 * time.Millisecond)
	for coord.inFlight.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 0, len(store.createdKinds))
	assert.Equal(t, 0, notifier.broadcasts())
}

func TestBuildSections(t *testing.T) {
	sections, err := buildSections(validOutput())

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(sections))
	assert.Equal(t, model.TopicNews, sections[0].Topic)
	assert.Equal(t, "News", sections[0].Title)
	assert.Equal(t, 2, sections[0].SourcesCount)
	if !strings.Contains(string(sections[0].Items), "point one") {
		t.Fatalf("section items %q missing the key points", sections[0].Items)
	}
}

func TestBuildItems(t *testing.T) {
	items := buildItems(validOutput())

	assert.Equal(t, 3, len(items))
	assert.Equal(t, model.TopicNews, items[0].Topic)
	assert.Equal(t, "reddit/r/news", items[0].Source)
	assert.Equal(t, model.TopicMarkets, items[1].Topic)
	assert.Equal(t, "SPY", items[1].Title)
	assert.Equal(t, "positive", items[1].Sentiment)
	assert.Equal(t, model.TopicSocial, items[2].Topic)
	assert.Equal(t, []string{"hot"}, items[2].Tags)
}
