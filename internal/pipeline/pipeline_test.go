package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

// fakePage is one page of the simulated comment feed, keyed by the cursor
// that requests it.
type fakePage struct {
	comments []domain.Comment
	next     string
	err      error
}

type fakeSource struct {
	mu    sync.Mutex
	pages map[string]fakePage
	calls []string
}

// FetchPage looks up "videoID|cursor" first so one source can serve several
// videos, then falls back to the bare cursor.
func (f *fakeSource) FetchPage(_ context.Context, videoID, cursor string) ([]domain.Comment, string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cursor)
	f.mu.Unlock()

	page, ok := f.pages[videoID+"|"+cursor]
	if !ok {
		page, ok = f.pages[cursor]
	}
	if !ok {
		return nil, "", fmt.Errorf("no page for cursor %q", cursor)
	}
	if page.err != nil {
		return nil, "", page.err
	}

	return page.comments, page.next, nil
}

type fakeClassifier struct {
	mu    sync.Mutex
	calls int
	// failIDs makes classification fail for comments whose text matches.
	failTexts map[string]bool
	// scores maps text to a fixed score; unknown text scores 0.5 positive.
	scores map[string]float64
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (domain.Label, float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failTexts[text] {
		return "", 0, fmt.Errorf("%w: model timeout", domain.ErrClassification)
	}

	score, ok := f.scores[text]
	if !ok {
		score = 0.5
	}

	switch {
	case score > 0:
		return domain.LabelPositive, score, nil
	case score < 0:
		return domain.LabelNegative, score, nil
	default:
		return domain.LabelNeutral, 0, nil
	}
}

type memStore struct {
	mu       sync.Mutex
	comments map[string]domain.Comment
	verdicts map[string]domain.Verdict
	aggs     map[string]domain.Aggregate

	failPutVerdicts  error
	failPutAggregate error
}

func newMemStore() *memStore {
	return &memStore{
		comments: make(map[string]domain.Comment),
		verdicts: make(map[string]domain.Verdict),
		aggs:     make(map[string]domain.Aggregate),
	}
}

func (m *memStore) HasVerdict(_ context.Context, commentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.verdicts[commentID]

	return ok, nil
}

func (m *memStore) PutComment(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[comment.CommentID]; !ok {
		m.comments[comment.CommentID] = *comment
	}

	return nil
}

func (m *memStore) PutVerdicts(_ context.Context, verdicts []domain.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPutVerdicts != nil {
		return m.failPutVerdicts
	}

	for _, v := range verdicts {
		m.verdicts[v.CommentID] = v
	}

	return nil
}

func (m *memStore) GetAggregate(_ context.Context, videoID string) (*domain.Aggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg, ok := m.aggs[videoID]
	if !ok {
		return nil, nil
	}

	return &agg, nil
}

func (m *memStore) PutAggregate(_ context.Context, agg *domain.Aggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPutAggregate != nil {
		return m.failPutAggregate
	}

	m.aggs[agg.VideoID] = *agg

	return nil
}

func comment(id, text string) domain.Comment {
	return domain.Comment{VideoID: "vid-1", CommentID: id, Text: text}
}

func newTestOrchestrator(source Source, cls Classifier, store Store, opts Options) *Orchestrator {
	return New(source, cls, store, opts, nil, logger.NewNop())
}

func TestRunSinglePage(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{
		"": {comments: []domain.Comment{comment("c1", "good"), comment("c2", "bad")}},
	}}
	cls := &fakeClassifier{scores: map[string]float64{"good": 0.5, "bad": -0.5}}
	store := newMemStore()

	result, err := newTestOrchestrator(source, cls, store, Options{}).Run(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != domain.RunStatusDone {
		t.Errorf("status = %q, want done", result.Status)
	}
	if result.Aggregate == nil {
		t.Fatal("aggregate = nil")
	}
	if result.Aggregate.TotalCount != 2 || result.Aggregate.PositiveCount != 1 || result.Aggregate.NegativeCount != 1 {
		t.Errorf("aggregate = %+v", result.Aggregate)
	}
	if !result.Aggregate.ConsistentCounts() {
		t.Error("label counts do not sum to total")
	}
	if len(store.comments) != 2 {
		t.Errorf("stored comments = %d, want 2", len(store.comments))
	}
}

// Re-running with no new comments leaves the aggregate unchanged and calls
// the classifier zero additional times.
func TestRunIdempotent(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{
		"":       {comments: []domain.Comment{comment("c1", "good")}, next: "page-2"},
		"page-2": {comments: []domain.Comment{comment("c2", "bad")}},
	}}
	cls := &fakeClassifier{scores: map[string]float64{"good": 0.5, "bad": -0.5}}
	store := newMemStore()
	orch := newTestOrchestrator(source, cls, store, Options{})

	first, err := orch.Run(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	callsAfterFirst := cls.calls

	second, err := orch.Run(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if cls.calls != callsAfterFirst {
		t.Errorf("classifier calls on replay = %d, want 0", cls.calls-callsAfterFirst)
	}
	if second.Aggregate.TotalCount != first.Aggregate.TotalCount ||
		second.Aggregate.MeanScore != first.Aggregate.MeanScore {
		t.Errorf("replay changed aggregate: %+v vs %+v", second.Aggregate, first.Aggregate)
	}
}

// After an interrupted run the next run resumes from the stored cursor and
// converges on the same final aggregate.
func TestRunResumable(t *testing.T) {
	pages := map[string]fakePage{
		"":       {comments: []domain.Comment{comment("c1", "good")}, next: "page-2"},
		"page-2": {comments: []domain.Comment{comment("c2", "bad")}, next: "page-3"},
		"page-3": {comments: []domain.Comment{comment("c3", "good")}},
	}
	store := newMemStore()
	cls := &fakeClassifier{scores: map[string]float64{"good": 0.5, "bad": -0.5}}

	// First attempt dies fetching page 2.
	brokenPages := map[string]fakePage{
		"":       pages[""],
		"page-2": {err: fmt.Errorf("%w: connection reset", domain.ErrTransientFetch)},
	}

	result, err := newTestOrchestrator(&fakeSource{pages: brokenPages}, cls, store, Options{}).
		Run(context.Background(), "vid-1")
	if !errors.Is(err, domain.ErrTransientFetch) {
		t.Fatalf("interrupted run error = %v, want ErrTransientFetch", err)
	}
	if result.Status != domain.RunStatusFailed {
		t.Errorf("interrupted status = %q, want failed", result.Status)
	}
	if result.Aggregate == nil || result.Aggregate.TotalCount != 1 {
		t.Fatalf("page 1 progress lost: %+v", result.Aggregate)
	}
	if result.Aggregate.Cursor != "page-2" {
		t.Errorf("stored cursor = %q, want page-2", result.Aggregate.Cursor)
	}

	// Second run resumes from page 2.
	healthy := &fakeSource{pages: pages}

	result, err = newTestOrchestrator(healthy, cls, store, Options{}).Run(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("resumed Run() error = %v", err)
	}
	if result.Status != domain.RunStatusDone {
		t.Errorf("resumed status = %q, want done", result.Status)
	}
	if result.Aggregate.TotalCount != 3 {
		t.Errorf("final total = %d, want 3", result.Aggregate.TotalCount)
	}
	if healthy.calls[0] != "page-2" {
		t.Errorf("resume started at cursor %q, want page-2", healthy.calls[0])
	}
	if !result.Aggregate.ConsistentCounts() {
		t.Error("label counts do not sum to total")
	}
}

func TestRunMeanScore(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{
		"": {comments: []domain.Comment{
			comment("c1", "up"), comment("c2", "down"), comment("c3", "flat"),
		}},
	}}
	cls := &fakeClassifier{scores: map[string]float64{"up": 0.5, "down": -0.5, "flat": 0}}
	store := newMemStore()

	result, err := newTestOrchestrator(source, cls, store, Options{}).Run(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Aggregate.TotalCount != 3 {
		t.Errorf("total = %d, want 3", result.Aggregate.TotalCount)
	}
	if math.Abs(result.Aggregate.MeanScore) > 1e-9 {
		t.Errorf("mean = %v, want 0", result.Aggregate.MeanScore)
	}
}

// Quota exhaustion on page 2 of 3 keeps page 1 committed with the cursor at
// page 2, so a later run resumes exactly there.
func TestRunQuotaExceededMidway(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{
		"":       {comments: []domain.Comment{comment("c1", "good")}, next: "page-2"},
		"page-2": {err: fmt.Errorf("%w: daily limit", domain.ErrQuotaExceeded)},
	}}
	cls := &fakeClassifier{}
	store := newMemStore()

	result, err := newTestOrchestrator(source, cls, store, Options{}).Run(context.Background(), "vid-1")
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}

	if result.Status != domain.RunStatusFailed {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if result.Aggregate == nil || result.Aggregate.TotalCount != 1 {
		t.Fatalf("aggregate = %+v, want page 1 only", result.Aggregate)
	}

	stored := store.aggs["vid-1"]
	if stored.Cursor != "page-2" {
		t.Errorf("stored cursor = %q, want page-2", stored.Cursor)
	}
}

// One failing comment in a batch of five: run ends done, the other four are
// counted, and the failed comment has no stored verdict so a future run
// retries it.
func TestRunSkipsFailedClassification(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{
		"": {comments: []domain.Comment{
			comment("c1", "a"), comment("c2", "b"), comment("c3", "poison"),
			comment("c4", "c"), comment("c5", "d"),
		}},
	}}
	cls := &fakeClassifier{failTexts: map[string]bool{"poison": true}}
	store := newMemStore()

	result, err := newTestOrchestrator(source, cls, store, Options{}).Run(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != domain.RunStatusDone {
		t.Errorf("status = %q, want done", result.Status)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "c3" {
		t.Errorf("skipped = %v, want [c3]", result.Skipped)
	}
	if result.Aggregate.TotalCount != 4 {
		t.Errorf("total = %d, want 4", result.Aggregate.TotalCount)
	}
	if _, ok := store.verdicts["c3"]; ok {
		t.Error("failed comment has a stored verdict, must stay retryable")
	}
}

func TestRunFailFast(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{
		"": {comments: []domain.Comment{comment("c1", "poison")}},
	}}
	cls := &fakeClassifier{failTexts: map[string]bool{"poison": true}}
	store := newMemStore()

	result, err := newTestOrchestrator(source, cls, store, Options{FailFast: true}).
		Run(context.Background(), "vid-1")
	if !errors.Is(err, domain.ErrClassification) {
		t.Fatalf("error = %v, want ErrClassification", err)
	}
	if result.Status != domain.RunStatusFailed {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if len(store.aggs) != 0 {
		t.Errorf("aggregate committed on fail-fast run: %+v", store.aggs)
	}
}

func TestRunStoreFailureFatal(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{
		"": {comments: []domain.Comment{comment("c1", "good")}},
	}}
	store := newMemStore()
	store.failPutVerdicts = fmt.Errorf("%w: disk full", domain.ErrStore)

	result, err := newTestOrchestrator(source, &fakeClassifier{}, store, Options{}).
		Run(context.Background(), "vid-1")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("error = %v, want ErrStore", err)
	}
	if result.Status != domain.RunStatusFailed {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if len(store.aggs) != 0 {
		t.Error("cursor advanced past an unstored batch")
	}
}

func TestRunRejectsConcurrentSameVideo(t *testing.T) {
	gate := make(chan struct{})
	release := make(chan struct{})

	source := &fakeSource{pages: map[string]fakePage{
		"vid-1|": {comments: []domain.Comment{comment("c1", "slow")}},
		"vid-2|": {},
	}}
	cls := &fakeClassifier{}
	store := newMemStore()
	orch := newTestOrchestrator(source, &gatedClassifier{inner: cls, gate: gate, release: release}, store, Options{})

	errCh := make(chan error, 1)

	go func() {
		_, runErr := orch.Run(context.Background(), "vid-1")
		errCh <- runErr
	}()

	<-gate

	if _, err := orch.Run(context.Background(), "vid-1"); !errors.Is(err, domain.ErrRunInProgress) {
		t.Errorf("concurrent same-video run error = %v, want ErrRunInProgress", err)
	}

	// A different video on the same orchestrator is not blocked.
	if _, err := orch.Run(context.Background(), "vid-2"); err != nil {
		t.Errorf("distinct video run error = %v", err)
	}

	close(release)

	if err := <-errCh; err != nil {
		t.Fatalf("first run error = %v", err)
	}

	// Lock released after the run: a fresh run is accepted again.
	if _, err := orch.Run(context.Background(), "vid-1"); err != nil {
		t.Errorf("Run() after release error = %v", err)
	}
}

// gatedClassifier signals when classification starts and blocks until
// released, to hold a run open mid-flight.
type gatedClassifier struct {
	inner   *fakeClassifier
	gate    chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedClassifier) Classify(ctx context.Context, text string) (domain.Label, float64, error) {
	g.once.Do(func() { close(g.gate) })
	<-g.release

	return g.inner.Classify(ctx, text)
}

func TestRunCancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &cancellingSource{
		cancel: cancel,
		pages: map[string]fakePage{
			"":       {comments: []domain.Comment{comment("c1", "good")}, next: "page-2"},
			"page-2": {comments: []domain.Comment{comment("c2", "bad")}},
		},
	}
	store := newMemStore()

	result, err := newTestOrchestrator(source, &fakeClassifier{}, store, Options{}).Run(ctx, "vid-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != domain.RunStatusPartial {
		t.Errorf("status = %q, want partial", result.Status)
	}

	// The in-flight page still committed before cancellation took effect.
	if result.Aggregate == nil || result.Aggregate.TotalCount != 1 {
		t.Errorf("aggregate = %+v, want page 1 committed", result.Aggregate)
	}
}

// cancellingSource cancels the run context as it serves the first page, so
// cancellation lands between pages.
type cancellingSource struct {
	fakeSource
	cancel context.CancelFunc
	pages  map[string]fakePage
}

func (c *cancellingSource) FetchPage(ctx context.Context, videoID, cursor string) ([]domain.Comment, string, error) {
	c.fakeSource.pages = c.pages

	comments, next, err := c.fakeSource.FetchPage(ctx, videoID, cursor)
	c.cancel()

	return comments, next, err
}

func TestRunInvalidVideoID(t *testing.T) {
	orch := newTestOrchestrator(&fakeSource{}, &fakeClassifier{}, newMemStore(), Options{})

	for _, videoID := range []string{"", "   "} {
		if _, err := orch.Run(context.Background(), videoID); !errors.Is(err, domain.ErrInvalidVideoID) {
			t.Errorf("Run(%q) error = %v, want ErrInvalidVideoID", videoID, err)
		}
	}
}

func TestRunNoCommentsNoAggregate(t *testing.T) {
	source := &fakeSource{pages: map[string]fakePage{"": {}}}
	store := newMemStore()

	result, err := newTestOrchestrator(source, &fakeClassifier{}, store, Options{}).
		Run(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != domain.RunStatusDone {
		t.Errorf("status = %q, want done", result.Status)
	}
	if result.Aggregate != nil {
		t.Errorf("aggregate = %+v, want nil for commentless video", result.Aggregate)
	}
	if len(store.aggs) != 0 {
		t.Error("aggregate row created for commentless video")
	}
}
