// Package pipeline orchestrates a sentiment run for a video: paginate the
// comment feed, deduplicate, classify, and commit incremental aggregates.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/telemetry"
)

// Source fetches comment pages for a video. An empty cursor requests the
// first page; an empty returned cursor marks the final page.
type Source interface {
	FetchPage(ctx context.Context, videoID, pageCursor string) ([]domain.Comment, string, error)
}

// Classifier assigns a sentiment verdict to a piece of text.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Label, float64, error)
}

// Store persists comments, verdicts, and aggregates.
type Store interface {
	HasVerdict(ctx context.Context, commentID string) (bool, error)
	PutComment(ctx context.Context, comment *domain.Comment) error
	PutVerdicts(ctx context.Context, verdicts []domain.Verdict) error
	GetAggregate(ctx context.Context, videoID string) (*domain.Aggregate, error)
	PutAggregate(ctx context.Context, agg *domain.Aggregate) error
}

// Options tunes orchestrator behavior.
type Options struct {
	// Concurrency bounds the classification worker pool within a page.
	Concurrency int
	// FailFast aborts the run on the first classification failure instead
	// of skipping the comment.
	FailFast bool
}

const defaultConcurrency = 8

// Orchestrator runs the per-video ingestion pipeline. Runs for the same
// video are serialized; distinct videos run in parallel.
type Orchestrator struct {
	source      Source
	classifier  Classifier
	store       Store
	locks       *keyedLocks
	concurrency int
	failFast    bool
	metrics     *telemetry.Metrics
	logger      logger.Logger
}

// New creates an orchestrator. metrics may be nil.
func New(source Source, classifier Classifier, store Store, opts Options,
	metrics *telemetry.Metrics, log logger.Logger,
) *Orchestrator {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Orchestrator{
		source:      source,
		classifier:  classifier,
		store:       store,
		locks:       newKeyedLocks(),
		concurrency: concurrency,
		failFast:    opts.FailFast,
		metrics:     metrics,
		logger:      log,
	}
}

// Run executes one pipeline run for the video and returns its terminal
// result. The result carries the last committed aggregate even on failure.
// Pages already committed are never lost: the aggregate row stores the
// cursor, so the next run resumes where this one stopped.
func (o *Orchestrator) Run(ctx context.Context, videoID string) (*domain.RunResult, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, fmt.Errorf("%w: empty video id", domain.ErrInvalidVideoID)
	}

	if !o.locks.TryAcquire(videoID) {
		o.metrics.RecordBusyReject()

		return nil, fmt.Errorf("%w: video %s", domain.ErrRunInProgress, videoID)
	}
	defer o.locks.Release(videoID)

	started := time.Now()

	run := &domain.RunResult{
		RunID:   uuid.NewString(),
		VideoID: videoID,
	}

	log := o.logger.With(
		logger.String("run_id", run.RunID),
		logger.String("video_id", videoID))

	log.Info("pipeline run started")

	agg, loadErr := o.store.GetAggregate(ctx, videoID)
	if loadErr != nil {
		return o.finish(run, agg, domain.RunStatusFailed, loadErr, started, log), loadErr
	}
	if agg == nil {
		agg = domain.NewAggregate(videoID)
	}

	cursor := agg.Cursor

	for {
		// Cancellation is honored between pages only; a page that started
		// classifying always runs to its aggregate commit.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.finish(run, agg, domain.RunStatusPartial, ctxErr, started, log), nil
		}

		comments, nextCursor, fetchErr := o.source.FetchPage(ctx, videoID, cursor)
		if fetchErr != nil {
			if errors.Is(fetchErr, domain.ErrQuotaExceeded) {
				o.metrics.RecordQuotaExhausted()
			}

			return o.finish(run, agg, domain.RunStatusFailed, fetchErr, started, log), fetchErr
		}

		o.metrics.RecordPage(len(comments))

		pageErr := o.processPage(ctx, run, agg, comments, cursor, nextCursor, log)
		if pageErr != nil {
			return o.finish(run, agg, domain.RunStatusFailed, pageErr, started, log), pageErr
		}

		if nextCursor == "" {
			return o.finish(run, agg, domain.RunStatusDone, nil, started, log), nil
		}

		cursor = nextCursor
	}
}

// processPage takes one fetched page through dedup, classification, and the
// commit sequence: comments first, then verdicts, then the aggregate with
// the advanced cursor. The aggregate commit is the durability point; any
// failure before it leaves the stored cursor untouched.
func (o *Orchestrator) processPage(ctx context.Context, run *domain.RunResult,
	agg *domain.Aggregate, comments []domain.Comment, pageCursor, nextCursor string,
	log logger.Logger,
) error {
	fresh := make([]domain.Comment, 0, len(comments))

	for i := range comments {
		seen, seenErr := o.store.HasVerdict(ctx, comments[i].CommentID)
		if seenErr != nil {
			return seenErr
		}
		if seen {
			continue
		}

		fresh = append(fresh, comments[i])
	}

	for i := range fresh {
		if putErr := o.store.PutComment(ctx, &fresh[i]); putErr != nil {
			return putErr
		}
	}

	verdicts := make([]domain.Verdict, 0, len(fresh))

	for _, result := range o.classifyBatch(ctx, fresh) {
		if result.err != nil {
			if o.failFast {
				return fmt.Errorf("%w: comment %s: %w",
					domain.ErrClassification, result.commentID, result.err)
			}

			run.Skipped = append(run.Skipped, result.commentID)

			continue
		}

		verdicts = append(verdicts, result.verdict)
	}

	if putErr := o.store.PutVerdicts(ctx, verdicts); putErr != nil {
		return putErr
	}

	agg.Apply(verdicts)

	// A video that has never produced a verdict gets no aggregate row.
	if !materialized(agg) && len(verdicts) == 0 {
		return nil
	}

	// On the final page the stored cursor stays at that page's token, so a
	// later run re-walks just the last page and picks up new comments there.
	committedCursor := nextCursor
	if committedCursor == "" {
		committedCursor = pageCursor
	}

	agg.Cursor = committedCursor
	agg.LastUpdatedAt = time.Now().UTC()

	if commitErr := o.store.PutAggregate(ctx, agg); commitErr != nil {
		return commitErr
	}

	log.Debug("page committed",
		logger.Int("fetched", len(comments)),
		logger.Int("classified", len(verdicts)),
		logger.Int64("total", agg.TotalCount))

	return nil
}

// materialized reports whether the aggregate has ever been committed or has
// anything worth committing.
func materialized(agg *domain.Aggregate) bool {
	return agg.TotalCount > 0 || agg.Cursor != ""
}

func (o *Orchestrator) finish(run *domain.RunResult, agg *domain.Aggregate,
	status domain.RunStatus, runErr error, started time.Time, log logger.Logger,
) *domain.RunResult {
	run.Status = status
	run.Err = runErr

	if agg != nil && materialized(agg) {
		run.Aggregate = agg
	}

	o.metrics.RecordRun(string(status), time.Since(started))

	switch status {
	case domain.RunStatusFailed:
		log.Error("pipeline run failed",
			logger.String("status", string(status)),
			logger.Error(runErr))
	default:
		log.Info("pipeline run finished",
			logger.String("status", string(status)),
			logger.Int("skipped", len(run.Skipped)))
	}

	return run
}
