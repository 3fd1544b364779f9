package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

// classifyResult is the outcome of classifying one comment.
type classifyResult struct {
	commentID string
	verdict   domain.Verdict
	err       error
}

// classifyBatch classifies a page of comments with a bounded worker pool and
// returns results in input order. The whole batch always runs to completion;
// the caller decides what a per-comment failure means for the run.
func (o *Orchestrator) classifyBatch(ctx context.Context, comments []domain.Comment) []classifyResult {
	if len(comments) == 0 {
		return nil
	}

	concurrency := o.concurrency
	if concurrency > len(comments) {
		concurrency = len(comments)
	}

	type job struct {
		index   int
		comment domain.Comment
	}

	jobs := make(chan job, len(comments))
	results := make([]classifyResult, len(comments))

	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range jobs {
				started := time.Now()

				label, score, classifyErr := o.classifier.Classify(ctx, j.comment.Text)
				if classifyErr != nil {
					o.metrics.RecordClassificationFailure()
					o.logger.Warn("classification failed",
						logger.String("comment_id", j.comment.CommentID),
						logger.Error(classifyErr))

					results[j.index] = classifyResult{commentID: j.comment.CommentID, err: classifyErr}

					continue
				}

				o.metrics.RecordClassification(string(label), time.Since(started))

				results[j.index] = classifyResult{
					commentID: j.comment.CommentID,
					verdict: domain.Verdict{
						CommentID: j.comment.CommentID,
						Label:     label,
						Score:     score,
					},
				}
			}
		}()
	}

	for i, comment := range comments {
		jobs <- job{index: i, comment: comment}
	}
	close(jobs)

	wg.Wait()

	return results
}
