package domain

import "time"

// Aggregate is the per-video rollup of all classified comments to date.
// The counts and mean are updated incrementally so a run never re-scans the
// full comment history. Cursor is the opaque pagination token marking how far
// ingestion has progressed; it lets an interrupted run resume without
// double-counting.
type Aggregate struct {
	VideoID       string    `db:"video_id"        json:"video_id"`
	TotalCount    int64     `db:"total_count"     json:"total_count"`
	PositiveCount int64     `db:"positive_count"  json:"positive_count"`
	NegativeCount int64     `db:"negative_count"  json:"negative_count"`
	NeutralCount  int64     `db:"neutral_count"   json:"neutral_count"`
	MeanScore     float64   `db:"mean_score"      json:"mean_score"`
	Cursor        string    `db:"cursor"          json:"cursor,omitempty"`
	LastUpdatedAt time.Time `db:"last_updated_at" json:"last_updated_at"`
}

// NewAggregate returns a zero-valued aggregate for a video.
func NewAggregate(videoID string) *Aggregate {
	return &Aggregate{VideoID: videoID}
}

// Apply folds a batch of verdicts into the aggregate. The mean is updated as
// a weighted running mean so the history never needs re-reading:
//
//	newMean = (oldMean*oldTotal + sum(newScores)) / (oldTotal + newCount)
//
// Apply does not persist anything; the caller commits the aggregate only
// after every verdict in the batch is durably stored.
func (a *Aggregate) Apply(batch []Verdict) {
	if len(batch) == 0 {
		return
	}

	var sum float64
	for i := range batch {
		switch batch[i].Label {
		case LabelPositive:
			a.PositiveCount++
		case LabelNegative:
			a.NegativeCount++
		default:
			a.NeutralCount++
		}
		sum += batch[i].Score
	}

	oldTotal := a.TotalCount
	a.TotalCount += int64(len(batch))
	a.MeanScore = (a.MeanScore*float64(oldTotal) + sum) / float64(a.TotalCount)
}

// ConsistentCounts reports whether the label counts sum to the total.
func (a *Aggregate) ConsistentCounts() bool {
	return a.PositiveCount+a.NegativeCount+a.NeutralCount == a.TotalCount
}
