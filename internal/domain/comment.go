// Package domain contains the core models for comment sentiment analysis.
package domain

import "time"

// Label is the sentiment classification of a single comment.
type Label string

const (
	// LabelPositive marks a comment with positive sentiment.
	LabelPositive Label = "positive"
	// LabelNegative marks a comment with negative sentiment.
	LabelNegative Label = "negative"
	// LabelNeutral marks a comment with neutral or no detectable sentiment.
	LabelNeutral Label = "neutral"
)

// validLabels maps every recognised Label value to true for O(1) lookup.
var validLabels = map[Label]bool{
	LabelPositive: true,
	LabelNegative: true,
	LabelNeutral:  true,
}

// IsValid reports whether l is a recognised sentiment label.
func (l Label) IsValid() bool {
	return validLabels[l]
}

// Comment is a single normalized comment fetched from the video platform.
// Identity is (VideoID, CommentID). Comments are immutable once fetched;
// Text is plain text; markup is stripped by the source adapter, so Text may
// be empty, which classifies as neutral.
type Comment struct {
	VideoID     string    `db:"video_id"   json:"video_id"`
	CommentID   string    `db:"comment_id" json:"comment_id"`
	Text        string    `db:"text"       json:"text"`
	AuthorRef   string    `db:"author_ref" json:"author_ref"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
}

// Verdict is the sentiment result for one comment. A re-classification
// replaces the stored verdict by key (last write wins, never blended).
type Verdict struct {
	CommentID string  `db:"comment_id" json:"comment_id"`
	Label     Label   `db:"label"      json:"label"`
	// Score is in [-1, 1]; negative values lean negative.
	Score float64 `db:"score" json:"score"`
}
