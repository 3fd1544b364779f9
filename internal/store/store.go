package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

// Store handles persistence for comments, verdicts, and aggregates. The
// cache is optional; a nil cache sends every existence check to Postgres.
type Store struct {
	db     *sqlx.DB
	cache  *VerdictCache
	logger logger.Logger
}

// New creates a store. Pass a nil cache to disable Redis.
func New(db *sqlx.DB, cache *VerdictCache, log logger.Logger) *Store {
	return &Store{db: db, cache: cache, logger: log}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// HasVerdict reports whether a verdict exists for the comment. Redis is
// consulted first; a cache miss or cache failure falls through to Postgres.
func (s *Store) HasVerdict(ctx context.Context, commentID string) (bool, error) {
	if s.cache != nil {
		cached, cacheErr := s.cache.Has(ctx, commentID)
		if cacheErr != nil {
			s.logger.Warn("verdict cache check failed, falling back to database",
				logger.String("comment_id", commentID),
				logger.Error(cacheErr))
		} else if cached {
			return true, nil
		}
	}

	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM verdicts WHERE comment_id = $1)`
	if queryErr := s.db.GetContext(ctx, &exists, query, commentID); queryErr != nil {
		return false, fmt.Errorf("%w: check verdict existence: %w", domain.ErrStore, queryErr)
	}

	if exists && s.cache != nil {
		if markErr := s.cache.Mark(ctx, commentID); markErr != nil {
			s.logger.Warn("verdict cache warm failed", logger.Error(markErr))
		}
	}

	return exists, nil
}

// PutComment stores a raw comment. Re-inserting an existing comment is a
// no-op, the original row wins.
func (s *Store) PutComment(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (video_id, comment_id, text, author_ref, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (video_id, comment_id) DO NOTHING
	`

	_, execErr := s.db.ExecContext(ctx, query,
		comment.VideoID,
		comment.CommentID,
		comment.Text,
		comment.AuthorRef,
		comment.PublishedAt,
	)
	if execErr != nil {
		return fmt.Errorf("%w: upsert comment %s: %w", domain.ErrStore, comment.CommentID, execErr)
	}

	return nil
}

// PutVerdicts stores a batch of verdicts in one statement, last write wins,
// then marks their existence in the cache.
func (s *Store) PutVerdicts(ctx context.Context, verdicts []domain.Verdict) error {
	if len(verdicts) == 0 {
		return nil
	}

	const cols = 3

	placeholders := make([]string, 0, len(verdicts))
	args := make([]any, 0, len(verdicts)*cols)

	for i, verdict := range verdicts {
		base := i * cols
		placeholders = append(placeholders,
			fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, verdict.CommentID, string(verdict.Label), verdict.Score)
	}

	query := `
		INSERT INTO verdicts (comment_id, label, score)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (comment_id) DO UPDATE
		SET label = EXCLUDED.label, score = EXCLUDED.score, classified_at = now()
	`

	if _, execErr := s.db.ExecContext(ctx, query, args...); execErr != nil {
		return fmt.Errorf("%w: upsert %d verdicts: %w", domain.ErrStore, len(verdicts), execErr)
	}

	if s.cache != nil {
		commentIDs := make([]string, len(verdicts))
		for i, verdict := range verdicts {
			commentIDs[i] = verdict.CommentID
		}

		if markErr := s.cache.Mark(ctx, commentIDs...); markErr != nil {
			s.logger.Warn("verdict cache mark failed", logger.Error(markErr))
		}
	}

	return nil
}

// GetAggregate loads the aggregate for a video, nil when none exists yet.
func (s *Store) GetAggregate(ctx context.Context, videoID string) (*domain.Aggregate, error) {
	query := `
		SELECT video_id, total_count, positive_count, negative_count, neutral_count,
		       mean_score, cursor, last_updated_at
		FROM aggregates
		WHERE video_id = $1
	`

	var agg domain.Aggregate

	getErr := s.db.GetContext(ctx, &agg, query, videoID)
	if errors.Is(getErr, sql.ErrNoRows) {
		return nil, nil
	}
	if getErr != nil {
		return nil, fmt.Errorf("%w: get aggregate for %s: %w", domain.ErrStore, videoID, getErr)
	}

	return &agg, nil
}

// PutAggregate replaces the stored aggregate row for the video.
func (s *Store) PutAggregate(ctx context.Context, agg *domain.Aggregate) error {
	query := `
		INSERT INTO aggregates
			(video_id, total_count, positive_count, negative_count, neutral_count,
			 mean_score, cursor, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (video_id) DO UPDATE
		SET total_count     = EXCLUDED.total_count,
		    positive_count  = EXCLUDED.positive_count,
		    negative_count  = EXCLUDED.negative_count,
		    neutral_count   = EXCLUDED.neutral_count,
		    mean_score      = EXCLUDED.mean_score,
		    cursor          = EXCLUDED.cursor,
		    last_updated_at = EXCLUDED.last_updated_at
	`

	_, execErr := s.db.ExecContext(ctx, query,
		agg.VideoID,
		agg.TotalCount,
		agg.PositiveCount,
		agg.NegativeCount,
		agg.NeutralCount,
		agg.MeanScore,
		agg.Cursor,
		agg.LastUpdatedAt,
	)
	if execErr != nil {
		return fmt.Errorf("%w: upsert aggregate for %s: %w", domain.ErrStore, agg.VideoID, execErr)
	}

	return nil
}
