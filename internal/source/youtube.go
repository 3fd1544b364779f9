// Package source fetches comment pages from the YouTube Data API.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/retry"
)

const commentThreadsPath = "/commentThreads"

// Bounded retry for transient upstream failures.
const (
	fetchMaxAttempts  = 3
	fetchInitialDelay = 1 * time.Second
	fetchMaxDelay     = 8 * time.Second
)

// errRetryable marks failures worth another attempt within a fetch.
var errRetryable = errors.New("retryable fetch failure")

// Config holds YouTube client settings.
type Config struct {
	APIKey   string
	BaseURL  string
	PageSize int
	RPS      int
	Burst    int
	Timeout  time.Duration
}

// YouTubeClient fetches comment threads for a video, one page at a time.
type YouTubeClient struct {
	cfg      Config
	client   *http.Client
	limiter  *rate.Limiter
	retryCfg retry.Config
	logger   logger.Logger
}

// NewYouTubeClient creates a client for the commentThreads endpoint.
func NewYouTubeClient(cfg Config, log logger.Logger) *YouTubeClient {
	return &YouTubeClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		retryCfg: retry.Config{
			MaxAttempts:  fetchMaxAttempts,
			InitialDelay: fetchInitialDelay,
			MaxDelay:     fetchMaxDelay,
			Multiplier:   2.0,
			IsRetryable:  func(err error) bool { return errors.Is(err, errRetryable) },
		},
		logger: log,
	}
}

// commentThreadsResponse mirrors the subset of the API response we consume.
type commentThreadsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			TopLevelComment struct {
				ID      string `json:"id"`
				Snippet struct {
					TextDisplay       string    `json:"textDisplay"`
					AuthorDisplayName string    `json:"authorDisplayName"`
					PublishedAt       time.Time `json:"publishedAt"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// apiError mirrors the API error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// FetchPage retrieves one page of top-level comments. An empty pageCursor
// requests the first page; the returned cursor is empty on the final page.
// Quota exhaustion maps to domain.ErrQuotaExceeded without retrying; other
// transient failures are retried with backoff and surface as
// domain.ErrTransientFetch once attempts are exhausted.
func (c *YouTubeClient) FetchPage(ctx context.Context, videoID, pageCursor string) ([]domain.Comment, string, error) {
	if waitErr := c.limiter.Wait(ctx); waitErr != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", waitErr)
	}

	var (
		comments   []domain.Comment
		nextCursor string
	)

	retryErr := retry.Do(ctx, c.retryCfg, func() error {
		var fetchErr error
		comments, nextCursor, fetchErr = c.fetchOnce(ctx, videoID, pageCursor)

		return fetchErr
	})
	if retryErr != nil {
		if errors.Is(retryErr, retry.ErrMaxAttemptsExceeded) || errors.Is(retryErr, errRetryable) {
			return nil, "", fmt.Errorf("%w: video %s page %q: %w",
				domain.ErrTransientFetch, videoID, pageCursor, retryErr)
		}

		return nil, "", retryErr
	}

	return comments, nextCursor, nil
}

func (c *YouTubeClient) fetchOnce(ctx context.Context, videoID, pageCursor string) ([]domain.Comment, string, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(videoID, pageCursor), http.NoBody)
	if reqErr != nil {
		return nil, "", fmt.Errorf("build request: %w", reqErr)
	}

	resp, doErr := c.client.Do(req)
	if doErr != nil {
		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("fetch page: %w", ctx.Err())
		}

		return nil, "", fmt.Errorf("%w: %w", errRetryable, doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, "", fmt.Errorf("%w: read body: %w", errRetryable, readErr)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", c.mapStatusError(resp.StatusCode, body, videoID)
	}

	var parsed commentThreadsResponse
	if decodeErr := json.Unmarshal(body, &parsed); decodeErr != nil {
		return nil, "", fmt.Errorf("decode response: %w", decodeErr)
	}

	comments := make([]domain.Comment, 0, len(parsed.Items))

	for _, item := range parsed.Items {
		top := item.Snippet.TopLevelComment
		comments = append(comments, domain.Comment{
			VideoID:     videoID,
			CommentID:   top.ID,
			Text:        NormalizeText(top.Snippet.TextDisplay),
			AuthorRef:   top.Snippet.AuthorDisplayName,
			PublishedAt: top.Snippet.PublishedAt,
		})
	}

	c.logger.Debug("fetched comment page",
		logger.String("video_id", videoID),
		logger.Int("comments", len(comments)),
		logger.Bool("has_next", parsed.NextPageToken != ""))

	return comments, parsed.NextPageToken, nil
}

// mapStatusError classifies non-200 responses. Quota exhaustion is terminal
// for the run; 5xx is retryable; remaining 4xx are permanent.
func (c *YouTubeClient) mapStatusError(status int, body []byte, videoID string) error {
	reason := errorReason(body)

	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && (reason == "quotaExceeded" || reason == "rateLimitExceeded"):
		return fmt.Errorf("%w: status %d reason %q", domain.ErrQuotaExceeded, status, reason)
	case status == http.StatusNotFound,
		status == http.StatusBadRequest && reason == "videoNotFound":
		return fmt.Errorf("%w: %s", domain.ErrInvalidVideoID, videoID)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: upstream status %d", errRetryable, status)
	default:
		return fmt.Errorf("unexpected status %d reason %q", status, reason)
	}
}

func errorReason(body []byte) string {
	var parsed apiError
	if unmarshalErr := json.Unmarshal(body, &parsed); unmarshalErr != nil {
		return ""
	}

	if len(parsed.Error.Errors) == 0 {
		return ""
	}

	return parsed.Error.Errors[0].Reason
}

func (c *YouTubeClient) pageURL(videoID, pageCursor string) string {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)
	params.Set("maxResults", strconv.Itoa(c.cfg.PageSize))
	params.Set("key", c.cfg.APIKey)

	if pageCursor != "" {
		params.Set("pageToken", pageCursor)
	}

	return c.cfg.BaseURL + commentThreadsPath + "?" + params.Encode()
}
