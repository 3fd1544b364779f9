package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/api"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
)

type mockReader struct {
	getFunc func(videoID string) (*domain.Aggregate, error)
}

func (m *mockReader) GetAggregate(_ context.Context, videoID string) (*domain.Aggregate, error) {
	return m.getFunc(videoID)
}

func setupAggregateRouter(t *testing.T, reader api.AggregateReader) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/api/v1/videos/:videoId/aggregate", api.NewAggregateHandler(reader).GetAggregate)

	return router
}

func TestGetAggregate(t *testing.T) {
	reader := &mockReader{getFunc: func(videoID string) (*domain.Aggregate, error) {
		return &domain.Aggregate{
			VideoID: videoID, TotalCount: 7, PositiveCount: 4,
			NegativeCount: 2, NeutralCount: 1, MeanScore: 0.31,
		}, nil
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1/aggregate", nil)
	setupAggregateRouter(t, reader).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var agg domain.Aggregate
	if err := json.Unmarshal(rec.Body.Bytes(), &agg); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if agg.VideoID != "vid-1" || agg.TotalCount != 7 {
		t.Errorf("aggregate = %+v", agg)
	}
}

func TestGetAggregateNotFound(t *testing.T) {
	reader := &mockReader{getFunc: func(string) (*domain.Aggregate, error) { return nil, nil }}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/unknown/aggregate", nil)
	setupAggregateRouter(t, reader).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetAggregateStoreError(t *testing.T) {
	reader := &mockReader{getFunc: func(string) (*domain.Aggregate, error) {
		return nil, errors.New("connection refused")
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1/aggregate", nil)
	setupAggregateRouter(t, reader).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
