package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

func TestRemoteClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/classify" {
			t.Errorf("request = %s %s, want POST /classify", r.Method, r.URL.Path)
		}

		fmt.Fprint(w, `{"label":"negative","score":-0.72}`)
	}))
	defer server.Close()

	remote := NewRemote(server.URL, 5*time.Second, logger.NewNop())

	label, score, err := remote.Classify(context.Background(), "this was dreadful")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if label != domain.LabelNegative {
		t.Errorf("label = %q, want negative", label)
	}
	if score != -0.72 {
		t.Errorf("score = %v, want -0.72", score)
	}
}

func TestRemoteClassifyEmptyTextSkipsService(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"label":"positive","score":1}`)
	}))
	defer server.Close()

	remote := NewRemote(server.URL, 5*time.Second, logger.NewNop())

	for _, text := range []string{"", "   ", "\t\n"} {
		label, score, err := remote.Classify(context.Background(), text)
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", text, err)
		}
		if label != domain.LabelNeutral || score != 0 {
			t.Errorf("Classify(%q) = (%q, %v), want (neutral, 0)", text, label, score)
		}
	}

	if got := calls.Load(); got != 0 {
		t.Errorf("service calls = %d, want 0", got)
	}
}

func TestRemoteClassifyFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model unavailable", http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"label":`)
			},
		},
		{
			name: "unknown label",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"label":"ambivalent","score":0.1}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			remote := NewRemote(server.URL, 5*time.Second, logger.NewNop())

			if _, _, err := remote.Classify(context.Background(), "some text"); !errors.Is(err, domain.ErrClassification) {
				t.Fatalf("error = %v, want ErrClassification", err)
			}
		})
	}
}

func TestRemoteClassifyUnreachable(t *testing.T) {
	remote := NewRemote("http://127.0.0.1:1", 500*time.Millisecond, logger.NewNop())

	if _, _, err := remote.Classify(context.Background(), "some text"); !errors.Is(err, domain.ErrClassification) {
		t.Fatalf("error = %v, want ErrClassification", err)
	}
}
