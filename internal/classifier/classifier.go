// Package classifier provides sentiment backends for comment text.
package classifier

import (
	"context"
	"fmt"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/config"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

// Classifier assigns a sentiment label and score in [-1, 1] to a piece of
// text. Implementations return domain.ErrClassification on backend failure.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Label, float64, error)
}

// New builds the classifier selected by the configuration.
func New(cfg config.ClassifierConfig, log logger.Logger) (Classifier, error) {
	switch cfg.Backend {
	case config.BackendLexicon:
		return NewLexicon(cfg.LexiconPath, log)
	case config.BackendRemote:
		return NewRemote(cfg.RemoteURL, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
}
