package classifier

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

// Label thresholds on the clamped score.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// negationWindow is how many preceding tokens a negator reaches.
const negationWindow = 2

// negators flip the valence of nearby sentiment words.
var negators = map[string]bool{
	"not":    true,
	"no":     true,
	"never":  true,
	"hardly": true,
	"dont":   true,
	"didnt":  true,
	"wont":   true,
	"isnt":   true,
	"wasnt":  true,
	"cant":   true,
}

// defaultLexicon is the built-in word valence table, used when no lexicon
// file is configured.
var defaultLexicon = map[string]float64{
	"amazing":     0.9,
	"awesome":     0.9,
	"excellent":   0.9,
	"perfect":     0.9,
	"love":        0.8,
	"loved":       0.8,
	"best":        0.8,
	"brilliant":   0.8,
	"fantastic":   0.8,
	"great":       0.7,
	"wonderful":   0.7,
	"helpful":     0.6,
	"good":        0.5,
	"nice":        0.5,
	"like":        0.4,
	"thanks":      0.4,
	"interesting": 0.3,
	"fine":        0.2,
	"okay":        0.1,
	"meh":         -0.2,
	"boring":      -0.4,
	"slow":        -0.3,
	"bad":         -0.5,
	"annoying":    -0.5,
	"poor":        -0.5,
	"dislike":     -0.5,
	"waste":       -0.6,
	"misleading":  -0.6,
	"wrong":       -0.4,
	"hate":        -0.8,
	"hated":       -0.8,
	"awful":       -0.8,
	"terrible":    -0.8,
	"horrible":    -0.8,
	"worst":       -0.9,
	"garbage":     -0.9,
	"trash":       -0.8,
	"scam":        -0.9,
}

// lexiconFile is the on-disk override format.
type lexiconFile struct {
	Words map[string]float64 `yaml:"words"`
}

// Lexicon is an in-process classifier that scores text by summing word
// valences, with simple negation handling.
type Lexicon struct {
	words  map[string]float64
	logger logger.Logger
}

// NewLexicon creates a lexicon classifier. A non-empty path loads word
// valences from a YAML file and merges them over the built-in table.
func NewLexicon(path string, log logger.Logger) (*Lexicon, error) {
	words := make(map[string]float64, len(defaultLexicon))
	for word, valence := range defaultLexicon {
		words[word] = valence
	}

	if path != "" {
		loaded, loadErr := loadLexiconFile(path)
		if loadErr != nil {
			return nil, loadErr
		}

		for word, valence := range loaded {
			words[strings.ToLower(word)] = clamp(valence)
		}

		log.Info("loaded lexicon overrides",
			logger.String("path", path),
			logger.Int("words", len(loaded)))
	}

	return &Lexicon{words: words, logger: log}, nil
}

func loadLexiconFile(path string) (map[string]float64, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("read lexicon file: %w", readErr)
	}

	var parsed lexiconFile
	if unmarshalErr := yaml.Unmarshal(data, &parsed); unmarshalErr != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", unmarshalErr)
	}

	return parsed.Words, nil
}

// Classify scores the text. Empty or whitespace-only text is neutral with
// score zero.
func (l *Lexicon) Classify(_ context.Context, text string) (domain.Label, float64, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return domain.LabelNeutral, 0, nil
	}

	var (
		sum     float64
		matched int
	)

	for i, token := range tokens {
		valence, ok := l.words[token]
		if !ok {
			continue
		}

		if negated(tokens, i) {
			valence = -valence
		}

		sum += valence
		matched++
	}

	if matched == 0 {
		return domain.LabelNeutral, 0, nil
	}

	score := clamp(sum / float64(matched))

	return labelFor(score), score, nil
}

// negated reports whether a negator appears within the window before the
// token at index i.
func negated(tokens []string, i int) bool {
	start := i - negationWindow
	if start < 0 {
		start = 0
	}

	for _, token := range tokens[start:i] {
		if negators[token] {
			return true
		}
	}

	return false
}

// tokenize lowercases and splits on non-letter runs, dropping apostrophes so
// contractions match the negator table.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '\'', r == '’':
			return -1
		default:
			return ' '
		}
	}, text)

	return strings.Fields(cleaned)
}

func labelFor(score float64) domain.Label {
	switch {
	case score > positiveThreshold:
		return domain.LabelPositive
	case score < negativeThreshold:
		return domain.LabelNegative
	default:
		return domain.LabelNeutral
	}
}

func clamp(score float64) float64 {
	switch {
	case score > 1:
		return 1
	case score < -1:
		return -1
	default:
		return score
	}
}
