package usecase

import (
	"context"
	"sort"

	"github.com/antzucaro/matchr"
	"github.com/rs/zerolog"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// SimilarityConfig holds configuration for the similarity service
type SimilarityConfig struct {
	MinSimilarity      float64
	MaxLengthDelta     int
	EnableDebugLogging bool
}

// SimilarityService finds distinct groups whose keys are suspiciously close,
// e.g. "aulaf75" and "aulaf75pro" or a vendor typo. It only reports pairs;
// fixing them is a matter of extending the noise table.
type SimilarityService struct {
	minSimilarity      float64
	maxLengthDelta     int
	enableDebugLogging bool
	logger             zerolog.Logger
}

// NewSimilarityService creates a new similarity service with the given configuration
func NewSimilarityService(config SimilarityConfig) *SimilarityService {
	threshold := config.MinSimilarity
	if threshold <= 0 || threshold > 1 {
		threshold = 0.92 // Default Jaro-Winkler threshold
	}

	lengthDelta := config.MaxLengthDelta
	if lengthDelta <= 0 {
		lengthDelta = 4 // Default max key length difference
	}

	return &SimilarityService{
		minSimilarity:      threshold,
		maxLengthDelta:     lengthDelta,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logx.Component("similarity"),
	}
}

// NearDuplicates returns pairs of groups whose keys have a Jaro-Winkler
// similarity at or above the threshold, most similar first.
func (s *SimilarityService) NearDuplicates(ctx context.Context, groups []domain.ProductGroup) ([]domain.SimilarPair, error) {
	var pairs []domain.SimilarPair

	for i := 0; i < len(groups); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		left := groups[i]
		if left.Key == "" {
			continue
		}

		for j := i + 1; j < len(groups); j++ {
			right := groups[j]
			if right.Key == "" || right.Key == left.Key {
				continue
			}

			// Quick length check - very different lengths are different models
			if abs(len(left.Key)-len(right.Key)) > s.maxLengthDelta {
				continue
			}

			similarity := matchr.JaroWinkler(left.Key, right.Key, false)
			if similarity < s.minSimilarity {
				continue
			}

			pair := domain.SimilarPair{
				LeftKey:      left.Key,
				LeftName:     left.DisplayName,
				RightKey:     right.Key,
				RightName:    right.DisplayName,
				Similarity:   similarity,
				EditDistance: matchr.Levenshtein(left.Key, right.Key),
			}
			pairs = append(pairs, pair)

			if s.enableDebugLogging {
				s.logger.Debug().
					Str("left", left.Key).
					Str("right", right.Key).
					Float64("similarity", similarity).
					Msg("near duplicate")
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].LeftKey != pairs[j].LeftKey {
			return pairs[i].LeftKey < pairs[j].LeftKey
		}
		return pairs[i].RightKey < pairs[j].RightKey
	})

	return pairs, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
