// Package selection samples a quota of tracks from an artist's top-tracks
// listing.
//
// Platforms return top tracks already ranked by popularity, so the pool a
// mode carves out of that ordering controls how adventurous the final
// playlist feels: popular leans on the chart-toppers, deep-cuts trims them,
// balanced keeps everything eligible. The pool is then shuffled and the
// first quota tracks are taken, which intentionally randomizes playlist
// variety between runs.
package selection

import (
	"math"
	"math/rand"

	"github.com/soundslike/marquee/internal/models"
)

// Tracks samples up to quota tracks from candidates according to mode.
//
// The result length is min(quota, len(candidates)), with no duplicates and
// no ordering guarantee. rng may be nil, in which case the shared global
// source is used; tests inject a seeded source for determinism. The input
// slice is never mutated.
func Tracks(candidates []models.Track, quota int, mode models.SelectionMode, rng *rand.Rand) []models.Track {
	if len(candidates) == 0 || quota <= 0 {
		return []models.Track{}
	}

	pool := pickPool(candidates, quota, mode)

	sampled := make([]models.Track, len(pool))
	copy(sampled, pool)
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})

	if quota < len(sampled) {
		sampled = sampled[:quota]
	}
	return sampled
}

// pickPool carves the eligible slice out of the popularity-ranked
// candidates.
func pickPool(candidates []models.Track, quota int, mode models.SelectionMode) []models.Track {
	n := len(candidates)

	switch mode {
	case models.SelectPopular:
		// Keep the well-known half, but never a pool smaller than the
		// quota itself.
		size := int(math.Ceil(0.5 * float64(n)))
		if size < quota {
			size = quota
		}
		if size > n {
			size = n
		}
		return candidates[:size]

	case models.SelectDeepCuts:
		// Skip the most obvious hits; fall back to the full list when the
		// tail alone cannot satisfy the quota.
		skip := int(math.Floor(0.2 * float64(n)))
		tail := candidates[skip:]
		if len(tail) < quota {
			return candidates
		}
		return tail

	default:
		return candidates
	}
}
