package resolver

import (
	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/shared"
)

// Quota bounds: every artist contributes at least one and at most ten
// tracks, whatever the caller asks for.
const (
	minQuota = 1
	maxQuota = 10
)

// tierDefaults maps poster prominence to the tier-based track quota.
var tierDefaults = map[models.Tier]int{
	models.TierHeadliner:    10,
	models.TierSubHeadliner: 5,
	models.TierMidTier:      3,
	models.TierUndercard:    1,
}

// noTierDefault applies when the poster analysis produced no tier.
const noTierDefault = 3

// TrackQuota returns how many tracks to fetch for one artist under the
// given options. First applicable source wins; modes are mutually
// exclusive per call, so a per-artist override is only consulted under
// per-artist mode even when the map is populated.
func TrackQuota(artist models.Artist, opts models.TrackCountOptions) int {
	switch opts.Mode {
	case models.CountPerArtist:
		if count, ok := opts.PerArtistCounts[artist.Name]; ok {
			return shared.Clamp(count, minQuota, maxQuota)
		}
	case models.CountCustomPerTier:
		if count, ok := opts.TierCounts[artist.Tier]; ok {
			return shared.Clamp(count, minQuota, maxQuota)
		}
	case models.CountCustom:
		if opts.CustomCount > 0 {
			return shared.Clamp(opts.CustomCount, minQuota, maxQuota)
		}
	}

	if count, ok := tierDefaults[artist.Tier]; ok {
		return count
	}
	return noTierDefault
}
