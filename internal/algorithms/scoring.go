package algorithms

import (
	"fmt"
	"math"

	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/models"
)

// CalculateApplicationScore computes how well a roaster fits a roast request (0-100).
// Weights come from configuration: the balance between specialty match,
// experience, rating, level and reliability is product policy, not code.
func CalculateApplicationScore(
	request *models.RoastRequest,
	profile *models.RoasterProfile,
	stats *models.RoasterStats,
	weights config.ScoringConfig,
) (int, []string) {
	score := 0.0
	reasons := []string{}

	// Focus-area overlap: fraction of the request's focus areas the roaster covers.
	overlap := overlapFraction(request.GetFocusAreas(), profile.GetSpecialties())
	score += float64(weights.FocusMatchWeight) * overlap
	if overlap > 0 {
		reasons = append(reasons, fmt.Sprintf("Covers %.0f%% of requested focus areas", overlap*100))
	}

	// Declared experience tier (junior=0, middle=1, senior=2).
	expTier := models.ExperienceTier(profile.ExperienceLevel)
	score += float64(weights.ExperienceWeight) * float64(expTier) / 2.0
	if expTier > 0 {
		reasons = append(reasons, fmt.Sprintf("Experience level: %s", profile.ExperienceLevel))
	}

	// Average creator rating normalized from 0-5.
	if stats.Rating > 0 {
		score += float64(weights.RatingWeight) * stats.Rating / 5.0
		reasons = append(reasons, fmt.Sprintf("Rated %.1f/5 by creators", stats.Rating))
	}

	// Roaster level derived from completed roast count (rookie=0 .. master=3).
	levelTier := models.LevelTier(stats.Level)
	score += float64(weights.LevelWeight) * float64(levelTier) / 3.0
	if levelTier > 0 {
		reasons = append(reasons, fmt.Sprintf("Level: %s", stats.Level))
	}

	// Historical completion rate of selected roasts.
	if stats.SelectedTotal > 0 {
		score += float64(weights.CompletionRateWeight) * stats.CompletionRate
		reasons = append(reasons, fmt.Sprintf("Completed %.0f%% of selected roasts", stats.CompletionRate*100))
	}

	result := int(math.Round(score))
	if result < 0 {
		result = 0
	}
	if result > 100 {
		result = 100
	}

	return result, reasons
}

// overlapFraction returns the fraction of wanted tags present in offered (0-1).
// An empty wanted set counts as a full match: the request has no preference.
func overlapFraction(wanted, offered []string) float64 {
	if len(wanted) == 0 {
		return 1.0
	}

	offeredSet := make(map[string]bool, len(offered))
	for _, tag := range offered {
		offeredSet[tag] = true
	}

	matched := 0
	for _, tag := range wanted {
		if offeredSet[tag] {
			matched++
		}
	}

	return float64(matched) / float64(len(wanted))
}
