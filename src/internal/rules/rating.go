package rules

import (
	"fmt"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
)

const MaxStars = 5

var RatingLabels = [3]string{"Stage presence", "Technical execution", "Music and timing"}

// AverageRating averages the ratings that are set (> 0). Unset ratings are
// skipped, not counted as zero. Returns 0 when nothing is rated.
func AverageRating(t model.Team) float64 {
	r := t.TechRehearsalRating
	if r == nil {
		return 0
	}
	sum, n := 0, 0
	for _, v := range []int{r.Rating1, r.Rating2, r.Rating3} {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func ValidateRating(r model.TechRehearsalRating) []string {
	var errs []string
	for i, v := range []int{r.Rating1, r.Rating2, r.Rating3} {
		if v < 0 || v > MaxStars {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and %d", RatingLabels[i], MaxStars))
		}
	}
	return errs
}

const (
	MaxCriterionScore = 10
	MaxStyleBonus     = 5
)

// ValidateScoring checks bounds of each criterion and returns the scoring
// with its total recomputed.
func ValidateScoring(s model.Scoring) (model.Scoring, []string) {
	var errs []string
	check := func(name string, v, limit float64) {
		if v < 0 || v > limit {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and %g", name, limit))
		}
	}
	check("group_size_score", s.GroupSizeScore, MaxCriterionScore)
	check("wow_factor_score", s.WowFactorScore, MaxCriterionScore)
	check("technical_score", s.TechnicalScore, MaxCriterionScore)
	check("style_variety_bonus", s.StyleVarietyBonus, MaxStyleBonus)

	s.TotalScore = s.GroupSizeScore + s.WowFactorScore + s.TechnicalScore + s.StyleVarietyBonus
	return s, errs
}
