package scoring

import "github.com/octobees/leadscout/internal/entity"

const (
	categoryWebsite = "website_status"
	categoryReviews = "reviews"
	categoryRating  = "rating"
	categoryContact = "contact"
	categoryMobile  = "mobile"
)

// Tier thresholds.
const (
	premiumThreshold = 60
	hotThreshold     = 45
	warmThreshold    = 30
)

var websitePoints = map[entity.WebsiteStatus]int{
	entity.WebsiteNone:        40,
	entity.WebsiteBroken:      35,
	entity.WebsitePlaceholder: 30,
	entity.WebsiteOutdated:    25,
	entity.WebsiteActive:      0,
}

// LeadFeatures captures the signals the score is computed from.
type LeadFeatures struct {
	WebsiteStatus    entity.WebsiteStatus
	ReviewCount      int
	Rating           float64
	HasPhone         bool
	MobileResponsive *bool
}

// FeaturesFromLead reads the scoring inputs off a lead.
func FeaturesFromLead(lead entity.Lead) LeadFeatures {
	return LeadFeatures{
		WebsiteStatus:    lead.Verdict.Status,
		ReviewCount:      lead.ReviewCountValue(),
		Rating:           lead.RatingValue(),
		HasPhone:         lead.HasPhone(),
		MobileResponsive: lead.Verdict.MobileResponsive,
	}
}

// ScoreResult reports the aggregate score, its tier and the per-category breakdown.
type ScoreResult struct {
	Total     int
	Hotness   entity.Hotness
	Breakdown map[string]int
}

// ComputeScore evaluates the provided features and returns the score breakdown.
func ComputeScore(input LeadFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryWebsite: scoreWebsiteStatus(input.WebsiteStatus),
		categoryReviews: scoreReviews(input.ReviewCount),
		categoryRating:  scoreRating(input.Rating),
		categoryContact: scoreContact(input.HasPhone),
		categoryMobile:  scoreMobile(input.MobileResponsive),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}

	return ScoreResult{
		Total:     total,
		Hotness:   Tier(total),
		Breakdown: breakdown,
	}
}

// Tier maps a score onto its hotness bucket.
func Tier(score int) entity.Hotness {
	switch {
	case score >= premiumThreshold:
		return entity.HotnessPremium
	case score >= hotThreshold:
		return entity.HotnessHot
	case score >= warmThreshold:
		return entity.HotnessWarm
	default:
		return entity.HotnessCool
	}
}

// Apply scores a lead in place.
func Apply(lead *entity.Lead) ScoreResult {
	result := ComputeScore(FeaturesFromLead(*lead))
	lead.Score = result.Total
	lead.Hotness = result.Hotness
	return result
}

func scoreWebsiteStatus(status entity.WebsiteStatus) int {
	if status == "" {
		status = entity.WebsiteNone
	}
	return websitePoints[status]
}

func scoreReviews(count int) int {
	switch {
	case count >= 100:
		return 20
	case count >= 50:
		return 15
	case count >= 20:
		return 10
	case count >= 5:
		return 5
	default:
		return 0
	}
}

func scoreRating(rating float64) int {
	switch {
	case rating >= 4.5:
		return 10
	case rating >= 4.0:
		return 7
	case rating >= 3.5:
		return 3
	default:
		return 0
	}
}

func scoreContact(hasPhone bool) int {
	if hasPhone {
		return 5
	}
	return 0
}

func scoreMobile(responsive *bool) int {
	if responsive != nil && !*responsive {
		return 10
	}
	return 0
}
