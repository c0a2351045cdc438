package entities

import "time"

// Review is a single patient review of a provider
type Review struct {
	ID         string     `json:"id,omitempty"`
	ProviderID string     `json:"providerId,omitempty"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
	User       ReviewUser `json:"userId"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
}

// ReviewUser carries the display name of the reviewing user. The field is
// serialized as "userId" to match the directory API contract.
type ReviewUser struct {
	Name string `json:"name"`
}

// ReviewSummary aggregates a provider's reviews
type ReviewSummary struct {
	AverageRating float64  `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
	Reviews       []Review `json:"reviews"`
}

// ZeroReviewSummary returns the summary used when review data could not be
// loaded. The entry is present with zero values rather than absent so star
// filtering and "no reviews yet" rendering always have a defined input.
func ZeroReviewSummary() ReviewSummary {
	return ReviewSummary{Reviews: []Review{}}
}
