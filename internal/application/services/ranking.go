package services

import (
	"sort"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/geo"
)

// RankByDistance annotates providers with their distance from the search
// origin and returns them sorted ascending. A provider without exactly two
// coordinate values gets a nil distance and sorts after every provider with
// one; relative input order is preserved among equal distances and among
// nil distances.
func RankByDistance(providerList []*entities.Provider, origin entities.Location) []entities.RankedCandidate {
	ranked := make([]entities.RankedCandidate, 0, len(providerList))
	for _, p := range providerList {
		if p == nil {
			continue
		}
		candidate := entities.RankedCandidate{Provider: *p}
		if loc, ok := p.Location.LatLng(); ok {
			d := geo.Distance(origin, loc)
			candidate.Distance = &d
			candidate.DistanceLabel = geo.FormatDistance(d)
		}
		ranked = append(ranked, candidate)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := ranked[i].Distance, ranked[j].Distance
		if di != nil && dj != nil {
			return *di < *dj
		}
		return di != nil && dj == nil
	})

	return ranked
}

// ApplyStarFilter removes candidates whose average rating is below the
// threshold. It never reorders; a candidate without a summary counts as
// rating zero. A threshold of zero or less disables the filter.
func ApplyStarFilter(candidates []entities.RankedCandidate, summaries map[string]entities.ReviewSummary, minStars int) []entities.RankedCandidate {
	if minStars <= 0 {
		return candidates
	}

	filtered := make([]entities.RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		rating := 0.0
		if summary, ok := summaries[c.ID]; ok {
			rating = summary.AverageRating
		}
		if rating >= float64(minStars) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
