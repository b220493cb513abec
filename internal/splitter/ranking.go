package splitter

import (
	"cmp"
	"slices"
)

// CompanyCapacity is the number of basket items a company is eligible to deliver.
type CompanyCapacity struct {
	Company string
	Items   int
}

// Ranking orders companies by capacity, highest first.
type Ranking []CompanyCapacity

// BuildRanking counts, for every company, how many basket items it may deliver.
// Repeated basket items are counted once per occurrence. Companies with equal
// counts are ordered by name so the seed assignment is reproducible.
func BuildRanking(basket []string, index *EligibilityIndex) Ranking {
	counts := make(map[string]int)
	for _, item := range basket {
		for _, company := range index.eligible(item) {
			counts[company]++
		}
	}

	ranking := make(Ranking, 0, len(counts))
	for company, n := range counts {
		ranking = append(ranking, CompanyCapacity{Company: company, Items: n})
	}
	slices.SortFunc(ranking, func(a, b CompanyCapacity) int {
		if a.Items != b.Items {
			return cmp.Compare(b.Items, a.Items)
		}
		return cmp.Compare(a.Company, b.Company)
	})
	return ranking
}

// FirstEligible returns the highest ranked company allowed to deliver item.
func (r Ranking) FirstEligible(item string, index *EligibilityIndex) (string, bool) {
	for _, entry := range r {
		if index.CanDeliver(item, entry.Company) {
			return entry.Company, true
		}
	}
	return "", false
}
