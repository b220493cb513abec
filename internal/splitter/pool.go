package splitter

import (
	"fmt"
	"slices"
)

// Pool maps a company to the items it currently delivers, in assignment order.
type Pool map[string][]string

type tabuSet map[string]struct{}

// Clone returns a deep copy of the pool.
func (p Pool) Clone() Pool {
	out := make(Pool, len(p))
	for company, items := range p {
		out[company] = slices.Clone(items)
	}
	return out
}

// Companies returns the companies in the pool sorted by name.
func (p Pool) Companies() []string {
	companies := make([]string, 0, len(p))
	for company := range p {
		companies = append(companies, company)
	}
	slices.Sort(companies)
	return companies
}

// Group returns the items assigned to company and whether the company is present.
func (p Pool) Group(company string) ([]string, bool) {
	items, ok := p[company]
	return items, ok
}

// Size returns the number of groups.
func (p Pool) Size() int {
	return len(p)
}

// ItemCount returns the number of assigned items across all groups.
func (p Pool) ItemCount() int {
	total := 0
	for _, items := range p {
		total += len(items)
	}
	return total
}

// Largest returns the company with the most items. Ties go to the smaller name.
func (p Pool) Largest() (string, int) {
	company, ok := p.largest(nil)
	if !ok {
		return "", 0
	}
	return company, len(p[company])
}

// smallest returns the non-tabu company with the fewest items, ties broken by name.
func (p Pool) smallest(tabu tabuSet) (string, bool) {
	return p.pick(tabu, func(n, best int) bool { return n < best })
}

// largest returns the non-tabu company with the most items, ties broken by name.
func (p Pool) largest(tabu tabuSet) (string, bool) {
	return p.pick(tabu, func(n, best int) bool { return n > best })
}

func (p Pool) pick(tabu tabuSet, better func(n, best int) bool) (string, bool) {
	var (
		chosen string
		size   int
		found  bool
	)
	for company, items := range p {
		if _, skip := tabu[company]; skip {
			continue
		}
		n := len(items)
		if !found || better(n, size) || (n == size && company < chosen) {
			chosen, size, found = company, n, true
		}
	}
	return chosen, found
}

// prune removes groups left without items.
func (p Pool) prune() {
	for company, items := range p {
		if len(items) == 0 {
			delete(p, company)
		}
	}
}

// withoutItems returns the items not present in claimed, preserving order.
func withoutItems(items []string, claimed map[string]struct{}) []string {
	kept := items[:0:0]
	for _, item := range items {
		if _, ok := claimed[item]; !ok {
			kept = append(kept, item)
		}
	}
	return kept
}

func itemSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// HasRepeatedItems reports whether any item appears in more than one group.
func (p Pool) HasRepeatedItems() bool {
	_, repeated := p.firstRepeated()
	return repeated
}

func (p Pool) firstRepeated() (string, bool) {
	owner := make(map[string]string)
	for _, company := range p.Companies() {
		for _, item := range p[company] {
			if prev, ok := owner[item]; ok && prev != company {
				return item, true
			}
			owner[item] = company
		}
	}
	return "", false
}

// Validate checks that every assignment is allowed by index and that no item is
// delivered by two companies.
func (p Pool) Validate(index *EligibilityIndex) error {
	for _, company := range p.Companies() {
		for _, item := range p[company] {
			if !index.CanDeliver(item, company) {
				return fmt.Errorf("%w: %q by %q", ErrIllegalAssignment, item, company)
			}
		}
	}
	if item, ok := p.firstRepeated(); ok {
		return fmt.Errorf("%w: %q", ErrRepeatedItem, item)
	}
	return nil
}

// Equivalent reports whether both pools hold the same companies with the same
// items, ignoring item order inside a group.
func (p Pool) Equivalent(other Pool) bool {
	if len(p) != len(other) {
		return false
	}
	for company, items := range p {
		theirs, ok := other[company]
		if !ok || len(items) != len(theirs) {
			return false
		}
		a, b := slices.Clone(items), slices.Clone(theirs)
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}
