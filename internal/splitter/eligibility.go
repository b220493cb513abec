package splitter

import (
	"slices"
	"strings"
)

// EligibilityIndex maps an item to the companies allowed to deliver it.
// It is immutable once built, so a single index may be shared by concurrent splits.
// A nil index behaves like an empty one.
type EligibilityIndex struct {
	companies map[string][]string
	allowed   map[string]map[string]struct{}
}

// NewEligibilityIndex builds an index from a raw item -> companies mapping.
// Company order is preserved, repeated and blank company names are skipped.
func NewEligibilityIndex(raw map[string][]string) *EligibilityIndex {
	idx := &EligibilityIndex{
		companies: make(map[string][]string, len(raw)),
		allowed:   make(map[string]map[string]struct{}, len(raw)),
	}
	for item, companies := range raw {
		set := make(map[string]struct{}, len(companies))
		ordered := make([]string, 0, len(companies))
		for _, company := range companies {
			if strings.TrimSpace(company) == "" {
				continue
			}
			if _, seen := set[company]; seen {
				continue
			}
			set[company] = struct{}{}
			ordered = append(ordered, company)
		}
		idx.companies[item] = ordered
		idx.allowed[item] = set
	}
	return idx
}

// CanDeliver reports whether company may deliver item.
func (idx *EligibilityIndex) CanDeliver(item, company string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.allowed[item][company]
	return ok
}

// Companies returns a copy of the companies eligible for item in configuration order.
func (idx *EligibilityIndex) Companies(item string) []string {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.companies[item])
}

// Len returns the number of items known to the index.
func (idx *EligibilityIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.companies)
}

// Items returns the known items sorted by name.
func (idx *EligibilityIndex) Items() []string {
	if idx == nil {
		return []string{}
	}
	items := make([]string, 0, len(idx.companies))
	for item := range idx.companies {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// Map returns a deep copy of the underlying mapping.
func (idx *EligibilityIndex) Map() map[string][]string {
	if idx == nil {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(idx.companies))
	for item, companies := range idx.companies {
		out[item] = slices.Clone(companies)
	}
	return out
}

func (idx *EligibilityIndex) eligible(item string) []string {
	if idx == nil {
		return nil
	}
	return idx.companies[item]
}
