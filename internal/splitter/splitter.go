package splitter

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxStaleIterations bounds how many consecutive consolidation attempts may
// fail before the search stops.
const DefaultMaxStaleIterations = 100

type phase int

const (
	phaseSeed phase = iota
	phaseConsolidate
	phaseSkim
)

func (p phase) String() string {
	switch p {
	case phaseSeed:
		return "seed"
	case phaseConsolidate:
		return "consolidate"
	case phaseSkim:
		return "skim"
	default:
		return "unknown"
	}
}

type heuristicSplitter struct {
	maxStale int
	logger   *zap.Logger
}

// Option configures the splitter returned by New.
type Option func(*heuristicSplitter)

// WithMaxStaleIterations overrides the number of non-improving consolidation
// attempts tolerated before the split returns. Non-positive values are ignored.
func WithMaxStaleIterations(n int) Option {
	return func(s *heuristicSplitter) {
		if n > 0 {
			s.maxStale = n
		}
	}
}

// WithLogger sets the logger used for phase tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(s *heuristicSplitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Splitter based on greedy seeding followed by local search.
func New(opts ...Option) Splitter {
	s := &heuristicSplitter{
		maxStale: DefaultMaxStaleIterations,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split assigns every deliverable basket item to exactly one company.
//
// Items are first seeded into the highest-capacity eligible company. The search
// then repeatedly tries to dissolve the smallest group into the other groups and,
// after every successful dissolution, lets the largest groups claim contested
// items. It stops after maxStale consecutive failed dissolutions.
func (s *heuristicSplitter) Split(basket []string, index *EligibilityIndex) (Result, error) {
	if len(basket) == 0 {
		return Result{Deliveries: Pool{}, Unassigned: []string{}}, nil
	}
	if index.Len() == 0 {
		s.logger.Warn("eligibility index is empty, no items can be assigned",
			zap.Int("basket_size", len(basket)))
	}

	var (
		pool       Pool
		unassigned []string
		stale      int
		tabu       = make(tabuSet)
		state      = phaseSeed
	)

	for {
		switch state {
		case phaseSeed:
			ranking := BuildRanking(basket, index)
			pool, unassigned = seed(basket, ranking, index)
			s.logger.Debug("seeded delivery pool",
				zap.Int("companies", len(ranking)),
				zap.Int("groups", len(pool)),
				zap.Int("unassigned", len(unassigned)))
			state = phaseConsolidate

		case phaseConsolidate:
			if stale > s.maxStale || len(pool) == 0 {
				pool.prune()
				if unassigned == nil {
					unassigned = []string{}
				}
				return Result{Deliveries: pool, Unassigned: unassigned}, nil
			}

			size := len(pool)
			company, ok := pool.smallest(tabu)
			if !ok {
				clear(tabu)
				continue
			}
			tabu[company] = struct{}{}

			next, improved := consolidate(pool, index, company)
			if improved {
				s.logger.Debug("dissolved group",
					zap.String("company", company),
					zap.Int("groups", len(next)))
				pool = next
				stale = 0
				state = phaseSkim
			} else {
				stale++
			}
			if len(tabu) == size {
				clear(tabu)
			}

		case phaseSkim:
			if err := skim(pool); err != nil {
				return Result{}, err
			}
			clear(tabu)
			state = phaseConsolidate
		}
	}
}

// seed places each basket item into the first eligible company of the ranking.
// Items without an eligible company are returned separately.
func seed(basket []string, ranking Ranking, index *EligibilityIndex) (Pool, []string) {
	pool := make(Pool, len(ranking))
	var unassigned []string
	for _, item := range basket {
		company, ok := ranking.FirstEligible(item, index)
		if !ok {
			unassigned = append(unassigned, item)
			continue
		}
		pool[company] = append(pool[company], item)
	}
	return pool, unassigned
}

// consolidate tries to dissolve the group of company by copying each of its items
// into every other group that may deliver it. It returns a new pool without the
// group when every item found another home, and the original pool otherwise.
// Copied items may now appear in several groups; skim resolves that.
func consolidate(pool Pool, index *EligibilityIndex, company string) (Pool, bool) {
	items, ok := pool.Group(company)
	if !ok {
		return pool, false
	}

	others := make([]string, 0, len(pool)-1)
	for _, other := range pool.Companies() {
		if other != company {
			others = append(others, other)
		}
	}

	for _, item := range items {
		if !anyEligible(item, others, index) {
			return pool, false
		}
	}

	next := pool.Clone()
	for _, item := range items {
		for _, other := range others {
			if index.CanDeliver(item, other) {
				next[other] = append(next[other], item)
			}
		}
	}
	delete(next, company)
	return next, true
}

func anyEligible(item string, companies []string, index *EligibilityIndex) bool {
	for _, company := range companies {
		if index.CanDeliver(item, company) {
			return true
		}
	}
	return false
}

// skim walks the groups from largest to smallest. Each group in turn removes its
// items from every group not yet visited, so an item shared by several groups
// stays only with the largest of them.
func skim(pool Pool) error {
	visited := make(tabuSet, len(pool))
	for {
		dominant, ok := pool.largest(visited)
		if !ok {
			return nil
		}
		claimed, ok := pool.Group(dominant)
		if !ok {
			return fmt.Errorf("%w: dominant group %q not found", ErrInconsistentPool, dominant)
		}

		owned := itemSet(claimed)
		for company, items := range pool {
			if company == dominant {
				continue
			}
			if _, done := visited[company]; done {
				continue
			}
			pool[company] = withoutItems(items, owned)
		}
		visited[dominant] = struct{}{}
	}
}
