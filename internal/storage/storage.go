package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/eugenenazirov/basket-splitter/internal/splitter"
)

var (
	// ErrInvalidEligibility indicates the provided eligibility mapping violates validation rules.
	ErrInvalidEligibility = errors.New("eligibility must map non-empty item names to company names")
)

// Storage provides access to the eligibility index used by the splitter.
type Storage interface {
	GetEligibility() (*splitter.EligibilityIndex, error)
	SetEligibility(eligibility map[string][]string) error
}

// MemoryStorage keeps the eligibility index in-memory and guards access with a RWMutex.
// The stored index is immutable; updates replace it as a whole.
type MemoryStorage struct {
	mu    sync.RWMutex
	index *splitter.EligibilityIndex
}

// NewMemoryStorage initialises storage with an empty eligibility index.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		index: splitter.NewEligibilityIndex(nil),
	}
}

// GetEligibility returns the current index snapshot.
func (s *MemoryStorage) GetEligibility() (*splitter.EligibilityIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index, nil
}

// SetEligibility validates the mapping and replaces the stored index.
func (s *MemoryStorage) SetEligibility(eligibility map[string][]string) error {
	if err := validateEligibility(eligibility); err != nil {
		return err
	}
	index := splitter.NewEligibilityIndex(eligibility)

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	return nil
}

func validateEligibility(eligibility map[string][]string) error {
	if eligibility == nil {
		return fmt.Errorf("%w: mapping is missing", ErrInvalidEligibility)
	}
	for item, companies := range eligibility {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%w: blank item name", ErrInvalidEligibility)
		}
		for _, company := range companies {
			if strings.TrimSpace(company) == "" {
				return fmt.Errorf("%w: blank company for item %q", ErrInvalidEligibility, item)
			}
		}
	}
	return nil
}
