package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// LoadEligibility reads an item -> companies mapping from a JSON file such as
//
//	{"Cookies": ["Courier", "Parcel locker"], "Steak": ["Express Collection"]}
func LoadEligibility(path string) (map[string][]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	eligibility, err := ReadEligibility(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return eligibility, nil
}

// ReadEligibility decodes an item -> companies mapping. A null company list is
// treated as an item no company can deliver.
func ReadEligibility(r io.Reader) (map[string][]string, error) {
	var raw map[string][]string
	if err := decode(r, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}
	for item, companies := range raw {
		if companies == nil {
			raw[item] = []string{}
		}
	}
	return raw, nil
}

// LoadBasket reads a JSON array of item names from a file.
func LoadBasket(path string) ([]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	basket, err := ReadBasket(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return basket, nil
}

// ReadBasket decodes a JSON array of item names. Repeated items are kept.
func ReadBasket(r io.Reader) ([]string, error) {
	var basket []string
	if err := decode(r, &basket); err != nil {
		return nil, err
	}
	if basket == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformed)
	}
	return basket, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON value", ErrMalformed)
	}
	return nil
}
