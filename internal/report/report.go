// Package report renders split results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/eugenenazirov/basket-splitter/internal/splitter"
)

// Summary aggregates a split result.
type Summary struct {
	GroupCount    int    `json:"groupCount"`
	LargestGroup  string `json:"largestGroup,omitempty"`
	LargestSize   int    `json:"largestSize"`
	AssignedItems int    `json:"assignedItems"`
	Unassigned    int    `json:"unassignedItems"`
}

// Summarize derives group statistics from result.
func Summarize(result splitter.Result) Summary {
	largest, size := result.Deliveries.Largest()
	return Summary{
		GroupCount:    result.Deliveries.Size(),
		LargestGroup:  largest,
		LargestSize:   size,
		AssignedItems: result.Deliveries.ItemCount(),
		Unassigned:    len(result.Unassigned),
	}
}

// WriteText prints one block per company, companies sorted by name.
func WriteText(w io.Writer, result splitter.Result) error {
	ew := &errWriter{w: w}
	for _, company := range result.Deliveries.Companies() {
		ew.printf("Company: %s\n", company)
		ew.printf("Items:\n")
		for _, item := range result.Deliveries[company] {
			ew.printf("- %s\n", item)
		}
		ew.printf("\n")
	}
	if len(result.Unassigned) > 0 {
		ew.printf("Unassigned:\n")
		for _, item := range result.Unassigned {
			ew.printf("- %s\n", item)
		}
		ew.printf("\n")
	}
	return ew.err
}

type jsonResult struct {
	Deliveries map[string][]string `json:"deliveries"`
	Unassigned []string            `json:"unassigned"`
	Summary    Summary             `json:"summary"`
}

// WriteJSON prints result as an indented JSON document.
func WriteJSON(w io.Writer, result splitter.Result) error {
	doc := jsonResult{
		Deliveries: make(map[string][]string, result.Deliveries.Size()),
		Unassigned: slices.Clone(result.Unassigned),
		Summary:    Summarize(result),
	}
	for company, items := range result.Deliveries {
		doc.Deliveries[company] = slices.Clone(items)
	}
	if doc.Unassigned == nil {
		doc.Unassigned = []string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
