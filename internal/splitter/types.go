package splitter

// Result is the outcome of splitting a single basket.
// Deliveries holds the company groups; Unassigned lists, in basket order, the
// items no company is allowed to deliver.
type Result struct {
	Deliveries Pool
	Unassigned []string
}

// Splitter describes the behaviour required from a basket splitter.
type Splitter interface {
	Split(basket []string, index *EligibilityIndex) (Result, error)
}
