package splitter

import "errors"

var (
	// ErrInconsistentPool is returned when the delivery pool loses track of a group it
	// just selected. It signals a programming error; the split is aborted.
	ErrInconsistentPool = errors.New("delivery pool is in an inconsistent state")
	// ErrIllegalAssignment is returned by validation when an item is assigned to a
	// company that is not allowed to deliver it.
	ErrIllegalAssignment = errors.New("item assigned to a company that cannot deliver it")
	// ErrRepeatedItem is returned by validation when an item appears in more than one group.
	ErrRepeatedItem = errors.New("item assigned to more than one company")
)
