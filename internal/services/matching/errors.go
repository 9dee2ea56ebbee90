package matching

import "fmt"

// ValidationError rejects a request before any matching is done.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// UnparseableRecordError describes a ledger row whose date or amount could
// not be normalized. The row is excluded from matching and reported.
type UnparseableRecordError struct {
	Side  Side   `json:"side"`
	Row   int    `json:"row"`
	ID    string `json:"id,omitempty"`
	Field string `json:"field"`
	Value string `json:"value"`
}

func (e *UnparseableRecordError) Error() string {
	return fmt.Sprintf("%s row %d: cannot parse %s %q", e.Side, e.Row, e.Field, e.Value)
}

// NotPendingError is returned when a manual match targets a transaction that
// is already matched or does not exist in the run.
type NotPendingError struct {
	Side   Side
	ID     string
	Reason string
}

func (e *NotPendingError) Error() string {
	return fmt.Sprintf("%s transaction %q is not pending: %s", e.Side, e.ID, e.Reason)
}

// ConcurrentModificationError is returned when a manual match lost a race on
// the run's version. The caller should reload pending state and retry.
type ConcurrentModificationError struct {
	RunID string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("run %s was modified concurrently", e.RunID)
}
