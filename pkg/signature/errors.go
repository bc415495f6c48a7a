package signature

import "fmt"

// IndexedError names the item of a batch that caused an operation to
// fail, so callers can drop or report it.
type IndexedError struct {
	Index  int
	Reason string
	Err    error
}

func (e *IndexedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("item %d: %s: %v", e.Index, e.Reason, e.Err)
	}
	return fmt.Sprintf("item %d: %s", e.Index, e.Reason)
}

func (e *IndexedError) Unwrap() error {
	return e.Err
}

// NewIndexedError creates a new IndexedError.
func NewIndexedError(index int, reason string, err error) *IndexedError {
	return &IndexedError{
		Index:  index,
		Reason: reason,
		Err:    err,
	}
}
