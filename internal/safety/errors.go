package safety

import "fmt"

// UnsortedEventsError reports tide events that are not in ascending time
// order. This is a programming error in the caller, not a data problem.
type UnsortedEventsError struct {
	Index int // events[Index] starts before events[Index-1]
}

func (e *UnsortedEventsError) Error() string {
	return fmt.Sprintf("tide events out of order at index %d", e.Index)
}

func NewUnsortedEventsError(index int) *UnsortedEventsError {
	return &UnsortedEventsError{Index: index}
}
