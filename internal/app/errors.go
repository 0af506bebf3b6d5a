package app

import "fmt"

// PartialFailureError reports a confirmed sync in which some contacts could
// not be registered. Returned to the CLI only when the operator asks for it.
type PartialFailureError struct {
	Failed    int
	Succeeded int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d registrations failed (%d succeeded)", e.Failed, e.Succeeded)
}
