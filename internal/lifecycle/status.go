package lifecycle

import "slices"

// Status is the lifecycle of the most recent asynchronous call on a slice.
type Status string

const (
	Idle      Status = "idle"
	Loading   Status = "loading"
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
)

// validTransitions defines allowed status transitions. Failed is reachable
// from every status because local validation rejects without a pending phase.
var validTransitions = map[Status][]Status{
	Idle:      {Loading, Failed},
	Loading:   {Loading, Succeeded, Failed},
	Succeeded: {Loading, Failed},
	Failed:    {Loading, Failed},
}

// CanTransition reports whether a slice may move from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

func (s Status) String() string { return string(s) }
