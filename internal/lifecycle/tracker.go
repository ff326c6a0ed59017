package lifecycle

// Tracker holds the status and error shared by every slice, plus the number
// of operations currently in flight. Status stays Loading while any operation
// is pending and is never Loading when none is.
//
// A Tracker is a value owned by its slice state and is not safe for
// concurrent use on its own; slices mutate it under their store lock.
type Tracker struct {
	Status   Status
	Error    string
	inflight int
}

// NewTracker returns a tracker in the Idle status.
func NewTracker() Tracker {
	return Tracker{Status: Idle}
}

// InFlight returns the number of operations that have begun but not settled.
func (t Tracker) InFlight() int { return t.inflight }

// Begin applies the pending phase: error cleared, status loading.
func (t Tracker) Begin() Tracker {
	t.inflight++
	t.Error = ""
	t.Status = Loading
	return t
}

// Succeed applies the fulfilled phase.
func (t Tracker) Succeed() Tracker {
	t = t.settle()
	t.Error = ""
	if t.inflight == 0 {
		t.Status = Succeeded
	}
	return t
}

// Fail applies the rejected phase. Local rejections never went through
// Begin, so they do not settle an in-flight operation.
func (t Tracker) Fail(msg string, local bool) Tracker {
	if !local {
		t = t.settle()
	}
	t.Error = msg
	if t.inflight == 0 {
		t.Status = Failed
	}
	return t
}

func (t Tracker) settle() Tracker {
	if t.inflight > 0 {
		t.inflight--
	}
	return t
}
