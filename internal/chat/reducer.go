package chat

import "fmt"

// Reduce returns the state that results from applying a to s. The caller
// owns s; Messages may be appended in place.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Pending:
		s.Tracker = s.Tracker.Begin()
	case Rejected:
		s.Tracker = s.Tracker.Fail(a.Err, a.Local)
	case MessageReceived:
		s.Messages = append(s.Messages, a.Message)
		s.Tracker = s.Tracker.Succeed()
	case FileUploaded:
		s.Tracker = s.Tracker.Succeed()
	case HistoryCleared:
		s.Messages = nil
		s.Tracker = s.Tracker.Succeed()
	case MessageAdded:
		s.Messages = append(s.Messages, a.Message)
	case MessagesCleared:
		s.Messages = nil
		s.Error = ""
	default:
		panic(fmt.Sprintf("chat: unhandled action %T", a))
	}
	return s
}
