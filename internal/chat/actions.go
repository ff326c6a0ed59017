package chat

// Operation names.
const (
	OpSendMessage  = "chat/sendMessage"
	OpUploadFile   = "chat/uploadFile"
	OpClearHistory = "chat/clearHistory"
)

// Action is a state transition request. The set is closed.
type Action interface {
	chatAction()
}

type Pending struct{ Op string }

// Rejected carries the failure message of an operation.
type Rejected struct {
	Op    string
	Err   string
	Local bool
}

// MessageReceived appends the bot response to a prompt.
type MessageReceived struct{ Message Message }

// FileUploaded settles an upload. Notice is the backend confirmation; it is
// not kept in state.
type FileUploaded struct {
	Name   string
	Notice string
}

type HistoryCleared struct{}

// MessageAdded appends a caller-built message.
type MessageAdded struct{ Message Message }

type MessagesCleared struct{}

func (Pending) chatAction()         {}
func (Rejected) chatAction()        {}
func (MessageReceived) chatAction() {}
func (FileUploaded) chatAction()    {}
func (HistoryCleared) chatAction()  {}
func (MessageAdded) chatAction()    {}
func (MessagesCleared) chatAction() {}
