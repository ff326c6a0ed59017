// Package chat holds the chat slice: the ordered message list and the
// status of chat operations.
package chat

import (
	"slices"
	"strings"
	"time"

	"github.com/fastyr/fastyr/internal/lifecycle"
	"github.com/google/uuid"
)

// BotSender is the sender of generated responses.
const BotSender = "bot"

// DefaultUploadContent is the content of a user message that only carries
// attachments.
const DefaultUploadContent = "Uploaded files"

// FileMeta describes an attachment. No file content is retained.
type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Message is one entry in the conversation.
type Message struct {
	ID        string     `json:"id"`
	Sender    string     `json:"sender"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Files     []FileMeta `json:"files,omitempty"`
}

// FromBot reports whether m is a generated response.
func (m Message) FromBot() bool { return m.Sender == BotSender }

// State is the chat slice. Messages are in display order.
type State struct {
	Messages []Message
	lifecycle.Tracker
}

// InitialState returns an empty conversation.
func InitialState() State {
	return State{Tracker: lifecycle.NewTracker()}
}

func (s State) clone() State {
	s.Messages = slices.Clone(s.Messages)
	return s
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewUserMessage builds the message shown for a submission before any
// network call resolves.
func NewUserMessage(email, prompt string, files []FileMeta) Message {
	content := strings.TrimSpace(prompt)
	if content == "" {
		content = DefaultUploadContent
	}
	return Message{
		ID:        newID(),
		Sender:    email,
		Content:   content,
		Timestamp: time.Now(),
		Files:     files,
	}
}

// NewBotMessage joins the response fragments into one message.
func NewBotMessage(responses []string) Message {
	return Message{
		ID:        newID(),
		Sender:    BotSender,
		Content:   strings.Join(responses, "\n"),
		Timestamp: time.Now(),
	}
}
