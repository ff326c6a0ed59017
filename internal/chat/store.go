package chat

import (
	"context"
	"sync"

	"github.com/fastyr/fastyr/internal/api"
	"github.com/fastyr/fastyr/internal/bus"
	"github.com/fastyr/fastyr/internal/lifecycle"
	"go.uber.org/zap"
)

// EventChanged is published after every transition with the new State.
const EventChanged = "chat.changed"

// Backend is the subset of the REST API used by the chat slice.
type Backend interface {
	CreateChat(ctx context.Context, email, prompt string) (*api.ChatResponse, error)
	UploadFile(ctx context.Context, email string, f api.File) (*api.UploadResponse, error)
	ClearHistory(ctx context.Context, email string) error
}

// Journal records settled uploads.
type Journal interface {
	StartUpload(uploadID, email, fileName, contentType string, size int64) error
	MarkUploadSent(uploadID, notice string) error
	MarkUploadFailed(uploadID, errMsg string) error
}

// Store owns the chat State.
//
// Every operation belongs to the epoch in which it started. Reset starts a
// new epoch: it cancels the context of every operation still in flight and
// drops whatever they dispatch afterwards.
type Store struct {
	mu      sync.RWMutex
	state   State
	epoch   uint64
	epochCx context.Context
	cancel  context.CancelFunc

	api     Backend
	journal Journal
	bus     *bus.Bus
	logger  *zap.Logger
}

// NewStore creates an empty chat store. journal and b may be nil.
func NewStore(backend Backend, journal Journal, b *bus.Bus, logger *zap.Logger) *Store {
	s := &Store{
		state:   InitialState(),
		api:     backend,
		journal: journal,
		bus:     b,
		logger:  logger,
	}
	s.epochCx, s.cancel = context.WithCancel(context.Background())
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// anyEpoch applies an action in whatever epoch is current.
const anyEpoch = ^uint64(0)

// Dispatch applies a in the current epoch.
func (s *Store) Dispatch(a Action) {
	s.dispatchIn(anyEpoch, a)
}

func (s *Store) dispatchIn(epoch uint64, a Action) {
	s.mu.Lock()
	if epoch != anyEpoch && epoch != s.epoch {
		s.mu.Unlock()
		s.logger.Debug("dropped stale chat action", zap.String("action", actionName(a)))
		return
	}
	prev := s.state.Status
	s.state = Reduce(s.state, a)
	next := s.state.clone()
	// Publish never blocks, so snapshots leave in reduction order.
	s.publish(next)
	s.mu.Unlock()

	if prev != next.Status && !lifecycle.CanTransition(prev, next.Status) {
		s.logger.Warn("unexpected status transition",
			zap.String("from", prev.String()),
			zap.String("to", next.Status.String()),
			zap.String("action", actionName(a)),
		)
	}
}

func (s *Store) publish(st State) {
	if s.bus != nil {
		s.bus.Publish(EventChanged, st)
	}
}

// begin binds an operation to the current epoch. The returned context is
// cancelled by Reset; done must be called when the operation settles.
func (s *Store) begin(ctx context.Context) (opCtx context.Context, dispatch func(Action), done func()) {
	s.mu.RLock()
	epoch, epochCx := s.epoch, s.epochCx
	s.mu.RUnlock()

	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(epochCx, cancel)
	return opCtx, func(a Action) { s.dispatchIn(epoch, a) }, func() {
		stop()
		cancel()
	}
}

func rejected(op string) func(string) Action {
	return func(msg string) Action { return Rejected{Op: op, Err: msg} }
}

// SendChatMessage sends prompt and appends the bot response.
func (s *Store) SendChatMessage(ctx context.Context, email, prompt string) (Message, error) {
	ctx, dispatch, done := s.begin(ctx)
	defer done()

	return lifecycle.Run(ctx, s.logger, dispatch, lifecycle.Op[Message, Action]{
		Name: OpSendMessage,
		Call: func(ctx context.Context) (Message, error) {
			resp, err := s.api.CreateChat(ctx, email, prompt)
			if err != nil {
				return Message{}, err
			}
			return NewBotMessage(resp.Responses), nil
		},
		Pending:   Pending{Op: OpSendMessage},
		Fulfilled: func(m Message) Action { return MessageReceived{Message: m} },
		Rejected:  rejected(OpSendMessage),
		Fallback:  api.FallbackChat,
	})
}

// UploadChatFile uploads f and returns the backend confirmation notice. The
// message list is not touched.
func (s *Store) UploadChatFile(ctx context.Context, email string, f api.File) (string, error) {
	ctx, dispatch, done := s.begin(ctx)
	defer done()

	uploadID := newID()
	s.journalStart(uploadID, email, f)

	notice, err := lifecycle.Run(ctx, s.logger, dispatch, lifecycle.Op[string, Action]{
		Name: OpUploadFile,
		Call: func(ctx context.Context) (string, error) {
			resp, err := s.api.UploadFile(ctx, email, f)
			if err != nil {
				return "", err
			}
			return resp.Message, nil
		},
		Pending:   Pending{Op: OpUploadFile},
		Fulfilled: func(n string) Action { return FileUploaded{Name: f.Name, Notice: n} },
		Rejected:  rejected(OpUploadFile),
		Fallback:  api.FallbackUpload,
	})

	s.journalSettle(uploadID, notice, err)
	return notice, err
}

// ClearUserChatHistory clears the history on the backend and empties the
// message list.
func (s *Store) ClearUserChatHistory(ctx context.Context, email string) error {
	ctx, dispatch, done := s.begin(ctx)
	defer done()

	_, err := lifecycle.Run(ctx, s.logger, dispatch, lifecycle.Op[struct{}, Action]{
		Name: OpClearHistory,
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.ClearHistory(ctx, email)
		},
		Pending:   Pending{Op: OpClearHistory},
		Fulfilled: func(struct{}) Action { return HistoryCleared{} },
		Rejected:  rejected(OpClearHistory),
		Fallback:  api.FallbackClearHistory,
	})
	return err
}

// AddMessage appends m. Calling it twice appends twice.
func (s *Store) AddMessage(m Message) {
	s.Dispatch(MessageAdded{Message: m})
}

// ClearMessages empties the list locally.
func (s *Store) ClearMessages() {
	s.Dispatch(MessagesCleared{})
}

// Reset returns the slice to its initial state, cancels every operation in
// flight and discards their results.
func (s *Store) Reset() {
	s.mu.Lock()
	s.cancel()
	s.epoch++
	s.epochCx, s.cancel = context.WithCancel(context.Background())
	s.state = InitialState()
	s.publish(s.state.clone())
	s.mu.Unlock()

	s.logger.Debug("chat reset")
}

func (s *Store) journalStart(uploadID, email string, f api.File) {
	if s.journal == nil {
		return
	}
	if err := s.journal.StartUpload(uploadID, email, f.Name, f.Type, int64(len(f.Data))); err != nil {
		s.logger.Warn("journal upload", zap.String("upload_id", uploadID), zap.Error(err))
	}
}

func (s *Store) journalSettle(uploadID, notice string, callErr error) {
	if s.journal == nil {
		return
	}
	var err error
	if callErr != nil {
		err = s.journal.MarkUploadFailed(uploadID, lifecycle.Message(callErr, api.FallbackUpload))
	} else {
		err = s.journal.MarkUploadSent(uploadID, notice)
	}
	if err != nil {
		s.logger.Warn("journal upload result", zap.String("upload_id", uploadID), zap.Error(err))
	}
}

func actionName(a Action) string {
	switch a := a.(type) {
	case Pending:
		return a.Op + "/pending"
	case Rejected:
		return a.Op + "/rejected"
	case MessageReceived:
		return OpSendMessage + "/fulfilled"
	case FileUploaded:
		return OpUploadFile + "/fulfilled"
	case HistoryCleared:
		return OpClearHistory + "/fulfilled"
	case MessageAdded:
		return "chat/addMessage"
	case MessagesCleared:
		return "chat/clearMessages"
	}
	return "unknown"
}
