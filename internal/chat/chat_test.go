package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fastyr/fastyr/internal/api"
	"github.com/fastyr/fastyr/internal/bus"
	"github.com/fastyr/fastyr/internal/lifecycle"
	"go.uber.org/zap"
)

type stubBackend struct {
	responses []string
	notice    string
	err       error
	block     chan struct{}

	mu      sync.Mutex
	started chan struct{}
	calls   int
}

func (b *stubBackend) wait(ctx context.Context) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.block == nil {
		return nil
	}
	select {
	case <-b.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *stubBackend) CreateChat(ctx context.Context, _, _ string) (*api.ChatResponse, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	return &api.ChatResponse{Responses: b.responses}, nil
}

func (b *stubBackend) UploadFile(ctx context.Context, _ string, _ api.File) (*api.UploadResponse, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	return &api.UploadResponse{Message: b.notice}, nil
}

func (b *stubBackend) ClearHistory(ctx context.Context, _ string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	return b.err
}

type journalEntry struct {
	status, msg string
}

type memJournal struct {
	mu      sync.Mutex
	entries map[string]*journalEntry
}

func (j *memJournal) StartUpload(id, _, _, _ string, _ int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.entries == nil {
		j.entries = map[string]*journalEntry{}
	}
	j.entries[id] = &journalEntry{status: "sending"}
	return nil
}

func (j *memJournal) MarkUploadSent(id, notice string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[id].status, j.entries[id].msg = "sent", notice
	return nil
}

func (j *memJournal) MarkUploadFailed(id, msg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[id].status, j.entries[id].msg = "failed", msg
	return nil
}

func TestSendChatMessageJoinsResponses(t *testing.T) {
	s := NewStore(&stubBackend{responses: []string{"Hi", "there"}}, nil, nil, zap.NewNop())

	msg, err := s.SendChatMessage(context.Background(), "a@b.com", "hello")
	if err != nil {
		t.Fatalf("SendChatMessage() error = %v", err)
	}

	st := s.State()
	if len(st.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(st.Messages))
	}
	got := st.Messages[0]
	if got.Sender != BotSender || got.Content != "Hi\nthere" {
		t.Errorf("message = %+v, want bot Hi\\nthere", got)
	}
	if got.ID != msg.ID || got.ID == "" {
		t.Errorf("id = %q, returned %q", got.ID, msg.ID)
	}
	if st.Status != lifecycle.Succeeded {
		t.Errorf("status = %s", st.Status)
	}
}

func TestSendChatMessageFailureAppendsNothing(t *testing.T) {
	s := NewStore(&stubBackend{err: errors.New("boom")}, nil, nil, zap.NewNop())

	if _, err := s.SendChatMessage(context.Background(), "a@b.com", "hello"); err == nil {
		t.Fatal("expected error")
	}

	st := s.State()
	if len(st.Messages) != 0 {
		t.Errorf("messages = %d, want 0", len(st.Messages))
	}
	if st.Status != lifecycle.Failed || st.Error != api.FallbackChat {
		t.Errorf("status=%s error=%q", st.Status, st.Error)
	}
}

func TestUploadRejectedWithDetail(t *testing.T) {
	backend := &stubBackend{err: &api.Error{Op: "upload", Status: 413, Detail: "too large", Fallback: api.FallbackUpload}}
	journal := &memJournal{}
	s := NewStore(backend, journal, nil, zap.NewNop())
	s.AddMessage(NewUserMessage("a@b.com", "", []FileMeta{{Name: "big.bin", Type: "application/octet-stream"}}))
	before := s.State().Messages

	if _, err := s.UploadChatFile(context.Background(), "a@b.com", api.File{Name: "big.bin"}); err == nil {
		t.Fatal("expected error")
	}

	st := s.State()
	if st.Error != "too large" {
		t.Errorf("error = %q, want too large", st.Error)
	}
	if len(st.Messages) != len(before) || st.Messages[0].ID != before[0].ID {
		t.Errorf("messages changed: %+v", st.Messages)
	}
	for _, e := range journal.entries {
		if e.status != "failed" || e.msg != "too large" {
			t.Errorf("journal entry = %+v", e)
		}
	}
}

func TestUploadReturnsNotice(t *testing.T) {
	journal := &memJournal{}
	s := NewStore(&stubBackend{notice: "File a.txt uploaded successfully"}, journal, nil, zap.NewNop())

	notice, err := s.UploadChatFile(context.Background(), "a@b.com", api.File{Name: "a.txt", Data: []byte("x")})
	if err != nil {
		t.Fatalf("UploadChatFile() error = %v", err)
	}
	if notice != "File a.txt uploaded successfully" {
		t.Errorf("notice = %q", notice)
	}
	if n := len(s.State().Messages); n != 0 {
		t.Errorf("messages = %d, want 0", n)
	}
	if len(journal.entries) != 1 {
		t.Fatalf("journal entries = %d", len(journal.entries))
	}
	for _, e := range journal.entries {
		if e.status != "sent" {
			t.Errorf("journal status = %q", e.status)
		}
	}
}

func TestAddMessageIsNotIdempotent(t *testing.T) {
	s := NewStore(&stubBackend{}, nil, nil, zap.NewNop())
	m := NewUserMessage("a@b.com", "hello", nil)

	for i := 0; i < 3; i++ {
		s.AddMessage(m)
	}

	if n := len(s.State().Messages); n != 3 {
		t.Errorf("messages = %d, want 3", n)
	}
}

func TestClearEmptiesMessages(t *testing.T) {
	tests := []struct {
		name  string
		clear func(s *Store)
	}{
		{"local", func(s *Store) { s.ClearMessages() }},
		{"history", func(s *Store) {
			if err := s.ClearUserChatHistory(context.Background(), "a@b.com"); err != nil {
				t.Fatal(err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(&stubBackend{}, nil, nil, zap.NewNop())
			s.AddMessage(NewUserMessage("a@b.com", "one", nil))
			s.AddMessage(NewUserMessage("a@b.com", "two", nil))
			s.Dispatch(Rejected{Op: OpSendMessage, Err: "old"})

			tt.clear(s)

			st := s.State()
			if len(st.Messages) != 0 || st.Error != "" {
				t.Errorf("messages=%d error=%q, want empty", len(st.Messages), st.Error)
			}
		})
	}
}

func TestClearHistoryFailureKeepsMessages(t *testing.T) {
	s := NewStore(&stubBackend{err: errors.New("down")}, nil, nil, zap.NewNop())
	s.AddMessage(NewUserMessage("a@b.com", "one", nil))

	_ = s.ClearUserChatHistory(context.Background(), "a@b.com")

	st := s.State()
	if len(st.Messages) != 1 || st.Error != api.FallbackClearHistory {
		t.Errorf("messages=%d error=%q", len(st.Messages), st.Error)
	}
}

func TestResetDropsInFlightResults(t *testing.T) {
	backend := &stubBackend{
		responses: []string{"late"},
		block:     make(chan struct{}),
		started:   make(chan struct{}, 1),
	}
	s := NewStore(backend, nil, nil, zap.NewNop())

	errc := make(chan error, 1)
	go func() {
		_, err := s.SendChatMessage(context.Background(), "a@b.com", "hello")
		errc <- err
	}()

	<-backend.started
	if st := s.State(); st.Status != lifecycle.Loading {
		t.Fatalf("status = %s, want loading", st.Status)
	}

	s.Reset()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("in-flight send was not cancelled")
	}

	st := s.State()
	if len(st.Messages) != 0 || st.Status != lifecycle.Idle || st.Error != "" || st.InFlight() != 0 {
		t.Errorf("state after reset = %+v (inflight %d)", st, st.InFlight())
	}
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	s := NewStore(&stubBackend{}, nil, nil, zap.NewNop())
	s.AddMessage(NewUserMessage("a@b.com", "one", nil))

	snap := s.State()
	snap.Messages[0].Content = "mutated"

	if got := s.State().Messages[0].Content; got != "one" {
		t.Errorf("store content = %q, want one", got)
	}
}

func TestDispatchPublishes(t *testing.T) {
	b := bus.New()
	ch, cancel := b.Subscribe(8, EventChanged)
	defer cancel()
	s := NewStore(&stubBackend{}, nil, b, zap.NewNop())

	s.AddMessage(NewUserMessage("a@b.com", "hi", nil))

	select {
	case evt := <-ch:
		if st, ok := evt.Payload.(State); !ok || len(st.Messages) != 1 {
			t.Errorf("payload = %#v", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no change event")
	}
}

// TestPublishedSnapshotsFollowReductionOrder appends from several goroutines
// and checks every published snapshot is one message longer than the last.
func TestPublishedSnapshotsFollowReductionOrder(t *testing.T) {
	const workers, perWorker = 8, 20
	b := bus.New()
	ch, cancel := b.Subscribe(workers*perWorker, EventChanged)
	defer cancel()
	s := NewStore(&stubBackend{}, nil, b, zap.NewNop())

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.AddMessage(NewUserMessage("a@b.com", "hi", nil))
			}
		}()
	}
	wg.Wait()

	for want := 1; want <= workers*perWorker; want++ {
		select {
		case evt := <-ch:
			if got := len(evt.Payload.(State).Messages); got != want {
				t.Fatalf("snapshot %d has %d messages", want, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing snapshot %d", want)
		}
	}
}

func TestNewUserMessage(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"prompt", "  hello  ", "hello"},
		{"files only", "", DefaultUploadContent},
		{"whitespace", "   ", DefaultUploadContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewUserMessage("a@b.com", tt.prompt, nil)
			if m.Content != tt.want || m.Sender != "a@b.com" || m.ID == "" || m.Timestamp.IsZero() {
				t.Errorf("message = %+v", m)
			}
		})
	}
}

func TestNewIDsAreTimeOrdered(t *testing.T) {
	a := newID()
	time.Sleep(2 * time.Millisecond)
	b := newID()
	if a >= b {
		t.Errorf("ids not ordered: %s >= %s", a, b)
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"notes.txt", []byte("hello"), "text/plain"},
		{"page.html", []byte("<html></html>"), "text/html"},
		{"blob", []byte("%PDF-1.4\n"), "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0o600); err != nil {
				t.Fatal(err)
			}
			f, err := OpenFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if f.Name != tt.name || f.Type != tt.want || string(f.Data) != string(tt.data) {
				t.Errorf("OpenFile() = %q %q, want %q", f.Name, f.Type, tt.want)
			}
		})
	}

	if _, err := OpenFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMeta(t *testing.T) {
	if Meta(nil) != nil {
		t.Error("Meta(nil) should be nil")
	}
	got := Meta([]api.File{{Name: "a.png", Type: "image/png", Data: []byte{1}}})
	if len(got) != 1 || got[0] != (FileMeta{Name: "a.png", Type: "image/png"}) {
		t.Errorf("Meta() = %+v", got)
	}
}
