package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fastyr/fastyr/internal/fakebackend"
	"go.uber.org/zap"
)

type memTokens struct{ token string }

func (m *memTokens) Load() (string, error) { return m.token, nil }

func setupClient(t *testing.T, opts ...fakebackend.Option) (*Client, *fakebackend.Server, *memTokens) {
	t.Helper()
	backend := fakebackend.New(opts...)
	backend.AddUser("Ada Lovelace", "ada@example.com", "secret")
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	tokens := &memTokens{}
	return New(srv.URL+"/", tokens, zap.NewNop()), backend, tokens
}

func TestLogin(t *testing.T) {
	c, _, _ := setupClient(t)

	resp, err := c.Login(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("empty access token")
	}
	if resp.UserEmail != "ada@example.com" || resp.FirstName != "Ada" || resp.LastName != "Lovelace" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestErrorDetailAndFallback(t *testing.T) {
	c, _, _ := setupClient(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"backend detail", func() error {
			_, err := c.Login(ctx, "ada@example.com", "wrong")
			return err
		}, "Incorrect email or password"},
		{"duplicate register", func() error {
			return c.Register(ctx, RegisterRequest{UserName: "Ada", Email: "ada@example.com", Password: "x"})
		}, "Email already registered"},
		{"no bearer", func() error {
			_, err := c.CreateChat(ctx, "ada@example.com", "hi")
			return err
		}, "Not authenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if got := apiErr.UserMessage(); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","email"],"msg":"field required"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, zap.NewNop())
	err := c.VerifyPin(context.Background(), "ada@example.com", "123456")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", apiErr.Status)
	}
	if got := apiErr.UserMessage(); got != FallbackVerifyPin {
		t.Errorf("UserMessage() = %q, want %q", got, FallbackVerifyPin)
	}
}

func TestTransportFailureUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, nil, zap.NewNop())
	err := c.ClearHistory(context.Background(), "ada@example.com")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Status != 0 || apiErr.Err == nil {
		t.Errorf("expected transport error, got %+v", apiErr)
	}
	if got := apiErr.UserMessage(); got != FallbackClearHistory {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestBearerReadAtRequestTime(t *testing.T) {
	c, backend, tokens := setupClient(t, fakebackend.WithResponder(func(_, _ string) []string {
		return []string{"Hi", "there"}
	}))
	ctx := context.Background()

	login, err := c.Login(ctx, "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	tokens.token = login.AccessToken

	resp, err := c.CreateChat(ctx, "ada@example.com", "hello")
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	if len(resp.Responses) != 2 || resp.Responses[1] != "there" {
		t.Errorf("responses = %v", resp.Responses)
	}
	if got := backend.History("ada@example.com"); len(got) != 1 {
		t.Errorf("history = %v", got)
	}

	if err := c.ClearHistory(ctx, "ada@example.com"); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}
	if got := backend.History("ada@example.com"); len(got) != 0 {
		t.Errorf("history after clear = %v", got)
	}
}

func TestUploadFile(t *testing.T) {
	c, backend, tokens := setupClient(t)
	ctx := context.Background()

	login, err := c.Login(ctx, "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	tokens.token = login.AccessToken

	resp, err := c.UploadFile(ctx, "ada@example.com", File{Name: "notes.txt", Type: "text/plain", Data: []byte("hello")})
	if err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if resp.Message != "File notes.txt uploaded successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if got := backend.Uploads("ada@example.com"); len(got) != 1 || got[0] != "notes.txt" {
		t.Errorf("uploads = %v", got)
	}
}

func TestUploadTooLarge(t *testing.T) {
	c, _, tokens := setupClient(t, fakebackend.WithMaxUpload(64))
	ctx := context.Background()

	login, err := c.Login(ctx, "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	tokens.token = login.AccessToken

	_, err = c.UploadFile(ctx, "ada@example.com", File{Name: "big.bin", Data: make([]byte, 4096)})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if got := apiErr.UserMessage(); got != "too large" {
		t.Errorf("UserMessage() = %q, want too large", got)
	}
}

func TestPasswordReset(t *testing.T) {
	c, backend, _ := setupClient(t)
	ctx := context.Background()

	if err := c.ForgotPassword(ctx, "ada@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	pin, _ := backend.LastOTP("ada@example.com")
	if err := c.VerifyPin(ctx, "ada@example.com", pin); err != nil {
		t.Fatalf("VerifyPin() error = %v", err)
	}
	if err := c.ResetPassword(ctx, ResetRequest{Email: "ada@example.com", NewPassword: "new", ConfirmPassword: "new"}); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if _, err := c.Login(ctx, "ada@example.com", "new"); err != nil {
		t.Fatalf("Login() with new password error = %v", err)
	}
}
