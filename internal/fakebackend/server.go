// Package fakebackend is an in-memory FASTYR backend used by tests and by
// fastyrmock for local development.
package fakebackend

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// DefaultMaxUpload is the largest accepted upload, in bytes.
const DefaultMaxUpload = 10 << 20

// Responder produces the response fragments for a prompt.
type Responder func(email, prompt string) []string

type user struct {
	userName string
	email    string
	password [32]byte
	verified bool
}

// Server holds the fake backend state.
type Server struct {
	mu      sync.Mutex
	users   map[string]*user
	otps    map[string]string
	history map[string][]string
	uploads map[string][]string

	secret    []byte
	tokenTTL  time.Duration
	maxUpload int64
	respond   Responder
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing key.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// WithMaxUpload sets the upload size limit in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// WithResponder replaces the canned chat responder.
func WithResponder(r Responder) Option {
	return func(s *Server) { s.respond = r }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// New creates an empty backend.
func New(opts ...Option) *Server {
	s := &Server{
		users:     make(map[string]*user),
		otps:      make(map[string]string),
		history:   make(map[string][]string),
		uploads:   make(map[string][]string),
		secret:    []byte("fastyr-dev-secret"),
		tokenTTL:  24 * time.Hour,
		maxUpload: DefaultMaxUpload,
		respond:   EchoResponder,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EchoResponder answers with a greeting and the prompt echoed back.
func EchoResponder(email, prompt string) []string {
	return []string{"Hello " + localPart(email) + ".", "You said: " + prompt}
}

// Handler returns a chi router serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the auth and chat routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/register", s.handleRegister)
	r.Post("/token", s.handleToken)
	r.Post("/forgot-password", s.handleForgotPassword)
	r.Post("/pin-verification", s.handlePinVerification)
	r.Post("/reset-password", s.handleResetPassword)

	r.Route("/chat", func(cr chi.Router) {
		cr.Use(s.requireBearer)
		cr.Post("/upload/{email}", s.handleUpload)
		cr.Get("/create", s.handleCreateChat)
		cr.Get("/clearHistory/{email}", s.handleClearHistory)
	})
}

// AddUser registers a user directly, bypassing the HTTP layer.
func (s *Server) AddUser(userName, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[normalize(email)] = &user{userName: userName, email: normalize(email), password: hashPassword(password)}
}

// LastOTP returns the passcode most recently issued for email.
func (s *Server) LastOTP(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pin, ok := s.otps[normalize(email)]
	return pin, ok
}

// Uploads returns the names of files uploaded by email, in order.
func (s *Server) Uploads(email string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads[normalize(email)]...)
}

// History returns the prompts recorded for email since the last clear.
func (s *Server) History(email string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history[normalize(email)]...)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func hashPassword(p string) [32]byte {
	return sha256.Sum256([]byte(p))
}

func (u *user) checkPassword(p string) bool {
	h := hashPassword(p)
	return subtle.ConstantTimeCompare(u.password[:], h[:]) == 1
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func splitName(userName string) (first, last string) {
	fields := strings.Fields(userName)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func newPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10_000))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
