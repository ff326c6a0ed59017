package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fastyr/fastyr/internal/fakebackend"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	secret := flag.String("secret", "", "HS256 signing key (default from FASTYR_MOCK_SECRET)")
	maxUpload := flag.Int64("max-upload", fakebackend.DefaultMaxUpload, "upload size limit in bytes")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of issued tokens")
	seed := flag.String("seed", "", "create a user at startup, as name:email:password")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	opts := []fakebackend.Option{
		fakebackend.WithLogger(logger),
		fakebackend.WithMaxUpload(*maxUpload),
		fakebackend.WithTokenTTL(*tokenTTL),
	}
	if *secret == "" {
		*secret = os.Getenv("FASTYR_MOCK_SECRET")
	}
	if *secret != "" {
		opts = append(opts, fakebackend.WithSecret([]byte(*secret)))
	}
	backend := fakebackend.New(opts...)

	if *seed != "" {
		userName, email, password, ok := splitSeed(*seed)
		if !ok {
			logger.Fatal("invalid --seed, want name:email:password", zap.String("seed", *seed))
		}
		backend.AddUser(userName, email, password)
		logger.Info("seeded user", zap.String("email", email))
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("fake backend listening", zap.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("fake backend stopped")
}

func splitSeed(s string) (userName, email, password string, ok bool) {
	userName, rest, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", "", false
	}
	email, password, ok = strings.Cut(rest, ":")
	return userName, email, password, ok && email != "" && password != ""
}
