package app

import (
	"context"
	"net/http"

	"github.com/fastyr/fastyr/internal/api"
	"github.com/fastyr/fastyr/internal/auth"
	"github.com/fastyr/fastyr/internal/bus"
	"github.com/fastyr/fastyr/internal/chat"
	"github.com/fastyr/fastyr/internal/config"
	"github.com/fastyr/fastyr/internal/lock"
	"github.com/fastyr/fastyr/internal/logging"
	"github.com/fastyr/fastyr/internal/profile"
	"github.com/fastyr/fastyr/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
	Config  *config.Config
	// Interactive takes the profile lock and keeps console logging off.
	Interactive bool
	// HTTPClient overrides the API transport; nil uses the default.
	HTTPClient *http.Client
	// Verbose lowers the console log level to debug. Without it only
	// warnings reach stderr.
	Verbose bool
	// Logger replaces the file logger, for tests.
	Logger *zap.Logger
}

// Module returns the fx module wiring the client: storage, API client, both
// slices and the controller.
func Module(p Params) fx.Option {
	return fx.Module("fastyr",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideTokenStore,
			provideAPI,
			provideAuth,
			provideChat,
			NewController,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Logger != nil {
		return p.Logger, nil
	}
	level, err := p.Config.Level()
	if err != nil {
		return nil, err
	}
	consoleLevel := zapcore.WarnLevel
	if p.Verbose {
		consoleLevel = zapcore.DebugLevel
	}
	return logging.New(profile.LogPath(p.Profile), p.Profile, logging.Options{
		Level:        level,
		Console:      !p.Interactive,
		ConsoleLevel: consoleLevel,
	})
}

func provideBus() *bus.Bus {
	return bus.New()
}

// provideLock returns nil for non-interactive runs so scripted commands can
// share a profile with an open terminal UI.
func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if !p.Interactive {
		return nil, nil
	}
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.LockPath(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	dbPath := profile.DBPath(p.Profile)
	db, result, err := store.OpenMigrated(dbPath)
	if err != nil {
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideTokenStore(db *store.DB) *store.TokenStore {
	return store.NewTokenStore(db)
}

func provideAPI(p Params, tokens *store.TokenStore, logger *zap.Logger) *api.Client {
	var opts []api.Option
	if p.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(p.HTTPClient))
	}
	return api.New(p.Config.APIURL, tokens, logger.Named("api"), opts...)
}

func provideAuth(c *api.Client, tokens *store.TokenStore, b *bus.Bus, logger *zap.Logger) *auth.Store {
	return auth.NewStore(c, tokens, b, logger.Named("auth"))
}

func provideChat(c *api.Client, db *store.DB, b *bus.Bus, logger *zap.Logger) *chat.Store {
	return chat.NewStore(c, db, b, logger.Named("chat"))
}

func registerLifecycle(lc fx.Lifecycle, p Params, authStore *auth.Store, chatStore *chat.Store, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			authStore.HydrateToken()
			logger.Info("client started",
				zap.String("api_url", p.Config.APIURL),
				zap.Bool("token", authStore.State().Token != ""),
			)
			return nil
		},
		OnStop: func(_ context.Context) error {
			chatStore.Reset()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if lk != nil {
				if err := lk.Release(); err != nil {
					logger.Warn("error releasing lock", zap.Error(err))
				}
			}
			logger.Info("client stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
