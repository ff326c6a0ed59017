package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fastyr/fastyr/internal/app"
	"github.com/fastyr/fastyr/internal/bus"
	"github.com/fastyr/fastyr/internal/config"
	"github.com/fastyr/fastyr/internal/lock"
	"github.com/fastyr/fastyr/internal/profile"
	"github.com/fastyr/fastyr/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	apiFlag := flag.String("api-url", "", "backend base URL (overrides config and "+config.EnvAPIURL+")")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Resolve(profile.ConfigPath())
	if err != nil {
		fatal(err)
	}
	if *apiFlag != "" {
		cfg.APIURL = *apiFlag
	}

	name := profile.Resolve(*profileFlag, cfg)
	if err := profile.ValidateName(name); err != nil {
		fatal(err)
	}

	var (
		ctrl   *app.Controller
		b      *bus.Bus
		logger *zap.Logger
	)
	fxApp := fx.New(
		app.Module(app.Params{Profile: name, Config: cfg, Interactive: true}),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger { return &fxevent.ZapLogger{Logger: l.Named("fx")} }),
		fx.Populate(&ctrl, &b, &logger),
	)
	if err := fxApp.Err(); err != nil {
		var held *lock.LockHeldError
		if errors.As(err, &held) {
			fatal(held)
		}
		fatal(err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fatal(err)
	}

	ui := tui.NewApp(ctrl, b, logger.Named("tui"), tui.Options{Profile: name, APIURL: cfg.APIURL})
	runErr := ui.Run()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: shutdown: %v\n", err)
	}
	if runErr != nil {
		fatal(runErr)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
