package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fastyr/fastyr/internal/app"
	"github.com/fastyr/fastyr/internal/config"
	"github.com/fastyr/fastyr/internal/profile"
	"github.com/fastyr/fastyr/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// cli carries what every subcommand needs.
type cli struct {
	ctrl    *app.Controller
	db      *store.DB
	logger  *zap.Logger
	profile string
	cfg     *config.Config
	jsonOut bool
}

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	apiFlag := flag.String("api-url", "", "backend base URL (overrides config and "+config.EnvAPIURL+")")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	verbose := flag.Bool("v", false, "log requests to stderr")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

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

	c := &cli{profile: name, cfg: cfg, jsonOut: *jsonFlag}
	fxApp := fx.New(
		app.Module(app.Params{Profile: name, Config: cfg, Verbose: *verbose}),
		fx.NopLogger,
		fx.Populate(&c.ctrl, &c.db, &c.logger),
	)
	if err := fxApp.Err(); err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		fatal(err)
	}

	runErr := c.run(ctx, args[0], args[1:])

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	_ = fxApp.Stop(stopCtx)
	if runErr != nil {
		fatal(runErr)
	}
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "signup":
		return c.cmdSignup(ctx, args)
	case "login":
		return c.cmdLogin(ctx, args)
	case "logout":
		return c.cmdLogout()
	case "status":
		return c.cmdStatus()
	case "forgot":
		return c.cmdForgot(ctx, args)
	case "verify":
		return c.cmdVerify(ctx, args)
	case "reset":
		return c.cmdReset(ctx, args)
	case "send":
		return c.cmdSend(ctx, args)
	case "upload":
		return c.cmdUpload(ctx, args)
	case "clear":
		return c.cmdClear(ctx)
	case "uploads":
		return c.cmdUploads(args)
	case "profiles":
		return c.cmdProfiles()
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: fastyrctl [--profile <name>] [--api-url <url>] [--json] [-v] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  signup <name> <email> <password> [confirm]   Create an account")
	fmt.Fprintln(os.Stderr, "  login <email> <password>                     Sign in and store the token")
	fmt.Fprintln(os.Stderr, "  logout                                       Forget the stored token")
	fmt.Fprintln(os.Stderr, "  status                                       Show profile and session")
	fmt.Fprintln(os.Stderr, "  forgot <email>                               Email a reset code")
	fmt.Fprintln(os.Stderr, "  verify <email> <code>                        Check a reset code")
	fmt.Fprintln(os.Stderr, "  reset <email> <password> <confirm>           Set a new password")
	fmt.Fprintln(os.Stderr, "  send <prompt> [file...]                      Send a prompt with attachments")
	fmt.Fprintln(os.Stderr, "  upload <file>...                             Upload files")
	fmt.Fprintln(os.Stderr, "  clear                                        Clear chat history")
	fmt.Fprintln(os.Stderr, "  uploads [limit]                              List recent uploads")
	fmt.Fprintln(os.Stderr, "  profiles                                     List known profiles")
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
