// Command planning-client exercises the session and API layers from a
// terminal: log in against the configured provider, inspect the current
// session, and issue authenticated API requests.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pcagrade/planning-client/config"
	"github.com/pcagrade/planning-client/internal/apiclient"
	"github.com/pcagrade/planning-client/internal/bootstrap"
	"github.com/pcagrade/planning-client/internal/guard"
	"github.com/pcagrade/planning-client/internal/ports"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx      context.Context
	Logger   *slog.Logger
	Config   config.AppConfig
	Sessions ports.SessionManager
	Client   *apiclient.Client
}

const callbackWait = 5 * time.Minute

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger := bootstrap.InitLogger(cfg.IsDev)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmdCtx, cleanup, err := buildContext(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "initialize", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal initialization failure to callers
	}
	defer cleanup()

	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate against the configured identity provider",
			run:         runLogin,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session identity and roles",
			run:         runWhoami,
		},
		"get": {
			name:        "get",
			description: "Issue authenticated GET requests (several paths run concurrently)",
			run:         runGet,
		},
		"can": {
			name:        "can",
			description: "Check whether the current session may access a destination",
			run:         runCan,
		},
		"logout": {
			name:        "logout",
			description: "Clear the session and print the provider end-session URL",
			run:         runLogout,
		},
	}
}

func printUsage() {
	fmt.Fprintf(os.Stdout, "Usage: planning-client <command> [flags]\n\n")
	fmt.Fprintf(os.Stdout, "Available commands:\n")
	for _, c := range commands() {
		fmt.Fprintf(os.Stdout, "  %-10s %s\n", c.name, c.description)
	}
}

func buildContext(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*commandContext, func(), error) {
	redisClient := bootstrap.BuildRedisClient(cfg.Redis)
	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis failed", "error", err)
		}
	}

	sessions := bootstrap.BuildSessionManager(bootstrap.SessionManagerConfig{
		Auth:        cfg.Auth,
		RedisClient: redisClient,
		Logger:      logger,
	})
	sessions.Initialize(ctx)

	client, err := bootstrap.BuildAPIClient(cfg.API, sessions, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &commandContext{
		Ctx:      ctx,
		Logger:   logger,
		Config:   cfg,
		Sessions: sessions,
		Client:   client,
	}, cleanup, nil
}

// runLogin drives a full authorization-code flow: it prints the provider auth
// URL, serves the local callback once, and completes the exchange.
func runLogin(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	returnPath := fs.String("return", "/", "path to register as the post-login destination")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cc.Sessions.IsAuthenticated() {
		fmt.Fprintf(os.Stdout, "already authenticated as %s\n", cc.Sessions.Current().Email)
		return nil
	}

	authURL, err := cc.Sessions.Login(cc.Ctx, *returnPath)
	if err != nil {
		return err
	}

	redirect, err := url.Parse(cc.Config.Auth.OAuth.RedirectURL)
	if err != nil {
		return fmt.Errorf("parse redirect URL: %w", err)
	}

	fmt.Fprintf(os.Stdout, "open this URL in a browser:\n\n  %s\n\n", authURL)
	fmt.Fprintf(os.Stdout, "waiting for the provider to redirect to %s\n", redirect)

	code, state, err := awaitCallback(cc.Ctx, redirect)
	if err != nil {
		return err
	}

	sess, err := cc.Sessions.HandleCallback(cc.Ctx, code, state)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "logged in as %s (%s)\n", sess.DisplayName, sess.Email)
	fmt.Fprintf(os.Stdout, "roles: %v\n", sess.Roles)
	if target, ok := cc.Sessions.ReturnURL(); ok {
		fmt.Fprintf(os.Stdout, "return to: %s\n", target)
	}
	return nil
}

// awaitCallback serves the configured redirect endpoint until one callback
// arrives or the context is canceled.
func awaitCallback(ctx context.Context, redirect *url.URL) (code, state string, err error) {
	type callback struct {
		code  string
		state string
	}
	done := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "login failed: "+errCode, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "login complete, you can close this tab")
		select {
		case done <- callback{code: q.Get("code"), state: q.Get("state")}:
		default:
		}
	})

	server := &http.Server{
		Addr:              redirect.Host,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	select {
	case cb := <-done:
		return cb.code, cb.state, nil
	case serveErr := <-errCh:
		return "", "", fmt.Errorf("callback listener: %w", serveErr)
	case <-time.After(callbackWait):
		return "", "", errors.New("timed out waiting for provider callback")
	case <-ctx.Done():
		return "", "", ctx.Err()
	}
}

func runWhoami(cc *commandContext, args []string) error {
	if !cc.Sessions.IsAuthenticated() {
		fmt.Fprintln(os.Stdout, "not authenticated")
		return nil
	}

	sess := cc.Sessions.Current()
	fmt.Fprintf(os.Stdout, "subject:  %s\n", sess.SubjectID)
	fmt.Fprintf(os.Stdout, "name:     %s\n", sess.DisplayName)
	fmt.Fprintf(os.Stdout, "email:    %s\n", sess.Email)
	fmt.Fprintf(os.Stdout, "groups:   %v\n", sess.Groups)
	fmt.Fprintf(os.Stdout, "roles:    %v\n", sess.Roles)
	fmt.Fprintf(os.Stdout, "expires:  %s\n", sess.ExpiresAt.Format(time.RFC3339))
	return nil
}

// runGet fetches one or more API paths. Multiple paths are fetched
// concurrently and printed in argument order.
func runGet(cc *commandContext, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: planning-client get <path> [path...]")
	}

	if len(args) == 1 {
		var raw json.RawMessage
		if err := cc.Client.Get(cc.Ctx, args[0], &raw); err != nil {
			return err
		}
		return printJSON(os.Stdout, raw)
	}

	results, err := cc.Client.GetAll(cc.Ctx, args)
	if err != nil {
		return err
	}
	for i, raw := range results {
		fmt.Fprintf(os.Stdout, "--- %s\n", args[i])
		if err := printJSON(os.Stdout, raw); err != nil {
			return err
		}
	}
	return nil
}

// runCan evaluates a navigation target against the current session, the same
// check an embedding UI runs before rendering a protected view.
func runCan(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("can", flag.ContinueOnError)
	roles := fs.String("roles", "", "comma-separated roles, any of which grants access")
	public := fs.Bool("public", false, "treat the destination as public")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: planning-client can [-roles ADMIN,MANAGER] [-public] <path>")
	}
	path := fs.Arg(0)

	req := guard.Requirement{RequiresAuth: !*public}
	if *roles != "" {
		req.Roles = strings.Split(*roles, ",")
	}

	decision, err := guard.New(cc.Sessions, cc.Logger).Check(cc.Ctx, path, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s: %s\n", path, decision.Action)
	if decision.Action == guard.ActionLogin {
		fmt.Fprintf(os.Stdout, "authenticate at:\n\n  %s\n", decision.RedirectURL)
	}
	return nil
}

func runLogout(cc *commandContext, args []string) error {
	endSessionURL, err := cc.Sessions.Logout(cc.Ctx)
	if err != nil {
		cc.Logger.Warn("remote logout unavailable, local session cleared", "error", err)
	}
	fmt.Fprintln(os.Stdout, "local session cleared")
	if endSessionURL != "" {
		fmt.Fprintf(os.Stdout, "complete the provider logout at:\n\n  %s\n", endSessionURL)
	}
	return nil
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	if len(raw) == 0 {
		_, err := fmt.Fprintln(w, "(empty response)")
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		_, werr := fmt.Fprintln(w, string(raw))
		return werr
	}
	return enc.Encode(v)
}
