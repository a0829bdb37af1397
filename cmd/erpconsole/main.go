package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/acme-erp/admin-console/internal/core/domain"
	"github.com/acme-erp/admin-console/internal/core/ports"
	"github.com/acme-erp/admin-console/internal/core/service"
	"github.com/acme-erp/admin-console/internal/infrastructure/backend"
	"github.com/acme-erp/admin-console/internal/infrastructure/config"
	"github.com/acme-erp/admin-console/internal/infrastructure/credstore"
	dbredis "github.com/acme-erp/admin-console/internal/infrastructure/db/redis"
	"github.com/acme-erp/admin-console/pkg/logger"
)

type commandFn func(a *app, args []string) error

type command struct {
	name        string
	description string
	// restore reports whether the stored session is loaded before running.
	restore bool
	run     commandFn
}

// app carries the wired console for one command invocation.
type app struct {
	ctx       context.Context
	log       zerolog.Logger
	session   *service.SessionStore
	directory *service.Directory
	in        io.Reader
	out       io.Writer
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and store the access credential",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Sign out and forget the stored credential",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the signed-in user",
			restore:     true,
			run:         runWhoami,
		},
		"dashboard": {
			name:        "dashboard",
			description: "Show role, permissions and system statistics",
			restore:     true,
			run:         runDashboard,
		},
		"users": {
			name:        "users",
			description: "Manage the user directory (list, create, update, delete)",
			restore:     true,
			run:         runUsers,
		},
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cmd, ok := commands()[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(2)
	}

	if err := run(cmd, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd command, args []string) error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
		App:    "erpconsole",
		Fields: map[string]string{"command": cmd.name},
	})

	store, closeStore, err := openCredentialStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := backend.New(backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout}, logger.Component("backend"))
	if err != nil {
		return err
	}

	session := service.NewSessionStore(client, store, logger.Component("session"))
	a := &app{
		ctx:       ctx,
		log:       log,
		session:   session,
		directory: service.NewDirectory(client, session, logger.Component("directory")),
		in:        os.Stdin,
		out:       os.Stdout,
	}

	if cmd.restore {
		if err := session.Restore(ctx); err != nil {
			log.Warn().Err(err).Msg("stored session could not be restored")
		}
	}
	return cmd.run(a, args)
}

func openCredentialStore(ctx context.Context, cfg *config.Config) (ports.CredentialStore, func(), error) {
	switch cfg.Credential.Backend {
	case config.CredentialBackendRedis:
		client, err := dbredis.Connect(ctx, dbredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return credstore.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Credential.Key), func() { _ = client.Close() }, nil
	default:
		path := cfg.Credential.Path
		if path == "" {
			p, err := credstore.DefaultPath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		return credstore.NewFileStore(path, cfg.Credential.Key).WithLogger(logger.Component("credstore")), func() {}, nil
	}
}

// requireSession fails with a readable message when nobody is signed in.
func requireSession(a *app) error {
	if a.session.State() != domain.StateAuthenticated {
		return errors.New("not signed in: run `erpconsole login` first")
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: erpconsole <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, cmds[name].description)
	}
	_ = tw.Flush()
}
