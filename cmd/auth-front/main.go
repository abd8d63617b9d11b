// auth-front drives the Codex authentication flows from the terminal: sign
// in or register with credentials, or walk the two legs of an OAuth round
// trip by hand. The session store is what carries state between invocations,
// the same way browser storage carries it between page loads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"github.com/codex-web/auth-front/internal/api"
	"github.com/codex-web/auth-front/internal/config"
	"github.com/codex-web/auth-front/internal/flow"
	"github.com/codex-web/auth-front/internal/log"
	"github.com/codex-web/auth-front/internal/provider"
	"github.com/codex-web/auth-front/internal/session"
)

var BuildVersion = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: auth-front <command> [flags]

Commands:
  login     -email <addr> -password <pw> [-redirect-to <path>]
  register  -email <addr> -password <pw> -confirm <pw> [-redirect-to <path>]
  oauth     <google|github> [-redirect-to <path>]
  callback  <google|github> -code <code> [-state <state>]
  whoami
  logout
  version

Configuration comes from the environment (CODEX_API_URL,
CODEX_SESSION_STORAGE, ...); a local .env file is honored.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if os.Args[1] == "version" || os.Args[1] == "-version" {
		fmt.Println(BuildVersion)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.LogError("Configuration error: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.LogError("Session store error: %v", err)
		os.Exit(1)
	}
	defer closeStore()

	var opts []api.Option
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.HTTPTimeout))
	}
	gateway := api.NewClient(cfg.APIBaseURL, opts...)

	sessions := session.New(store)
	controller := flow.New(gateway, sessions)

	if err := run(ctx, os.Args[1], os.Args[2:], gateway, sessions, controller); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, gateway *api.Client, sessions *session.Session, controller *flow.Controller) error {
	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		redirectTo := fs.String("redirect-to", "", "destination after sign-in")
		_ = fs.Parse(args)

		outcome, err := controller.Login(ctx, api.LoginRequest{Email: *email, Password: *password}, *redirectTo)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in. Continue to %s\n", outcome.Destination)
		return nil

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		confirm := fs.String("confirm", "", "password confirmation")
		redirectTo := fs.String("redirect-to", "", "destination after sign-up")
		_ = fs.Parse(args)

		outcome, err := controller.Register(ctx, api.RegisterRequest{
			Email:                *email,
			Password:             *password,
			PasswordConfirmation: *confirm,
		}, *redirectTo)
		if err != nil {
			return err
		}
		fmt.Printf("Account created. Continue to %s\n", outcome.Destination)
		return nil

	case "oauth":
		if len(args) < 1 {
			return fmt.Errorf("oauth requires a provider argument")
		}
		p, err := provider.Parse(args[0])
		if err != nil {
			return err
		}

		fs := flag.NewFlagSet("oauth", flag.ExitOnError)
		redirectTo := fs.String("redirect-to", "", "destination after the round trip")
		_ = fs.Parse(args[1:])

		redirect, err := controller.BeginOAuth(ctx, p, *redirectTo)
		if err != nil {
			return err
		}
		fmt.Printf("Open this URL to continue with %s:\n\n  %s\n\nThen run: auth-front callback %s -code <code> -state <state>\n", p, redirect.URL, p)
		return nil

	case "callback":
		if len(args) < 1 {
			return fmt.Errorf("callback requires a provider argument")
		}
		p, err := provider.Parse(args[0])
		if err != nil {
			return err
		}

		fs := flag.NewFlagSet("callback", flag.ExitOnError)
		code := fs.String("code", "", "authorization code from the provider")
		state := fs.String("state", "", "state token from the provider")
		_ = fs.Parse(args[1:])

		outcome, err := controller.CompleteOAuth(ctx, p, *code, *state)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in. Continue to %s\n", outcome.Destination)
		return nil

	case "whoami":
		token, err := sessions.Token(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("not signed in")
		}
		user, err := gateway.CurrentUser(ctx, token)
		if err != nil {
			return err
		}
		fmt.Printf("%s (id %s, since %s)\n", user.Email, user.ID, user.CreatedAt.Format("2006-01-02"))
		return nil

	case "logout":
		if err := controller.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// buildStore selects the session store backend per configuration.
func buildStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return session.NewMemoryStore(), func() {}, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword.Value(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisStore(client, cfg.RedisNamespace), func() { _ = client.Close() }, nil

	case config.StorageFirestore:
		var opts []option.ClientOption
		if cfg.FirestoreCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentials))
		}
		store, err := session.NewFirestoreStore(ctx, cfg.FirestoreProject, cfg.FirestoreCollection, opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported session storage kind: %q", cfg.Storage)
	}
}

// reportError renders a classified flow failure the way the web client
// would: banner first, then inline field messages.
func reportError(err error) {
	if errors.Is(err, flow.ErrBusy) {
		fmt.Fprintln(os.Stderr, "A request is already in flight; ignored.")
		return
	}

	flowErr, ok := flow.AsFlowError(err)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	if flowErr.Banner != "" {
		fmt.Fprintln(os.Stderr, flowErr.Banner)
	}

	fields := make([]string, 0, len(flowErr.Fields))
	for field := range flowErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, flowErr.Fields.First(field))
	}

	if flowErr.Terminal {
		fmt.Fprintln(os.Stderr, "Return to the login flow to try again.")
	}
}
