package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/manash/imgchat/internal/gateway"
	"github.com/manash/imgchat/internal/i18n"
	"github.com/manash/imgchat/internal/keys"
	"github.com/manash/imgchat/internal/prefs"
	"github.com/manash/imgchat/internal/repl"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagServer  string
	flagToken   string
	flagLang    string
	flagTimeout int
	flagVerbose bool
)

type App struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	GetEnv     func(string) string
	NewGateway func(cfg *gateway.Config) gateway.API
	NewPrefs   func() (*prefs.Store, error)
}

func DefaultApp() *App {
	return &App{
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		GetEnv: os.Getenv,
		NewGateway: func(cfg *gateway.Config) gateway.API {
			return gateway.New(cfg)
		},
		NewPrefs: prefs.NewStore,
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env can carry IMGCHAT_TOKEN during development; absence is fine.
	godotenv.Load()

	app := DefaultApp()
	rootCmd := newRootCmd(app)
	return rootCmd.Execute()
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgchat",
		Short: "Chat-style image generation client",
		Long: `imgchat is an interactive client for a chat-style image generation
backend. Each chat session keeps its own transcript; the first generated
image fixes the session's resolution and aspect ratio.

Examples:
  imgchat
  imgchat --server http://localhost:5000 --lang en
  imgchat --token tok-abc123 --verbose`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(app)
		},
	}

	cmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "backend base URL (default http://localhost:5000)")
	cmd.Flags().StringVarP(&flagToken, "token", "t", "", "access token (defaults to stored token or IMGCHAT_TOKEN)")
	cmd.Flags().StringVarP(&flagLang, "lang", "l", "", "interface language (zh, en)")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "request timeout in seconds (default 120)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log requests and responses to stderr")

	cmd.AddCommand(newTokenCmd(app))

	return cmd
}

func runREPL(app *App) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := app.NewPrefs()
	if err != nil {
		fmt.Fprintf(app.Err, "Warning: preferences unavailable: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	tr := i18n.New(resolveLang(ctx, store))

	token, source := keys.GetToken(flagToken, serverURL(), "IMGCHAT_TOKEN")
	if token != "" && flagVerbose {
		fmt.Fprintf(app.Err, "Using token from %s: %s\n", source, keys.MaskToken(token))
	}

	gw := app.NewGateway(&gateway.Config{
		BaseURL:    flagServer,
		Token:      token,
		TimeoutSec: flagTimeout,
		Verbose:    flagVerbose,
	})

	r := repl.New(&repl.Config{
		In:         app.In,
		Out:        app.Out,
		Err:        app.Err,
		Gateway:    gw,
		Translator: tr,
		Prefs:      store,
	})
	return r.Run(ctx)
}

// resolveLang picks the interface language: flag, then stored preference,
// then the backend default.
func resolveLang(ctx context.Context, store *prefs.Store) string {
	if flagLang != "" {
		return flagLang
	}
	if store != nil {
		if saved, err := store.Get(ctx, prefs.KeyLanguage); err == nil && saved != "" {
			return saved
		}
	}
	return i18n.DefaultLang
}

func serverURL() string {
	if flagServer != "" {
		return flagServer
	}
	return "http://localhost:5000"
}

func newTokenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage stored access tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store an access token for the current server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			if err := store.Set(serverURL(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Token stored for %s: %s\n", serverURL(), keys.MaskToken(args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored token for the current server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			token, err := store.Get(serverURL())
			if err != nil {
				return err
			}
			if token == "" {
				fmt.Fprintf(app.Out, "No token stored for %s\n", serverURL())
				return nil
			}
			fmt.Fprintf(app.Out, "%s: %s\n", serverURL(), keys.MaskToken(token))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete the stored token for the current server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			if err := store.Delete(serverURL()); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Token deleted for %s\n", serverURL())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List servers with a stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			servers, err := store.List()
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				fmt.Fprintln(app.Out, "No tokens stored")
				return nil
			}
			for _, server := range servers {
				fmt.Fprintln(app.Out, server)
			}
			return nil
		},
	})

	return cmd
}
