package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manash/imgchat/internal/gateway"
	"github.com/manash/imgchat/internal/i18n"
	"github.com/manash/imgchat/internal/prefs"
	"github.com/manash/imgchat/pkg/models"
)

// stubGateway satisfies gateway.API without a backend.
type stubGateway struct{}

func (stubGateway) ListSessions(ctx context.Context) ([]*models.Session, error) {
	return []*models.Session{{ID: "abcdef123456", Title: "新对话"}}, nil
}

func (stubGateway) CreateSession(ctx context.Context) (*models.Session, error) {
	return &models.Session{ID: "created", Title: "新对话"}, nil
}

func (stubGateway) FetchSession(ctx context.Context, id string) (*models.Transcript, error) {
	return &models.Transcript{ID: id}, nil
}

func (stubGateway) DeleteSession(ctx context.Context, id string) error        { return nil }
func (stubGateway) RenameSession(ctx context.Context, id, title string) error { return nil }

func (stubGateway) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	return &models.GenerateResponse{Success: true}, nil
}

func resetFlags() {
	flagServer = ""
	flagToken = ""
	flagLang = ""
	flagTimeout = 0
	flagVerbose = false
}

func newTestApp(t *testing.T, input string, out *bytes.Buffer) *App {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	return &App{
		In:     strings.NewReader(input),
		Out:    out,
		Err:    out,
		GetEnv: func(string) string { return "" },
		NewGateway: func(cfg *gateway.Config) gateway.API {
			return stubGateway{}
		},
		NewPrefs: func() (*prefs.Store, error) {
			return prefs.NewStoreWithPath(dbPath)
		},
	}
}

func TestDefaultApp(t *testing.T) {
	app := DefaultApp()

	if app.In == nil {
		t.Error("DefaultApp() In is nil")
	}
	if app.Out == nil {
		t.Error("DefaultApp() Out is nil")
	}
	if app.Err == nil {
		t.Error("DefaultApp() Err is nil")
	}
	if app.NewGateway == nil {
		t.Error("DefaultApp() NewGateway is nil")
	}
	if app.NewPrefs == nil {
		t.Error("DefaultApp() NewPrefs is nil")
	}
}

func TestNewRootCmd_Flags(t *testing.T) {
	resetFlags()
	out := &bytes.Buffer{}
	cmd := newRootCmd(newTestApp(t, "", out))

	for _, name := range []string{"token", "lang", "timeout", "verbose"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}
	if cmd.PersistentFlags().Lookup("server") == nil {
		t.Error("flag --server not registered")
	}
}

func TestNewRootCmd_TokenSubcommand(t *testing.T) {
	resetFlags()
	out := &bytes.Buffer{}
	cmd := newRootCmd(newTestApp(t, "", out))

	tokenCmd, _, err := cmd.Find([]string{"token"})
	if err != nil || tokenCmd.Name() != "token" {
		t.Fatalf("token subcommand not found: %v", err)
	}

	subNames := make(map[string]bool)
	for _, sub := range tokenCmd.Commands() {
		subNames[sub.Name()] = true
	}
	for _, want := range []string{"set", "show", "delete", "list"} {
		if !subNames[want] {
			t.Errorf("token %s subcommand missing", want)
		}
	}
}

func TestRunREPL_QuitImmediately(t *testing.T) {
	resetFlags()
	t.Setenv("IMGCHAT_CONFIG_DIR", t.TempDir())
	out := &bytes.Buffer{}
	app := newTestApp(t, "quit\n", out)

	if err := runREPL(app); err != nil {
		t.Fatalf("runREPL() error = %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "imgchat interactive mode") {
		t.Error("welcome banner not printed")
	}
	if !strings.Contains(output, "Goodbye!") {
		t.Error("quit did not print farewell")
	}
}

func TestResolveLang_Priority(t *testing.T) {
	resetFlags()
	ctx := context.Background()

	store, err := prefs.NewStoreWithPath(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("NewStoreWithPath() error = %v", err)
	}
	defer store.Close()

	// No flag, no preference: backend default.
	if got := resolveLang(ctx, store); got != i18n.DefaultLang {
		t.Errorf("resolveLang() = %q, want %q", got, i18n.DefaultLang)
	}

	// Stored preference wins over the default.
	if err := store.Set(ctx, prefs.KeyLanguage, "en"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := resolveLang(ctx, store); got != "en" {
		t.Errorf("resolveLang() = %q, want en from preferences", got)
	}

	// The flag wins over everything.
	flagLang = "zh"
	defer resetFlags()
	if got := resolveLang(ctx, store); got != "zh" {
		t.Errorf("resolveLang() = %q, want zh from flag", got)
	}
}

func TestServerURL(t *testing.T) {
	resetFlags()
	if got := serverURL(); got != "http://localhost:5000" {
		t.Errorf("serverURL() = %q, want default", got)
	}

	flagServer = "http://example.com:8080"
	defer resetFlags()
	if got := serverURL(); got != "http://example.com:8080" {
		t.Errorf("serverURL() = %q, want flag value", got)
	}
}
