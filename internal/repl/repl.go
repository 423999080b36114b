package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/manash/imgchat/internal/client"
	"github.com/manash/imgchat/internal/gateway"
	"github.com/manash/imgchat/internal/i18n"
	"github.com/manash/imgchat/internal/prefs"
	"github.com/manash/imgchat/pkg/models"
)

// defaultBackendTitle is the title the backend assigns to fresh sessions; the
// REPL localizes it on display so both languages see their own wording.
const defaultBackendTitle = "新对话"

// REPL drives the interactive loop. It is also the presentation surface for
// the orchestrator: rendering callbacks print to out, dialogs read answers
// from the same scanner the loop uses, so a confirm consumes the next line.
type REPL struct {
	scanner  *bufio.Scanner
	out      io.Writer
	errW     io.Writer
	client   *client.Client
	tr       *i18n.Translator
	prefs    *prefs.Store
	commands map[string]Command
	running  bool
}

type Config struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	Gateway    gateway.API
	Translator *i18n.Translator
	Prefs      *prefs.Store
}

func New(cfg *Config) *REPL {
	r := &REPL{
		scanner:  bufio.NewScanner(cfg.In),
		out:      cfg.Out,
		errW:     cfg.Err,
		tr:       cfg.Translator,
		prefs:    cfg.Prefs,
		commands: make(map[string]Command),
	}
	r.client = client.New(&client.Config{
		Gateway:    cfg.Gateway,
		Renderer:   r,
		Dialogs:    r,
		Translator: cfg.Translator,
	})
	r.registerCommands()
	return r
}

// Client exposes the orchestrator, mainly for the entry point and tests.
func (r *REPL) Client() *client.Client {
	return r.client
}

func (r *REPL) Run(ctx context.Context) error {
	r.running = true
	r.printWelcome()

	if err := r.client.LoadSessions(ctx); err == nil {
		r.printPromptHint()
	}

	for r.running {
		r.printPrompt()
		if !r.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.errW, "Error: %v\n", err)
		}
	}

	return r.scanner.Err()
}

func (r *REPL) execute(ctx context.Context, line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := r.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, r, args)
}

func (r *REPL) Stop() {
	r.running = false
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, "imgchat interactive mode")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printPromptHint() {
	fmt.Fprintln(r.out, r.tr.T("empty_state_hint"))
	fmt.Fprintln(r.out)
}

func (r *REPL) printPrompt() {
	sel := r.client.Selection()
	marker := ""
	if r.client.SettingsLocked() {
		marker = "*"
	}
	if id := r.client.ActiveID(); id != "" {
		fmt.Fprintf(r.out, "imgchat [%s] (%s %s%s)> ", shortID(id), sel.ImageSize, sel.AspectRatio, marker)
		return
	}
	fmt.Fprintf(r.out, "imgchat (%s %s%s)> ", sel.ImageSize, sel.AspectRatio, marker)
}

// displayTitle localizes the backend's default session title.
func (r *REPL) displayTitle(title string) string {
	if title == "" || title == defaultBackendTitle {
		return r.tr.T("new_chat")
	}
	return title
}

// resolveSession accepts a 1-based list index or an id prefix.
func (r *REPL) resolveSession(arg string) (*models.Session, error) {
	sessions := r.client.Sessions()

	if idx, err := parseIndex(arg); err == nil {
		if idx < 1 || idx > len(sessions) {
			return nil, fmt.Errorf("session index out of range: %d", idx)
		}
		return sessions[idx-1], nil
	}

	for _, s := range sessions {
		if strings.HasPrefix(s.ID, arg) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("session not found: %s", arg)
}

// RenderSessionList prints the session list, most recent first, with the
// active session marked.
func (r *REPL) RenderSessionList(sessions []*models.Session, activeID string) {
	if len(sessions) == 0 {
		fmt.Fprintln(r.out, "No sessions yet")
		return
	}

	for i, s := range sessions {
		marker := "  "
		if s.ID == activeID {
			marker = "> "
		}
		fmt.Fprintf(r.out, "%s[%d] %-8s  %-30s  %d %s\n",
			marker, i+1, shortID(s.ID),
			truncate(r.displayTitle(s.Title), 30),
			s.MessageCount, r.tr.T("messages_count"))
	}
}

// RenderTranscript prints the conversation, or the empty state for a fresh
// session.
func (r *REPL) RenderTranscript(messages []models.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(r.out, r.tr.T("empty_state_title"))
		fmt.Fprintln(r.out, r.tr.T("empty_state_hint"))
		return
	}

	for _, m := range messages {
		switch m.Role {
		case models.RoleUser:
			fmt.Fprintf(r.out, "you> %s\n", m.Content)
			if n := referenceCount(m); n > 0 {
				fmt.Fprintf(r.out, "     [%s x%d]\n", r.tr.T("reference_image"), n)
			}
		case models.RoleAssistant:
			if m.Content != "" {
				fmt.Fprintf(r.out, "bot> %s\n", m.Content)
			}
			if m.Image != "" {
				fmt.Fprintf(r.out, "bot> [%s] %s\n", r.tr.T("generated_image"), m.Image)
			}
		}
	}
}

func (r *REPL) ShowLoading(on bool) {
	if on {
		fmt.Fprintln(r.out, r.tr.T("loading_text"))
	}
}

func (r *REPL) ShowError(message string) {
	fmt.Fprintf(r.errW, "Error: %s\n", message)
}

func (r *REPL) ShowCredits(display string) {
	fmt.Fprintf(r.out, "%s %s\n", display, r.tr.T("credits_label"))
}

// ClearPrompt is a no-op: line input leaves nothing to clear.
func (r *REPL) ClearPrompt() {}

// Confirm prints the question and reads the next line as the answer.
func (r *REPL) Confirm(_ context.Context, title, message string) (bool, error) {
	fmt.Fprintf(r.out, "%s\n%s\n", title, message)
	fmt.Fprintf(r.out, "[%s=y / %s=n]> ", r.tr.T("btn_ok"), r.tr.T("btn_cancel"))

	if !r.scanner.Scan() {
		return false, r.scanner.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(r.scanner.Text()))
	return answer == "y" || answer == "yes", nil
}

func (r *REPL) Alert(_ context.Context, title, message string, severity client.Severity) error {
	w := r.out
	if severity == client.SeverityError {
		w = r.errW
	}
	if title == message {
		fmt.Fprintf(w, "[%s] %s\n", severity, message)
		return nil
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", severity, title, message)
	return nil
}

func referenceCount(m models.Message) int {
	if len(m.ReferenceImages) > 0 {
		return len(m.ReferenceImages)
	}
	if m.ReferenceImage != "" {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func parseIndex(s string) (int, error) {
	var idx int
	_, err := fmt.Sscanf(s, "%d", &idx)
	if err != nil {
		return 0, err
	}
	// Reject mixed forms like "1abc" that Sscanf would half-parse.
	if fmt.Sprintf("%d", idx) != s {
		return 0, fmt.Errorf("not an index: %s", s)
	}
	return idx, nil
}

func parseCommand(line string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			} else {
				current.WriteRune(ch)
			}
		case ch == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
