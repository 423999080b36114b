package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/manash/imgchat/internal/attach"
	"github.com/manash/imgchat/internal/client"
	"github.com/manash/imgchat/internal/i18n"
	"github.com/manash/imgchat/internal/prefs"
	"github.com/manash/imgchat/pkg/models"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, r *REPL, args []string) error
}

func (r *REPL) registerCommands() {
	commands := []Command{
		&SessionsCommand{},
		&OpenCommand{},
		&NewCommand{},
		&GenCommand{},
		&AttachCommand{},
		&DetachCommand{},
		&AttachmentsCommand{},
		&SizeCommand{},
		&RatioCommand{},
		&DeleteCommand{},
		&TitleCommand{},
		&LangCommand{},
		&StatusCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}

	for _, cmd := range commands {
		r.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			r.commands[alias] = cmd
		}
	}
}

// SessionsCommand refreshes and lists the sessions
type SessionsCommand struct{}

func (c *SessionsCommand) Name() string        { return "sessions" }
func (c *SessionsCommand) Aliases() []string   { return []string{"ls", "list"} }
func (c *SessionsCommand) Description() string { return "Refresh and list sessions" }
func (c *SessionsCommand) Usage() string       { return "sessions" }

func (c *SessionsCommand) Execute(ctx context.Context, r *REPL, _ []string) error {
	// Failures are already surfaced through the renderer.
	r.client.LoadSessions(ctx)
	return nil
}

// OpenCommand switches to a session
type OpenCommand struct{}

func (c *OpenCommand) Name() string        { return "open" }
func (c *OpenCommand) Aliases() []string   { return []string{"o"} }
func (c *OpenCommand) Description() string { return "Open a session by list index or id prefix" }
func (c *OpenCommand) Usage() string       { return "open <index|id>" }

func (c *OpenCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	sess, err := r.resolveSession(args[0])
	if err != nil {
		return err
	}

	r.client.SelectSession(ctx, sess.ID)
	return nil
}

// NewCommand starts a fresh session
type NewCommand struct{}

func (c *NewCommand) Name() string        { return "new" }
func (c *NewCommand) Aliases() []string   { return []string{"n"} }
func (c *NewCommand) Description() string { return "Start a new chat session" }
func (c *NewCommand) Usage() string       { return "new" }

func (c *NewCommand) Execute(ctx context.Context, r *REPL, _ []string) error {
	r.client.StartNewSession(ctx)
	return nil
}

// GenCommand submits a generation for the active session
type GenCommand struct{}

func (c *GenCommand) Name() string        { return "gen" }
func (c *GenCommand) Aliases() []string   { return []string{"g", "generate"} }
func (c *GenCommand) Description() string { return "Generate an image from a prompt" }
func (c *GenCommand) Usage() string       { return "gen <prompt>" }

func (c *GenCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	prompt := strings.Join(args, " ")

	err := r.client.Generate(ctx, prompt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrGenerationInFlight):
		return fmt.Errorf("a generation is already running, wait for it to finish")
	case errors.Is(err, client.ErrSessionLoading):
		return fmt.Errorf("a session is still loading, try again in a moment")
	default:
		// Everything else was already surfaced through a dialog or the
		// error channel.
		return nil
	}
}

// AttachCommand stages reference images
type AttachCommand struct{}

func (c *AttachCommand) Name() string        { return "attach" }
func (c *AttachCommand) Aliases() []string   { return []string{"a"} }
func (c *AttachCommand) Description() string { return "Attach reference images for the next generation" }
func (c *AttachCommand) Usage() string       { return "attach <file> [file...]" }

func (c *AttachCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	added, err := r.client.Stager().Add(args...)
	var limitErr *attach.LimitError
	if errors.As(err, &limitErr) {
		if added > 0 {
			fmt.Fprintf(r.out, "Attached %d image(s), %d staged\n", added, r.client.Stager().Len())
		}
		return errors.New(r.tr.T("upload_limit", limitErr.Limit))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Attached %d image(s), %d staged\n", added, r.client.Stager().Len())
	return nil
}

// DetachCommand removes a staged reference image
type DetachCommand struct{}

func (c *DetachCommand) Name() string        { return "detach" }
func (c *DetachCommand) Aliases() []string   { return []string{"d"} }
func (c *DetachCommand) Description() string { return "Remove a staged reference image, or all of them" }
func (c *DetachCommand) Usage() string       { return "detach <index|all>" }

func (c *DetachCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	if strings.ToLower(args[0]) == "all" {
		r.client.Stager().Clear()
		fmt.Fprintln(r.out, "Cleared all attachments")
		return nil
	}

	idx, err := parseIndex(args[0])
	if err != nil {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	if !r.client.Stager().RemoveAt(idx - 1) {
		return fmt.Errorf("attachment index out of range: %d", idx)
	}
	fmt.Fprintf(r.out, "Removed attachment %d, %d staged\n", idx, r.client.Stager().Len())
	return nil
}

// AttachmentsCommand lists the staged reference images
type AttachmentsCommand struct{}

func (c *AttachmentsCommand) Name() string        { return "attachments" }
func (c *AttachmentsCommand) Aliases() []string   { return []string{"refs"} }
func (c *AttachmentsCommand) Description() string { return "List staged reference images" }
func (c *AttachmentsCommand) Usage() string       { return "attachments" }

func (c *AttachmentsCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	entries := r.client.Stager().Entries()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No attachments staged")
		return nil
	}

	for i, e := range entries {
		fmt.Fprintf(r.out, "[%d] %-30s  %-10s  %s\n",
			i+1, truncate(e.Name, 30), e.MIME, humanize.Bytes(uint64(e.Size)))
	}
	fmt.Fprintf(r.out, "%d/%d staged\n", len(entries), attach.MaxAttachments)
	return nil
}

// SizeCommand shows or changes the resolution
type SizeCommand struct{}

func (c *SizeCommand) Name() string        { return "size" }
func (c *SizeCommand) Aliases() []string   { return nil }
func (c *SizeCommand) Description() string { return "Show or set the image resolution" }
func (c *SizeCommand) Usage() string       { return "size [" + strings.Join(models.Resolutions(), "|") + "]" }

func (c *SizeCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		sel := r.client.Selection()
		fmt.Fprintf(r.out, "Resolution: %s (available: %s)\n", sel.ImageSize, strings.Join(models.Resolutions(), ", "))
		return nil
	}

	err := r.client.SetResolution(ctx, args[0])
	if errors.Is(err, client.ErrChangeAbandoned) {
		fmt.Fprintln(r.out, "Keeping current settings")
		return nil
	}
	if err != nil {
		return nil
	}
	fmt.Fprintf(r.out, "Resolution: %s\n", r.client.Selection().ImageSize)
	return nil
}

// RatioCommand shows or changes the aspect ratio
type RatioCommand struct{}

func (c *RatioCommand) Name() string        { return "ratio" }
func (c *RatioCommand) Aliases() []string   { return nil }
func (c *RatioCommand) Description() string { return "Show or set the aspect ratio" }
func (c *RatioCommand) Usage() string       { return "ratio [value]" }

func (c *RatioCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		sel := r.client.Selection()
		fmt.Fprintf(r.out, "Aspect ratio: %s (available: %s)\n", sel.AspectRatio, strings.Join(models.AspectRatios(), ", "))
		return nil
	}

	err := r.client.SetAspectRatio(ctx, args[0])
	if errors.Is(err, client.ErrChangeAbandoned) {
		fmt.Fprintln(r.out, "Keeping current settings")
		return nil
	}
	if err != nil {
		return nil
	}
	fmt.Fprintf(r.out, "Aspect ratio: %s\n", r.client.Selection().AspectRatio)
	return nil
}

// DeleteCommand deletes a session after confirmation
type DeleteCommand struct{}

func (c *DeleteCommand) Name() string        { return "delete" }
func (c *DeleteCommand) Aliases() []string   { return []string{"rm"} }
func (c *DeleteCommand) Description() string { return "Delete a session" }
func (c *DeleteCommand) Usage() string       { return "delete <index|id>" }

func (c *DeleteCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	sess, err := r.resolveSession(args[0])
	if err != nil {
		return err
	}

	ok, err := r.Confirm(ctx, r.tr.T("delete"), r.displayTitle(sess.Title))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	r.client.DeleteSession(ctx, sess.ID)
	return nil
}

// TitleCommand renames a session
type TitleCommand struct{}

func (c *TitleCommand) Name() string        { return "title" }
func (c *TitleCommand) Aliases() []string   { return nil }
func (c *TitleCommand) Description() string { return "Rename a session" }
func (c *TitleCommand) Usage() string       { return "title <index|id> <new title>" }

func (c *TitleCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	sess, err := r.resolveSession(args[0])
	if err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	if err := r.client.RenameSession(ctx, sess.ID, title); err != nil {
		return nil
	}
	fmt.Fprintf(r.out, "Renamed to: %s\n", title)
	return nil
}

// LangCommand shows or switches the interface language
type LangCommand struct{}

func (c *LangCommand) Name() string        { return "lang" }
func (c *LangCommand) Aliases() []string   { return nil }
func (c *LangCommand) Description() string { return "Show or set the interface language" }
func (c *LangCommand) Usage() string       { return "lang [" + strings.Join(i18n.Languages(), "|") + "]" }

func (c *LangCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Language: %s (available: %s)\n", r.tr.Lang(), strings.Join(i18n.Languages(), ", "))
		return nil
	}

	if err := r.tr.SetLang(args[0]); err != nil {
		return err
	}
	if r.prefs != nil {
		if err := r.prefs.Set(ctx, prefs.KeyLanguage, args[0]); err != nil {
			fmt.Fprintf(r.errW, "Warning: failed to save language preference: %v\n", err)
		}
	}

	fmt.Fprintf(r.out, "Language: %s\n", r.tr.Lang())
	// Re-render so the visible texts pick up the new language.
	r.client.RefreshView()
	return nil
}

// StatusCommand summarizes the client state
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Aliases() []string   { return []string{"st"} }
func (c *StatusCommand) Description() string { return "Show the current session and settings" }
func (c *StatusCommand) Usage() string       { return "status" }

func (c *StatusCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	active := r.client.ActiveID()
	if active == "" {
		fmt.Fprintln(r.out, "Session: (none)")
	} else {
		title := ""
		for _, s := range r.client.Sessions() {
			if s.ID == active {
				title = r.displayTitle(s.Title)
				break
			}
		}
		fmt.Fprintf(r.out, "Session: %s  %s\n", shortID(active), title)
	}

	sel := r.client.Selection()
	locked := "unlocked"
	if r.client.SettingsLocked() {
		locked = "locked"
	}
	fmt.Fprintf(r.out, "Settings: %s %s (%s)\n", sel.ImageSize, sel.AspectRatio, locked)
	fmt.Fprintf(r.out, "Attachments: %d/%d\n", r.client.Stager().Len(), attach.MaxAttachments)
	fmt.Fprintf(r.out, "Language: %s\n", r.tr.Lang())
	return nil
}

// HelpCommand shows available commands
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	commands := []Command{
		&SessionsCommand{},
		&OpenCommand{},
		&NewCommand{},
		&GenCommand{},
		&AttachCommand{},
		&DetachCommand{},
		&AttachmentsCommand{},
		&SizeCommand{},
		&RatioCommand{},
		&DeleteCommand{},
		&TitleCommand{},
		&LangCommand{},
		&StatusCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}

	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out)

	for _, cmd := range commands {
		aliases := ""
		if len(cmd.Aliases()) > 0 {
			aliases = fmt.Sprintf(" (%s)", strings.Join(cmd.Aliases(), ", "))
		}
		fmt.Fprintf(r.out, "  %-14s%s\n", cmd.Name()+aliases, cmd.Description())
		fmt.Fprintf(r.out, "                Usage: %s\n", cmd.Usage())
	}

	return nil
}

// QuitCommand exits the REPL
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit interactive mode" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Goodbye!")
	r.Stop()
	return nil
}
