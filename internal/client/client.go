package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/manash/imgchat/internal/attach"
	"github.com/manash/imgchat/internal/cache"
	"github.com/manash/imgchat/internal/gateway"
	"github.com/manash/imgchat/internal/settings"
	"github.com/manash/imgchat/pkg/models"
)

var (
	ErrGenerationInFlight = errors.New("a generation is already in flight")
	ErrSessionLoading     = errors.New("a session load is in progress")
	ErrChangeAbandoned    = errors.New("settings change abandoned")
)

// Severity classifies a dialog notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Renderer is the presentation surface the orchestrator drives. It receives
// snapshots it must not mutate and holds no coordination logic of its own.
type Renderer interface {
	RenderSessionList(sessions []*models.Session, activeID string)
	RenderTranscript(messages []models.Message)
	ShowLoading(on bool)
	ShowError(message string)
	ShowCredits(display string)
	ClearPrompt()
}

// Dialogs is the confirm/alert provider. Both calls block until the user
// answers; the orchestrator awaits them before branching.
type Dialogs interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
	Alert(ctx context.Context, title, message string, severity Severity) error
}

// Translator resolves display strings and backend error codes.
type Translator interface {
	T(key string, args ...any) string
	TranslateError(msg string) string
}

// Client orchestrates the session list, transcript cache, attachment stager
// and settings lock behind the user-facing operations. All mutable state
// lives on this struct; one Client is constructed per client session. Every
// failure is converted to a user-visible notification at the operation
// boundary, and also returned for callers that branch on it.
type Client struct {
	gw      gateway.API
	cache   *cache.Cache
	stager  *attach.Stager
	lock    *settings.Lock
	ui      Renderer
	dialogs Dialogs
	tr      Translator

	mu         sync.Mutex
	sessions   []*models.Session
	activeID   string
	generating bool
	loading    bool
}

type Config struct {
	Gateway    gateway.API
	Renderer   Renderer
	Dialogs    Dialogs
	Translator Translator
}

func New(cfg *Config) *Client {
	return &Client{
		gw:      cfg.Gateway,
		cache:   cache.New(),
		stager:  attach.NewStager(),
		lock:    settings.NewLock(),
		ui:      cfg.Renderer,
		dialogs: cfg.Dialogs,
		tr:      cfg.Translator,
	}
}

// Stager exposes the attachment set for the upload/remove/clear paths.
func (c *Client) Stager() *attach.Stager {
	return c.stager
}

func (c *Client) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Sessions returns a copy of the in-memory session list, most recent first.
func (c *Client) Sessions() []*models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotSessionsLocked()
}

// Selection is the current resolution/aspect-ratio pair shown to the user.
func (c *Client) Selection() models.Settings {
	return c.lock.Selected()
}

func (c *Client) SettingsLocked() bool {
	return c.lock.Locked()
}

// LoadSessions fetches the session list and renders it. Called once on
// startup and whenever the list needs a full refresh.
func (c *Client) LoadSessions(ctx context.Context) error {
	list, err := c.gw.ListSessions(ctx)
	if err != nil {
		c.ui.ShowError(c.tr.T("load_sessions_failed") + ": " + c.describe(err))
		return err
	}

	c.mu.Lock()
	c.sessions = list
	sessions := c.snapshotSessionsLocked()
	active := c.activeID
	c.mu.Unlock()

	c.ui.RenderSessionList(sessions, active)
	return nil
}

// SelectSession makes id the active session and shows its transcript, from
// cache when possible. A call while another load is in progress is a no-op.
// On a fetch failure the prior view is left in place and only an error is
// surfaced; the loading state is cleared on every path.
func (c *Client) SelectSession(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil
	}
	c.activeID = id
	sessions := c.snapshotSessionsLocked()
	c.mu.Unlock()

	c.ui.RenderSessionList(sessions, id)

	if t, ok := c.cache.Get(id); ok {
		c.ui.RenderTranscript(t.Messages)
		c.deriveLock(t)
		return nil
	}

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	c.ui.ShowLoading(true)
	t, err := c.gw.FetchSession(ctx, id)
	c.ui.ShowLoading(false)

	c.mu.Lock()
	c.loading = false
	stillActive := c.activeID == id
	c.mu.Unlock()

	if err != nil {
		c.ui.ShowError(c.describe(err))
		return err
	}

	// The write targets the id captured at call time; if the user has moved
	// on, the response is cached but never rendered.
	c.cache.Put(id, t)
	if stillActive {
		c.ui.RenderTranscript(t.Messages)
		c.deriveLock(t)
	}
	return nil
}

// StartNewSession creates a session on the backend, prepends it to the list
// and makes it active with a clean slate: no attachments, no prompt, default
// unlocked settings. On failure the previous active session is untouched.
func (c *Client) StartNewSession(ctx context.Context) (*models.Session, error) {
	sess, err := c.gw.CreateSession(ctx)
	if err != nil {
		c.ui.ShowError(c.describe(err))
		return nil, err
	}

	c.mu.Lock()
	c.sessions = append([]*models.Session{sess}, c.sessions...)
	c.activeID = sess.ID
	sessions := c.snapshotSessionsLocked()
	c.mu.Unlock()

	c.stager.Clear()
	c.lock.ResetDefaults()
	c.ui.ClearPrompt()
	c.ui.RenderSessionList(sessions, sess.ID)
	c.ui.RenderTranscript(nil)
	return sess, nil
}

// Generate submits one generation for the active session using the current
// selection and the staged reference images. The operation is globally
// single-flight: a second call while one is running is rejected. With no
// active session one is created implicitly, preserving the caller's
// in-progress resolution/aspect-ratio choice across the reset that
// StartNewSession performs.
func (c *Client) Generate(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrSessionLoading
	}
	if c.generating {
		c.mu.Unlock()
		return ErrGenerationInFlight
	}
	if prompt == "" {
		c.mu.Unlock()
		c.dialogs.Alert(ctx, c.tr.T("enter_prompt"), c.tr.T("enter_prompt"), SeverityWarning)
		return models.ErrEmptyPrompt
	}
	c.generating = true
	sid := c.activeID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.generating = false
		c.mu.Unlock()
	}()

	if sid == "" {
		saved := c.lock.Selected()
		sess, err := c.StartNewSession(ctx)
		if err != nil {
			return err
		}
		if err := c.restoreSelection(saved); err != nil {
			return err
		}
		sid = sess.ID
	}

	sel := c.lock.Selected()
	req := &models.GenerateRequest{
		SessionID:       sid,
		Prompt:          prompt,
		AspectRatio:     sel.AspectRatio,
		ImageSize:       sel.ImageSize,
		ReferenceImages: c.stager.Snapshot(),
	}

	c.ui.ShowLoading(true)
	resp, err := c.gw.Generate(ctx, req)
	c.ui.ShowLoading(false)

	if err != nil {
		c.dialogs.Alert(ctx, c.tr.T("generate_failed"), c.describe(err), SeverityError)
		return err
	}

	// Bookkeeping targets the session captured at request start, not
	// whatever is active when the response arrives.
	c.mu.Lock()
	for _, s := range c.sessions {
		if s.ID == sid {
			if resp.SessionTitle != "" {
				s.Title = resp.SessionTitle
			}
			s.MessageCount += 2
			break
		}
	}
	sessions := c.snapshotSessionsLocked()
	active := c.activeID
	c.mu.Unlock()

	c.ui.RenderSessionList(sessions, active)
	if resp.CreditsRemaining != nil && !resp.CreditsRemaining.Admin {
		c.ui.ShowCredits(resp.CreditsRemaining.String())
	}
	c.stager.Clear()
	c.ui.ClearPrompt()

	// Replace the cached transcript wholesale with the authoritative copy.
	// A failure here is not a silent success: the title/credit updates above
	// stay, and the user is told the refresh failed.
	t, err := c.gw.FetchSession(ctx, sid)
	if err != nil {
		c.ui.ShowError(c.tr.T("refresh_failed") + ": " + c.describe(err))
		return err
	}

	c.cache.Put(sid, t)

	c.mu.Lock()
	stillActive := c.activeID == sid
	c.mu.Unlock()

	if stillActive {
		c.ui.RenderTranscript(t.Messages)
		if t.Settings != nil && !t.Settings.IsZero() {
			c.lock.Adopt(*t.Settings)
		}
	}
	return nil
}

// DeleteSession removes the session locally regardless of the remote
// outcome; a backend failure is surfaced but does not resurrect the entry.
// Deleting the active session reverts the view to the empty state.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	err := c.gw.DeleteSession(ctx, id)
	if err != nil {
		c.ui.ShowError(c.describe(err))
	}

	c.cache.Evict(id)

	c.mu.Lock()
	kept := c.sessions[:0]
	for _, s := range c.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.sessions = kept
	wasActive := c.activeID == id
	if wasActive {
		c.activeID = ""
	}
	sessions := c.snapshotSessionsLocked()
	active := c.activeID
	c.mu.Unlock()

	if wasActive {
		c.lock.Release()
		c.ui.RenderTranscript(nil)
	}
	c.ui.RenderSessionList(sessions, active)
	return err
}

// RenameSession updates a session's title remotely and in the local list.
func (c *Client) RenameSession(ctx context.Context, id, title string) error {
	if err := c.gw.RenameSession(ctx, id, title); err != nil {
		c.ui.ShowError(c.describe(err))
		return err
	}

	c.mu.Lock()
	for _, s := range c.sessions {
		if s.ID == id {
			s.Title = title
			break
		}
	}
	sessions := c.snapshotSessionsLocked()
	active := c.activeID
	c.mu.Unlock()

	c.ui.RenderSessionList(sessions, active)
	return nil
}

// SetResolution changes the resolution selection. While locked the change is
// rejected and the user chooses between abandoning it (ErrChangeAbandoned)
// and starting a brand-new session with default settings.
func (c *Client) SetResolution(ctx context.Context, v string) error {
	return c.changeSetting(ctx, func() error { return c.lock.SetResolution(v) })
}

// SetAspectRatio is SetResolution's aspect-ratio counterpart.
func (c *Client) SetAspectRatio(ctx context.Context, v string) error {
	return c.changeSetting(ctx, func() error { return c.lock.SetAspectRatio(v) })
}

func (c *Client) changeSetting(ctx context.Context, set func() error) error {
	if c.lock.Locked() {
		ok, err := c.dialogs.Confirm(ctx, c.tr.T("settings_locked"), c.tr.T("settings_locked_msg"))
		if err != nil {
			return err
		}
		if !ok {
			return ErrChangeAbandoned
		}
		_, err = c.StartNewSession(ctx)
		return err
	}

	if err := set(); err != nil {
		c.ui.ShowError(err.Error())
		return err
	}
	return nil
}

// RefreshView re-renders the session list and the active transcript from
// local state, e.g. after a language switch.
func (c *Client) RefreshView() {
	c.mu.Lock()
	sessions := c.snapshotSessionsLocked()
	active := c.activeID
	c.mu.Unlock()

	c.ui.RenderSessionList(sessions, active)
	if active == "" {
		return
	}
	if t, ok := c.cache.Get(active); ok {
		c.ui.RenderTranscript(t.Messages)
	}
}

func (c *Client) restoreSelection(s models.Settings) error {
	if err := c.lock.SetResolution(s.ImageSize); err != nil {
		return fmt.Errorf("failed to restore resolution: %w", err)
	}
	if err := c.lock.SetAspectRatio(s.AspectRatio); err != nil {
		return fmt.Errorf("failed to restore aspect ratio: %w", err)
	}
	return nil
}

// deriveLock re-derives the lock state from a transcript: committed settings
// lock the machine to those exact values, their absence releases it.
func (c *Client) deriveLock(t *models.Transcript) {
	if t.Settings != nil && !t.Settings.IsZero() {
		c.lock.Adopt(*t.Settings)
		return
	}
	c.lock.Release()
}

// describe turns a gateway failure into user-facing text: transport errors
// become the generic connectivity message, reserved error codes are
// localized, anything else passes through.
func (c *Client) describe(err error) string {
	var ne *gateway.NetworkError
	if errors.As(err, &ne) {
		return c.tr.T("network_error")
	}
	var re *gateway.RemoteError
	if errors.As(err, &re) {
		return c.tr.TranslateError(re.Code)
	}
	return err.Error()
}

func (c *Client) snapshotSessionsLocked() []*models.Session {
	out := make([]*models.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}
