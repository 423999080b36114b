package settings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/manash/imgchat/pkg/models"
)

var ErrLocked = errors.New("settings are locked for this session")

// Lock gates the resolution and aspect-ratio selection. The backend ties a
// session's conversational memory to the settings of its first generated
// image, so once a session has committed output the selection is frozen:
// within one session there is no way back from locked to unlocked. Switching
// to another session re-derives the state from that session's transcript.
type Lock struct {
	mu          sync.Mutex
	locked      bool
	resolution  string
	aspectRatio string
}

func NewLock() *Lock {
	return &Lock{
		resolution:  models.DefaultResolution,
		aspectRatio: models.DefaultAspectRatio,
	}
}

func (l *Lock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Selected returns the current resolution/aspect-ratio pair: the user's free
// choice while unlocked, the session's committed settings while locked.
func (l *Lock) Selected() models.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.Settings{ImageSize: l.resolution, AspectRatio: l.aspectRatio}
}

// Adopt locks the machine to a session's committed settings, overriding any
// unsubmitted choice. Empty fields leave the current value in place.
func (l *Lock) Adopt(s models.Settings) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s.ImageSize != "" {
		l.resolution = s.ImageSize
	}
	if s.AspectRatio != "" {
		l.aspectRatio = s.AspectRatio
	}
	l.locked = true
}

// Release unlocks without touching the selection. Used when the active
// session changes to one that has not committed any output yet.
func (l *Lock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = false
}

// ResetDefaults unlocks and restores the default selection; a brand-new
// session starts here.
func (l *Lock) ResetDefaults() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = false
	l.resolution = models.DefaultResolution
	l.aspectRatio = models.DefaultAspectRatio
}

func (l *Lock) SetResolution(v string) error {
	if !models.ValidResolution(v) {
		return fmt.Errorf("%w: %q not in %v", models.ErrInvalidResolution, v, models.Resolutions())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return ErrLocked
	}
	l.resolution = v
	return nil
}

func (l *Lock) SetAspectRatio(v string) error {
	if !models.ValidAspectRatio(v) {
		return fmt.Errorf("%w: %q not in %v", models.ErrInvalidAspectRatio, v, models.AspectRatios())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return ErrLocked
	}
	l.aspectRatio = v
	return nil
}
