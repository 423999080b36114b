package settings

import (
	"errors"
	"testing"

	"github.com/manash/imgchat/pkg/models"
)

func TestNewLock_Defaults(t *testing.T) {
	l := NewLock()
	if l.Locked() {
		t.Error("new lock should start unlocked")
	}
	sel := l.Selected()
	if sel.ImageSize != models.DefaultResolution || sel.AspectRatio != models.DefaultAspectRatio {
		t.Errorf("Selected() = %+v, want defaults", sel)
	}
}

func TestLock_SetWhileUnlocked(t *testing.T) {
	l := NewLock()
	if err := l.SetResolution("2K"); err != nil {
		t.Fatalf("SetResolution() error = %v", err)
	}
	if err := l.SetAspectRatio("16:9"); err != nil {
		t.Fatalf("SetAspectRatio() error = %v", err)
	}
	sel := l.Selected()
	if sel.ImageSize != "2K" || sel.AspectRatio != "16:9" {
		t.Errorf("Selected() = %+v, want 2K/16:9", sel)
	}
}

func TestLock_SetInvalidValue(t *testing.T) {
	l := NewLock()
	if err := l.SetResolution("8K"); !errors.Is(err, models.ErrInvalidResolution) {
		t.Errorf("SetResolution(8K) error = %v, want ErrInvalidResolution", err)
	}
	if err := l.SetAspectRatio("5:4"); !errors.Is(err, models.ErrInvalidAspectRatio) {
		t.Errorf("SetAspectRatio(5:4) error = %v, want ErrInvalidAspectRatio", err)
	}
}

func TestLock_Adopt(t *testing.T) {
	l := NewLock()
	l.Adopt(models.Settings{ImageSize: "2K", AspectRatio: "16:9"})

	if !l.Locked() {
		t.Error("Adopt() should lock")
	}
	sel := l.Selected()
	if sel.ImageSize != "2K" || sel.AspectRatio != "16:9" {
		t.Errorf("Selected() = %+v, want adopted values exactly", sel)
	}
}

func TestLock_Adopt_OverridesPendingChoice(t *testing.T) {
	l := NewLock()
	l.SetResolution("4K")
	l.SetAspectRatio("9:16")

	// A fetched transcript's committed settings win over unsubmitted choices.
	l.Adopt(models.Settings{ImageSize: "1K", AspectRatio: "1:1"})
	sel := l.Selected()
	if sel.ImageSize != "1K" || sel.AspectRatio != "1:1" {
		t.Errorf("Selected() = %+v, want committed values", sel)
	}
}

func TestLock_Adopt_PartialSettings(t *testing.T) {
	l := NewLock()
	l.SetResolution("4K")
	l.Adopt(models.Settings{AspectRatio: "21:9"})

	sel := l.Selected()
	if sel.ImageSize != "4K" {
		t.Errorf("ImageSize = %q, want previous selection kept", sel.ImageSize)
	}
	if sel.AspectRatio != "21:9" {
		t.Errorf("AspectRatio = %q, want 21:9", sel.AspectRatio)
	}
	if !l.Locked() {
		t.Error("partial Adopt() should still lock")
	}
}

func TestLock_SetWhileLocked(t *testing.T) {
	l := NewLock()
	l.Adopt(models.Settings{ImageSize: "2K", AspectRatio: "16:9"})

	if err := l.SetResolution("4K"); !errors.Is(err, ErrLocked) {
		t.Errorf("SetResolution() error = %v, want ErrLocked", err)
	}
	if err := l.SetAspectRatio("1:1"); !errors.Is(err, ErrLocked) {
		t.Errorf("SetAspectRatio() error = %v, want ErrLocked", err)
	}

	// Rejected changes are no-ops on the selection.
	sel := l.Selected()
	if sel.ImageSize != "2K" || sel.AspectRatio != "16:9" {
		t.Errorf("Selected() = %+v, want committed values untouched", sel)
	}
}

func TestLock_Release(t *testing.T) {
	l := NewLock()
	l.SetResolution("2K")
	l.Adopt(models.Settings{ImageSize: "4K", AspectRatio: "3:2"})
	l.Release()

	if l.Locked() {
		t.Error("Release() should unlock")
	}
	// Release keeps the last selection; only ResetDefaults restores defaults.
	sel := l.Selected()
	if sel.ImageSize != "4K" || sel.AspectRatio != "3:2" {
		t.Errorf("Selected() = %+v, want last values kept", sel)
	}
}

func TestLock_ResetDefaults(t *testing.T) {
	l := NewLock()
	l.Adopt(models.Settings{ImageSize: "4K", AspectRatio: "3:2"})
	l.ResetDefaults()

	if l.Locked() {
		t.Error("ResetDefaults() should unlock")
	}
	sel := l.Selected()
	if sel.ImageSize != models.DefaultResolution || sel.AspectRatio != models.DefaultAspectRatio {
		t.Errorf("Selected() = %+v, want defaults", sel)
	}
}
