package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrInvalidResolution  = errors.New("invalid resolution")
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
	ErrTooManyReferences  = errors.New("too many reference images")
)

// MaxReferenceImages is the backend's per-request reference image limit.
const MaxReferenceImages = 14

const (
	DefaultResolution  = "1K"
	DefaultAspectRatio = "auto"
)

func Resolutions() []string {
	return []string{"1K", "2K", "4K"}
}

func AspectRatios() []string {
	return []string{"auto", "1:1", "16:9", "9:16", "4:3", "3:4", "21:9", "3:2", "2:3"}
}

func ValidResolution(v string) bool {
	return slices.Contains(Resolutions(), v)
}

func ValidAspectRatio(v string) bool {
	return slices.Contains(AspectRatios(), v)
}

// Settings are the generation options a session commits to after producing its
// first image. Once committed they never change for that session.
type Settings struct {
	ImageSize   string `json:"image_size"`
	AspectRatio string `json:"aspect_ratio"`
}

func DefaultSettings() Settings {
	return Settings{ImageSize: DefaultResolution, AspectRatio: DefaultAspectRatio}
}

func (s Settings) IsZero() bool {
	return s.ImageSize == "" && s.AspectRatio == ""
}

// Session is one entry of the backend's session list.
type Session struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	MessageCount int    `json:"message_count"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role            string   `json:"role"`
	Content         string   `json:"content,omitempty"`
	Image           string   `json:"image,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	ReferenceImages []string `json:"reference_images,omitempty"`
	// ReferenceImage is the single-image field old sessions still carry.
	ReferenceImage string `json:"reference_image,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// Transcript is the full detail of one session as returned by the backend.
type Transcript struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
	UpdatedAt string    `json:"updated_at,omitempty"`
	Messages  []Message `json:"messages"`
	Settings  *Settings `json:"settings,omitempty"`
}

// Clone returns a deep copy. Cached transcripts are exchanged as copies so a
// caller can never mutate a cache entry in place.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	out := *t
	if t.Messages != nil {
		out.Messages = make([]Message, len(t.Messages))
		for i, m := range t.Messages {
			if m.ReferenceImages != nil {
				m.ReferenceImages = slices.Clone(m.ReferenceImages)
			}
			out.Messages[i] = m
		}
	}
	if t.Settings != nil {
		s := *t.Settings
		out.Settings = &s
	}
	return &out
}

type GenerateRequest struct {
	SessionID       string   `json:"session_id"`
	Prompt          string   `json:"prompt"`
	AspectRatio     string   `json:"aspect_ratio"`
	ImageSize       string   `json:"image_size"`
	ReferenceImages []string `json:"reference_images"`
}

func NewGenerateRequest(sessionID, prompt string) *GenerateRequest {
	return &GenerateRequest{
		SessionID:   sessionID,
		Prompt:      prompt,
		AspectRatio: DefaultAspectRatio,
		ImageSize:   DefaultResolution,
	}
}

func (r *GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if !ValidResolution(r.ImageSize) {
		return fmt.Errorf("%w: %q not in %v", ErrInvalidResolution, r.ImageSize, Resolutions())
	}
	if !ValidAspectRatio(r.AspectRatio) {
		return fmt.Errorf("%w: %q not in %v", ErrInvalidAspectRatio, r.AspectRatio, AspectRatios())
	}
	if len(r.ReferenceImages) > MaxReferenceImages {
		return fmt.Errorf("%w: max %d, got %d", ErrTooManyReferences, MaxReferenceImages, len(r.ReferenceImages))
	}
	return nil
}

type GenerateResponse struct {
	Success          bool     `json:"success,omitempty"`
	Image            string   `json:"image,omitempty"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	SessionTitle     string   `json:"session_title,omitempty"`
	CreditsRemaining *Credits `json:"credits_remaining,omitempty"`
}

// Credits is the remaining-credit counter from a generate response. Admin
// accounts report the literal string "admin" instead of a number.
type Credits struct {
	Amount int64
	Admin  bool
}

func (c *Credits) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "admin" {
			return fmt.Errorf("unexpected credits value %q", s)
		}
		c.Admin = true
		c.Amount = 0
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unexpected credits value: %s", string(data))
	}
	c.Admin = false
	c.Amount = n
	return nil
}

func (c Credits) MarshalJSON() ([]byte, error) {
	if c.Admin {
		return json.Marshal("admin")
	}
	return json.Marshal(c.Amount)
}

func (c Credits) String() string {
	if c.Admin {
		return "admin"
	}
	return strconv.FormatInt(c.Amount, 10)
}
