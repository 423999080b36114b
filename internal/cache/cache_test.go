package cache

import (
	"reflect"
	"testing"

	"github.com/manash/imgchat/pkg/models"
)

func sampleTranscript() *models.Transcript {
	return &models.Transcript{
		ID: "s1",
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "draw a cat", ReferenceImages: []string{"a.png"}},
			{Role: models.RoleAssistant, Image: "/static/images/cat.png"},
		},
		Settings: &models.Settings{ImageSize: "2K", AspectRatio: "16:9"},
	}
}

func TestCache_PutGet(t *testing.T) {
	c := New()
	want := sampleTranscript()
	c.Put("s1", want)

	got, ok := c.Get("s1")
	if !ok {
		t.Fatal("Get() ok = false after Put")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCache_Get_Absent(t *testing.T) {
	c := New()
	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache should report absence")
	}
}

func TestCache_EntriesAreSnapshots(t *testing.T) {
	c := New()
	orig := sampleTranscript()
	c.Put("s1", orig)

	// Mutating what the caller put in must not reach the cache.
	orig.Messages[0].Content = "mutated after put"
	got, _ := c.Get("s1")
	if got.Messages[0].Content != "draw a cat" {
		t.Error("cache entry changed through the caller's reference")
	}

	// Mutating what Get handed out must not reach the cache either.
	got.Messages[1].Image = "mutated.png"
	got.Settings.ImageSize = "4K"
	again, _ := c.Get("s1")
	if again.Messages[1].Image != "/static/images/cat.png" {
		t.Error("cache entry changed through a Get result")
	}
	if again.Settings.ImageSize != "2K" {
		t.Error("cached settings changed through a Get result")
	}
}

func TestCache_Put_Overwrites(t *testing.T) {
	c := New()
	c.Put("s1", sampleTranscript())

	replacement := &models.Transcript{ID: "s1", Messages: []models.Message{{Role: models.RoleUser, Content: "new"}}}
	c.Put("s1", replacement)

	got, _ := c.Get("s1")
	if len(got.Messages) != 1 || got.Messages[0].Content != "new" {
		t.Errorf("Get() after overwrite = %+v, want replacement", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_Evict(t *testing.T) {
	c := New()
	c.Put("s1", sampleTranscript())
	c.Evict("s1")

	if _, ok := c.Get("s1"); ok {
		t.Error("Get() after Evict should report absence")
	}
	// Evicting an unknown id is harmless.
	c.Evict("never-there")
}

func TestCache_Put_NilIgnored(t *testing.T) {
	c := New()
	c.Put("s1", nil)
	if c.Len() != 0 {
		t.Error("Put(nil) should not create an entry")
	}
}
