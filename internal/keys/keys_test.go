package keys

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_SetGetDelete(t *testing.T) {
	tmpDir := t.TempDir()
	store := &Store{configDir: tmpDir}

	err := store.Set("http://localhost:5000", "tok-test-12345")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Verify file was created with correct permissions
	keyFile := filepath.Join(tmpDir, "keys.json")
	info, err := os.Stat(keyFile)
	if err != nil {
		t.Fatalf("keys.json not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("keys.json permissions = %v, want 0600", info.Mode().Perm())
	}

	token, err := store.Get("http://localhost:5000")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if token != "tok-test-12345" {
		t.Errorf("Get() = %v, want tok-test-12345", token)
	}

	token, err = store.Get("http://other:5000")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if token != "" {
		t.Errorf("Get(non-existent) = %v, want empty string", token)
	}

	servers, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(servers) != 1 || servers[0] != "http://localhost:5000" {
		t.Errorf("List() = %v, want [http://localhost:5000]", servers)
	}

	if err := store.Delete("http://localhost:5000"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete("http://localhost:5000"); err == nil {
		t.Error("Delete() of missing token should fail")
	}
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("IMGCHAT_CONFIG_DIR", tmpDir)

	dir, err := getConfigDir()
	if err != nil {
		t.Fatalf("getConfigDir() error = %v", err)
	}
	if dir != tmpDir {
		t.Errorf("getConfigDir() = %v, want %v", dir, tmpDir)
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"short token fully masked", "abc", "***"},
		{"eight chars fully masked", "12345678", "********"},
		{"long token keeps edges", "tok-abcdef123456", "tok-********3456"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.token); got != tt.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestGetToken_Priority(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("IMGCHAT_CONFIG_DIR", tmpDir)
	t.Setenv("IMGCHAT_TEST_TOKEN", "from-env")

	store := &Store{configDir: tmpDir}
	if err := store.Set("http://srv", "from-store"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	token, source := GetToken("explicit", "http://srv", "IMGCHAT_TEST_TOKEN")
	if token != "explicit" || source != "command-line flag" {
		t.Errorf("GetToken() = %q/%q, want explicit flag", token, source)
	}

	token, _ = GetToken("", "http://srv", "IMGCHAT_TEST_TOKEN")
	if token != "from-store" {
		t.Errorf("GetToken() = %q, want from-store", token)
	}

	token, _ = GetToken("", "http://unknown", "IMGCHAT_TEST_TOKEN")
	if token != "from-env" {
		t.Errorf("GetToken() = %q, want from-env", token)
	}

	t.Setenv("IMGCHAT_TEST_TOKEN", "")
	token, source = GetToken("", "http://unknown", "IMGCHAT_TEST_TOKEN")
	if token != "" || source != "" {
		t.Errorf("GetToken() = %q/%q, want empty without any source", token, source)
	}
}
