package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fastyr/fastyr/internal/config"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "main", false},
		{"valid with numbers", "work123", false},
		{"valid with hyphen", "my-profile", false},
		{"valid with underscore", "my_profile", false},
		{"valid max length", strings.Repeat("a", 64), false},
		{"empty", "", true},
		{"uppercase", "Main", true},
		{"space", "my profile", true},
		{"dot", "my.profile", true},
		{"too long", strings.Repeat("a", 65), true},
		{"slash", "my/profile", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	base := t.TempDir()
	t.Setenv(EnvHome, base)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dir", Dir("work"), filepath.Join(base, "profiles", "work")},
		{"lock", LockPath("work"), filepath.Join(base, "profiles", "work", "LOCK")},
		{"db", DBPath("work"), filepath.Join(base, "profiles", "work", "fastyr.db")},
		{"log", LogPath("work"), filepath.Join(base, "profiles", "work", "logs", "fastyr.log")},
		{"config", ConfigPath(), filepath.Join(base, "config.toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDefaultBaseDir(t *testing.T) {
	t.Setenv(EnvHome, "")
	home, _ := os.UserHomeDir()
	if got, want := BaseDir(), filepath.Join(home, ".fastyr"); got != want {
		t.Errorf("BaseDir() = %q, want %q", got, want)
	}
}

func TestEnsureDirAndList(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	if names, err := List(); err != nil || len(names) != 0 {
		t.Fatalf("List() on empty home = %v, %v", names, err)
	}
	for _, name := range []string{"main", "work"} {
		if err := EnsureDir(name); err != nil {
			t.Fatal(err)
		}
	}

	info, err := os.Stat(LogDir("work"))
	if err != nil || !info.IsDir() {
		t.Fatalf("log dir not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("log dir permission = %o, want 0700", perm)
	}

	names, err := List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "main" || names[1] != "work" {
		t.Errorf("List() = %v", names)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		flag string
		cfg  *config.Config
		want string
	}{
		{"flag wins", "cli", &config.Config{DefaultProfile: "cfg"}, "cli"},
		{"config", "", &config.Config{DefaultProfile: "cfg"}, "cfg"},
		{"nil config", "", nil, DefaultName},
		{"empty config", "", &config.Config{}, DefaultName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.flag, tt.cfg); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
