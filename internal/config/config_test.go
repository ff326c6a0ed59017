package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{DefaultProfile: "work", APIURL: "https://api.example.com", LogLevel: "debug"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestResolveMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvProfile, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Resolve(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.APIURL != DefaultAPIURL || cfg.LogLevel != DefaultLogLevel || cfg.DefaultProfile != "" {
		t.Errorf("Resolve() = %+v", cfg)
	}
}

func TestResolveEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &Config{DefaultProfile: "work", APIURL: "http://file:8000"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIURL, "http://env:9000")
	t.Setenv(EnvProfile, "")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.APIURL != "http://env:9000" {
		t.Errorf("APIURL = %q, want env override", cfg.APIURL)
	}
	if cfg.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want file value", cfg.DefaultProfile)
	}
	if lvl, _ := cfg.Level(); lvl != zapcore.WarnLevel {
		t.Errorf("Level() = %v, want warn", lvl)
	}
}

func TestResolveMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("api_url = ["), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(path); err == nil {
		t.Error("Resolve() expected error for malformed file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{APIURL: DefaultAPIURL}, false},
		{"https", Config{APIURL: "https://api.example.com/v1", LogLevel: "error"}, false},
		{"no scheme", Config{APIURL: "localhost:8000"}, true},
		{"ftp", Config{APIURL: "ftp://example.com"}, true},
		{"bad level", Config{APIURL: DefaultAPIURL, LogLevel: "loud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	cfg := &Config{APIURL: "http://keep", DefaultProfile: "keep"}
	env := map[string]string{EnvAPIURL: "", EnvProfile: "other"}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.APIURL != "http://keep" || cfg.DefaultProfile != "other" {
		t.Errorf("ApplyEnv() = %+v", cfg)
	}
}
