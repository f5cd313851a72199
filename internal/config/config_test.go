package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskflow/internal/config"
)

func TestLoadSettings_CreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "taskflow")
	cfg, _ := config.New(dir)

	if err := cfg.LoadSettings(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Settings != config.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", cfg.Settings)
	}
	if _, err := os.Stat(cfg.SettingsPath()); err != nil {
		t.Errorf("expected settings file written: %v", err)
	}

	// Reading the written file back yields the same settings.
	again, _ := config.New(dir)
	if err := again.LoadSettings(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.Settings != cfg.Settings {
		t.Errorf("expected %+v, got %+v", cfg.Settings, again.Settings)
	}
}

func TestLoadSettings_Overrides(t *testing.T) {
	dir := t.TempDir()
	data := `backend = "sqlite"
default_category = "design"
timeout = "3s"
sqlite_path = "data/tasks.db"
`
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _ := config.New(dir)
	if err := cfg.LoadSettings(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	s := cfg.Settings
	if s.Backend != config.BackendSQLite || s.DefaultCategory != "design" || s.Timeout.Duration != 3*time.Second {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.TaskTable != "task" {
		t.Errorf("expected default task table, got %q", s.TaskTable)
	}
	if want := filepath.Join(dir, "data", "tasks.db"); cfg.DBPath() != want {
		t.Errorf("expected db path %s, got %s", want, cfg.DBPath())
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("backend = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _ := config.New(dir)
	if err := cfg.LoadSettings(); err == nil {
		t.Error("expected error for invalid settings")
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("TASKFLOW_PROJECT_ID", "")
	t.Setenv("TASKFLOW_PUBLIC_KEY", "")
	os.Unsetenv("TASKFLOW_PROJECT_ID")
	os.Unsetenv("TASKFLOW_PUBLIC_KEY")

	if _, err := config.LoadCredentials(); !errors.Is(err, config.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}

	t.Setenv("TASKFLOW_PROJECT_ID", "proj-1")
	t.Setenv("TASKFLOW_PUBLIC_KEY", "pk-abc")
	creds, err := config.LoadCredentials()
	if err != nil {
		t.Fatalf("expected credentials, got %v", err)
	}
	if creds.ProjectID != "proj-1" || creds.PublicKey != "pk-abc" {
		t.Errorf("unexpected credentials %+v", creds)
	}
}

func TestLoadCredentials_EmptyValues(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		publicKey string
	}{
		{"both empty", "", ""},
		{"empty project", "", "pk-abc"},
		{"blank key", "proj-1", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TASKFLOW_PROJECT_ID", tt.projectID)
			t.Setenv("TASKFLOW_PUBLIC_KEY", tt.publicKey)

			if _, err := config.LoadCredentials(); !errors.Is(err, config.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "taskflow") {
		t.Errorf("unexpected dir %s", got)
	}
}

func TestLoadSettings_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("backend = \"carrier-pigeon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, _ := config.New(dir)
	err := cfg.LoadSettings()
	if !errors.Is(err, config.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}
