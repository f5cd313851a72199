package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func authConfig(t *testing.T, quiet bool) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Quiet = quiet
	return cfg
}

func TestAuthCommands_NeedNoApp(t *testing.T) {
	for _, name := range []string{"login", "logout"} {
		cmd, ok := commands.DefaultRegistry.Find(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if cmd.NeedsApp() {
			t.Errorf("%s should run without a backend", name)
		}
	}
}

func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cfg := authConfig(t, false)

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if outBuf.Len() != 0 {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	stderr := errBuf.String()
	for _, want := range []string{
		"error: oauth_client.json not found in " + cfg.Dir,
		"Save it as " + cfg.OAuthClientPath(),
		`Set backend = "googletasks" in ` + cfg.SettingsPath(),
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %q in setup hint, got %q", want, stderr)
		}
	}
	if cfg.HasToken() {
		t.Error("no token should be written")
	}
}

func TestLoginCommand_InvalidOAuthClient(t *testing.T) {
	cfg := authConfig(t, false)
	writeFile(t, cfg.Dir, config.OAuthClientFile, "{not json")

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.HasPrefix(errBuf.String(), "error: ") || strings.Contains(errBuf.String(), "Save it as") {
		t.Errorf("expected a plain error without setup hint, got %q", errBuf.String())
	}
}

func TestLoginCommand_UnusableTokenStartsLogin(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"no refresh token", `{"access_token":"expired","token_type":"Bearer"}`},
		{"expired without refresh", `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`},
		{"corrupt", `{"access_token"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := authConfig(t, false)
			writeFile(t, cfg.Dir, config.OAuthClientFile, testOAuthClient)
			writeFile(t, cfg.Dir, config.TokenFile, tt.token)

			// A cancelled context stops the flow before waiting for the callback
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var outBuf, errBuf bytes.Buffer
			code := (&commands.LoginCmd{}).Run(ctx, cfg, nil, nil, &outBuf, &errBuf)

			if outBuf.String() == "already logged in\n" {
				t.Error("an unusable token must not count as logged in")
			}
			if code != exitcode.ConfigError {
				t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
			}
		})
	}
}

func TestLogoutCommand(t *testing.T) {
	tests := []struct {
		name     string
		token    bool
		quiet    bool
		expected string
	}{
		{"logged in", true, false, "ok\n"},
		{"logged in quiet", true, true, ""},
		{"not logged in", false, false, "not logged in\n"},
		{"not logged in quiet", false, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := authConfig(t, tt.quiet)
			oauthPath := writeFile(t, cfg.Dir, config.OAuthClientFile, testOAuthClient)
			settingsPath := writeFile(t, cfg.Dir, config.SettingsFile, "backend = \"sqlite\"\n")
			dbPath := writeFile(t, cfg.Dir, config.DefaultDBName, "")
			if tt.token {
				writeFile(t, cfg.Dir, config.TokenFile, `{"access_token":"test","refresh_token":"test"}`)
			}

			var outBuf, errBuf bytes.Buffer
			code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

			if code != exitcode.Success {
				t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
			}
			if errBuf.Len() != 0 {
				t.Errorf("expected no stderr, got %q", errBuf.String())
			}
			if outBuf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, outBuf.String())
			}
			if cfg.HasToken() {
				t.Error("token.json should be gone")
			}
			// Only the Google token is removed
			for _, p := range []string{oauthPath, settingsPath, dbPath} {
				if _, err := os.Stat(p); err != nil {
					t.Errorf("%s should be kept: %v", filepath.Base(p), err)
				}
			}
		})
	}
}
