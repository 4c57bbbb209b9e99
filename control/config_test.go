package control

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/momentics/hioload-affine/api"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatal(err)
	}
	if s != DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"affine.yaml": "name: interp\ncpu: 2\nexclusive: python\nlog_level: debug\nshutdown_timeout: 5s\nenable_debug: false\n",
		"affine.toml": "name = \"interp\"\ncpu = 2\nexclusive = \"python\"\nlog_level = \"debug\"\nshutdown_timeout = \"5s\"\nenable_debug = false\n",
		"affine.json": `{"name":"interp","cpu":2,"exclusive":"python","log_level":"debug","shutdown_timeout":"5s","enable_debug":false}`,
	}
	for file, body := range cases {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(dir, file)
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			s, err := LoadSettings(path)
			if err != nil {
				t.Fatal(err)
			}
			want := Settings{
				Name:            "interp",
				CPU:             2,
				Exclusive:       "python",
				LogLevel:        "debug",
				ShutdownTimeout: 5 * time.Second,
				EnableMetrics:   true,
				EnableDebug:     false,
			}
			if s != want {
				t.Errorf("settings = %+v, want %+v", s, want)
			}
			if s.Level() != log.DebugLevel {
				t.Errorf("level = %v", s.Level())
			}
		})
	}

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("AFFINE_CPU", "-1")
		t.Setenv("AFFINE_NAME", "from-env")
		s, err := LoadSettings(filepath.Join(dir, "affine.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if s.CPU != -1 || s.Name != "from-env" {
			t.Errorf("settings = %+v", s)
		}
	})
}

func TestLoadSettings_Errors(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("name: \"\"\ncpu: -4\nlog_level: loud\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadSettings(path)
	if !errors.Is(err, api.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	s.ShutdownTimeout = -time.Second
	if err := s.Validate(); !errors.Is(err, api.ErrInvalidConfig) {
		t.Errorf("negative timeout accepted: %v", err)
	}
	s = DefaultSettings()
	s.LogLevel = "nope"
	if s.Level() != log.WarnLevel {
		t.Errorf("fallback level = %v", s.Level())
	}
}
