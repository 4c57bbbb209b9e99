package facade_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momentics/hioload-affine/api"
	"github.com/momentics/hioload-affine/control"
	"github.com/momentics/hioload-affine/core/concurrency"
	"github.com/momentics/hioload-affine/facade"
	"github.com/momentics/hioload-affine/fake"
)

var interpSpec = facade.ResourceSpec[*fake.Interpreter]{Acquire: fake.NewInterpreter}

// Test the full lifecycle: open from settings, run work, inspect metrics
// and probes, close.
func TestRuntimeFullLifecycle(t *testing.T) {
	s := control.DefaultSettings()
	s.Name = "lifecycle"
	rt, err := facade.Open(s, interpSpec, facade.WithLogOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}

	v, err := concurrency.Call(context.Background(), rt.Executor(), func(sc *concurrency.Scope[*fake.Interpreter]) (float64, error) {
		return fake.Ones(3).Sum(), nil
	})
	if err != nil || v != 9 {
		t.Fatalf("Call = %v,%v", v, err)
	}

	if rt.Metrics() == nil || rt.Metrics().Counter("affine.lifecycle.completed") != 1 {
		t.Errorf("metrics = %v", rt.Metrics().GetSnapshot())
	}
	state := rt.Debug().DumpState()
	if state["affine.lifecycle.state"] != "running" {
		t.Errorf("state probe = %v", state["affine.lifecycle.state"])
	}
	if _, ok := state["platform.cpus"]; !ok {
		t.Error("platform probes not registered")
	}

	if err := rt.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if rt.Executor().State() != api.StateStopped {
		t.Errorf("state = %s", rt.Executor().State())
	}
}

func TestRuntimeDisabledServices(t *testing.T) {
	s := control.DefaultSettings()
	s.Name = "bare"
	s.EnableMetrics = false
	s.EnableDebug = false
	rt, err := facade.Open(s, interpSpec, facade.WithLogOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()
	if rt.Metrics() != nil || rt.Debug() != nil {
		t.Error("disabled services were created")
	}
}

func TestOpenRejectsInvalidSettings(t *testing.T) {
	s := control.DefaultSettings()
	s.LogLevel = "chatty"
	if _, err := facade.Open(s, interpSpec); !errors.Is(err, api.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestOpenPropagatesInitError(t *testing.T) {
	boom := errors.New("no interpreter")
	_, err := facade.Open(control.DefaultSettings(),
		facade.ResourceSpec[*fake.Interpreter]{Acquire: fake.Failing(boom)},
		facade.WithLogOutput(io.Discard))
	if !errors.Is(err, api.ErrInit) || !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affine.toml")
	body := "name = \"from-file\"\nlog_level = \"error\"\nshutdown_timeout = \"2s\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	rt, err := facade.OpenFile(path, interpSpec, facade.WithLogOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()
	if rt.Executor().Name() != "from-file" || rt.Settings().ShutdownTimeout != 2*time.Second {
		t.Errorf("settings = %+v", rt.Settings())
	}
}
