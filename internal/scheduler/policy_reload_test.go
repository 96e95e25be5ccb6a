package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shellgate/shellgate/internal/guard"
	"github.com/shellgate/shellgate/internal/logger"
)

func writePolicy(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing policy file: %v", err)
	}
}

func TestPolicyReloaderReload(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	writePolicy(t, path, "blocked:\n  - shutdown\n  - reboot\n")

	holder := guard.NewHolder(guard.DefaultPolicy(), guard.SourceBuiltin)
	pr := NewPolicyReloader(path, holder, log, time.Hour, make(chan struct{}))

	if err := pr.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	policy := holder.Current()
	if len(policy.Blocked) != 2 || policy.Blocked[0] != "shutdown" {
		t.Errorf("active blocklist = %v, want [shutdown reboot]", policy.Blocked)
	}
	source, _ := holder.Provenance()
	if source != path {
		t.Errorf("policy source = %q, want %q", source, path)
	}
}

func TestPolicyReloaderKeepsPreviousOnError(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	writePolicy(t, path, "blocked:\n  - shutdown\n")

	holder := guard.NewHolder(guard.DefaultPolicy(), guard.SourceBuiltin)
	pr := NewPolicyReloader(path, holder, log, time.Hour, make(chan struct{}))

	if err := pr.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	writePolicy(t, path, "blocked: [unclosed\n")
	if err := pr.Reload(); err == nil {
		t.Fatal("Reload() of broken yaml error = nil, want error")
	}

	policy := holder.Current()
	if len(policy.Blocked) != 1 || policy.Blocked[0] != "shutdown" {
		t.Errorf("active blocklist = %v, want the previous policy kept", policy.Blocked)
	}
}

func TestPolicyReloaderStartFailsOnMissingFile(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "nope.yaml")

	holder := guard.NewHolder(guard.DefaultPolicy(), guard.SourceBuiltin)
	pr := NewPolicyReloader(path, holder, log, time.Hour, make(chan struct{}))

	if err := pr.Start(context.Background()); err == nil {
		t.Fatal("Start() with missing policy file error = nil, want error")
	}
}

func TestPolicyReloaderManualTrigger(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	writePolicy(t, path, "blocked:\n  - shutdown\n")

	holder := guard.NewHolder(guard.DefaultPolicy(), guard.SourceBuiltin)
	trigger := make(chan struct{}, 1)
	pr := NewPolicyReloader(path, holder, log, time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := pr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer pr.Stop()

	writePolicy(t, path, "blocked:\n  - halt\n")
	trigger <- struct{}{}

	deadline := time.After(2 * time.Second)
	for {
		policy := holder.Current()
		if len(policy.Blocked) == 1 && policy.Blocked[0] == "halt" {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("policy never reloaded, blocklist = %v", policy.Blocked)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
