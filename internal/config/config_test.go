// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaroslavh/Nemea-Modules/internal/errors"
)

func newFlagSet(args ...string) (*flag.FlagSet, *Flags) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	return fs, f
}

func TestLoadRequiresBogonFile(t *testing.T) {
	fs, f := newFlagSet()
	_, err := Load(fs, f)
	if errors.GetKind(err) != errors.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadAppliesFlagValues(t *testing.T) {
	fs, f := newFlagSet("-b", "bogons.txt", "-c", "watched.txt", "-s", "30", "-t", "500")
	cfg, err := Load(fs, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BogonFile != "bogons.txt" || cfg.SpecificNetworksFile != "watched.txt" {
		t.Fatalf("flag values not applied: %+v", cfg)
	}
	if cfg.SymRewriteWindow != 30*time.Second {
		t.Fatalf("expected 30s rewrite window, got %v", cfg.SymRewriteWindow)
	}
	if cfg.NewFlowThreshold != 500 {
		t.Fatalf("expected threshold 500, got %d", cfg.NewFlowThreshold)
	}
}

func TestLoadFallsBackToDefaultsWhenFlagsUnset(t *testing.T) {
	fs, f := newFlagSet("-b", "bogons.txt")
	cfg, err := Load(fs, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SymRewriteWindow != 45*time.Second {
		t.Fatalf("expected default 45s rewrite window, got %v", cfg.SymRewriteWindow)
	}
	if cfg.NewFlowThreshold != 1000 {
		t.Fatalf("expected default threshold 1000, got %d", cfg.NewFlowThreshold)
	}
	if cfg.Syslog == nil || cfg.Syslog.Enabled {
		t.Fatalf("expected disabled default syslog config, got %+v", cfg.Syslog)
	}
}

func TestLoadFileValuesSurviveWhenFlagsNotExplicitlySet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spoofdetect.hcl")
	body := `
bogon_file = "/etc/spoofdetect/bogons.txt"
new_flow_threshold = 2500
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	fs, f := newFlagSet("-config", path)
	cfg, err := Load(fs, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BogonFile != "/etc/spoofdetect/bogons.txt" {
		t.Fatalf("expected file-provided bogon file to survive, got %q", cfg.BogonFile)
	}
	if cfg.NewFlowThreshold != 2500 {
		t.Fatalf("expected file-provided threshold 2500, got %d", cfg.NewFlowThreshold)
	}
	if cfg.Syslog == nil || cfg.Syslog.Enabled {
		t.Fatalf("expected default disabled syslog config when file omits the block, got %+v", cfg.Syslog)
	}
}

func TestLoadExplicitFlagOverridesFileValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spoofdetect.hcl")
	body := `
bogon_file = "/etc/spoofdetect/bogons.txt"
new_flow_threshold = 2500
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	fs, f := newFlagSet("-config", path, "-t", "10")
	cfg, err := Load(fs, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NewFlowThreshold != 10 {
		t.Fatalf("expected explicit flag to override file value, got %d", cfg.NewFlowThreshold)
	}
}

func TestDefaultsAreStable(t *testing.T) {
	cfg := Defaults()
	if cfg.MetricsListen != ":9110" {
		t.Fatalf("expected default metrics listen address :9110, got %q", cfg.MetricsListen)
	}
	if cfg.BloomSwapInterval != time.Hour {
		t.Fatalf("expected default bloom swap interval of 1h, got %v", cfg.BloomSwapInterval)
	}
}
