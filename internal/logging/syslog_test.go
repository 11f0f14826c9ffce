// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"testing"

	detectorrors "github.com/jaroslavh/Nemea-Modules/internal/errors"
)

func TestDefaultSyslogConfigUsesDetectorTag(t *testing.T) {
	cfg := DefaultSyslogConfig()

	if cfg.Enabled {
		t.Error("default syslog config should be disabled until an operator opts in")
	}
	if cfg.Tag != "flowspoof" {
		t.Errorf("expected detector tag flowspoof, got %s", cfg.Tag)
	}
}

func TestNewSyslogWriterMissingHostIsValidationKind(t *testing.T) {
	cfg := SyslogConfig{Enabled: true}

	_, err := NewSyslogWriter(cfg)
	if err == nil {
		t.Fatal("expected error for missing host")
	}
	if kind := detectorrors.GetKind(err); kind != detectorrors.KindValidation {
		t.Errorf("expected KindValidation, got %s", kind)
	}
}

// UDP syslog dialing never fails for an unreachable or silent
// destination (there is no handshake), so a successful call here
// confirms NewSyslogWriter actually applied the port/protocol/tag
// defaults rather than leaving zero values that would fail to build a
// dial address.
func TestNewSyslogWriterAppliesDefaultsForHostOnlyConfig(t *testing.T) {
	cfg := SyslogConfig{Host: "127.0.0.1"}

	w, err := NewSyslogWriter(cfg)
	if err != nil {
		t.Fatalf("unexpected error dialing with default port/protocol: %v", err)
	}
	defer w.Close()
}

func TestNewSyslogWriterUnreachableTCPHostIsUnavailableKind(t *testing.T) {
	cfg := SyslogConfig{
		Host:     "127.0.0.1",
		Port:     1, // nothing listens on this port
		Protocol: "tcp",
	}

	_, err := NewSyslogWriter(cfg)
	if err == nil {
		t.Fatal("expected error dialing an unreachable TCP syslog host")
	}
	if kind := detectorrors.GetKind(err); kind != detectorrors.KindUnavailable {
		t.Errorf("expected KindUnavailable, got %s", kind)
	}
}
