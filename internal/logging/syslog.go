// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"fmt"
	"log/syslog"

	detectorrors "github.com/jaroslavh/Nemea-Modules/internal/errors"
)

// SyslogConfig configures an optional remote syslog forwarder for the
// detector's log stream.
type SyslogConfig struct {
	Enabled  bool   `hcl:"enabled,optional" json:"enabled"`
	Host     string `hcl:"host,optional" json:"host"`
	Port     int    `hcl:"port,optional" json:"port"`
	Protocol string `hcl:"protocol,optional" json:"protocol"`
	Tag      string `hcl:"tag,optional" json:"tag"`
	Facility int    `hcl:"facility,optional" json:"facility"`
}

// DefaultSyslogConfig returns the disabled default configuration.
// Facility 1 is the standard "user-level messages" facility code.
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "flowspoof",
		Facility: 1,
	}
}

// NewSyslogWriter dials a remote syslog daemon per cfg, applying
// default port/protocol/tag when unset. cfg.Host is required.
func NewSyslogWriter(cfg SyslogConfig) (*syslog.Writer, error) {
	if cfg.Host == "" {
		return nil, detectorrors.New(detectorrors.KindValidation, "syslog host must not be empty")
	}
	if cfg.Port == 0 {
		cfg.Port = 514
	}
	if cfg.Protocol == "" {
		cfg.Protocol = "udp"
	}
	if cfg.Tag == "" {
		cfg.Tag = "flowspoof"
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	priority := syslog.Priority(cfg.Facility<<3) | syslog.LOG_INFO
	w, err := syslog.Dial(cfg.Protocol, addr, priority, cfg.Tag)
	if err != nil {
		return nil, detectorrors.Wrap(err, detectorrors.KindUnavailable, "failed to dial syslog")
	}
	return w, nil
}
