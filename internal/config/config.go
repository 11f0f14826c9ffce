// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the detector's configuration from CLI flags
// and an optional HCL file, with flags taking precedence.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/jaroslavh/Nemea-Modules/internal/errors"
	"github.com/jaroslavh/Nemea-Modules/internal/logging"
)

// Config holds every knob the detector and its ambient services read.
// Fields other than the -b/-c/-s/-t values have no CLI flag and take
// their value from Defaults() when the file does not set them; the
// admin API, Redis, audit database and syslog forwarder are disabled
// by default, the metrics listener is not.
type Config struct {
	BogonFile            string                `hcl:"bogon_file,optional" json:"bogon_file,omitempty"`
	SpecificNetworksFile string                `hcl:"specific_networks_file,optional" json:"specific_networks_file,omitempty"`
	SymRewriteWindow     time.Duration         `hcl:"sym_rewrite_window,optional" json:"sym_rewrite_window,omitempty"`
	NewFlowThreshold     uint64                `hcl:"new_flow_threshold,optional" json:"new_flow_threshold,omitempty"`
	BloomSwapInterval    time.Duration         `hcl:"bloom_swap_interval,optional" json:"bloom_swap_interval,omitempty"`
	MetricsListen        string                `hcl:"metrics_listen,optional" json:"metrics_listen,omitempty"`
	APIListen            string                `hcl:"api_listen,optional" json:"api_listen,omitempty"`
	RedisAddr            string                `hcl:"redis_addr,optional" json:"redis_addr,omitempty"`
	AuditDatabaseURL     string                `hcl:"audit_database_url,optional" json:"audit_database_url,omitempty"`
	Syslog               *logging.SyslogConfig `hcl:"syslog,block" json:"syslog,omitempty"`
}

// Defaults returns a Config with every field set to its documented
// default.
func Defaults() Config {
	syslogDefault := logging.DefaultSyslogConfig()
	return Config{
		SymRewriteWindow:  45 * time.Second,
		NewFlowThreshold:  1000,
		BloomSwapInterval: time.Hour,
		MetricsListen:     ":9110",
		Syslog:            &syslogDefault,
	}
}

// Flags holds the values bound to CLI flags: the -b/-c/-s/-t surface
// plus -config for the optional HCL file.
type Flags struct {
	BogonFile            string
	SpecificNetworksFile string
	RewriteWindowSeconds int
	NewFlowThreshold     uint64
	ConfigFile           string
}

// RegisterFlags binds fs to a Flags struct with the documented
// defaults. Call fs.Parse before Load.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.BogonFile, "b", "", "bogon prefix file (required)")
	fs.StringVar(&f.SpecificNetworksFile, "c", "", "specific-networks prefix file")
	fs.IntVar(&f.RewriteWindowSeconds, "s", 45, "symmetry rewrite window, seconds")
	fs.Uint64Var(&f.NewFlowThreshold, "t", 1000, "new-flow threshold")
	fs.StringVar(&f.ConfigFile, "config", "", "optional HCL configuration file")
	return f
}

// Load builds the effective Config: HCL file values (if ConfigFile is
// set) provide the base, and any flag explicitly passed on fs
// overrides the corresponding field — explicit CLI flags win over
// file defaults.
func Load(fs *flag.FlagSet, f *Flags) (Config, error) {
	cfg := Defaults()

	if f.ConfigFile != "" {
		data, err := os.ReadFile(f.ConfigFile)
		if err != nil {
			return Config{}, errors.Wrap(err, errors.KindValidation, "failed to read config file")
		}
		if err := hclsimple.Decode(f.ConfigFile, data, nil, &cfg); err != nil {
			return Config{}, errors.Wrap(err, errors.KindValidation, "failed to parse config file")
		}
		if cfg.Syslog == nil {
			// gohcl nils out an absent optional block; a config file
			// with no syslog block still gets the disabled default.
			syslogDefault := logging.DefaultSyslogConfig()
			cfg.Syslog = &syslogDefault
		}
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { setFlags[fl.Name] = true })

	if setFlags["b"] || cfg.BogonFile == "" {
		cfg.BogonFile = f.BogonFile
	}
	if setFlags["c"] || cfg.SpecificNetworksFile == "" {
		cfg.SpecificNetworksFile = f.SpecificNetworksFile
	}
	if setFlags["s"] || cfg.SymRewriteWindow == 0 {
		cfg.SymRewriteWindow = time.Duration(f.RewriteWindowSeconds) * time.Second
	}
	if setFlags["t"] || cfg.NewFlowThreshold == 0 {
		cfg.NewFlowThreshold = f.NewFlowThreshold
	}

	if cfg.BogonFile == "" {
		return Config{}, errors.New(errors.KindValidation, "missing required bogon prefix file (-b)")
	}

	return cfg, nil
}
