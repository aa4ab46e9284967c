package main

import (
	"os"

	"github.com/BurntSushi/toml"
	flag "github.com/spf13/pflag"

	"github.com/tidewave/rtspd"
)

// fileConfig is the optional TOML configuration file layout; any field
// left unset keeps rtspd.DefaultConfig's value.
type fileConfig struct {
	Server serverSection `toml:"server"`
	SDP    sdpSection    `toml:"sdp"`
}

type serverSection struct {
	Bind         string `toml:"bind"`
	Mount        string `toml:"mount"`
	PublicHost   string `toml:"public_host"`
}

type sdpSection struct {
	Username       string `toml:"username"`
	SessionID      string `toml:"session_id"`
	SessionVersion string `toml:"session_version"`
	SessionName    string `toml:"session_name"`
}

// loadConfig builds a rtspd.Config from defaults, an optional TOML
// file, and CLI flags, in that precedence order (flags win).
func loadConfig(path string) (rtspd.Config, error) {
	cfg := rtspd.DefaultConfig()

	if path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		}
		applyFileConfig(&cfg, fc)
	}

	if flag.CommandLine.Changed("bind") {
		cfg.Bind = flagBind
	}
	if flag.CommandLine.Changed("mount") {
		cfg.DefaultMount = flagMount
	}
	return cfg, nil
}

func applyFileConfig(cfg *rtspd.Config, fc fileConfig) {
	if fc.Server.Bind != "" {
		cfg.Bind = fc.Server.Bind
	}
	if fc.Server.Mount != "" {
		cfg.DefaultMount = fc.Server.Mount
	}
	if fc.Server.PublicHost != "" {
		cfg.PublicHost = fc.Server.PublicHost
	}
	if fc.SDP.Username != "" {
		cfg.SDPUsername = fc.SDP.Username
	}
	if fc.SDP.SessionID != "" {
		cfg.SDPSessionID = fc.SDP.SessionID
	}
	if fc.SDP.SessionVersion != "" {
		cfg.SDPSessionVersion = fc.SDP.SessionVersion
	}
	if fc.SDP.SessionName != "" {
		cfg.SDPSessionName = fc.SDP.SessionName
	}
}
