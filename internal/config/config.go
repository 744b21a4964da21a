// Package config loads the client configuration from an HCL file
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete client configuration
type Config struct {
	Engine EngineConnection `hcl:"engine,block"`
	Game   GameSettings     `hcl:"game,block"`
	UI     UISettings       `hcl:"ui,block"`
}

// EngineConnection contains recommendation engine connection settings
type EngineConnection struct {
	URL            string `hcl:"url"`
	ConnectTimeout int    `hcl:"connect_timeout,optional"`
	ReplyTimeout   int    `hcl:"reply_timeout,optional"`
	Offline        bool   `hcl:"offline,optional"`
}

// GameSettings contains the stakes context sent with decision requests
type GameSettings struct {
	BigBlind  float64 `hcl:"big_blind,optional"`
	StackSize float64 `hcl:"stack_size,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel      string `hcl:"log_level,optional"`
	LogFile       string `hcl:"log_file,optional"`
	Theme         string `hcl:"theme,optional"`
	SnapshotFile  string `hcl:"snapshot_file,optional"`
	AutoSnapshots bool   `hcl:"auto_snapshots,optional"`
}

// Default returns the default client configuration
func Default() *Config {
	return &Config{
		Engine: EngineConnection{
			URL:            "http://localhost:8090",
			ConnectTimeout: 10,
			ReplyTimeout:   15,
		},
		Game: GameSettings{
			BigBlind:  1,
			StackSize: 100,
		},
		UI: UISettings{
			LogLevel:      "warn",
			LogFile:       "pokercoach.log",
			Theme:         "default",
			SnapshotFile:  "pokercoach-session.json",
			AutoSnapshots: true,
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults; missing fields inside an existing file fall back to the
// defaults individually.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := Default()

	if config.Engine.URL == "" {
		config.Engine.URL = defaults.Engine.URL
	}
	if config.Engine.ConnectTimeout == 0 {
		config.Engine.ConnectTimeout = defaults.Engine.ConnectTimeout
	}
	if config.Engine.ReplyTimeout == 0 {
		config.Engine.ReplyTimeout = defaults.Engine.ReplyTimeout
	}

	if config.Game.BigBlind == 0 {
		config.Game.BigBlind = defaults.Game.BigBlind
	}
	if config.Game.StackSize == 0 {
		config.Game.StackSize = defaults.Game.StackSize
	}

	if config.UI.LogLevel == "" {
		config.UI.LogLevel = defaults.UI.LogLevel
	}
	if config.UI.LogFile == "" {
		config.UI.LogFile = defaults.UI.LogFile
	}
	if config.UI.Theme == "" {
		config.UI.Theme = defaults.UI.Theme
	}
	if config.UI.SnapshotFile == "" {
		config.UI.SnapshotFile = defaults.UI.SnapshotFile
	}

	return &config, nil
}

// Validate validates the client configuration
func (c *Config) Validate() error {
	if c.Engine.URL == "" {
		return fmt.Errorf("engine URL is required")
	}

	if c.Engine.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}

	if c.Engine.ReplyTimeout <= 0 {
		return fmt.Errorf("reply timeout must be positive")
	}

	if c.Game.BigBlind <= 0 {
		return fmt.Errorf("big blind must be positive")
	}

	if c.Game.StackSize <= 0 {
		return fmt.Errorf("stack size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	validThemes := map[string]bool{
		"default": true,
		"dark":    true,
		"light":   true,
	}
	if !validThemes[c.UI.Theme] {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}

	return nil
}
