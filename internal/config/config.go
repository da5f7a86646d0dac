// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"toolfence/internal/tools"
)

// Config represents the application configuration
type Config struct {
	APIKey            string       `json:"api_key"`
	APIURL            string       `json:"api_url,omitempty"`
	Model             string       `json:"model"`
	Temperature       *float32     `json:"temperature,omitempty"`
	MaxTokens         *int         `json:"max_tokens,omitempty"`
	SandboxRoot       string       `json:"sandbox_root,omitempty"`
	Tools             ToolSettings `json:"tools,omitempty"`
	ToolLimits        ToolLimits   `json:"tool_limits,omitempty"`
	ToolTimeouts      ToolTimeouts `json:"tool_timeouts,omitempty"`
	ScriptInterpreter string       `json:"script_interpreter,omitempty"`
}

// ToolSettings describes tool allow/deny lists.
type ToolSettings struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// ToolLimits configures resource limits for tool execution.
type ToolLimits struct {
	MaxReadChars int `json:"max_read_chars,omitempty"`
}

// ToolTimeouts configures tool execution timeouts.
type ToolTimeouts struct {
	DefaultSeconds int            `json:"default_seconds,omitempty"`
	PerToolSeconds map[string]int `json:"per_tool_seconds,omitempty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Model:  "grok-code-fast-1",
		APIURL: "https://api.x.ai/v1",
		ToolLimits: ToolLimits{
			MaxReadChars: tools.DefaultLimits().MaxReadChars,
		},
		ToolTimeouts: ToolTimeouts{
			PerToolSeconds: map[string]int{
				"run_python_file": int(tools.DefaultScriptTimeout.Seconds()),
			},
		},
	}
}

// LoadConfig loads configuration from a JSON file, applies env overrides, and validates required fields.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If config file exists, load it
	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, err
		}
		normalized, err := normalizeConfigJSON(data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(normalized, config); err != nil {
			return nil, err
		}
	}

	// Env overrides (apply regardless of whether config file exists)
	// Check XAI_API_KEY first, then OPENAI_API_KEY
	if val := os.Getenv("XAI_API_KEY"); val != "" {
		config.APIKey = val
	} else if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		config.APIKey = val
		if config.APIURL == "https://api.x.ai/v1" {
			config.APIURL = "https://api.openai.com/v1"
		}
	}

	if val := os.Getenv("XAI_API_URL"); val != "" {
		config.APIURL = val
	} else if val := os.Getenv("OPENAI_API_URL"); val != "" {
		config.APIURL = val
	}

	// Set defaults for any missing values
	if config.Model == "" {
		config.Model = "grok-code-fast-1"
	}
	if config.APIURL == "" {
		config.APIURL = "https://api.x.ai/v1"
	}

	// Validation
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set api_key in config.json or XAI_API_KEY/OPENAI_API_KEY)")
	}

	return config, nil
}

// ToolPolicy converts config settings into a tool policy.
func (c *Config) ToolPolicy() tools.Policy {
	policy := tools.Policy{}
	if c.Tools.Allow != nil {
		allow := make(map[string]bool, len(c.Tools.Allow))
		for _, name := range c.Tools.Allow {
			allow[name] = true
		}
		policy.Allow = allow
	}
	if c.Tools.Deny != nil {
		deny := make(map[string]bool, len(c.Tools.Deny))
		for _, name := range c.Tools.Deny {
			deny[name] = true
		}
		policy.Deny = deny
	}
	return policy
}

// ToolOptions converts config settings into registry construction options.
func (c *Config) ToolOptions() tools.Options {
	return tools.Options{
		Root:        c.SandboxRoot,
		Limits:      tools.Limits{MaxReadChars: c.ToolLimits.MaxReadChars},
		Timeouts:    c.ToolTimeoutsConfig(),
		Interpreter: c.ScriptInterpreter,
	}
}

// ToolTimeoutsConfig returns timeout configuration for tools.
func (c *Config) ToolTimeoutsConfig() tools.TimeoutConfig {
	perTool := make(map[string]time.Duration, len(c.ToolTimeouts.PerToolSeconds))
	for name, seconds := range c.ToolTimeouts.PerToolSeconds {
		if seconds <= 0 {
			continue
		}
		perTool[name] = time.Duration(seconds) * time.Second
	}

	var defaultTimeout time.Duration
	if c.ToolTimeouts.DefaultSeconds > 0 {
		defaultTimeout = time.Duration(c.ToolTimeouts.DefaultSeconds) * time.Second
	}

	return tools.TimeoutConfig{
		Default: defaultTimeout,
		PerTool: perTool,
	}
}
