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
)

// ExampleConfigJSON returns a minimal example config.
func ExampleConfigJSON() string {
	return exampleConfigJSON
}

// normalizeConfigJSON rejects unknown or mistyped fields before the lenient
// json.Unmarshal into Config runs, so typos in config.json fail loudly
// instead of silently keeping defaults.
func normalizeConfigJSON(data []byte) ([]byte, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := validateConfigMap(raw); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}

func validateConfigMap(raw map[string]interface{}) error {
	allowed := map[string]func(interface{}) error{
		"api_key":     func(v interface{}) error { return validateString(v, "api_key") },
		"api_url":     func(v interface{}) error { return validateString(v, "api_url") },
		"model":       func(v interface{}) error { return validateString(v, "model") },
		"temperature": func(v interface{}) error { return validateNumber(v, "temperature") },
		"max_tokens":  func(v interface{}) error { return validateNumber(v, "max_tokens") },
		"sandbox_root": func(v interface{}) error {
			return validateString(v, "sandbox_root")
		},
		"script_interpreter": func(v interface{}) error {
			return validateString(v, "script_interpreter")
		},
		"tools": func(v interface{}) error {
			return validateToolsConfig(v)
		},
		"tool_limits": func(v interface{}) error {
			return validateToolLimits(v)
		},
		"tool_timeouts": func(v interface{}) error {
			return validateToolTimeouts(v)
		},
	}

	for key, value := range raw {
		validator, ok := allowed[key]
		if !ok {
			return fmt.Errorf("unknown configuration field %q", key)
		}
		if err := validator(value); err != nil {
			return err
		}
	}

	return nil
}

func validateToolsConfig(value interface{}) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("tools must be an object")
	}
	for key, v := range section {
		switch key {
		case "allow", "deny":
			if err := validateStringArray(v, "tools."+key); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown configuration field %q", "tools."+key)
		}
	}
	return nil
}

func validateToolLimits(value interface{}) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("tool_limits must be an object")
	}
	for key, v := range section {
		switch key {
		case "max_read_chars":
			if err := validateNumber(v, "tool_limits."+key); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown configuration field %q", "tool_limits."+key)
		}
	}
	return nil
}

func validateToolTimeouts(value interface{}) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("tool_timeouts must be an object")
	}
	for key, v := range section {
		switch key {
		case "default_seconds":
			if err := validateNumber(v, "tool_timeouts."+key); err != nil {
				return err
			}
		case "per_tool_seconds":
			entries, ok := v.(map[string]interface{})
			if !ok {
				return fmt.Errorf("tool_timeouts.per_tool_seconds must be an object")
			}
			for name, seconds := range entries {
				if err := validateNumber(seconds, "tool_timeouts.per_tool_seconds."+name); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unknown configuration field %q", "tool_timeouts."+key)
		}
	}
	return nil
}

func validateString(value interface{}, field string) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s must be a string", field)
	}
	return nil
}

func validateNumber(value interface{}, field string) error {
	if _, ok := value.(float64); !ok {
		return fmt.Errorf("%s must be a number", field)
	}
	return nil
}

func validateStringArray(value interface{}, field string) error {
	list, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("%s must be an array of strings", field)
	}
	for _, item := range list {
		if _, ok := item.(string); !ok {
			return fmt.Errorf("%s must be an array of strings", field)
		}
	}
	return nil
}

const exampleConfigJSON = `{
  "api_key": "xai-...",
  "api_url": "https://api.x.ai/v1",
  "model": "grok-code-fast-1",
  "sandbox_root": ".",
  "tools": {
    "allow": ["get_file_content", "get_files_info", "write_file", "run_python_file"]
  },
  "tool_limits": {
    "max_read_chars": 10000
  },
  "tool_timeouts": {
    "per_tool_seconds": {
      "run_python_file": 30
    }
  }
}`
