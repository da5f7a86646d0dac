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

package tools

import (
	"encoding/json"
	"strings"

	apperrors "toolfence/internal/errors"
)

// ValidationRule checks tool arguments and returns an error if invalid.
type ValidationRule func(args map[string]interface{}) error

// ChainValidation runs rules in order until the first error.
func ChainValidation(rules ...ValidationRule) ValidationRule {
	return func(args map[string]interface{}) error {
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if err := rule(args); err != nil {
				return err
			}
		}
		return nil
	}
}

// RequireStringArg ensures a string argument is present and non-empty.
func RequireStringArg(key, message string) ValidationRule {
	return func(args map[string]interface{}) error {
		if _, ok := stringArg(args, key); !ok {
			return apperrors.New(apperrors.CodeValidation, message)
		}
		return nil
	}
}

// RequireStringPresent ensures an argument is present and a string. Unlike
// RequireStringArg the empty string is accepted (write_file content may be
// legitimately empty).
func RequireStringPresent(key, message string) ValidationRule {
	return func(args map[string]interface{}) error {
		if args == nil {
			return apperrors.New(apperrors.CodeValidation, message)
		}
		if _, ok := args[key].(string); !ok {
			return apperrors.New(apperrors.CodeValidation, message)
		}
		return nil
	}
}

// OptionalStringListArg validates that an argument, when present, is a list
// of strings.
func OptionalStringListArg(key string) ValidationRule {
	return func(args map[string]interface{}) error {
		_, err := stringListArg(args, key)
		return err
	}
}

// stringArg fetches a non-empty string argument.
func stringArg(args map[string]interface{}, key string) (string, bool) {
	if args == nil {
		return "", false
	}
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// stringListArg fetches an optional list-of-strings argument. A missing or
// nil value yields an empty list; any other shape is a validation error with
// the exact wire message.
func stringListArg(args map[string]interface{}, key string) ([]string, error) {
	if args == nil {
		return nil, nil
	}
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch list := raw.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []interface{}:
		values := make([]string, 0, len(list))
		for _, item := range list {
			str, ok := item.(string)
			if !ok {
				return nil, apperrors.Newf(apperrors.CodeValidation, "All entries in %q must be strings.", key)
			}
			values = append(values, str)
		}
		return values, nil
	default:
		return nil, apperrors.Newf(apperrors.CodeValidation, "%q must be a list of strings.", key)
	}
}

// parseToolArgs decodes a JSON argument payload into a map.
func parseToolArgs(argsJSON string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if strings.TrimSpace(argsJSON) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, err
	}
	return args, nil
}
