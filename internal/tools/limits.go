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

// Limits configures size bounds for tool operations.
type Limits struct {
	// MaxReadChars caps file reads in characters (runes, not bytes).
	// Content beyond the cap is cut and a truncation marker appended.
	MaxReadChars int
}

const defaultMaxReadChars = 10000

// DefaultLimits returns the default resource limits for tool operations.
func DefaultLimits() Limits {
	return Limits{MaxReadChars: defaultMaxReadChars}
}

func normalizeLimits(l Limits) Limits {
	if l.MaxReadChars <= 0 {
		l.MaxReadChars = defaultMaxReadChars
	}
	return l
}
