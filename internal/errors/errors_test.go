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

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessageForms(t *testing.T) {
	base := stderrors.New("boom")

	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", New(CodeValidation, "bad argument"), "bad argument"},
		{"wrapped", Wrap(CodeExecution, "reading file", base), "reading file: boom"},
		{"code only", &Error{Code: CodeTimeout}, "timeout"},
		{"formatted", Newf(CodeNotFound, "missing %q", "a.txt"), `missing "a.txt"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestUnwrapAndCodeOf(t *testing.T) {
	base := stderrors.New("underlying")
	err := Wrap(CodeContainment, "outside root", base)

	if !stderrors.Is(err, base) {
		t.Error("errors.Is should reach the underlying error")
	}
	if CodeOf(err) != CodeContainment {
		t.Errorf("expected containment code, got %q", CodeOf(err))
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if CodeOf(wrapped) != CodeContainment {
		t.Error("CodeOf should traverse wrapped chains")
	}
	if !Is(wrapped, CodeContainment) {
		t.Error("Is should traverse wrapped chains")
	}
	if Is(stderrors.New("plain"), CodeContainment) {
		t.Error("uncoded errors must not match any code")
	}
}
