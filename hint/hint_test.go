// seehuhn.de/go/foundry - a toolkit for transforming font files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package hint

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCvtRoundTrip(t *testing.T) {
	cv := ControlValues{0, 20, -350, 700, 32767, -32768}
	got, err := DecodeCvt(cv.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(cv, got); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}
}

func TestCvtOddLength(t *testing.T) {
	_, err := DecodeCvt([]byte{0, 20, 1})
	if err == nil {
		t.Error("expected error for odd table length")
	}
}
