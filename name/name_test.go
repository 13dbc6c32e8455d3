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

package name

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetGet(t *testing.T) {
	info := New()
	info.Set(Family, "Test")
	info.Set(Subfamily, "Bold Italic")
	info.Set(PostScriptName, "Test-BoldItalic")

	if got := info.Get(Family); got != "Test" {
		t.Errorf("Get(Family) = %q", got)
	}
	if got := info.Get(Designer); got != "" {
		t.Errorf("Get(Designer) = %q for unset name", got)
	}

	info.Set(Family, "Other")
	if got := info.Get(Family); got != "Other" {
		t.Errorf("Get(Family) = %q after update", got)
	}
}

func TestRoundTrip(t *testing.T) {
	info := New()
	info.Set(Copyright, "Copyright (c) 2026 Jochen Voss")
	info.Set(Family, "Test")
	info.Set(Subfamily, "Regular")
	info.Set(FullName, "Test Regular")
	info.Set(Version, "Version 1.000")
	info.Set(PostScriptName, "Test-Regular")
	info.Set(SampleText, "Hello, 世界") // forces UTF-16

	got, err := Decode(info.Encode())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []ID{Copyright, Family, Subfamily, FullName,
		Version, PostScriptName, SampleText} {
		if want := info.Get(id); got.Get(id) != want {
			t.Errorf("name %d: got %q, want %q", id, got.Get(id), want)
		}
	}
}

func TestDeterministicEncoding(t *testing.T) {
	build := func() *Info {
		info := New()
		info.Set(Family, "Test")
		info.Set(Subfamily, "Regular")
		info.Set(Designer, "Jochen Voss")
		info.Set(License, "GPL-3.0-or-later")
		return info
	}
	b1 := build().Encode()
	b2 := build().Encode()
	if d := cmp.Diff(b1, b2); d != "" {
		t.Errorf("encoding is not deterministic:\n%s", d)
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0, 0})
	if err == nil {
		t.Error("expected error for truncated table")
	}
}
