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

package ufo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeDesignspace stores a designspace document in a fresh directory
// and parses it again.
func writeDesignspace(t *testing.T, body string) *Designspace {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "Demo.designspace")
	err := os.WriteFile(fname, []byte(body), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	d, err := ReadDesignspace(fname)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

const demoDesignspace = `<?xml version="1.0" encoding="UTF-8"?>
<designspace format="4.1">
	<axes>
		<axis tag="wght" name="Weight" minimum="300" default="400" maximum="700"/>
		<axis tag="wdth" name="Width" minimum="75" default="100" maximum="100"/>
	</axes>
	<sources>
		<source filename="Demo-Light.ufo" name="light" stylename="Light">
			<location>
				<dimension name="Weight" xvalue="300"/>
				<dimension name="Width" xvalue="100"/>
			</location>
		</source>
		<source filename="Demo-Regular.ufo" name="regular" familyname="Demo" stylename="Regular">
			<location>
				<dimension name="Weight" xvalue="400"/>
				<dimension name="Width" xvalue="100"/>
			</location>
		</source>
	</sources>
	<instances>
		<instance filename="instance/Demo-Medium.ufo" name="medium" stylename="Medium">
			<location>
				<dimension name="Weight" xvalue="500"/>
				<dimension name="Width" xvalue="100"/>
			</location>
		</instance>
	</instances>
</designspace>
`

func TestReadDesignspace(t *testing.T) {
	d := writeDesignspace(t, demoDesignspace)

	wantAxes := []Axis{
		{Tag: "wght", Name: "Weight", Minimum: 300, Default: 400, Maximum: 700},
		{Tag: "wdth", Name: "Width", Minimum: 75, Default: 100, Maximum: 100},
	}
	if diff := cmp.Diff(wantAxes, d.Axes); diff != "" {
		t.Errorf("wrong axes (-want +got):\n%s", diff)
	}

	wantSources := []Source{
		{
			Filename:  "Demo-Light.ufo",
			Name:      "light",
			StyleName: "Light",
			Location:  map[string]float64{"Weight": 300, "Width": 100},
		},
		{
			Filename:   "Demo-Regular.ufo",
			Name:       "regular",
			FamilyName: "Demo",
			StyleName:  "Regular",
			Location:   map[string]float64{"Weight": 400, "Width": 100},
		},
	}
	if diff := cmp.Diff(wantSources, d.Sources); diff != "" {
		t.Errorf("wrong sources (-want +got):\n%s", diff)
	}

	wantInstances := []Instance{
		{
			Filename:  "instance/Demo-Medium.ufo",
			Name:      "medium",
			StyleName: "Medium",
			Location:  map[string]float64{"Weight": 500, "Width": 100},
		},
	}
	if diff := cmp.Diff(wantInstances, d.Instances); diff != "" {
		t.Errorf("wrong instances (-want +got):\n%s", diff)
	}

	wantLoc := map[string]float64{"Weight": 400, "Width": 100}
	if diff := cmp.Diff(wantLoc, d.DefaultLocation()); diff != "" {
		t.Errorf("wrong default location (-want +got):\n%s", diff)
	}
}

func TestDefaultSource(t *testing.T) {
	d := writeDesignspace(t, demoDesignspace)
	src, err := d.DefaultSource()
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "regular" {
		t.Errorf("default source %q, want regular", src.Name)
	}
}

func TestDefaultSourceOmittedAxis(t *testing.T) {
	// A source which does not mention an axis sits at that axis'
	// default value.
	d := writeDesignspace(t, `<?xml version="1.0" encoding="UTF-8"?>
<designspace format="4.1">
	<axes>
		<axis tag="wght" name="Weight" minimum="300" default="400" maximum="700"/>
	</axes>
	<sources>
		<source filename="Demo-Light.ufo" name="light">
			<location>
				<dimension name="Weight" xvalue="300"/>
			</location>
		</source>
		<source filename="Demo-Regular.ufo" name="regular"/>
	</sources>
</designspace>
`)
	src, err := d.DefaultSource()
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "regular" {
		t.Errorf("default source %q, want regular", src.Name)
	}
}

func TestDefaultSourceFallback(t *testing.T) {
	// With a single source, that source is used even if it does not
	// sit at the default location.
	d := writeDesignspace(t, `<?xml version="1.0" encoding="UTF-8"?>
<designspace format="4.1">
	<axes>
		<axis tag="wght" name="Weight" minimum="300" default="400" maximum="700"/>
	</axes>
	<sources>
		<source filename="Demo-Light.ufo" name="light">
			<location>
				<dimension name="Weight" xvalue="300"/>
			</location>
		</source>
	</sources>
</designspace>
`)
	src, err := d.DefaultSource()
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "light" {
		t.Errorf("default source %q, want light", src.Name)
	}
}

func TestDefaultSourceMissing(t *testing.T) {
	d := writeDesignspace(t, `<?xml version="1.0" encoding="UTF-8"?>
<designspace format="4.1">
	<axes>
		<axis tag="wght" name="Weight" minimum="300" default="400" maximum="700"/>
	</axes>
	<sources>
		<source filename="Demo-Light.ufo" name="light">
			<location>
				<dimension name="Weight" xvalue="300"/>
			</location>
		</source>
		<source filename="Demo-Bold.ufo" name="bold">
			<location>
				<dimension name="Weight" xvalue="700"/>
			</location>
		</source>
	</sources>
</designspace>
`)
	_, err := d.DefaultSource()
	if err == nil {
		t.Error("no error for a designspace without a default master")
	}
}

func TestAxisWithoutTag(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "Bad.designspace")
	body := `<?xml version="1.0" encoding="UTF-8"?>
<designspace format="4.1">
	<axes>
		<axis name="Weight" minimum="300" default="400" maximum="700"/>
	</axes>
</designspace>
`
	err := os.WriteFile(fname, []byte(body), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ReadDesignspace(fname)
	if err == nil {
		t.Error("axis without tag accepted")
	}
}

func TestReadDefault(t *testing.T) {
	dir := t.TempDir()

	master := New()
	master.Info.FamilyName = "Demo"
	master.Glyphs[".notdef"] = &Glyph{Name: ".notdef"}
	master.Glyphs["A"] = &Glyph{Name: "A", Width: 600, Unicodes: []rune{'A'}}
	err := master.Write(filepath.Join(dir, "Demo-Regular.ufo"), nil)
	if err != nil {
		t.Fatal(err)
	}

	fname := filepath.Join(dir, "Demo.designspace")
	body := `<?xml version="1.0" encoding="UTF-8"?>
<designspace format="4.1">
	<axes>
		<axis tag="wght" name="Weight" minimum="400" default="400" maximum="700"/>
	</axes>
	<sources>
		<source filename="Demo-Regular.ufo" name="regular">
			<location>
				<dimension name="Weight" xvalue="400"/>
			</location>
		</source>
	</sources>
</designspace>
`
	err = os.WriteFile(fname, []byte(body), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	f, err := ReadDefault(fname)
	if err != nil {
		t.Fatal(err)
	}
	if f.Info.FamilyName != "Demo" {
		t.Errorf("family name %q", f.Info.FamilyName)
	}
	if g := f.Glyphs["A"]; g == nil || g.Width != 600 {
		t.Errorf("glyph A not read back: %v", g)
	}
}
