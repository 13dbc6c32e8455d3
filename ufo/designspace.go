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
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// Axis is one axis of variation in a designspace document.
type Axis struct {
	Tag     string // four letters, e.g. "wght"
	Name    string
	Minimum float64
	Default float64
	Maximum float64
}

// Source is one UFO master referenced by a designspace document.
type Source struct {
	Filename   string // relative to the designspace file
	Name       string
	FamilyName string
	StyleName  string
	Location   map[string]float64 // axis name -> design coordinate
}

// Instance is a static font to be generated from the masters.
type Instance struct {
	Filename   string
	Name       string
	FamilyName string
	StyleName  string
	Location   map[string]float64
}

// Designspace is a parsed designspace document.
type Designspace struct {
	Dir       string // directory of the document, for resolving filenames
	Axes      []Axis
	Sources   []Source
	Instances []Instance
}

type designspaceXML struct {
	XMLName   xml.Name      `xml:"designspace"`
	Axes      []axisXML     `xml:"axes>axis"`
	Sources   []sourceXML   `xml:"sources>source"`
	Instances []instanceXML `xml:"instances>instance"`
}

type axisXML struct {
	Tag     string  `xml:"tag,attr"`
	Name    string  `xml:"name,attr"`
	Minimum float64 `xml:"minimum,attr"`
	Default float64 `xml:"default,attr"`
	Maximum float64 `xml:"maximum,attr"`
}

type sourceXML struct {
	Filename   string         `xml:"filename,attr"`
	Name       string         `xml:"name,attr"`
	FamilyName string         `xml:"familyname,attr"`
	StyleName  string         `xml:"stylename,attr"`
	Location   []dimensionXML `xml:"location>dimension"`
}

type instanceXML struct {
	Filename   string         `xml:"filename,attr"`
	Name       string         `xml:"name,attr"`
	FamilyName string         `xml:"familyname,attr"`
	StyleName  string         `xml:"stylename,attr"`
	Location   []dimensionXML `xml:"location>dimension"`
}

type dimensionXML struct {
	Name   string  `xml:"name,attr"`
	XValue float64 `xml:"xvalue,attr"`
}

// ReadDesignspace parses a designspace document.
func ReadDesignspace(fname string) (*Designspace, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	raw := &designspaceXML{}
	err = xml.NewDecoder(fd).Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("designspace: %w", err)
	}

	d := &Designspace{Dir: filepath.Dir(fname)}
	for _, a := range raw.Axes {
		if a.Tag == "" {
			return nil, fmt.Errorf("designspace: axis %q without tag", a.Name)
		}
		d.Axes = append(d.Axes, Axis(a))
	}
	for _, s := range raw.Sources {
		if s.Filename == "" {
			return nil, fmt.Errorf("designspace: source %q without filename",
				s.Name)
		}
		d.Sources = append(d.Sources, Source{
			Filename:   s.Filename,
			Name:       s.Name,
			FamilyName: s.FamilyName,
			StyleName:  s.StyleName,
			Location:   locationMap(s.Location),
		})
	}
	for _, in := range raw.Instances {
		d.Instances = append(d.Instances, Instance{
			Filename:   in.Filename,
			Name:       in.Name,
			FamilyName: in.FamilyName,
			StyleName:  in.StyleName,
			Location:   locationMap(in.Location),
		})
	}
	return d, nil
}

func locationMap(dims []dimensionXML) map[string]float64 {
	loc := make(map[string]float64, len(dims))
	for _, dim := range dims {
		loc[dim.Name] = dim.XValue
	}
	return loc
}

// DefaultLocation returns the default design coordinates, one entry
// per axis.
func (d *Designspace) DefaultLocation() map[string]float64 {
	loc := make(map[string]float64, len(d.Axes))
	for _, a := range d.Axes {
		loc[a.Name] = a.Default
	}
	return loc
}

// DefaultSource returns the source at the default location.  A source
// which omits an axis from its location is taken to sit at that axis'
// default.
func (d *Designspace) DefaultSource() (*Source, error) {
	def := d.DefaultLocation()
sourceLoop:
	for i := range d.Sources {
		src := &d.Sources[i]
		for axis, val := range src.Location {
			if want, ok := def[axis]; ok && val != want {
				continue sourceLoop
			}
		}
		return src, nil
	}
	if len(d.Sources) == 1 {
		return &d.Sources[0], nil
	}
	return nil, fmt.Errorf("designspace: no source at the default location")
}

// ReadDefault loads the UFO source at the default location of a
// designspace document.
func ReadDefault(fname string) (*Font, error) {
	d, err := ReadDesignspace(fname)
	if err != nil {
		return nil, err
	}
	src, err := d.DefaultSource()
	if err != nil {
		return nil, err
	}
	return Read(filepath.Join(d.Dir, src.Filename))
}
