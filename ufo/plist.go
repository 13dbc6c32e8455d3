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
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// A plist value is one of the following Go types:
//
//	map[string]interface{}  for <dict>
//	[]interface{}           for <array>
//	string                  for <string>
//	int                     for <integer>
//	float64                 for <real>
//	bool                    for <true/> and <false/>

// decodePlist reads an XML property list.
func decodePlist(r io.Reader) (interface{}, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("plist: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "plist" {
			return nil, fmt.Errorf("plist: unexpected root element <%s>",
				start.Name.Local)
		}
		return decodePlistBody(dec)
	}
}

// decodePlistBody reads the single value inside a <plist> element.
func decodePlistBody(dec *xml.Decoder) (interface{}, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("plist: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			return decodePlistValue(dec, tok)
		case xml.EndElement:
			return nil, fmt.Errorf("plist: empty document")
		}
	}
}

func decodePlistValue(dec *xml.Decoder, start xml.StartElement) (interface{}, error) {
	switch start.Name.Local {
	case "dict":
		return decodePlistDict(dec)
	case "array":
		return decodePlistArray(dec)
	case "string":
		return decodePlistText(dec, start)
	case "integer":
		s, err := decodePlistText(dec, start)
		if err != nil {
			return nil, err
		}
		x, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("plist: invalid integer %q", s)
		}
		return x, nil
	case "real":
		s, err := decodePlistText(dec, start)
		if err != nil {
			return nil, err
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("plist: invalid real %q", s)
		}
		return x, nil
	case "true":
		err := dec.Skip()
		return true, err
	case "false":
		err := dec.Skip()
		return false, err
	default:
		return nil, fmt.Errorf("plist: unsupported element <%s>",
			start.Name.Local)
	}
}

func decodePlistDict(dec *xml.Decoder) (map[string]interface{}, error) {
	res := map[string]interface{}{}
	var key string
	haveKey := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("plist: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if tok.Name.Local == "key" {
				key, err = decodePlistText(dec, tok)
				if err != nil {
					return nil, err
				}
				haveKey = true
				continue
			}
			if !haveKey {
				return nil, fmt.Errorf("plist: <%s> without preceding <key>",
					tok.Name.Local)
			}
			val, err := decodePlistValue(dec, tok)
			if err != nil {
				return nil, err
			}
			res[key] = val
			haveKey = false
		case xml.EndElement:
			return res, nil
		}
	}
}

func decodePlistArray(dec *xml.Decoder) ([]interface{}, error) {
	var res []interface{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("plist: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			val, err := decodePlistValue(dec, tok)
			if err != nil {
				return nil, err
			}
			res = append(res, val)
		case xml.EndElement:
			return res, nil
		}
	}
}

// decodePlistText reads the character data of an element and consumes
// the closing tag.
func decodePlistText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("plist: %w", err)
		}
		switch tok := tok.(type) {
		case xml.CharData:
			sb.Write(tok)
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			return "", fmt.Errorf("plist: unexpected element <%s> inside <%s>",
				tok.Name.Local, start.Name.Local)
		}
	}
}

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
`

// encodePlist writes an XML property list.  Dictionary keys are
// written in sorted order, so that the output is deterministic.
func encodePlist(w io.Writer, val interface{}) error {
	_, err := io.WriteString(w, plistHeader)
	if err != nil {
		return err
	}
	err = encodePlistValue(w, val, 0)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "</plist>\n")
	return err
}

func encodePlistValue(w io.Writer, val interface{}, depth int) error {
	indent := strings.Repeat("\t", depth)
	var err error
	switch val := val.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		_, err = fmt.Fprintf(w, "%s<dict>\n", indent)
		if err != nil {
			return err
		}
		for _, key := range keys {
			_, err = fmt.Fprintf(w, "%s\t<key>%s</key>\n",
				indent, xmlEscape(key))
			if err != nil {
				return err
			}
			err = encodePlistValue(w, val[key], depth+1)
			if err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, "%s</dict>\n", indent)
	case []interface{}:
		_, err = fmt.Fprintf(w, "%s<array>\n", indent)
		if err != nil {
			return err
		}
		for _, elem := range val {
			err = encodePlistValue(w, elem, depth+1)
			if err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, "%s</array>\n", indent)
	case string:
		_, err = fmt.Fprintf(w, "%s<string>%s</string>\n",
			indent, xmlEscape(val))
	case int:
		_, err = fmt.Fprintf(w, "%s<integer>%d</integer>\n", indent, val)
	case float64:
		_, err = fmt.Fprintf(w, "%s<real>%s</real>\n",
			indent, formatFloat(val))
	case bool:
		if val {
			_, err = fmt.Fprintf(w, "%s<true/>\n", indent)
		} else {
			_, err = fmt.Fprintf(w, "%s<false/>\n", indent)
		}
	default:
		err = fmt.Errorf("plist: unsupported value type %T", val)
	}
	return err
}

func xmlEscape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// formatFloat writes a float without an exponent, the way UFO tools
// commonly format numbers.
func formatFloat(x float64) string {
	if x == math.Trunc(x) && math.Abs(x) < 1e15 {
		return strconv.FormatFloat(x, 'f', 1, 64)
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Helpers for reading typed values out of decoded plists.

func plistString(d map[string]interface{}, key string) string {
	s, _ := d[key].(string)
	return s
}

func plistInt(d map[string]interface{}, key string, missing int) int {
	switch v := d[key].(type) {
	case int:
		return v
	case float64:
		return int(math.Round(v))
	}
	return missing
}

func plistFloat(d map[string]interface{}, key string, missing float64) float64 {
	switch v := d[key].(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	return missing
}

func plistBool(d map[string]interface{}, key string, missing bool) bool {
	if v, ok := d[key].(bool); ok {
		return v
	}
	return missing
}
