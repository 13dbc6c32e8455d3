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

package table

import "fmt"

// DecodeReason distinguishes the classes of decode failure.
type DecodeReason int

// The decode failure classes.
const (
	Truncated   DecodeReason = iota // data ends before the structure does
	Malformed                       // internal inconsistency in the data
	Unsupported                     // a version or feature the codec does not handle
)

func (r DecodeReason) String() string {
	switch r {
	case Truncated:
		return "truncated"
	case Malformed:
		return "malformed"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("DecodeReason(%d)", int(r))
	}
}

// DecodeError indicates that a table could not be parsed.
type DecodeError struct {
	Tag    Tag
	Reason DecodeReason
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s table: %s", e.Tag, e.Reason, e.Msg)
}

// Truncatedf returns a DecodeError with reason [Truncated].
func Truncatedf(tag Tag, format string, a ...interface{}) error {
	return &DecodeError{Tag: tag, Reason: Truncated, Msg: fmt.Sprintf(format, a...)}
}

// Malformedf returns a DecodeError with reason [Malformed].
func Malformedf(tag Tag, format string, a ...interface{}) error {
	return &DecodeError{Tag: tag, Reason: Malformed, Msg: fmt.Sprintf(format, a...)}
}

// Unsupportedf returns a DecodeError with reason [Unsupported].
func Unsupportedf(tag Tag, format string, a ...interface{}) error {
	return &DecodeError{Tag: tag, Reason: Unsupported, Msg: fmt.Sprintf(format, a...)}
}

// EncodeError indicates that a parsed table cannot be serialized,
// usually because a mutation left it in an unrepresentable state.
type EncodeError struct {
	Tag Tag
	Msg string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: cannot encode table: %s", e.Tag, e.Msg)
}

// DuplicateNameError indicates an attempt to give two glyphs the same name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate glyph name %q", e.Name)
}

// InconsistentError indicates that cross-table references do not line up,
// for example a character map entry pointing beyond the glyph set.
type InconsistentError struct {
	Msg string
}

func (e *InconsistentError) Error() string {
	return "inconsistent font: " + e.Msg
}
