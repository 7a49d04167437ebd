// Copyright 2025 The Skewguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion   = errors.New("version string is empty")
	ErrInvalidSegment = errors.New("version segment is not alphanumeric")
)

// segment is one dot-separated component of a version string.
// Numeric segments keep their digits normalized (leading zeros stripped)
// so that comparison never needs integer conversion and never overflows.
type segment struct {
	numeric bool
	digits  string // normalized digit run, numeric segments only
	text    string // raw segment text
}

// zeroSegment is what a missing trailing segment compares as.
// This makes "2.1" and "2.1.0" equal by construction.
var zeroSegment = segment{numeric: true, digits: "0", text: "0"}

// Version is an ordered, opaque version identifier parsed from a dotted
// token such as "2.15.3" or "4.4.0-rc1". Segments are compared pairwise
// left to right; numeric segments compare numerically, any other segment
// compares bytewise. A Version is immutable after Parse.
type Version struct {
	raw  string
	segs []segment
}

// Parse parses a dotted version token into a Version.
// Supported segment characters are ASCII letters, digits, and '-'.
// A leading "v" prefix is stripped. Returns ErrEmptyVersion for the
// empty string and ErrInvalidSegment for malformed tokens such as "abc!".
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	trimmed := strings.TrimPrefix(s, "v")
	if trimmed == "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidSegment, s)
	}

	parts := strings.Split(trimmed, ".")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Version{}, err
		}
		segs = append(segs, seg)
	}

	return Version{raw: s, segs: segs}, nil
}

// MustParse parses a version token and panics if parsing fails.
// Only use this for hardcoded strings or in tests. For runtime data,
// always use Parse and handle errors explicitly.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("version.MustParse: %v", err))
	}
	return v
}

func parseSegment(part string) (segment, error) {
	if part == "" {
		return segment{}, fmt.Errorf("%w: empty segment", ErrInvalidSegment)
	}

	numeric := true
	for _, ch := range part {
		switch {
		case ch >= '0' && ch <= '9':
			// still possibly numeric
		case (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '-':
			numeric = false
		default:
			return segment{}, fmt.Errorf("%w: %q", ErrInvalidSegment, part)
		}
	}

	seg := segment{numeric: numeric, text: part}
	if numeric {
		seg.digits = strings.TrimLeft(part, "0")
		if seg.digits == "" {
			seg.digits = "0"
		}
	}
	return seg, nil
}

// String returns the original token the Version was parsed from.
func (v Version) String() string {
	return v.raw
}

// Segments returns the number of parsed segments.
func (v Version) Segments() int {
	return len(v.segs)
}

// Compare returns an integer comparing two versions:
// -1 if v < other, 0 if v == other, 1 if v > other.
// The shorter segment sequence is zero-extended before comparison,
// so "2.1" equals "2.1.0". A numeric segment orders before a
// non-numeric one so the relation stays a total order.
func (v Version) Compare(other Version) int {
	n := len(v.segs)
	if len(other.segs) > n {
		n = len(other.segs)
	}

	for i := 0; i < n; i++ {
		a := zeroSegment
		if i < len(v.segs) {
			a = v.segs[i]
		}
		b := zeroSegment
		if i < len(other.segs) {
			b = other.segs[i]
		}
		if c := compareSegments(a, b); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports whether v and other compare as equal. This is the
// equality used for exact-match peer checks, so "2.1" equals "v2.1.0".
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

func compareSegments(a, b segment) int {
	switch {
	case a.numeric && b.numeric:
		// Normalized digit runs compare by length first, then bytewise.
		if len(a.digits) != len(b.digits) {
			if len(a.digits) < len(b.digits) {
				return -1
			}
			return 1
		}
		return strings.Compare(a.digits, b.digits)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	default:
		return strings.Compare(a.text, b.text)
	}
}

// Compare is the package-level form of Version.Compare.
func Compare(a, b Version) int {
	return a.Compare(b)
}
