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
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantSegments int
		wantErr      error
	}{
		{name: "single segment", input: "2", wantSegments: 1},
		{name: "two segments", input: "2.15", wantSegments: 2},
		{name: "three segments", input: "2.15.3", wantSegments: 3},
		{name: "v prefix", input: "v1.2.3", wantSegments: 3},
		{name: "many segments", input: "1.2.3.4.5", wantSegments: 5},
		{name: "alpha segment", input: "2.15.rc1", wantSegments: 3},
		{name: "hyphenated segment", input: "4.4.0-rc1", wantSegments: 3},
		{name: "zero", input: "0", wantSegments: 1},
		{name: "leading zeros", input: "2.01", wantSegments: 2},

		{name: "empty", input: "", wantErr: ErrEmptyVersion},
		{name: "bare v", input: "v", wantErr: ErrInvalidSegment},
		{name: "empty segment", input: "2..1", wantErr: ErrInvalidSegment},
		{name: "trailing dot", input: "2.1.", wantErr: ErrInvalidSegment},
		{name: "leading dot", input: ".2.1", wantErr: ErrInvalidSegment},
		{name: "punctuation", input: "abc!", wantErr: ErrInvalidSegment},
		{name: "internal whitespace", input: "2. 1", wantErr: ErrInvalidSegment},
		{name: "plus sign", input: "1.2+build", wantErr: ErrInvalidSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if v.Segments() != tt.wantSegments {
				t.Errorf("Segments() = %d, want %d", v.Segments(), tt.wantSegments)
			}
			if v.String() != tt.input {
				t.Errorf("String() = %q, want %q", v.String(), tt.input)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "equal", a: "2.15.3", b: "2.15.3", want: 0},
		{name: "zero extension equal", a: "2.1", b: "2.1.0", want: 0},
		{name: "zero extension deep", a: "2", b: "2.0.0.0", want: 0},
		{name: "v prefix ignored", a: "v2.1", b: "2.1.0", want: 0},
		{name: "leading zeros equal", a: "2.01", b: "2.1", want: 0},

		{name: "patch less", a: "2.15.2", b: "2.15.3", want: -1},
		{name: "minor greater", a: "2.16", b: "2.15.9", want: 1},
		{name: "major less", a: "1.9.9", b: "2.0", want: -1},
		{name: "numeric not lexicographic", a: "2.9", b: "2.10", want: -1},
		{name: "shorter less when extended", a: "2.1", b: "2.1.1", want: -1},

		{name: "numeric before alpha", a: "2.0", b: "2.rc1", want: -1},
		{name: "alpha bytewise", a: "2.alpha", b: "2.beta", want: -1},
		{name: "alpha equal", a: "2.rc1", b: "2.rc1", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MustParse(tt.a)
			b := MustParse(tt.b)

			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// Antisymmetry on every pair.
			if got := b.Compare(a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !MustParse("2.1").Equal(MustParse("2.1.0")) {
		t.Error("expected 2.1 == 2.1.0")
	}
	if MustParse("2.15.0").Equal(MustParse("2.14.9")) {
		t.Error("expected 2.15.0 != 2.14.9")
	}
}

func TestCompareTransitive(t *testing.T) {
	// An ordered chain; every pair must agree with the chain order.
	chain := []string{"0.9", "1", "1.0.1", "1.2", "1.10", "2.0", "2.0.0.alpha", "2.0.0.beta", "2.0.1", "2.0.0-rc1", "10.0"}

	for i := range chain {
		for j := range chain {
			a := MustParse(chain[i])
			b := MustParse(chain[j])
			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			if got := Compare(a, b); got != want {
				t.Errorf("Compare(%q, %q) = %d, want %d", chain[i], chain[j], got, want)
			}
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustParse to panic on invalid input")
		}
	}()
	MustParse("not a version!")
}
