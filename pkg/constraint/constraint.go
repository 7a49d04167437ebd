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

package constraint

import (
	"fmt"
	"strings"

	"github.com/skewguard/skewguard/pkg/errors"
	"github.com/skewguard/skewguard/pkg/version"
)

// Operator represents a comparison operator in range expressions.
type Operator string

const (
	// OperatorGTE represents ">=" (greater than or equal).
	OperatorGTE Operator = ">="

	// OperatorLTE represents "<=" (less than or equal).
	OperatorLTE Operator = "<="

	// OperatorGT represents ">" (greater than).
	OperatorGT Operator = ">"

	// OperatorLT represents "<" (less than).
	OperatorLT Operator = "<"

	// OperatorEQ represents "==" (equal).
	OperatorEQ Operator = "=="

	// OperatorNE represents "!=" (not equal).
	OperatorNE Operator = "!="
)

// operators lists recognized operators longest first to avoid matching
// ">" when ">=" is intended.
var operators = []Operator{OperatorGTE, OperatorLTE, OperatorNE, OperatorEQ, OperatorGT, OperatorLT}

// Clause is a single comparison against a version bound.
type Clause struct {
	// Operator is the comparison operator.
	Operator Operator

	// Bound is the parsed version bound.
	Bound version.Version
}

// String returns the clause in its canonical "<op><version>" form.
func (c Clause) String() string {
	return string(c.Operator) + c.Bound.String()
}

// Range is a parsed acceptable-version constraint: zero or more clauses
// combined with logical AND. The zero-clause Range matches every version.
// A Range is immutable after Parse.
type Range struct {
	clauses []Clause
	raw     string
}

// Parse parses a range expression into a Range.
// The grammar is comma-separated clauses, each "<op><version>" with no
// internal whitespace, e.g. "<4.0,>=2.0". Surrounding whitespace around
// a clause is tolerated. An empty expression parses to the always-true
// Range. An unrecognized operator or malformed bound fails with an
// INVALID_CONFIG error.
func Parse(text string) (Range, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Range{}, nil
	}

	parts := strings.Split(trimmed, ",")
	clauses := make([]Clause, 0, len(parts))
	for _, part := range parts {
		clause, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return Range{}, err
		}
		clauses = append(clauses, clause)
	}

	return Range{clauses: clauses, raw: trimmed}, nil
}

// MustParse parses a range expression and panics if parsing fails.
// Only for hardcoded strings and tests.
func MustParse(text string) Range {
	r, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("constraint.MustParse: %v", err))
	}
	return r
}

func parseClause(part string) (Clause, error) {
	if part == "" {
		return Clause{}, errors.New(errors.ErrCodeInvalidConfig, "range clause cannot be empty")
	}

	var op Operator
	var boundText string
	for _, candidate := range operators {
		if strings.HasPrefix(part, string(candidate)) {
			op = candidate
			boundText = strings.TrimPrefix(part, string(candidate))
			break
		}
	}
	if op == "" {
		return Clause{}, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"range clause has no recognized operator", map[string]any{"clause": part})
	}
	if boundText == "" {
		return Clause{}, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"range clause has no version bound", map[string]any{"clause": part})
	}

	bound, err := version.Parse(boundText)
	if err != nil {
		return Clause{}, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"range clause bound is not a valid version", err, map[string]any{"clause": part})
	}

	return Clause{Operator: op, Bound: bound}, nil
}

// Matches reports whether v satisfies every clause of the Range.
// The zero-clause Range matches everything. Pure function.
func (r Range) Matches(v version.Version) bool {
	for _, clause := range r.clauses {
		cmp := v.Compare(clause.Bound)

		var ok bool
		switch clause.Operator {
		case OperatorGTE:
			ok = cmp >= 0
		case OperatorGT:
			ok = cmp > 0
		case OperatorLTE:
			ok = cmp <= 0
		case OperatorLT:
			ok = cmp < 0
		case OperatorEQ:
			ok = cmp == 0
		case OperatorNE:
			ok = cmp != 0
		}
		if !ok {
			return false
		}
	}
	return true
}

// Clauses returns a copy of the parsed clauses.
func (r Range) Clauses() []Clause {
	out := make([]Clause, len(r.clauses))
	copy(out, r.clauses)
	return out
}

// IsAny reports whether the Range matches every version.
func (r Range) IsAny() bool {
	return len(r.clauses) == 0
}

// String returns the expression the Range was parsed from,
// or "*" for the always-true Range.
func (r Range) String() string {
	if r.IsAny() {
		return "*"
	}
	return r.raw
}
