// Copyright (c) 2024 The physcfg Authors.
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

// Package tokenutil implements pure functions over the read-only dump.Token model: in-order
// traversal of the AST-operand tree, variable extraction, LHS/RHS splitting at an assignment, and
// walking to the AST root. These contracts intentionally match the upstream token model exactly -
// assignments in the dump always appear as a single "=" token at the AST root of their statement.
package tokenutil

import "github.com/squareslab/physcfg/dump"

// InOrder returns the in-order traversal of the AST-operand tree rooted at t: empty if t is nil,
// a singleton if t has no operands, otherwise InOrder(t.Op1) ++ [t] ++ InOrder(t.Op2).
func InOrder(t *dump.Token) []*dump.Token {
	if t == nil {
		return nil
	}
	var out []*dump.Token
	out = append(out, InOrder(t.Op1)...)
	out = append(out, t)
	out = append(out, InOrder(t.Op2)...)
	return out
}

// VariablesIn returns, in order, the tokens among tokens that are bound to a variable.
func VariablesIn(tokens []*dump.Token) []*dump.Token {
	var out []*dump.Token
	for _, t := range tokens {
		if t.Variable != nil {
			out = append(out, t)
		}
	}
	return out
}

// Variables is VariablesIn followed by projecting to the bound dump.Variable values.
func Variables(tokens []*dump.Token) []*dump.Variable {
	var out []*dump.Variable
	for _, t := range VariablesIn(tokens) {
		out = append(out, t.Variable)
	}
	return out
}

// LHSOf returns the prefix of tokens strictly before the first token whose text is "=", or empty
// if no "=" token is present.
func LHSOf(tokens []*dump.Token) []*dump.Token {
	i := indexOfAssign(tokens)
	if i < 0 {
		return nil
	}
	return tokens[:i]
}

// RHSOf returns the suffix of tokens starting at (and including) the first "=" token, or empty if
// no "=" token is present.
func RHSOf(tokens []*dump.Token) []*dump.Token {
	i := indexOfAssign(tokens)
	if i < 0 {
		return nil
	}
	return tokens[i:]
}

func indexOfAssign(tokens []*dump.Token) int {
	for i, t := range tokens {
		if t.Str == "=" {
			return i
		}
	}
	return -1
}

// RootOf walks AST parents until none remain and returns the root.
func RootOf(t *dump.Token) *dump.Token {
	if t == nil {
		return nil
	}
	for t.Parent != nil {
		t = t.Parent
	}
	return t
}
