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

// Package serialize renders a statement tree to a canonical shape - every statement is
// `{kind: {...fields...}}`, with tokens rendered by their in-order text - for golden-file tests.
// It is not part of the core pipeline's normal operation. YAML and JSON encoders both walk the same
// canonicalFunction projection, so the two formats can never silently diverge from one another.
package serialize

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/squareslab/physcfg/ast"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/tokenutil"
)

// node is the canonical, format-agnostic projection of one Statement: exactly one key, its kind
// name, mapping to a field set.
type node map[string]any

// MarshalYAML renders fn's statement tree to the canonical YAML shape.
func MarshalYAML(fn *ast.FunctionDecl) ([]byte, error) {
	return yaml.Marshal(canonicalFunction(fn))
}

// MarshalJSON renders fn's statement tree to the canonical JSON shape.
func MarshalJSON(fn *ast.FunctionDecl) ([]byte, error) {
	return json.MarshalIndent(canonicalFunction(fn), "", "  ")
}

func canonicalFunction(fn *ast.FunctionDecl) node {
	return node{
		"function": map[string]any{
			"name": fn.Name,
			"body": canonicalBody(fn.Body),
		},
	}
}

func canonicalBody(stmts []ast.Statement) []node {
	out := make([]node, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, canonicalStatement(s))
	}
	return out
}

func canonicalStatement(s ast.Statement) node {
	switch v := s.(type) {
	case *ast.Block:
		return node{"block": map[string]any{"text": text(v.Root)}}

	case *ast.If:
		return node{"if": map[string]any{
			"cond":  text(v.Cond),
			"true":  canonicalBody(v.True),
			"false": canonicalBody(v.False),
		}}

	case *ast.While:
		return node{"while": map[string]any{
			"cond": text(v.Cond),
			"body": canonicalBody(v.Body),
		}}

	default:
		return node{"unknown": map[string]any{"kind": int(s.Kind())}}
	}
}

// text renders a token subtree's in-order text, space-joined - the canonical form §6 specifies for
// tokens embedded in a serialized statement tree.
func text(t *dump.Token) string {
	if t == nil {
		return ""
	}
	var parts []string
	for _, tok := range tokenutil.InOrder(t) {
		parts = append(parts, tok.Str)
	}
	return strings.Join(parts, " ")
}
