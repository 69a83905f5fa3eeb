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

// Package ast lifts a function's flat, token-level dump (root tokens plus a scope tree) into a
// normalized statement tree: blocks, if/else, and while, with for and switch always desugared
// away before Parse returns. See desugar_for.go and desugar_switch.go for the two desugarings.
package ast

import (
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/scopetree"
)

// Kind discriminates the Statement variants. It exists alongside the stmtNode marker method so
// callers can switch on it directly instead of doing repeated type assertions.
type Kind int

const (
	KindBlock Kind = iota
	KindIf
	KindWhile
	// KindFor and KindSwitch are transient: Parse always desugars them away (into While/If/Block)
	// before returning, so no statement list it produces contains them. They're exported because
	// desugar_for.go/desugar_switch.go build and consume them as ordinary Statement values during
	// that process, and so that serialize's golden tests can assert their absence by Kind.
	KindFor
	KindSwitch
)

// Statement is the sum type over all statement-tree node shapes. Implementations are the pointer
// types below; the unexported stmtNode method makes the set closed (only this package can add
// variants), matching the tagged-variant design note in spec.md §9.
type Statement interface {
	Kind() Kind
	stmtNode()
}

// Block wraps the root token of a single top-level expression/statement.
type Block struct {
	Root *dump.Token
}

func (*Block) Kind() Kind { return KindBlock }
func (*Block) stmtNode()  {}

// If is a two-armed conditional. False may be empty (no else branch).
type If struct {
	Cond        *dump.Token
	True, False []Statement
}

func (*If) Kind() Kind { return KindIf }
func (*If) stmtNode()  {}

// While is a pretest loop. For loops are always lowered to While by the time Parse returns (see
// desugar_for.go).
type While struct {
	Cond *dump.Token
	Body []Statement
}

func (*While) Kind() Kind { return KindWhile }
func (*While) stmtNode()  {}

// For is the transient pre-desugar representation of a C-style for loop.
type For struct {
	Cond *dump.Token
	Body []Statement
}

func (*For) Kind() Kind { return KindFor }
func (*For) stmtNode()  {}

// Switch is one case (or default) of a transient, pre-desugar switch chain, linked via Prev/Next
// in source order. SwitchExpr is shared by every case in the chain; MatchExpr is nil for the
// default case. HasBreak records whether this case's own body, before the add-breaks pass,
// already ended in a break (see desugar_switch.go).
type Switch struct {
	SwitchExpr *dump.Token
	MatchExpr  *dump.Token
	Body       []Statement
	HasBreak   bool
	IsDefault  bool
	Prev, Next *Switch
}

func (*Switch) Kind() Kind { return KindSwitch }
func (*Switch) stmtNode()  {}

// FunctionDecl is one function's normalized body, owning the statement tree built by Parse.
type FunctionDecl struct {
	Name       string
	Start, End *dump.Token
	Scope      *dump.Scope
	ScopeTree  *scopetree.Node
	Params     []*dump.Variable
	Body       []Statement
}
