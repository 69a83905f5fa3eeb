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

package ast

import (
	"sort"

	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/scopetree"
	"github.com/squareslab/physcfg/errs"
)

// keyword returns the statement-kind marker for a root token: root tokens for control statements
// are wrapper tokens whose Op1 is the bare keyword token ("if", "while", "for", "switch"); every
// other root token is an ordinary expression/statement and dispatches to Block.
func keyword(t *dump.Token) string {
	if t.Op1 == nil {
		return ""
	}
	return t.Op1.Str
}

// control returns the control token carrying a statement's condition (for if/while/switch) or
// composite for/init/predicate/update structure (see desugar_for.go): the root token's Op2.
func control(t *dump.Token) *dump.Token {
	return t.Op2
}

// before reports whether a precedes b in source order, found by walking a's Next chain. This is
// the "use token next-walks" technique spec.md calls for when Id comparison alone is unreliable.
func before(a, b *dump.Token) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	for cur := a; cur != nil; cur = cur.Next {
		if cur == b {
			return true
		}
	}
	return false
}

// BuildFunctionDecl lifts one dump.Function into a FunctionDecl, running Parse over its root
// tokens and a fresh copy of its scope tree.
func BuildFunctionDecl(cfg *dump.Configuration, fn *dump.Function) (*FunctionDecl, error) {
	tree := scopetree.Build(cfg.Scopes, fn.Scope)
	rootTokens := collectRootTokens(fn.Start, fn.End)

	body, err := Parse(rootTokens, tree.Copy())
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			return nil, e.WithFunction(fn.Name)
		}
		return nil, err
	}

	return &FunctionDecl{
		Name:      fn.Name,
		Start:     fn.Start,
		End:       fn.End,
		Scope:     fn.Scope,
		ScopeTree: tree,
		Params:    fn.Params,
		Body:      body,
	}, nil
}

// collectRootTokens walks [start, end) in source order and returns the AST root of every
// statement found, sorted by line number (ties broken by first-occurrence order, which matches
// source order since Next already walks in source order).
func collectRootTokens(start, end *dump.Token) []*dump.Token {
	seen := make(map[*dump.Token]bool)
	var roots []*dump.Token
	for cur := start; cur != nil && cur != end; cur = cur.Next {
		root := cur
		for root.Parent != nil {
			root = root.Parent
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].Line < roots[j].Line })
	return roots
}

// Parse consumes rootTokens and tree and returns the normalized statement list for that span.
// tree is consumed destructively (children are popped off as constructs are recognized) - a
// well-formed function consumes every non-root scope exactly once; leftover or prematurely
// reused scopes indicate a malformed dump.
func Parse(rootTokens []*dump.Token, tree *scopetree.Node) ([]Statement, error) {
	queue := append([]*dump.Token(nil), rootTokens...)
	var stmts []Statement

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		switch keyword(t) {
		case "if":
			stmt, rest, err := parseIf(t, queue, tree)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
			queue = rest

		case "while":
			stmt, rest, err := parseWhile(t, queue, tree)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
			queue = rest

		case "for":
			forStmts, rest, err := parseFor(t, queue, tree)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, forStmts...)
			queue = rest

		case "switch":
			switchStmts, rest, err := parseSwitch(t, queue, tree)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, switchStmts...)
			queue = rest

		default:
			stmts = append(stmts, &Block{Root: t})
		}
	}

	return stmts, nil
}

// popTypedChild pops tree's first child, requiring it to have the given scope type.
func popTypedChild(tree *scopetree.Node, typ string) (*scopetree.Node, error) {
	child := tree.PopFirstChild()
	if child == nil {
		return nil, errs.New(errs.KindMalformedDump, "expected a %s scope but the scope tree had no remaining children", typ)
	}
	if child.Scope.Type != typ {
		return nil, errs.New(errs.KindMalformedDump, "expected a %s scope but found %s", typ, child.Scope.Type)
	}
	return child, nil
}

// popTokensBefore pops and returns every token at the front of queue that lies before end in
// source order.
func popTokensBefore(queue []*dump.Token, end *dump.Token) ([]*dump.Token, []*dump.Token) {
	var popped []*dump.Token
	for len(queue) > 0 && before(queue[0], end) {
		popped = append(popped, queue[0])
		queue = queue[1:]
	}
	return popped, queue
}

// trailingBreakOrContinue scans backward from scope's end token, staying inside tokens whose
// ScopeID matches scope, for a break or continue token. It returns the first one found (nearest
// the scope end), or nil. Per spec.md §9's documented open question, this picks up a break
// regardless of whether it sits at the branch's structural tail - the scan does not stop at the
// first non-trailing statement, only at the scope boundary.
func trailingBreakOrContinue(scope *dump.Scope) *dump.Token {
	if scope == nil || scope.End == nil {
		return nil
	}
	for cur := scope.End.Prev; cur != nil && cur.ScopeID == scope.ID; cur = cur.Prev {
		if cur.Str == "break" || cur.Str == "continue" {
			return cur
		}
	}
	return nil
}

// appendTrailing appends a Block wrapping scope's trailing break/continue token to body, if one
// is present.
func appendTrailing(body []Statement, scope *dump.Scope) []Statement {
	if t := trailingBreakOrContinue(scope); t != nil {
		body = append(body, &Block{Root: t})
	}
	return body
}

func parseIf(t *dump.Token, queue []*dump.Token, tree *scopetree.Node) (Statement, []*dump.Token, error) {
	ifScope, err := popTypedChild(tree, dump.ScopeIf)
	if err != nil {
		return nil, nil, err
	}

	trueTokens, rest := popTokensBefore(queue, ifScope.Scope.End)
	trueBody, err := Parse(trueTokens, ifScope)
	if err != nil {
		return nil, nil, err
	}
	trueBody = appendTrailing(trueBody, ifScope.Scope)

	var falseBody []Statement
	if len(tree.Children) > 0 && tree.Children[0].Scope.Type == dump.ScopeElse {
		elseScope, err := popTypedChild(tree, dump.ScopeElse)
		if err != nil {
			return nil, nil, err
		}
		var elseTokens []*dump.Token
		elseTokens, rest = popTokensBefore(rest, elseScope.Scope.End)
		falseBody, err = Parse(elseTokens, elseScope)
		if err != nil {
			return nil, nil, err
		}
		falseBody = appendTrailing(falseBody, elseScope.Scope)
	}

	return &If{Cond: control(t), True: trueBody, False: falseBody}, rest, nil
}

func parseWhile(t *dump.Token, queue []*dump.Token, tree *scopetree.Node) (Statement, []*dump.Token, error) {
	whileScope, err := popTypedChild(tree, dump.ScopeWhile)
	if err != nil {
		return nil, nil, err
	}

	bodyTokens, rest := popTokensBefore(queue, whileScope.Scope.End)
	body, err := Parse(bodyTokens, whileScope)
	if err != nil {
		return nil, nil, err
	}
	body = appendTrailing(body, whileScope.Scope)

	return &While{Cond: control(t), Body: body}, rest, nil
}

func parseFor(t *dump.Token, queue []*dump.Token, tree *scopetree.Node) ([]Statement, []*dump.Token, error) {
	forScope, err := popTypedChild(tree, dump.ScopeFor)
	if err != nil {
		return nil, nil, err
	}

	bodyTokens, rest := popTokensBefore(queue, forScope.Scope.End)
	body, err := Parse(bodyTokens, forScope)
	if err != nil {
		return nil, nil, err
	}
	body = appendTrailing(body, forScope.Scope)

	desugared, err := desugarFor(control(t), body)
	if err != nil {
		return nil, nil, err
	}
	return desugared, rest, nil
}

func parseSwitch(t *dump.Token, queue []*dump.Token, tree *scopetree.Node) ([]Statement, []*dump.Token, error) {
	switchScope, err := popTypedChild(tree, dump.ScopeSwitch)
	if err != nil {
		return nil, nil, err
	}

	bodyTokens, rest := popTokensBefore(queue, switchScope.Scope.End)

	chain, err := buildSwitchChain(control(t), switchScope.Scope, bodyTokens, switchScope)
	if err != nil {
		return nil, nil, err
	}

	desugared := desugarSwitch(chain)
	return desugared, rest, nil
}
