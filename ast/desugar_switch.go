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
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/scopetree"
	"github.com/squareslab/physcfg/errs"
)

// buildSwitchChain walks the switch scope's tokens in source order to enumerate the case/default
// labels directly nested in it (tokens whose ScopeID is deeper belong to nested constructs;
// nested switches are rejected as unsupported), partitions bodyTokens across those labels by
// source order, parses each partition under switchScope, and links the results into a Prev/Next
// chain.
func buildSwitchChain(switchExpr *dump.Token, switchScope *dump.Scope, bodyTokens []*dump.Token, tree *scopetree.Node) (*Switch, error) {
	type label struct {
		token     *dump.Token
		match     *dump.Token
		isDefault bool
	}
	var labels []label

	if switchScope.Start == nil || switchScope.End == nil {
		return nil, errs.New(errs.KindMalformedDump, "switch scope missing start/end token")
	}

	for cur := switchScope.Start; cur != nil && cur != switchScope.End; cur = cur.Next {
		if cur.ScopeID != switchScope.ID {
			continue
		}
		switch cur.Str {
		case "case":
			labels = append(labels, label{token: cur, match: cur.Next})
		case "default":
			labels = append(labels, label{token: cur, isDefault: true})
		case "switch":
			if switchExpr == nil || cur.Parent != switchExpr.Parent {
				return nil, errs.New(errs.KindUnsupportedConstruct, "nested switch is not supported")
			}
		}
	}

	if len(labels) == 0 {
		return nil, errs.New(errs.KindMalformedDump, "switch has no case or default labels")
	}

	partitions := make([][]*dump.Token, len(labels))
	for _, t := range bodyTokens {
		idx := 0
		for i, l := range labels {
			if before(l.token, t) {
				idx = i
			}
		}
		partitions[idx] = append(partitions[idx], t)
	}

	var head, tail *Switch
	for i, l := range labels {
		body, err := Parse(partitions[i], tree)
		if err != nil {
			return nil, err
		}
		body = appendCaseTrailing(body, switchScope, labels, i)

		node := &Switch{
			SwitchExpr: switchExpr,
			MatchExpr:  l.match,
			Body:       body,
			IsDefault:  l.isDefault,
			HasBreak:   endsInBreak(body),
		}
		if tail != nil {
			tail.Next = node
			node.Prev = tail
		} else {
			head = node
		}
		tail = node
	}

	return head, nil
}

// appendCaseTrailing scans for a trailing break/continue within a single case's span (from its
// label to the next label, or the switch's end for the last case) rather than the whole switch
// scope, so one case's implicit break is never misattributed to another. A break/continue that the
// partition's own parse already placed as the body's last Block is not appended a second time.
func appendCaseTrailing(body []Statement, switchScope *dump.Scope, labels []struct {
	token     *dump.Token
	match     *dump.Token
	isDefault bool
}, idx int) []Statement {
	end := switchScope.End
	if idx+1 < len(labels) {
		end = labels[idx+1].token
	}
	for cur := end.Prev; cur != nil && cur.ScopeID == switchScope.ID; cur = cur.Prev {
		if cur == labels[idx].token {
			break
		}
		if cur.Str == "break" || cur.Str == "continue" {
			if n := len(body); n > 0 {
				if b, ok := body[n-1].(*Block); ok && b.Root == cur {
					break
				}
			}
			body = append(body, &Block{Root: cur})
			break
		}
	}
	return body
}

func endsInBreak(body []Statement) bool {
	if len(body) == 0 {
		return false
	}
	b, ok := body[len(body)-1].(*Block)
	return ok && b.Root != nil && b.Root.Str == "break"
}

func stripTrailingBreak(body []Statement) []Statement {
	if endsInBreak(body) {
		return body[:len(body)-1]
	}
	return body
}

// desugarSwitch runs the two passes described in spec.md §4.3.1.
//
// Add-breaks: the last case always terminates with an implicit break; walking backward, any case
// without HasBreak has its body extended with the (already-extended) body of the following case,
// modeling C/C++ fall-through.
//
// To-if-else: the break-terminated chain becomes a right-leaning If: a synthesized "==" token
// compares the switch expression against the case's match expression, the true branch is the
// case's body minus its trailing break, and the false branch is the recursive conversion of the
// next case (or, if that next case is the default, its body directly - since default always
// matches unconditionally and needs no comparison of its own).
func desugarSwitch(chain *Switch) []Statement {
	cases := chainToSlice(chain)

	for i := len(cases) - 2; i >= 0; i-- {
		if !cases[i].HasBreak {
			cases[i].Body = append(append([]Statement(nil), cases[i].Body...), cases[i+1].Body...)
		}
	}

	return toIfElse(cases, 0)
}

func chainToSlice(chain *Switch) []*Switch {
	var out []*Switch
	for c := chain; c != nil; c = c.Next {
		out = append(out, c)
	}
	return out
}

func toIfElse(cases []*Switch, i int) []Statement {
	if i >= len(cases) {
		return nil
	}
	c := cases[i]
	if c.IsDefault {
		return stripTrailingBreak(c.Body)
	}

	eq := &dump.Token{Str: "==", Op1: c.SwitchExpr, Op2: c.MatchExpr}
	trueBranch := stripTrailingBreak(c.Body)

	var falseBranch []Statement
	if i+1 < len(cases) {
		if cases[i+1].IsDefault {
			falseBranch = stripTrailingBreak(cases[i+1].Body)
		} else {
			falseBranch = toIfElse(cases, i+1)
		}
	}

	return []Statement{&If{Cond: eq, True: trueBranch, False: falseBranch}}
}
