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

package cfg

import (
	"fmt"

	"github.com/squareslab/physcfg/ast"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/tokenutil"
	"github.com/squareslab/physcfg/errs"
)

// frame is one entry of the call-tree stack: the enclosing construct convert is nested inside,
// and the nodes break/continue/return must jump to. Start is the conditional node for if/while
// frames and the Entry node for the function frame; Exit is the join node for if/while and the
// Exit node for the function frame.
type frame struct {
	kind  string // "function", "if", "while"
	start *Node
	exit  *Node
}

// Build lowers fn's statement tree into a FunctionCFG.
func Build(fn *ast.FunctionDecl) (*FunctionCFG, error) {
	entry := newNode(KindEntry)
	exit := newNode(KindExit)

	callTree := []frame{{kind: "function", start: entry, exit: exit}}
	res, err := convert(fn.Body, callTree)
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			return nil, e.WithFunction(fn.Name)
		}
		return nil, err
	}

	if len(entry.Next) != 0 {
		panic(fmt.Sprintf("physcfg: entry node for %q already linked before chain attached", fn.Name))
	}
	link(entry, res.head)

	return &FunctionCFG{Name: fn.Name, Entry: entry, Exit: exit}, nil
}

// chain is the result of converting one statement list: head is its entry point (the node a
// predecessor should link into), and tail is the node subsequent statements should link from - nil
// if the chain halted partway through via break/continue/return, meaning there is nothing left to
// link after it (the remaining statements in that list, if any, are unreachable and were not
// processed; see convert). An empty statement list yields one fresh Empty node as both head and
// tail.
type chain struct {
	head *Node
	tail *Node
}

// convert lowers one statement list under callTree into a CFG chain, implementing the AST-to-CFG
// algorithm: a single forward pass tracks the current tail node (cur) as it links new nodes in,
// which both builds the graph and finds each branch's tail in the same pass - an explicit
// follow-up forward DFS over the finished branch to relocate the tail is unnecessary when the
// builder already knows it at construction time.
func convert(stmts []ast.Statement, callTree []frame) (*chain, error) {
	var head, cur *Node
	halted := false

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Block:
			basic := newNode(KindBasic)
			basic.Root = s.Root
			if cur == nil {
				head = basic
			} else {
				link(cur, basic)
			}
			cur = basic

			switch terminator(s.Root) {
			case "break":
				f, ok := innermostWhile(callTree)
				if !ok {
					return nil, errs.New(errs.KindContextViolation, "break outside any enclosing while loop")
				}
				link(cur, f.exit)
				halted = true
			case "continue":
				f, ok := innermostWhile(callTree)
				if !ok {
					return nil, errs.New(errs.KindContextViolation, "continue outside any enclosing while loop")
				}
				link(cur, f.start)
				halted = true
			case "return":
				if len(callTree) == 0 || callTree[0].kind != "function" {
					return nil, errs.New(errs.KindContextViolation, "return with no enclosing function")
				}
				link(cur, callTree[0].exit)
				halted = true
			}

			if halted {
				return &chain{head: head, tail: nil}, nil
			}

		case *ast.If:
			cond := newNode(KindConditional)
			cond.Root = s.Cond
			join := newNode(KindJoin)
			if cur == nil {
				head = cond
			} else {
				link(cur, cond)
			}

			trueChain, err := convert(s.True, append(append([]frame(nil), callTree...), frame{kind: "if", start: cond, exit: join}))
			if err != nil {
				return nil, err
			}
			linkBranch(cond, trueChain, join)

			falseChain, err := convert(s.False, append(append([]frame(nil), callTree...), frame{kind: "if", start: cond, exit: join}))
			if err != nil {
				return nil, err
			}
			linkBranch(cond, falseChain, join)

			cur = join

		case *ast.While:
			cond := newNode(KindConditional)
			cond.Root = s.Cond
			join := newNode(KindJoin)
			emptyFalse := newNode(KindEmpty)
			if cur == nil {
				head = cond
			} else {
				link(cur, cond)
			}

			bodyChain, err := convert(s.Body, append(append([]frame(nil), callTree...), frame{kind: "while", start: cond, exit: join}))
			if err != nil {
				return nil, err
			}
			if bodyChain.head == nil {
				link(cond, cond)
			} else {
				link(cond, bodyChain.head)
				if bodyChain.tail != nil {
					link(bodyChain.tail, cond)
				}
			}
			link(cond, emptyFalse)
			link(emptyFalse, join)

			cur = join

		default:
			panic(fmt.Sprintf("physcfg: unexpected statement kind %d reached cfg.convert - ast.Parse should have desugared it away", stmt.Kind()))
		}
	}

	if head == nil {
		head = newNode(KindEmpty)
		cur = head
	}

	if !halted && cur != nil && len(callTree) == 1 && callTree[0].kind == "function" {
		link(cur, callTree[0].exit)
	}

	return &chain{head: head, tail: cur}, nil
}

// linkBranch links cond into a branch's entry point and, if the branch did not halt, links the
// branch's tail into join. An empty branch (no statements) gets its own Empty node rather than
// linking cond directly to join, so Conditional's two successors are always materialized nodes of
// the same shape regardless of which branch is taken.
func linkBranch(cond *Node, br *chain, join *Node) {
	link(cond, br.head)
	if br.tail != nil {
		link(br.tail, join)
	} else if br.head.Kind == KindEmpty {
		link(br.head, join)
	}
}

// terminator returns "break", "continue", "return", or "" for a Block statement's root token,
// scanning its in-order token sequence for the first matching keyword. A break/continue/return
// statement's root token is always one of those keywords directly (they are never nested inside
// another statement in this model), but the in-order scan matches the algorithm as documented and
// is robust to a wrapper token appearing before the keyword itself.
func terminator(root *dump.Token) string {
	for _, t := range tokenutil.InOrder(root) {
		switch t.Str {
		case "break", "continue", "return":
			return t.Str
		}
	}
	return ""
}

func innermostWhile(callTree []frame) (frame, bool) {
	for i := len(callTree) - 1; i >= 0; i-- {
		if callTree[i].kind == "while" {
			return callTree[i], true
		}
	}
	return frame{}, false
}
