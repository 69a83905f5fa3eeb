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
	"github.com/squareslab/physcfg/errs"
)

// desugarFor lowers `for (init; pred; update) body` into `[Block(init), While(pred, body ++
// [Block(update)])]`.
//
// forCond is the "for-condition token": per spec.md §4.3.2, forCond.Op1 is the initializer,
// forCond.Op2.Op1 is the loop-continuation predicate, and forCond.Op2.Op2 is the update. The
// initializer runs exactly once, before the loop; the update runs at the end of every body
// iteration - which means a `continue` inside the body jumps to the synthesized while's header
// and therefore skips the update. This deviates from C/C++ semantics but matches the upstream
// tool's actual lowering (see spec.md §9's open question); it is preserved here rather than
// "corrected", since CFG threading (cfg.convert) resolves `continue` purely by looking at the
// innermost While frame with no special case for for-loops.
func desugarFor(forCond *dump.Token, body []Statement) ([]Statement, error) {
	if forCond == nil || forCond.Op2 == nil {
		return nil, errs.New(errs.KindMalformedDump, "for-statement missing condition structure")
	}

	init := forCond.Op1
	rest := forCond.Op2
	predicate := rest.Op1
	update := rest.Op2

	var initStmts []Statement
	if init != nil {
		initStmts = append(initStmts, &Block{Root: init})
	}

	loopBody := append([]Statement(nil), body...)
	if update != nil {
		loopBody = append(loopBody, &Block{Root: update})
	}

	return append(initStmts, &While{Cond: predicate, Body: loopBody}), nil
}
