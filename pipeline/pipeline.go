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

// Package pipeline wires the per-function ast -> cfg -> defuse -> reach -> depgraph chain and fans
// it out across every function in a dump.Configuration, bounded by config.MaxConcurrentFunctions.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/squareslab/physcfg/ast"
	"github.com/squareslab/physcfg/cfg"
	"github.com/squareslab/physcfg/config"
	"github.com/squareslab/physcfg/defuse"
	"github.com/squareslab/physcfg/depgraph"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/errs"
	"github.com/squareslab/physcfg/reach"
)

// FunctionResult is the complete per-function analysis output, or an error if the function was
// dropped.
type FunctionResult struct {
	Function *dump.Function
	Decl     *ast.FunctionDecl
	CFG      *cfg.FunctionCFG
	DefUse   map[*cfg.Node]*defuse.Sets
	Reach    *reach.Result
	Dep      *depgraph.Graph
	Err      error
}

// Run processes every function in cfg's configuration independently, across a worker pool capped
// at config.MaxConcurrentFunctions. Results are written into a slice indexed by the function's
// position in the configuration (not append order), so output is deterministic regardless of
// goroutine scheduling; a dropped function (malformed input) occupies its slot with a non-nil Err
// and does not affect any other function's result.
//
// ctx is checked between dispatching functions, not mid-function - every stage is a synchronous
// transformation with no internal suspension point, so a cancelled context stops scheduling new
// functions but lets in-flight ones finish.
func Run(ctx context.Context, configuration *dump.Configuration) []FunctionResult {
	results := make([]FunctionResult, len(configuration.Functions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.MaxConcurrentFunctions)

	for i, fn := range configuration.Functions {
		i, fn := i, fn
		if ctx.Err() != nil {
			results[i] = FunctionResult{Function: fn, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			results[i] = runOne(configuration, fn)
			return nil
		})
	}

	// g.Wait's error is always nil: runOne recovers its own panics and reports them through
	// results[i].Err instead of returning an error from the goroutine, which is what would make
	// errgroup cancel ctx and skip remaining functions for a single function's internal bug.
	_ = g.Wait()

	return results
}

// runOne runs the full chain for one function, recovering an errs.KindInvariantFailure panic (an
// internal bug, not malformed input) into a dropped-function result rather than crashing the run.
func runOne(configuration *dump.Configuration, fn *dump.Function) (result FunctionResult) {
	result.Function = fn

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errs.Error); ok {
				result.Err = e.WithFunction(fn.Name)
				return
			}
			result.Err = errs.New(errs.KindInvariantFailure, "panic: %v", r).WithFunction(fn.Name)
		}
	}()

	decl, err := ast.BuildFunctionDecl(configuration, fn)
	if err != nil {
		result.Err = err
		return result
	}
	result.Decl = decl

	graph, err := cfg.Build(decl)
	if err != nil {
		result.Err = err
		return result
	}
	result.CFG = graph

	sets := defuse.Build(graph, decl)
	result.DefUse = sets

	rd := reach.Build(graph, sets)
	result.Reach = rd

	result.Dep = depgraph.Build(graph, sets, rd)

	return result
}

// FormatErrors renders every dropped function's error, one per line, for driver-level logging.
func FormatErrors(results []FunctionResult) string {
	out := ""
	for _, r := range results {
		if r.Err != nil {
			out += fmt.Sprintf("%s: %v\n", r.Function.Name, r.Err)
		}
	}
	return out
}
