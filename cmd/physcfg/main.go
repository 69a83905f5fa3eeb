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

// main makes it possible to run physcfg as a standalone driver: it reads one dump document, runs
// the analysis pipeline over every function of every configuration, and prints the resulting
// statement trees (and, if a units report is supplied, repair proposals) to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/squareslab/physcfg/ast"
	"github.com/squareslab/physcfg/cfg"
	"github.com/squareslab/physcfg/config"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/tokenutil"
	"github.com/squareslab/physcfg/pipeline"
	"github.com/squareslab/physcfg/repair"
	"github.com/squareslab/physcfg/serialize"
	"github.com/squareslab/physcfg/units"
)

var (
	_dumpPath  string
	_unitsPath string
	_format    string
)

func main() {
	flag.StringVar(&_dumpPath, "dump", "", "path to the dump document to analyze (required)")
	flag.StringVar(&_unitsPath, "units", "", "path to a units-inference report; when set, enables the repair stage")
	flag.StringVar(&_format, "format", "yaml", "output format for statement trees: yaml or json")
	flag.Parse()

	if _dumpPath == "" {
		fmt.Fprintln(os.Stderr, "physcfg: -dump is required")
		os.Exit(1)
	}
	if _format != "yaml" && _format != "json" {
		fmt.Fprintf(os.Stderr, "physcfg: unknown -format %q (want yaml or json)\n", _format)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "physcfg: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	doc, err := dump.Load(_dumpPath)
	if err != nil {
		return fmt.Errorf("load dump: %w", err)
	}

	var report *units.Report
	if _unitsPath != "" {
		report, err = units.Load(_unitsPath)
		if err != nil {
			return fmt.Errorf("load units report: %w", err)
		}
	}

	ctx := context.Background()
	for _, configuration := range doc.Configurations {
		results := pipeline.Run(ctx, configuration)

		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "physcfg: skipping %s: %v\n", r.Function.Name, r.Err)
				continue
			}

			out, err := marshalDecl(r.Decl)
			if err != nil {
				return fmt.Errorf("serialize %s: %w", r.Function.Name, err)
			}
			fmt.Println(string(out))

			if report != nil {
				printProposals(configuration, r, report)
			}
		}
	}

	return nil
}

func marshalDecl(decl *ast.FunctionDecl) ([]byte, error) {
	if _format == "json" {
		return serialize.MarshalJSON(decl)
	}
	return serialize.MarshalYAML(decl)
}

// printProposals resolves each reported unit error against r's function and prints any repair
// proposals found for it. A unit error whose root token does not belong to this function (it's
// some other function's statement) is silently skipped here rather than misattributed - the outer
// loop over every function in the configuration visits it eventually.
func printProposals(configuration *dump.Configuration, r pipeline.FunctionResult, report *units.Report) {
	varUnits := variableUnitsByName(configuration, report)

	for _, ue := range report.Errors {
		node, rootToken := findErrorNode(r.CFG, ue.RootTokenID)
		if node == nil {
			continue
		}
		errorToken := tokenByID(rootToken, ue.TokenID)
		if errorToken == nil {
			continue
		}

		lhsVars := tokenutil.Variables(tokenutil.LHSOf(tokenutil.InOrder(rootToken)))
		if len(lhsVars) == 0 {
			continue
		}
		lhsUnit, ok := varUnits[lhsVars[0]]
		if !ok {
			continue
		}

		proposals, err := repair.Propose(errorToken, node, lhsUnit, varUnits, report.TokenUnits, r.Reach, config.RepairSearchDepth)
		if err != nil {
			fmt.Fprintf(os.Stderr, "physcfg: repair %s: %v\n", r.Function.Name, err)
			continue
		}
		for _, p := range proposals {
			fmt.Printf("repair: %s: multiply by %v, divide by %v\n", r.Function.Name, variableNames(p.Multiply), variableNames(p.Divide))
		}
	}
}

func findErrorNode(fn *cfg.FunctionCFG, rootTokenID dump.ID) (*cfg.Node, *dump.Token) {
	if fn == nil {
		return nil, nil
	}
	for _, n := range fn.Reachable() {
		if n.Root != nil && n.Root.ID == rootTokenID {
			return n, n.Root
		}
	}
	return nil, nil
}

func tokenByID(root *dump.Token, id dump.ID) *dump.Token {
	for _, t := range tokenutil.InOrder(root) {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// variableUnitsByName maps each dump.Variable to its oracle-reported unit by matching on the
// variable's name token text - the units oracle runs over its own IR and does not share physcfg's
// dump.ID space for variables.
func variableUnitsByName(configuration *dump.Configuration, report *units.Report) map[*dump.Variable]units.Map {
	byName := make(map[string]units.Map, len(report.Variables))
	for _, v := range report.Variables {
		byName[v.VarName] = v.Units
	}

	out := make(map[*dump.Variable]units.Map)
	for _, v := range configuration.Variables {
		if v.NameToken == nil {
			continue
		}
		if m, ok := byName[v.NameToken.Str]; ok {
			out[v] = m
		}
	}
	return out
}

func variableNames(vs []*dump.Variable) []string {
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		if v.NameToken != nil {
			names = append(names, v.NameToken.Str)
		}
	}
	return names
}
