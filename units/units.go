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

// Package units decodes the units-inference oracle's report: a JSON document naming reported unit
// errors, each variable's inferred dimensional units, and per-token units, produced by a separate
// external analysis and consumed here read-only.
package units

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/errs"
)

// Dimension is a base physical dimension name, e.g. "m", "s", "kg".
type Dimension string

// Map is a signed rational exponent per dimension, e.g. {"m": 1, "s": -2} for acceleration.
// big.Rat (not float64) is used because exponents must combine by exact addition/subtraction when
// units are multiplied or divided, and the oracle emits fractional exponents (e.g. "-1/2" for a
// square root) that a float would only approximate.
type Map map[Dimension]*big.Rat

// UnitError is one reported inconsistency: the statement root token, the specific token inside it
// whose units don't match, and a human-readable error classification from the oracle.
type UnitError struct {
	RootTokenID dump.ID
	TokenID     dump.ID
	ErrorType   string
}

// VariableUnits is one variable's inferred unit, by the oracle's own variable identifier (which
// may not coincide with a dump.Variable.ID if the oracle runs over a different IR - callers that
// need a dump.Variable must resolve VarName/VarID against the dump themselves).
type VariableUnits struct {
	VarID   string
	VarName string
	Units   Map
}

// Report is the decoded oracle document.
type Report struct {
	Errors     []UnitError
	Variables  []VariableUnits
	TokenUnits map[dump.ID]Map
}

type wireReport struct {
	Errors []struct {
		RootTokenID string `json:"root_token_id"`
		TokenID     string `json:"token_id"`
		ErrorType   string `json:"error_type"`
	} `json:"errors"`
	Variables []struct {
		VarID   string            `json:"var_id"`
		VarName string            `json:"var_name"`
		Units   map[string]string `json:"units"`
	} `json:"variables"`
	TokenUnits map[string]map[string]string `json:"token_units"`
}

// Load decodes a units report from path.
func Load(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformedDump, fmt.Errorf("open units report %q: %w", path, err))
	}
	defer f.Close()

	var w wireReport
	if err := json.NewDecoder(f).Decode(&w); err != nil {
		return nil, errs.Wrap(errs.KindMalformedDump, fmt.Errorf("decode units report %q: %w", path, err))
	}

	r := &Report{TokenUnits: make(map[dump.ID]Map, len(w.TokenUnits))}

	for _, e := range w.Errors {
		r.Errors = append(r.Errors, UnitError{
			RootTokenID: dump.ID(e.RootTokenID),
			TokenID:     dump.ID(e.TokenID),
			ErrorType:   e.ErrorType,
		})
	}

	for _, v := range w.Variables {
		m, err := parseMap(v.Units)
		if err != nil {
			return nil, errs.Wrap(errs.KindMalformedDump, fmt.Errorf("variable %q: %w", v.VarID, err))
		}
		r.Variables = append(r.Variables, VariableUnits{VarID: v.VarID, VarName: v.VarName, Units: m})
	}

	for tokenID, raw := range w.TokenUnits {
		m, err := parseMap(raw)
		if err != nil {
			return nil, errs.Wrap(errs.KindMalformedDump, fmt.Errorf("token %q: %w", tokenID, err))
		}
		r.TokenUnits[dump.ID(tokenID)] = m
	}

	return r, nil
}

func parseMap(raw map[string]string) (Map, error) {
	m := make(Map, len(raw))
	for dim, exp := range raw {
		rat := new(big.Rat)
		if _, ok := rat.SetString(exp); !ok {
			return nil, fmt.Errorf("dimension %q has malformed exponent %q", dim, exp)
		}
		m[Dimension(dim)] = rat
	}
	return m, nil
}
