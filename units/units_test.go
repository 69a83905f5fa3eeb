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

package units

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// ratComparer treats two *big.Rat as equal iff they denote the same rational value, regardless of
// internal representation - cmp.Diff would otherwise refuse to compare big.Rat's unexported fields.
var ratComparer = cmp.Comparer(func(a, b *big.Rat) bool { return a.Cmp(b) == 0 })

// TestLoadPreservesExactRationalExponents is property 11: a unit exponent round-trips through the
// JSON report exactly, including a value like 1/3 that has no exact float64 representation.
func TestLoadPreservesExactRationalExponents(t *testing.T) {
	t.Parallel()

	const doc = `{
		"errors": [
			{"root_token_id": "r1", "token_id": "t1", "error_type": "mismatch"}
		],
		"variables": [
			{"var_id": "v1", "var_name": "rate", "units": {"s": "-1", "m": "1/3"}}
		],
		"token_units": {
			"t1": {"kg": "2"}
		}
	}`

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	report, err := Load(path)
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	require.Equal(t, UnitError{RootTokenID: "r1", TokenID: "t1", ErrorType: "mismatch"}, report.Errors[0])

	require.Len(t, report.Variables, 1)
	rate := report.Variables[0]
	require.Equal(t, "rate", rate.VarName)

	wantRateUnits := Map{"s": big.NewRat(-1, 1), "m": big.NewRat(1, 3)}
	if diff := cmp.Diff(wantRateUnits, rate.Units, ratComparer); diff != "" {
		t.Errorf("rate units mismatch, 1/3 must survive exactly rather than as a rounded float (-want +got):\n%s", diff)
	}

	wantTokenUnits := map[Dimension]*big.Rat{"kg": big.NewRat(2, 1)}
	if diff := cmp.Diff(wantTokenUnits, map[Dimension]*big.Rat(report.TokenUnits["t1"]), ratComparer); diff != "" {
		t.Errorf("token units mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsMalformedExponent(t *testing.T) {
	t.Parallel()

	const doc = `{"variables": [{"var_id": "v1", "var_name": "x", "units": {"m": "not-a-number"}}]}`
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
