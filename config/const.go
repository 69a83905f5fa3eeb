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

// Package config hosts non-user-configurable parameters for development and testing purposes.
package config

// MaxConcurrentFunctions bounds the number of functions that pipeline.Run processes concurrently.
// Each function's pipeline is independent (no shared mutable state once the dump is decoded), so
// this is purely a resource cap, not a correctness requirement.
const MaxConcurrentFunctions = 8

// RepairSearchDepth bounds how many multiply/divide steps repair.Search will try when hunting for
// a combination of reaching variables that corrects a unit mismatch. Raising it can only ever find
// more (and longer) candidates, never change whether shallower ones are found.
const RepairSearchDepth = 5
