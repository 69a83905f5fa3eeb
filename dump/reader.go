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

package dump

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/s2"

	"github.com/squareslab/physcfg/errs"
)

// The upstream analyzer's dump format is a flat XML document: every token, scope, and variable is
// one self-contained element whose cross-references (operands, parents, scope membership, ...)
// are plain ID-string attributes. There is no nesting to walk - decoding is one encoding/xml pass
// into these wire structs, followed by one ID-resolution pass that turns string references into
// pointers (see resolve below). A richer XML library (a streaming tokenizer, a DOM with XPath) has
// nothing to offer here: the schema is flat and known in advance, so stdlib encoding/xml's
// struct-tag decoding is the natural fit, exactly like the upstream cppcheck dump reader it mirrors.
type wireDoc struct {
	XMLName xml.Name   `xml:"dumps"`
	Dumps   []wireDump `xml:"dump"`
}

type wireDump struct {
	Tokens    []wireToken    `xml:"tokenlist>token"`
	Scopes    []wireScope    `xml:"scopes>scope"`
	Variables []wireVariable `xml:"variables>var"`
}

type wireToken struct {
	ID           string `xml:"id,attr"`
	Str          string `xml:"str,attr"`
	Op1          string `xml:"op1,attr"`
	Op2          string `xml:"op2,attr"`
	Parent       string `xml:"parent,attr"`
	Prev         string `xml:"prev,attr"`
	Next         string `xml:"next,attr"`
	Line         int    `xml:"linenr,attr"`
	Scope        string `xml:"scope,attr"`
	VarID        string `xml:"varId,attr"`
	IsArithmetic bool   `xml:"isArithmeticalOp,attr"`
}

type wireScope struct {
	ID         string `xml:"id,attr"`
	Type       string `xml:"type,attr"`
	NestedIn   string `xml:"nestedIn,attr"`
	ClassStart string `xml:"classStart,attr"`
	ClassEnd   string `xml:"classEnd,attr"`
	ClassName  string `xml:"className,attr"`
	Params     string `xml:"params,attr"`
}

type wireVariable struct {
	ID        string `xml:"id,attr"`
	NameToken string `xml:"nameToken,attr"`
	Scope     string `xml:"scope,attr"`
}

// Load decodes a dump document from path. It performs structural decoding only - it does not
// validate the invariants in the dump package doc comment beyond what is needed to build the
// pointer graph (a dangling reference is an errs.KindMalformedDump error, since a dump that refers
// to a token/scope/variable ID that doesn't exist is malformed input, not an internal bug).
//
// A path ending in ".s2" is transparently decompressed (github.com/klauspost/compress/s2) before
// XML decoding - whole-translation-unit dumps can run into the hundreds of megabytes of XML, and
// s2 trades a small amount of CPU for a large reduction in the disk/network footprint of archived
// dumps without requiring callers to decompress them out-of-band first.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformedDump, fmt.Errorf("open dump %q: %w", path, err))
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".s2") {
		r = s2.NewReader(f)
	}

	var w wireDoc
	if err := xml.NewDecoder(r).Decode(&w); err != nil {
		return nil, errs.Wrap(errs.KindMalformedDump, fmt.Errorf("decode dump %q: %w", path, err))
	}

	doc := &Document{}
	for _, wd := range w.Dumps {
		cfg, err := resolve(wd)
		if err != nil {
			return nil, err
		}
		doc.Configurations = append(doc.Configurations, cfg)
	}
	return doc, nil
}

// resolve turns one wireDump's string cross-references into the pointer graph of Configuration.
func resolve(wd wireDump) (*Configuration, error) {
	tokens := make(map[string]*Token, len(wd.Tokens))
	for _, wt := range wd.Tokens {
		tokens[wt.ID] = &Token{
			ID:           ID(wt.ID),
			Str:          wt.Str,
			Line:         wt.Line,
			ScopeID:      ID(wt.Scope),
			IsArithmetic: wt.IsArithmetic,
		}
	}
	lookupToken := func(id string) (*Token, error) {
		if id == "" {
			return nil, nil
		}
		t, ok := tokens[id]
		if !ok {
			return nil, errs.New(errs.KindMalformedDump, "token reference %q does not resolve to any token", id)
		}
		return t, nil
	}

	for _, wt := range wd.Tokens {
		t := tokens[wt.ID]
		var err error
		if t.Op1, err = lookupToken(wt.Op1); err != nil {
			return nil, err
		}
		if t.Op2, err = lookupToken(wt.Op2); err != nil {
			return nil, err
		}
		if t.Parent, err = lookupToken(wt.Parent); err != nil {
			return nil, err
		}
		if t.Prev, err = lookupToken(wt.Prev); err != nil {
			return nil, err
		}
		if t.Next, err = lookupToken(wt.Next); err != nil {
			return nil, err
		}
	}

	variables := make(map[string]*Variable, len(wd.Variables))
	for _, wv := range wd.Variables {
		variables[wv.ID] = &Variable{ID: ID(wv.ID)}
	}

	scopes := make(map[string]*Scope, len(wd.Scopes))
	for _, ws := range wd.Scopes {
		scopes[ws.ID] = &Scope{ID: ID(ws.ID), Type: ws.Type, ParentID: ID(ws.NestedIn)}
	}
	for _, ws := range wd.Scopes {
		s := scopes[ws.ID]
		var err error
		if s.Start, err = lookupToken(ws.ClassStart); err != nil {
			return nil, err
		}
		if s.End, err = lookupToken(ws.ClassEnd); err != nil {
			return nil, err
		}
	}

	for _, wv := range wd.Variables {
		v := variables[wv.ID]
		nt, err := lookupToken(wv.NameToken)
		if err != nil {
			return nil, err
		}
		v.NameToken = nt
		if wv.Scope != "" {
			s, ok := scopes[wv.Scope]
			if !ok {
				return nil, errs.New(errs.KindMalformedDump, "variable %q refers to unknown scope %q", wv.ID, wv.Scope)
			}
			v.Scope = s
		}
	}

	for _, wt := range wd.Tokens {
		if wt.VarID == "" {
			continue
		}
		v, ok := variables[wt.VarID]
		if !ok {
			return nil, errs.New(errs.KindMalformedDump, "token %q refers to unknown variable %q", wt.ID, wt.VarID)
		}
		tokens[wt.ID].Variable = v
	}

	cfg := &Configuration{}
	for _, wt := range wd.Tokens {
		cfg.Tokens = append(cfg.Tokens, tokens[wt.ID])
	}
	for _, ws := range wd.Scopes {
		cfg.Scopes = append(cfg.Scopes, scopes[ws.ID])
	}
	for _, wv := range wd.Variables {
		cfg.Variables = append(cfg.Variables, variables[wv.ID])
	}

	for _, ws := range wd.Scopes {
		if ws.Type != ScopeFunction {
			continue
		}
		s := scopes[ws.ID]
		if s.Start == nil || s.End == nil {
			return nil, errs.New(errs.KindMalformedDump, "function scope %q missing start/end token", ws.ID)
		}
		params, err := resolveParams(ws.Params, variables)
		if err != nil {
			return nil, err
		}
		cfg.Functions = append(cfg.Functions, &Function{Name: ws.ClassName, Start: s.Start, End: s.End, Scope: s, Params: params})
	}

	return cfg, nil
}

// resolveParams turns a function scope's comma-separated "params" attribute (variable IDs, in
// declaration order) into the corresponding Variable pointers.
func resolveParams(raw string, variables map[string]*Variable) ([]*Variable, error) {
	if raw == "" {
		return nil, nil
	}
	var params []*Variable
	for _, id := range strings.Split(raw, ",") {
		v, ok := variables[id]
		if !ok {
			return nil, errs.New(errs.KindMalformedDump, "function params reference unknown variable %q", id)
		}
		params = append(params, v)
	}
	return params, nil
}
