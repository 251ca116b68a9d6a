// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tlbc

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/tlbc/internal/sema"
)

// Config holds the knobs a project sets once and reuses across many
// Compile calls, typically loaded from a checked-in YAML file.
type Config struct {
	// FileName is reported as the Position.File for every diagnostic when
	// the caller does not pass one explicitly to Compile.
	FileName string `yaml:"fileName"`

	// WarningsAsErrors promotes every Warning produced during analysis
	// (types declared but never constructed, and explicit 32-bit tags that
	// differ from the derived one) to a hard failure.
	WarningsAsErrors bool `yaml:"warningsAsErrors"`

	// DiagnosticWidth is a terminal width for wrapping rendered diagnostics;
	// zero means auto-detect. It is loaded from YAML, but nothing in this
	// package reads it: Compile returns diagnostics as values and never
	// constructs an internal/diag.Renderer.
	DiagnosticWidth int `yaml:"diagnosticWidth"`

	// MaxConstructorsPerType caps how many constructors a single type may
	// declare before binding reports an OverflowError. Zero uses the
	// compiler's historical default of 64.
	MaxConstructorsPerType int `yaml:"maxConstructorsPerType"`

	// MaxFixpointIterations caps how many rounds the size/begins_with/
	// admissibility dataflow pass may take before failing closed with an
	// InternalError instead of looping forever over an unguarded recursive
	// schema. Zero uses the compiler's historical default of 256.
	MaxFixpointIterations int `yaml:"maxFixpointIterations"`

	// HashconsCapacity bounds the const-expression pool's entry count;
	// a schema with more distinct closed subexpressions than this overflows
	// with an OverflowError instead of growing the table unbounded. Zero
	// uses the compiler's historical default of 4096.
	HashconsCapacity int `yaml:"hashconsCapacity"`

	// MaxCellBits and MaxCellRefs bound how large a single constructor's
	// converged size may be before it is rejected as not fits_into_cell.
	// Zero uses the TVM cell's own limits of 1023 bits and 4 references.
	MaxCellBits int `yaml:"maxCellBits"`
	MaxCellRefs int `yaml:"maxCellRefs"`

	// TagMismatchIsError promotes a declared tag that disagrees with its
	// CRC32-derived value to a hard BindingError instead of a Warning.
	TagMismatchIsError bool `yaml:"tagMismatchIsError"`
}

// DefaultConfig returns the configuration Compile uses when none is given.
func DefaultConfig() Config {
	return Config{FileName: "<input>"}
}

// limits resolves cfg's zero-valued knobs against the compiler's historical
// defaults and returns the sema.Limits Compile threads through NewCompiler.
func (cfg Config) limits() sema.Limits {
	l := sema.DefaultLimits()
	if cfg.MaxConstructorsPerType > 0 {
		l.MaxConstructorsPerType = cfg.MaxConstructorsPerType
	}
	if cfg.MaxFixpointIterations > 0 {
		l.MaxFixpointIterations = cfg.MaxFixpointIterations
	}
	if cfg.HashconsCapacity > 0 {
		l.HashconsCapacity = cfg.HashconsCapacity
	}
	if cfg.MaxCellBits > 0 {
		l.MaxCellBits = cfg.MaxCellBits
	}
	if cfg.MaxCellRefs > 0 {
		l.MaxCellRefs = cfg.MaxCellRefs
	}
	l.TagMismatchIsError = cfg.TagMismatchIsError
	return l
}

// LoadConfig reads a YAML configuration document from r.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("tlbc: loading config: %w", err)
	}
	return cfg, nil
}
