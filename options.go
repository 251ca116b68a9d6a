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

import "github.com/sirupsen/logrus"

// compileOptions collects the state CompileOption values configure, kept
// unexported so adding a new option never breaks callers passing options
// positionally.
type compileOptions struct {
	fileName string
	log      *logrus.Logger
	config   Config
}

// CompileOption configures a single Compile call.
type CompileOption func(*compileOptions)

// WithFileName sets the name reported in diagnostic positions.
func WithFileName(name string) CompileOption {
	return func(o *compileOptions) { o.fileName = name }
}

// WithLogger routes the compiler's structured debug logging (type
// declarations, derived tags, dispatch classification) to log. Without it
// the compiler creates its own logger at WarnLevel, so none of these
// debug entries are printed.
func WithLogger(log *logrus.Logger) CompileOption {
	return func(o *compileOptions) { o.log = log }
}

// WithConfig applies cfg's settings, such as promoting warnings to errors.
func WithConfig(cfg Config) CompileOption {
	return func(o *compileOptions) {
		o.config = cfg
		if cfg.FileName != "" {
			o.fileName = cfg.FileName
		}
	}
}

func newCompileOptions() *compileOptions {
	return &compileOptions{fileName: "<input>", config: DefaultConfig()}
}
