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

// Command tlbc-lint compiles a single .tlb schema file and prints its
// analyzed types to stdout, or any diagnostics to stderr. It exists to demonstrate
// the library API end to end; it is not meant as a full-featured CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bufbuild/tlbc"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tlbc-lint <schema.tlb>")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	sessionID := uuid.NewString()
	log.WithField("session", sessionID).Info("compiling schema")

	schema, err := tlbc.Compile(context.Background(), string(src),
		tlbc.WithFileName(path),
		tlbc.WithLogger(log),
	)
	if err != nil {
		var list *tlbc.ErrorList
		if errors.As(err, &list) {
			for _, e := range list.Errors {
				fmt.Fprintln(os.Stderr, e)
			}
		}
		return err
	}

	fmt.Printf("schema digest: %s\n", schema.Digest())
	for _, t := range schema.Types {
		fmt.Printf("%s (arity %d, dispatch %s): %d..%d bits, %d..%d refs\n",
			t.Name, t.Arity, t.Dispatch, t.Size.MinBits, t.Size.MaxBits, t.Size.MinRefs, t.Size.MaxRefs)
		for _, c := range t.Constructors {
			fmt.Printf("  %s#%x\n", c.Name, c.TagValue)
		}
	}
	return nil
}
