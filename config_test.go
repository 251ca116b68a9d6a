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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasInputFileName(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "<input>", cfg.FileName)
	require.False(t, cfg.WarningsAsErrors)
}

func TestLoadConfigParsesYAML(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
fileName: schema.tlb
warningsAsErrors: true
diagnosticWidth: 100
`))
	require.NoError(t, err)
	require.Equal(t, "schema.tlb", cfg.FileName)
	require.True(t, cfg.WarningsAsErrors)
	require.Equal(t, 100, cfg.DiagnosticWidth)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	_, err := LoadConfig(strings.NewReader(`notAField: true`))
	require.Error(t, err)
}

func TestLoadConfigDefaultsOnEmptyDocument(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(``))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}
