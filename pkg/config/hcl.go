// Copyright 2025 walteh LLC
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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL.
// Jobs are labelled blocks and may read the environment through env.NAME.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	// Define HCL schema
	type hclJob struct {
		Name            string   `hcl:"name,label"`
		InDirectory     string   `hcl:"in_directory"`
		OutDirectory    string   `hcl:"out_directory"`
		RecordsFile     string   `hcl:"records_file"`
		Mode            string   `hcl:"mode,optional"`
		DeleteAfter     bool     `hcl:"delete_after,optional"`
		Ignore          []string `hcl:"ignore,optional"`
		RecordsBackend  string   `hcl:"records_backend,optional"`
		ContinueOnError bool     `hcl:"continue_on_error,optional"`
	}
	type hclConfig struct {
		Async bool     `hcl:"async,optional"`
		Jobs  []hclJob `hcl:"job,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{Async: hclCfg.Async}
	for _, j := range hclCfg.Jobs {
		cfg.Jobs = append(cfg.Jobs, Job{
			Name:            j.Name,
			InDirectory:     j.InDirectory,
			OutDirectory:    j.OutDirectory,
			RecordsFile:     j.RecordsFile,
			Mode:            j.Mode,
			DeleteAfter:     j.DeleteAfter,
			Ignore:          j.Ignore,
			RecordsBackend:  j.RecordsBackend,
			ContinueOnError: j.ContinueOnError,
		})
	}

	return cfg, nil
}

func envObject() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
