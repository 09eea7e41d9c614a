package parity

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/justmiles/compose-helm-parity/internal/document"
	"github.com/justmiles/compose-helm-parity/internal/identity"
)

// hclRulesFile is the on-disk form of a Table:
//
//	values = "deploy/helm/chart/values.yaml"
//
//	compose "deploy/compose/app.yaml" {
//	  service "app" {
//	    image_repository = ["image", "repository"]
//	    image_tag        = ["image", "tag"]
//	    env              = ["envVars"]
//	  }
//	}
//
//	identity "prompt.yaml" {
//	  source = "src/prompt.yaml"
//	  copy   = "deploy/helm/chart/files/prompt.yaml"
//	}
type hclRulesFile struct {
	Values     string         `hcl:"values"`
	Compose    []*hclCompose  `hcl:"compose,block"`
	Identities []*hclIdentity `hcl:"identity,block"`
}

type hclCompose struct {
	File     string        `hcl:"file,label"`
	Services []*hclService `hcl:"service,block"`
}

type hclService struct {
	Name                     string   `hcl:"name,label"`
	ImageRepository          []string `hcl:"image_repository"`
	ImageTag                 []string `hcl:"image_tag"`
	Env                      []string `hcl:"env,optional"`
	RequiredEnvKeys          []string `hcl:"required_env_keys,optional"`
	RequiredEnvNames         []string `hcl:"required_env_names,optional"`
	RequireAllEnvFromCompose bool     `hcl:"require_all_env_from_compose,optional"`
	IgnoreEnvKeys            []string `hcl:"ignore_env_keys,optional"`
	SecretKey                []string `hcl:"secret_key,optional"`
	SecretSentinel           string   `hcl:"secret_sentinel,optional"`
}

type hclIdentity struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
	Copy   string `hcl:"copy"`
}

// LoadRules decodes a Table from HCL source.
func LoadRules(filename string, src []byte) (*Table, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", filename, diags)
	}

	var raw hclRulesFile
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode rules file %s: %w", filename, diags)
	}

	table := &Table{ValuesFile: raw.Values}
	for _, c := range raw.Compose {
		set := RuleSet{ComposeFile: c.File}
		for _, s := range c.Services {
			if len(s.ImageRepository) == 0 || len(s.ImageTag) == 0 {
				return nil, fmt.Errorf("%s: service %q: image_repository and image_tag must not be empty", filename, s.Name)
			}
			if len(s.Env) == 0 && (len(s.RequiredEnvKeys) > 0 || len(s.RequiredEnvNames) > 0 || s.RequireAllEnvFromCompose) {
				return nil, fmt.Errorf("%s: service %q: env checks need an env path", filename, s.Name)
			}
			set.Rules = append(set.Rules, Rule{
				Service:                  s.Name,
				ImageRepositoryPath:      document.Path(s.ImageRepository),
				ImageTagPath:             document.Path(s.ImageTag),
				EnvPath:                  pathOrNil(s.Env),
				RequiredEnvKeys:          s.RequiredEnvKeys,
				RequiredEnvNames:         s.RequiredEnvNames,
				RequireAllEnvFromCompose: s.RequireAllEnvFromCompose,
				IgnoreEnvKeys:            s.IgnoreEnvKeys,
				SecretKeyPath:            pathOrNil(s.SecretKey),
				SecretSentinel:           s.SecretSentinel,
			})
		}
		table.RuleSets = append(table.RuleSets, set)
	}
	for _, id := range raw.Identities {
		table.Identities = append(table.Identities, identity.Pair{Name: id.Name, Source: id.Source, Copy: id.Copy})
	}
	return table, nil
}

// LoadRulesFile reads and decodes the rules file at path.
func LoadRulesFile(path string) (*Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}
	return LoadRules(path, src)
}

func pathOrNil(p []string) document.Path {
	if len(p) == 0 {
		return nil
	}
	return document.Path(p)
}
