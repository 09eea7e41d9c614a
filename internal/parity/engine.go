package parity

import (
	"fmt"
	"strings"

	"github.com/justmiles/compose-helm-parity/internal/dockercompose"
	"github.com/justmiles/compose-helm-parity/internal/document"
	"github.com/justmiles/compose-helm-parity/internal/envset"
	"github.com/justmiles/compose-helm-parity/internal/imageref"
)

// CheckService applies rule to the compose service it names. Every mismatch
// found is returned; a *StructuralError stops the remaining checks for the
// service and is returned alongside the mismatches found before it.
func CheckService(values document.Tree, services map[string]any, file string, rule Rule) ([]Mismatch, error) {
	svc, found, err := dockercompose.LookupService(services, rule.Service)
	if err != nil {
		return nil, &StructuralError{File: file, Service: rule.Service, Reason: err.Error()}
	}
	if !found {
		return nil, &StructuralError{File: file, Service: rule.Service, Reason: "service not found"}
	}

	c := serviceCheck{values: values, file: file, rule: rule, svc: svc}
	if err := c.image(); err != nil {
		return c.mismatches, err
	}
	if rule.EnvPath != nil {
		if err := c.env(); err != nil {
			return c.mismatches, err
		}
	}
	if rule.SecretKeyPath != nil {
		c.secret()
	}
	return c.mismatches, nil
}

type serviceCheck struct {
	values     document.Tree
	file       string
	rule       Rule
	svc        dockercompose.Service
	mismatches []Mismatch
}

func (c *serviceCheck) add(kind Kind, format string, args ...any) {
	c.mismatches = append(c.mismatches, Mismatch{
		File:    c.file,
		Service: c.rule.Service,
		Kind:    kind,
		Detail:  fmt.Sprintf(format, args...),
	})
}

func (c *serviceCheck) structural(format string, args ...any) error {
	return &StructuralError{File: c.file, Service: c.rule.Service, Reason: fmt.Sprintf(format, args...)}
}

func (c *serviceCheck) image() error {
	image, ok := c.svc.Image()
	if !ok {
		return c.structural("compose image must be set")
	}
	ref := imageref.Parse(image)

	if got, ok := c.valueString(c.rule.ImageRepositoryPath); !ok || got != ref.Repository {
		c.add(ImageRepo, "repository mismatch: %s=%s != '%s' (compose image %q)",
			c.rule.ImageRepositoryPath, c.render(c.rule.ImageRepositoryPath), ref.Repository, image)
	}
	if !ref.TagKnown {
		return nil
	}
	if got, ok := c.valueString(c.rule.ImageTagPath); !ok || got != ref.Tag {
		c.add(ImageTag, "tag mismatch: %s=%s != '%s' (compose image %q)",
			c.rule.ImageTagPath, c.render(c.rule.ImageTagPath), ref.Tag, image)
	}
	return nil
}

func (c *serviceCheck) env() error {
	path := c.rule.EnvPath
	valuesEnv, _ := document.Resolve(c.values, path)

	if len(c.rule.RequiredEnvKeys) > 0 {
		keys, ok := document.Mapping(valuesEnv)
		if !ok {
			return c.structural("expected a mapping at values path %s, found %s", path, c.render(path))
		}
		for _, key := range c.rule.RequiredEnvKeys {
			if _, ok := keys[key]; !ok {
				c.add(MissingEnvKey, "missing env key '%s' in values at %s", key, path)
			}
		}
	}

	if len(c.rule.RequiredEnvNames) > 0 {
		names := envset.FromValues(valuesEnv)
		for _, name := range c.rule.RequiredEnvNames {
			if !names.Has(name) {
				c.add(MissingEnvName, "missing env name '%s' in values at %s", name, path)
			}
		}
	}

	if c.rule.RequireAllEnvFromCompose {
		composeNames := envset.FromCompose(c.svc.Environment()).Minus(envset.New(c.rule.IgnoreEnvKeys...))
		missing := composeNames.Minus(envset.FromValues(valuesEnv))
		if len(missing) > 0 {
			c.add(MissingEnvKey, "missing env keys from compose in values at %s: [%s]",
				path, strings.Join(missing.Sorted(), ", "))
		}
	}
	return nil
}

func (c *serviceCheck) secret() {
	sentinel := c.rule.sentinel()
	if !envset.FromCompose(c.svc.Environment()).Has(sentinel) {
		return
	}
	if v, ok := document.Resolve(c.values, c.rule.SecretKeyPath); !ok || v == nil {
		c.add(MissingSecretPath, "compose sets %s but values has no key at %s (found %s)",
			sentinel, c.rule.SecretKeyPath, c.render(c.rule.SecretKeyPath))
	}
}

// valueString resolves path and reports whether it holds a string.
func (c *serviceCheck) valueString(path document.Path) (string, bool) {
	v, ok := document.Resolve(c.values, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// render formats the value at path for a message.
func (c *serviceCheck) render(path document.Path) string {
	v, ok := document.Resolve(c.values, path)
	if !ok {
		return "<absent>"
	}
	if s, isString := v.(string); isString {
		return "'" + s + "'"
	}
	return describe(v)
}

func describe(v any) string {
	switch typed := v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "a mapping"
	case []any:
		return "a sequence"
	default:
		return fmt.Sprintf("%v (%T, not a string)", typed, typed)
	}
}
