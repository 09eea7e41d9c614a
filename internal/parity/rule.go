// Package parity reconciles Helm values against docker-compose files: image
// repository and tag, environment variable coverage and secret configuration,
// per service, following a static rule table.
package parity

import (
	"github.com/justmiles/compose-helm-parity/internal/document"
	"github.com/justmiles/compose-helm-parity/internal/identity"
)

// DefaultSecretSentinel is the compose env name that makes a secret key path mandatory.
const DefaultSecretSentinel = "NGC_API_KEY"

// Rule describes how one compose service maps onto the values tree.
type Rule struct {
	// Service is the compose service name.
	Service string

	ImageRepositoryPath document.Path
	ImageTagPath        document.Path

	// EnvPath locates the service's env block in values. The env checks
	// below only run when it is set.
	EnvPath document.Path

	// RequiredEnvKeys must be keys of a mapping-shaped env block.
	RequiredEnvKeys []string

	// RequiredEnvNames must be names in the env block, either mapping keys
	// or the names of {name, value} records.
	RequiredEnvNames []string

	// RequireAllEnvFromCompose demands every compose env name, minus
	// IgnoreEnvKeys, be present in the env block.
	RequireAllEnvFromCompose bool
	IgnoreEnvKeys            []string

	// SecretKeyPath must resolve to a non-null value whenever the compose env
	// names include SecretSentinel (DefaultSecretSentinel when empty).
	SecretKeyPath  document.Path
	SecretSentinel string
}

func (r Rule) sentinel() string {
	if r.SecretSentinel == "" {
		return DefaultSecretSentinel
	}
	return r.SecretSentinel
}

// RuleSet binds the rules of one compose file.
type RuleSet struct {
	ComposeFile string
	Rules       []Rule
}

// Table is the full configuration of one run: a values file, the compose
// files reconciled against it and the resources that must stay identical.
type Table struct {
	ValuesFile string
	RuleSets   []RuleSet
	Identities []identity.Pair
}
