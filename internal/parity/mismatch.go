package parity

import (
	"fmt"
)

// Kind classifies a Mismatch.
type Kind int

const (
	ImageRepo Kind = iota
	ImageTag
	MissingEnvKey
	MissingEnvName
	MissingSecretPath
)

var kindNames = map[Kind]string{
	ImageRepo:         "IMAGE_REPO",
	ImageTag:          "IMAGE_TAG",
	MissingEnvKey:     "MISSING_ENV_KEY",
	MissingEnvName:    "MISSING_ENV_NAME",
	MissingSecretPath: "MISSING_SECRET_PATH",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Mismatch is a single disagreement between a compose service and the values tree.
type Mismatch struct {
	File    string `json:"file" yaml:"file"`
	Service string `json:"service" yaml:"service"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	Detail  string `json:"detail" yaml:"detail"`
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("%s: service %q: %s: %s", m.File, m.Service, m.Kind, m.Detail)
}

// StructuralError reports a document that cannot be reconciled for a
// service: the service is missing, has no image, or an env block has the
// wrong shape.
type StructuralError struct {
	File    string
	Service string
	Reason  string
}

func (e *StructuralError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("%s: service %q: %s", e.File, e.Service, e.Reason)
}
