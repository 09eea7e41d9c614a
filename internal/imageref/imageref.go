// Package imageref splits compose image strings into repository and tag.
package imageref

import (
	"regexp"
	"strings"
)

// Reference is a parsed image string. TagKnown is false when the string has no
// tag or the tag is a variable reference without a default.
type Reference struct {
	Repository string
	Tag        string
	TagKnown   bool
}

// String reassembles the reference; unknown tags are omitted.
func (r Reference) String() string {
	if !r.TagKnown {
		return r.Repository
	}
	return r.Repository + ":" + r.Tag
}

var defaultedVariable = regexp.MustCompile(`^\$\{[^:}]+:-([^}]+)\}$`)

// Parse splits image at its first colon. A tag of the form ${VAR:-default}
// resolves to default and a bare ${VAR} leaves the tag unknown.
//
// A registry host with a port ("host:5000/repo:tag") is split at the port
// colon, yielding repository "host". Callers comparing such images must
// account for that.
func Parse(image string) Reference {
	repo, tagPart, found := strings.Cut(image, ":")
	if !found {
		return Reference{Repository: image}
	}
	if m := defaultedVariable.FindStringSubmatch(tagPart); m != nil {
		return Reference{Repository: repo, Tag: m[1], TagKnown: true}
	}
	if strings.HasPrefix(tagPart, "${") && strings.HasSuffix(tagPart, "}") {
		return Reference{Repository: repo}
	}
	return Reference{Repository: repo, Tag: tagPart, TagKnown: true}
}
