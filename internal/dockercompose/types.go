// Package dockercompose reads the parts of a docker-compose file that the
// parity checks compare, and validates whole files with compose-go.
package dockercompose

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/justmiles/compose-helm-parity/internal/document"
)

// Service is a single entry of a compose document's services mapping.
type Service struct {
	Name string
	node map[string]any
}

// Services returns the services mapping of a compose document. A document
// without one yields an empty mapping.
func Services(doc document.Tree) map[string]any {
	services, ok := document.Mapping(doc["services"])
	if !ok {
		return map[string]any{}
	}
	return services
}

// LookupService returns the named service. ok is false when the service is
// absent; an error is returned when it is present but not a mapping.
func LookupService(services map[string]any, name string) (svc Service, ok bool, err error) {
	raw, found := services[name]
	if !found {
		return Service{}, false, nil
	}
	node, isMap := document.Mapping(raw)
	if !isMap {
		return Service{}, true, fmt.Errorf("service %q is %T, expected a mapping", name, raw)
	}
	return Service{Name: name, node: node}, true, nil
}

// Image returns the service's image string; ok is false when it is unset or empty.
func (s Service) Image() (string, bool) {
	raw, found := s.node["image"]
	if !found || raw == nil {
		return "", false
	}
	var image string
	switch v := raw.(type) {
	case string:
		image = v
	case float64:
		image = formatFloat(v)
	default:
		// Unquoted numeric images are still images.
		image = fmt.Sprint(raw)
	}
	return image, image != ""
}

// formatFloat keeps the decimal point of an unquoted float scalar, so
// "image: 1.0" reads as "1.0" rather than "1".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}

// Environment returns the raw environment node: a mapping, a list of
// KEY=VALUE strings, or nil.
func (s Service) Environment() any {
	return s.node["environment"]
}
