package converter

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/justmiles/compose-helm-parity/internal/document"
	"github.com/justmiles/compose-helm-parity/internal/dockercompose"
	"github.com/justmiles/compose-helm-parity/internal/envset"
	"github.com/justmiles/compose-helm-parity/internal/hclutil"
	"github.com/justmiles/compose-helm-parity/internal/imageref"
	"github.com/justmiles/compose-helm-parity/internal/parity"
)

// Keys that charts usually take from Helm secrets rather than envVars.
var secretEnvNames = envset.New(parity.DefaultSecretSentinel, "NVIDIA_API_KEY")

// ScaffoldRules generates a starting rules file for a compose file. Every
// service gets a rule rooted at a values key of the same name, which the
// author is expected to adjust to the chart's layout.
// This is the core logic, shared between WASM and native builds.
func ScaffoldRules(valuesFile, composeFile string, yamlInput []byte) (string, error) {
	doc, err := document.Load(composeFile, yamlInput)
	if err != nil {
		return "", err
	}

	services := dockercompose.Services(doc)
	if len(services) == 0 {
		return "", fmt.Errorf("no services found in Docker Compose file")
	}

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	hclFile := hclwrite.NewEmptyFile()
	rootBody := hclFile.Body()
	rootBody.SetAttributeValue("values", cty.StringVal(valuesFile))
	rootBody.AppendNewline()

	composeBody := rootBody.AppendNewBlock("compose", []string{composeFile}).Body()
	for i, name := range names {
		svc, _, err := dockercompose.LookupService(services, name)
		if err != nil {
			return "", err
		}
		if i > 0 {
			composeBody.AppendNewline()
		}
		appendService(composeBody, svc)
	}

	return string(hclwrite.Format(hclFile.Bytes())), nil
}

func appendService(body *hclwrite.Body, svc dockercompose.Service) {
	if image, ok := svc.Image(); ok {
		comment := "image: " + image
		if ref := imageref.Parse(image); !ref.TagKnown {
			comment += "\nthe tag is not pinned, so image_tag is never compared"
		}
		body.AppendUnstructuredTokens(hclutil.CreateCommentTokens(comment))
	} else {
		body.AppendUnstructuredTokens(hclutil.CreateCommentTokens("no image set; this rule fails until compose sets one"))
	}

	serviceBody := body.AppendNewBlock("service", []string{svc.Name}).Body()
	root := svc.Name
	serviceBody.SetAttributeValue("image_repository", hclutil.StringList([]string{root, "image", "repository"}))
	serviceBody.SetAttributeValue("image_tag", hclutil.StringList([]string{root, "image", "tag"}))

	names := envset.FromCompose(svc.Environment())
	if len(names) == 0 {
		return
	}

	serviceBody.SetAttributeValue("env", hclutil.StringList([]string{root, "envVars"}))
	serviceBody.SetAttributeValue("require_all_env_from_compose", cty.True)

	var ignored []string
	for _, name := range names.Sorted() {
		if secretEnvNames.Has(name) {
			ignored = append(ignored, name)
		}
	}
	if len(ignored) > 0 {
		serviceBody.SetAttributeValue("ignore_env_keys", hclutil.StringList(ignored))
	}
	if names.Has(parity.DefaultSecretSentinel) {
		serviceBody.SetAttributeValue("secret_key", hclutil.StringList([]string{root, "ngcAPIKey"}))
	}
}
