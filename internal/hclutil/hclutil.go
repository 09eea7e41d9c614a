package hclutil

import (
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// CreateCommentTokens is a helper to create HCL comment tokens.
// Includes a newline after each comment line.
func CreateCommentTokens(commentText string) hclwrite.Tokens {
	var tokens hclwrite.Tokens
	for _, line := range strings.Split(commentText, "\n") {
		tokens = append(tokens,
			&hclwrite.Token{
				Type:  hclsyntax.TokenComment,
				Bytes: []byte(strings.TrimRight("# "+line, " ")),
			},
			&hclwrite.Token{
				Type:  hclsyntax.TokenNewline,
				Bytes: []byte("\n"),
			},
		)
	}
	return tokens
}

// StringList converts values to an HCL list of strings. An empty input
// yields an empty list rather than a null value.
func StringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(values))
	for i, s := range values {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
