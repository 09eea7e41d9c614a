package hclutil

import (
	"testing"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/stretchr/testify/assert"
	"github.com/zclconf/go-cty/cty"
)

func TestCreateCommentTokens(t *testing.T) {
	f := hclwrite.NewEmptyFile()
	f.Body().AppendUnstructuredTokens(CreateCommentTokens("image: nginx\n\nsecond line"))
	f.Body().SetAttributeValue("a", cty.StringVal("b"))

	assert.Equal(t, "# image: nginx\n#\n# second line\na = \"b\"\n", string(f.Bytes()))
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want cty.Value
	}{
		{name: "nil", in: nil, want: cty.ListValEmpty(cty.String)},
		{name: "values", in: []string{"a", "b"}, want: cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StringList(tt.in)
			assert.True(t, got.RawEquals(tt.want), "got %#v", got)
		})
	}
}
