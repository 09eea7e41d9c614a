package imageref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/justmiles/compose-helm-parity/internal/imageref"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  imageref.Reference
	}{
		{
			name:  "no tag",
			input: "nginx",
			want:  imageref.Reference{Repository: "nginx"},
		},
		{
			name:  "no tag with registry path",
			input: "nvcr.io/nvidia/blueprint/rag-server",
			want:  imageref.Reference{Repository: "nvcr.io/nvidia/blueprint/rag-server"},
		},
		{
			name:  "literal tag",
			input: "redis:7.2",
			want:  imageref.Reference{Repository: "redis", Tag: "7.2", TagKnown: true},
		},
		{
			name:  "literal tag with dashes",
			input: "mariadb:10.6.4-focal",
			want:  imageref.Reference{Repository: "mariadb", Tag: "10.6.4-focal", TagKnown: true},
		},
		{
			name:  "variable with default",
			input: "nginx:${TAG:-1.2.3}",
			want:  imageref.Reference{Repository: "nginx", Tag: "1.2.3", TagKnown: true},
		},
		{
			name:  "registry path with defaulted tag",
			input: "nvcr.io/nvidia/blueprint/rag-server:${TAG:-2.3.0}",
			want:  imageref.Reference{Repository: "nvcr.io/nvidia/blueprint/rag-server", Tag: "2.3.0", TagKnown: true},
		},
		{
			name:  "bare variable",
			input: "nginx:${TAG}",
			want:  imageref.Reference{Repository: "nginx"},
		},
		{
			name:  "empty default is not a default",
			input: "nginx:${TAG:-}",
			want:  imageref.Reference{Repository: "nginx"},
		},
		{
			name:  "empty tag",
			input: "nginx:",
			want:  imageref.Reference{Repository: "nginx", Tag: "", TagKnown: true},
		},
		{
			name:  "registry port is split naively",
			input: "localhost:5000/app:1.0",
			want:  imageref.Reference{Repository: "localhost", Tag: "5000/app:1.0", TagKnown: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, imageref.Parse(tt.input))
		})
	}
}

func TestParseDefaultForAnyVariable(t *testing.T) {
	for _, variable := range []string{"TAG", "RAG_TAG", "x", "IMAGE_VERSION_1"} {
		for _, def := range []string{"1", "latest", "v2.3.0-rc1", "sha-abc"} {
			ref := imageref.Parse("repo:${" + variable + ":-" + def + "}")
			assert.Equal(t, "repo", ref.Repository)
			assert.True(t, ref.TagKnown)
			assert.Equal(t, def, ref.Tag)
		}
	}
}

func TestReferenceString(t *testing.T) {
	assert.Equal(t, "nginx:1.2.3", imageref.Parse("nginx:${TAG:-1.2.3}").String())
	assert.Equal(t, "nginx", imageref.Parse("nginx:${TAG}").String())
}
