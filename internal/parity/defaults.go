package parity

import (
	"github.com/justmiles/compose-helm-parity/internal/document"
	"github.com/justmiles/compose-helm-parity/internal/identity"
)

const (
	ragValuesFile       = "deploy/helm/nvidia-blueprint-rag/values.yaml"
	ragComposeServer    = "deploy/compose/docker-compose-rag-server.yaml"
	ragComposeIngestor  = "deploy/compose/docker-compose-ingestor-server.yaml"
	ragComposeNIMs      = "deploy/compose/nims.yaml"
	ragPromptSource     = "src/nvidia_rag/rag_server/prompt.yaml"
	ragPromptHelmCopy   = "deploy/helm/nvidia-blueprint-rag/files/prompt.yaml"
	embeddingValuesRoot = "nvidia-nim-llama-32-nv-embedqa-1b-v2"
	rankingValuesRoot   = "nvidia-nim-llama-32-nv-rerankqa-1b-v2"
)

// API keys are provided to the chart through Helm secrets, not envVars.
var apiKeyEnv = []string{"NGC_API_KEY", "NVIDIA_API_KEY"}

// DefaultTable is the rule table of the RAG blueprint repository, with paths
// relative to the repository root.
func DefaultTable() *Table {
	return &Table{
		ValuesFile: ragValuesFile,
		RuleSets: []RuleSet{
			{
				ComposeFile: ragComposeServer,
				Rules: []Rule{
					{
						Service:                  "rag-server",
						ImageRepositoryPath:      document.Path{"image", "repository"},
						ImageTagPath:             document.Path{"image", "tag"},
						EnvPath:                  document.Path{"envVars"},
						RequireAllEnvFromCompose: true,
						IgnoreEnvKeys:            apiKeyEnv,
					},
					{
						Service:             "rag-frontend",
						ImageRepositoryPath: document.Path{"frontend", "image", "repository"},
						ImageTagPath:        document.Path{"frontend", "image", "tag"},
						EnvPath:             document.Path{"frontend", "envVars"},
						RequiredEnvNames:    []string{"VITE_API_CHAT_URL", "VITE_API_VDB_URL"},
					},
				},
			},
			{
				ComposeFile: ragComposeIngestor,
				Rules: []Rule{
					{
						Service:                  "ingestor-server",
						ImageRepositoryPath:      document.Path{"ingestor-server", "image", "repository"},
						ImageTagPath:             document.Path{"ingestor-server", "image", "tag"},
						EnvPath:                  document.Path{"ingestor-server", "envVars"},
						RequireAllEnvFromCompose: true,
						IgnoreEnvKeys:            apiKeyEnv,
					},
				},
			},
			{
				ComposeFile: ragComposeNIMs,
				Rules: []Rule{
					nimRule("nim-llm", "nim-llm", document.Path{"nim-llm", "model", "ngcAPIKey"}),
					nimRule("nemoretriever-embedding-ms", embeddingValuesRoot, document.Path{embeddingValuesRoot, "nim", "ngcAPIKey"}),
					nimRule("nemoretriever-ranking-ms", rankingValuesRoot, document.Path{rankingValuesRoot, "nim", "ngcAPIKey"}),
					nimRule("vlm-ms", "nim-vlm", document.Path{"nim-vlm", "nim", "ngcAPIKey"}),
				},
			},
		},
		Identities: []identity.Pair{
			{Name: "prompt.yaml", Source: ragPromptSource, Copy: ragPromptHelmCopy},
		},
	}
}

// nimRule checks image parity and, when compose passes NGC_API_KEY, that the
// subchart exposes a key for it.
func nimRule(service, valuesRoot string, secretPath document.Path) Rule {
	return Rule{
		Service:             service,
		ImageRepositoryPath: document.Path{valuesRoot, "image", "repository"},
		ImageTagPath:        document.Path{valuesRoot, "image", "tag"},
		SecretKeyPath:       secretPath,
	}
}
