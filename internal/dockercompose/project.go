package dockercompose

import (
	"fmt"
	"path/filepath"

	"github.com/compose-spec/compose-go/loader"
	"github.com/compose-spec/compose-go/types"
)

// LoadProject loads a compose file with compose-go, validating it against the
// compose schema. Variables are interpolated from env; unset variables fall
// back to their ${VAR:-default} defaults.
func LoadProject(filename string, content []byte, env map[string]string) (*types.Project, error) {
	configDetails := types.ConfigDetails{
		WorkingDir: filepath.Dir(filename),
		ConfigFiles: []types.ConfigFile{
			{
				Filename: filename,
				Content:  content,
			},
		},
		Environment: env,
	}

	loadOption := func(options *loader.Options) {
		options.SkipNormalization = true
	}

	project, err := loader.Load(configDetails, loadOption)
	if err != nil {
		return nil, fmt.Errorf("invalid compose file %s: %w", filename, err)
	}
	return project, nil
}

// Lint reports whether content is a valid compose file.
func Lint(filename string, content []byte, env map[string]string) error {
	project, err := LoadProject(filename, content, env)
	if err != nil {
		return err
	}
	if len(project.Services) == 0 {
		return fmt.Errorf("no services found in %s", filename)
	}
	return nil
}
