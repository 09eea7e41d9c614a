package dockercompose

import (
	"testing"

	"github.com/compose-spec/compose-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProject(t *testing.T) {
	input := `
services:
  db:
    # this is a test comment
    image: mariadb:${MARIADB_TAG:-10.6.4-focal}
    command: '--default-authentication-plugin=mysql_native_password'
    volumes:
      - db_data:/var/lib/mysql
    restart: always
    environment:
      - MYSQL_ROOT_PASSWORD=somewordpress
      - MYSQL_DATABASE=wordpress
  wordpress:
    image: wordpress:${WORDPRESS_TAG}
    ports:
      - 80:80
    environment:
      WORDPRESS_DB_HOST: db
volumes:
  db_data:
`

	t.Run("defaults applied when unset", func(t *testing.T) {
		project, err := LoadProject("deploy/compose/docker-compose.yaml", []byte(input), nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"db", "wordpress"}, project.ServiceNames())

		db, err := project.GetService("db")
		require.NoError(t, err)
		assert.Equal(t, "mariadb:10.6.4-focal", db.Image)
		assert.Equal(t, types.MappingWithEquals{
			"MYSQL_ROOT_PASSWORD": stringptr("somewordpress"),
			"MYSQL_DATABASE":      stringptr("wordpress"),
		}, db.Environment)
	})

	t.Run("environment overrides", func(t *testing.T) {
		project, err := LoadProject("docker-compose.yaml", []byte(input), map[string]string{"WORDPRESS_TAG": "6.4"})
		require.NoError(t, err)
		wp, err := project.GetService("wordpress")
		require.NoError(t, err)
		assert.Equal(t, "wordpress:6.4", wp.Image)
	})
}

func TestLint(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		errContains string
	}{
		{
			name: "valid",
			input: `
services:
  redis:
    image: "redis:alpine"
`,
		},
		{
			name:    "no services",
			input:   `version: "3.9"`,
			wantErr: true,
		},
		{
			name: "unknown service property",
			input: `
services:
  redis:
    image: redis
    imgae: typo
`,
			wantErr:     true,
			errContains: "invalid compose file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Lint("docker-compose.yaml", []byte(tt.input), nil)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func stringptr(s string) *string {
	return &s
}
