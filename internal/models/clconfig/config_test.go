package clconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andskur/argon2-hashing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExampleConfigRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "littlesite.yaml")

	_, err := CreateExampleConfig(filename)
	require.NoError(t, err)

	conf, err := LoadConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", conf.Database.Db)
	assert.Equal(t, "./littlesite.db", conf.Database.Path)
	assert.Equal(t, "admin", conf.User.Login)
	assert.Equal(t, "Littlesite", conf.Site.Name)
	assert.Len(t, conf.Site.Menu, 3)

	// Le catalogue de services est complet
	require.Len(t, conf.Site.Services, 4)
	assert.Equal(t, uint(1), conf.Site.Services[0].Id)
	assert.Equal(t, "Web Development", conf.Site.Services[0].Title)
	assert.Len(t, conf.Site.Services[0].Features, 3)
	assert.Equal(t, "AI Integration", conf.Site.Services[3].Title)
}

func TestLoadConfigDefaultsDb(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("site:\n  sitename: Test\n"), 0644))

	conf, err := LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", conf.Database.Db)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/conf.yaml")
	assert.Error(t, err)
}

func TestLoadConfigBadYaml(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("{{not yaml"), 0644))

	_, err := LoadConfig(filename)
	assert.Error(t, err)
}

func TestLoadAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "config valide",
			mutate: func(c *Config) {},
		},
		{
			name: "sqlite sans path",
			mutate: func(c *Config) {
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name: "mysql sans dsn",
			mutate: func(c *Config) {
				c.Database.Db = "mysql"
			},
			wantErr: "database.dsn",
		},
		{
			name: "mot de passe trop court",
			mutate: func(c *Config) {
				c.User.Pass = "court"
			},
			wantErr: "8 caractères",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "conf.yaml")
			_, err := CreateExampleConfig(filename)
			require.NoError(t, err)

			conf, err := LoadConfig(filename)
			require.NoError(t, err)
			conf.User.Pass = "" // neutraliser le pass exemple
			tt.mutate(conf)
			require.NoError(t, WriteConfigYaml(filename, conf))

			_, err = LoadAndValidate(filename)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadAndValidateHashesPassword(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "conf.yaml")
	_, err := CreateExampleConfig(filename)
	require.NoError(t, err)

	conf, err := LoadAndValidate(filename)
	require.NoError(t, err)

	// Le pass en clair est remplacé par un hash argon2
	assert.Empty(t, conf.User.Pass)
	require.NotEmpty(t, conf.User.Hash)
	assert.NoError(t, argon2.CompareHashAndPassword([]byte(conf.User.Hash), []byte("admin1234")))

	// Et le fichier réécrit ne contient plus le mot de passe
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "admin1234")
}

func TestLoadAndValidateListenDefaults(t *testing.T) {
	tests := []struct {
		name   string
		listen string
		want   string
	}{
		{name: "vide", listen: "", want: "localhost:8080"},
		{name: "port seul", listen: ":9000", want: "localhost:9000"},
		{name: "adresse complète", listen: "0.0.0.0:8080", want: "0.0.0.0:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "conf.yaml")
			_, err := CreateExampleConfig(filename)
			require.NoError(t, err)

			conf, err := LoadConfig(filename)
			require.NoError(t, err)
			conf.User.Pass = ""
			conf.Listen.Website = tt.listen
			require.NoError(t, WriteConfigYaml(filename, conf))

			validated, err := LoadAndValidate(filename)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(validated.Listen.Website, tt.want))
		})
	}
}
