package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/fileutil"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# studiodb configuration

studio:
  name: Posta Vermaas
  placeholder_image: /images/people/placeholder.jpg

store:
  backend: jsonfile # or sqlite
  data_dir: .studiodb/data
  sqlite_path: .studiodb/studio.db
  # STUDIODB_DATA_DIR and STUDIODB_STORE_BACKEND override these

backup:
  dir: .studiodb/backups

logging:
  level: info # debug, info, warn, error (or STUDIODB_LOG_LEVEL)
  format: console # or json

server:
  bind: 127.0.0.1:8080
`

// WriteDefault creates the .studiodb directory and writes a default config
// file and role table.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := fileutil.WriteFileAtomic(configFile, []byte(DefaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if _, err := os.Stat(RolesFilePath(basePath)); err == nil {
		return nil
	}
	return WriteRoleTable(basePath, entities.DefaultRoleTable())
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := fileutil.WriteFileAtomic(ConfigFilePath(basePath), data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
