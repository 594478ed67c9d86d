package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/fileutil"
)

const rolesFileHeader = `# Credit role table.
# fields: canonical display name -> credit field used in project credits
# variants: lower-case phrasing -> canonical display name
`

// LoadRoleTable loads the role table from the .studiodb directory. Without a
// roles file the built-in table is returned. A file with fields replaces the
// built-in fields; its variants are added to the lower-cased display names.
func LoadRoleTable(basePath string) (entities.RoleTable, error) {
	data, err := os.ReadFile(RolesFilePath(basePath))
	if os.IsNotExist(err) {
		return entities.DefaultRoleTable(), nil
	}
	if err != nil {
		return entities.RoleTable{}, fmt.Errorf("reading roles file: %w", err)
	}

	var file entities.RoleTable
	if err := yaml.Unmarshal(data, &file); err != nil {
		return entities.RoleTable{}, fmt.Errorf("parsing roles file: %w", err)
	}

	return buildRoleTable(file)
}

func buildRoleTable(file entities.RoleTable) (entities.RoleTable, error) {
	if len(file.Fields) == 0 {
		base := entities.DefaultRoleTable()
		file.Fields = base.Fields
		if len(file.Variants) == 0 {
			return base, nil
		}
		for variant, display := range base.Variants {
			if _, ok := file.Variants[variant]; !ok {
				file.Variants[variant] = display
			}
		}
	}

	table := entities.RoleTable{
		Fields:   make(map[string]string, len(file.Fields)),
		Variants: make(map[string]string, len(file.Fields)+len(file.Variants)),
	}
	for display, field := range file.Fields {
		display = strings.TrimSpace(display)
		field = strings.TrimSpace(field)
		if display == "" || field == "" {
			return entities.RoleTable{}, fmt.Errorf("roles file: empty display name or field in fields")
		}
		if field == entities.AdditionalRolesKey {
			return entities.RoleTable{}, fmt.Errorf("roles file: %q is reserved", entities.AdditionalRolesKey)
		}
		table.Fields[display] = field
		table.Variants[strings.ToLower(display)] = display
	}

	for _, variant := range sortedKeys(file.Variants) {
		display := strings.TrimSpace(file.Variants[variant])
		if _, ok := table.Fields[display]; !ok {
			return entities.RoleTable{}, fmt.Errorf("roles file: variant %q refers to unknown role %q", variant, display)
		}
		table.Variants[strings.ToLower(strings.TrimSpace(variant))] = display
	}

	return table, nil
}

// WriteRoleTable writes the role table to the roles file.
func WriteRoleTable(basePath string, table entities.RoleTable) error {
	data, err := yaml.Marshal(table)
	if err != nil {
		return fmt.Errorf("marshaling role table: %w", err)
	}

	content := append([]byte(rolesFileHeader), data...)
	if err := fileutil.WriteFileAtomic(RolesFilePath(basePath), content, 0o644); err != nil {
		return fmt.Errorf("writing roles file: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
