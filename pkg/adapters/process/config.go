package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FunctionConfig declares an external command callable by name from the
// executeFunction action.
type FunctionConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of functions.yaml.
type ConfigFile struct {
	Functions []FunctionConfig `yaml:"functions" json:"functions"`
}

// LoadFunctions reads a YAML or JSON functions file. A missing file yields
// an empty set.
func LoadFunctions(path string) (map[string]FunctionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]FunctionConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read functions config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	fns := make(map[string]FunctionConfig, len(cfg.Functions))
	for _, fn := range cfg.Functions {
		if fn.Name == "" || fn.Command == "" {
			continue
		}
		fns[fn.Name] = fn
	}
	return fns, nil
}
