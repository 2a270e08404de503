package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"e2e_automation/domain/entities"
)

// environmentsFile is the YAML layout of ENVIRONMENTS_FILE:
//
//	environments:
//	  dev:
//	    url: https://dev.example.com
//	    username: qa@example.com
//	    password: secret
type environmentsFile struct {
	Environments map[string]entities.Environment `yaml:"environments"`
}

// LoadEnvironments reads named environments from a YAML file
func LoadEnvironments(path string) (map[string]entities.Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ENVIRONMENTS_FILE: failed to read %s: %w", path, err)
	}

	var file environmentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("ENVIRONMENTS_FILE: failed to parse %s: %w", path, err)
	}

	out := make(map[string]entities.Environment, len(file.Environments))
	for name, env := range file.Environments {
		env.Name = name
		out[name] = env
	}
	return out, nil
}
