// Package config provides configuration loading for the engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schedule is one recurring trigger defined in the engine config file.
type Schedule struct {
	Name string         `yaml:"name"`
	Cron string         `yaml:"cron"`
	Data map[string]any `yaml:"data"`
}

// EngineFile represents the structure of the cascade.yaml file.
type EngineFile struct {
	VaultPath string     `yaml:"vault_path"`
	AuditPath string     `yaml:"audit_path"`
	Schedules []Schedule `yaml:"schedules"`
}

// LoadEngineConfig loads engine configuration from a YAML file.
func LoadEngineConfig(path string) (EngineFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineFile{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file EngineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return EngineFile{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := ValidateEngineConfig(file); err != nil {
		return EngineFile{}, err
	}

	return file, nil
}

// ValidateEngineConfig checks the structural requirements of an engine
// config. Cron expression validity is checked when a schedule is registered.
func ValidateEngineConfig(file EngineFile) error {
	seen := make(map[string]bool, len(file.Schedules))

	for i, schedule := range file.Schedules {
		if schedule.Name == "" {
			return fmt.Errorf("schedule[%d]: name is required", i)
		}

		if schedule.Cron == "" {
			return fmt.Errorf("schedule[%d] (%s): cron is required", i, schedule.Name)
		}

		if seen[schedule.Name] {
			return fmt.Errorf("schedule[%d]: duplicate name %q", i, schedule.Name)
		}

		seen[schedule.Name] = true
	}

	return nil
}
