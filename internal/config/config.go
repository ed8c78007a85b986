// ABOUTME: Settings loading with global + project config merge
// ABOUTME: YAML configuration via gopkg.in/yaml.v3; project values override global ones

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds the merged configuration.
type Settings struct {
	Overwrite      *bool           `yaml:"overwrite,omitempty"`
	HideCursor     *bool           `yaml:"hide_cursor,omitempty"`
	LogLevel       string          `yaml:"log_level,omitempty"`
	Postconditions []Postcondition `yaml:"postconditions,omitempty"`
}

// Postcondition describes a file check run by `keyblock check`. With
// Contains empty it only requires File to exist.
type Postcondition struct {
	Name     string `yaml:"name"`
	File     string `yaml:"file"`
	Contains string `yaml:"contains,omitempty"`
}

// OverwriteEnabled reports the overwrite setting, defaulting to true.
func (s *Settings) OverwriteEnabled() bool {
	return s.Overwrite == nil || *s.Overwrite
}

// CursorHidden reports the hide_cursor setting, defaulting to true.
func (s *Settings) CursorHidden() bool {
	return s.HideCursor == nil || *s.HideCursor
}

// Load reads and merges global and project-local settings.
// Project settings override global settings.
func Load(projectRoot string) (*Settings, error) {
	return LoadFiles(GlobalConfigFile(), ProjectConfigFile(projectRoot))
}

// LoadFiles merges the settings at globalPath and projectPath. Missing
// files are skipped. A .env file next to projectPath supplies ${VAR}
// values not set in the environment.
func LoadFiles(globalPath, projectPath string) (*Settings, error) {
	global, err := loadFile(globalPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(projectPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	dotenv, err := loadDotenv(filepath.Join(filepath.Dir(projectPath), envFileName))
	if err != nil {
		return nil, fmt.Errorf("loading project env: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged, dotenv)
	return merged, nil
}

// loadFile reads Settings from a YAML file. Returns zero Settings if the
// file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}

	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays project settings onto global settings. Set project
// values win; postconditions are combined, with a project entry
// replacing a global one of the same name.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.Overwrite != nil {
		result.Overwrite = project.Overwrite
	}
	if project.HideCursor != nil {
		result.HideCursor = project.HideCursor
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}

	if len(project.Postconditions) > 0 {
		overridden := make(map[string]bool, len(project.Postconditions))
		for _, p := range project.Postconditions {
			overridden[p.Name] = true
		}
		var combined []Postcondition
		for _, p := range global.Postconditions {
			if !overridden[p.Name] {
				combined = append(combined, p)
			}
		}
		result.Postconditions = append(combined, project.Postconditions...)
	}

	return &result
}
