// ABOUTME: Standard filesystem paths for keyblock configuration
// ABOUTME: Resolves ~/.keyblock/ for global and .keyblock/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".keyblock"
	projectDirName = ".keyblock"
	configFileName = "config.yaml"
	envFileName    = ".env"

	// GlobalDirEnv overrides the global config directory.
	GlobalDirEnv = "KEYBLOCK_CONFIG_DIR"
)

// GlobalDir returns the user-global config directory (~/.keyblock/),
// or $KEYBLOCK_CONFIG_DIR when set.
func GlobalDir() string {
	if dir := os.Getenv(GlobalDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.keyblock/ under root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}
