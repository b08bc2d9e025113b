// Package project locates the paramsweep configuration and loads it.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigDirName is the name of the paramsweep configuration directory.
const ConfigDirName = ".paramsweep"

// ConfigFileNames are the accepted configuration files, in lookup order.
var ConfigFileNames = []string{"config.json", "config.yaml", "config.yml"}

// ErrNoProjectRoot is returned when no configuration file is found.
var ErrNoProjectRoot = errors.New(".paramsweep/config.json not found in this directory or any parent")

// FindRoot walks up from the current working directory until it finds a
// configuration file.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds a
// configuration file.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if _, ok := configFileIn(dir); ok {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}

// configFileIn returns the first configuration file present under root.
func configFileIn(root string) (string, bool) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(root, ConfigDirName, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}
