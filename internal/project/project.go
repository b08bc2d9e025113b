package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/paramsweep/internal/config"
	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
)

// Project is a loaded configuration together with the directory its
// relative paths are resolved against.
type Project struct {
	Root       string
	ConfigPath string // Empty when running on built-in defaults
	Config     *config.Config
	Warnings   []string
}

// Load loads the configuration. An explicit path wins; otherwise the
// configuration is searched for from the current directory upwards, and
// when none exists the built-in defaults apply with the current directory
// as root.
func Load(explicitPath string) (*Project, error) {
	if explicitPath != "" {
		return LoadFile(explicitPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, sweeperrors.Environmentf("cannot determine working directory: %v", err)
	}
	root, err := FindRootFrom(cwd)
	if errors.Is(err, ErrNoProjectRoot) {
		return Defaults(cwd)
	}
	if err != nil {
		return nil, sweeperrors.Environmentf("cannot search for configuration: %v", err)
	}
	return LoadProjectFrom(root)
}

// LoadProjectFrom loads the configuration found under root.
func LoadProjectFrom(root string) (*Project, error) {
	path, ok := configFileIn(root)
	if !ok {
		return nil, sweeperrors.Config(ErrNoProjectRoot.Error())
	}
	p, err := load(path)
	if err != nil {
		return nil, err
	}
	p.Root = root
	return p, nil
}

// LoadFile loads a configuration file given by path. A file inside a
// .paramsweep directory resolves paths against that directory's parent,
// any other file against its own directory.
func LoadFile(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, sweeperrors.Environmentf("cannot resolve %s: %v", path, err)
	}
	p, err := load(abs)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	if filepath.Base(dir) == ConfigDirName {
		dir = filepath.Dir(dir)
	}
	p.Root = dir
	return p, nil
}

// Defaults returns a project running on built-in defaults rooted at root.
// Environment overrides still apply.
func Defaults(root string) (*Project, error) {
	cfg := config.Default()
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, sweeperrors.Validation(err, "invalid environment override")
	}
	warnings, err := config.Validate(cfg)
	if err != nil {
		return nil, sweeperrors.Validation(err, "invalid configuration")
	}
	return &Project{Root: root, Config: cfg, Warnings: warnings}, nil
}

func load(path string) (*Project, error) {
	cfg, warnings, err := config.LoadAndValidate(path)
	if err != nil {
		var ve *config.ValidationError
		if errors.As(err, &ve) {
			return nil, sweeperrors.Validation(err, fmt.Sprintf("invalid configuration %s", path))
		}
		return nil, &sweeperrors.SweepError{
			Kind:    sweeperrors.KindConfig,
			Message: fmt.Sprintf("failed to load configuration %s", path),
			Cause:   err,
		}
	}
	return &Project{ConfigPath: path, Config: cfg, Warnings: warnings}, nil
}
