// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/maps"
)

const (
	// DescriptorName is the file name of the project descriptor.
	DescriptorName = "pyproject.toml"

	// DefaultEnvName is the environment used when none is requested, and the
	// template every other environment inherits from unless it names another.
	DefaultEnvName = "default"

	// EnvTablePrefix is the dotted path under which environments are declared.
	EnvTablePrefix = "tool.contenv.envs"

	templateKey = "template"
)

var (
	// ErrDescriptorNotFound is returned when no pyproject.toml exists at or above a directory.
	ErrDescriptorNotFound = errors.New("pyproject.toml not found")

	// ErrMissingName is returned when [project] name is absent or empty.
	ErrMissingName = errors.New("project name is not defined")

	// ErrUnknownEnvironment is returned when an environment is not declared.
	ErrUnknownEnvironment = errors.New("unknown environment")

	// ErrTemplateCycle is returned when environment templates form a cycle.
	ErrTemplateCycle = errors.New("environment template cycle")
)

type (
	// Metadata holds the core project metadata.
	Metadata struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	}

	// Project is a loaded project descriptor.
	Project struct {
		// Root is the directory containing the descriptor
		Root string
		// Path is the absolute path of the descriptor
		Path string
		// Metadata is the [project] table
		Metadata Metadata
		// BuildRequires lists [build-system] requires
		BuildRequires []string

		envs map[string]map[string]any
	}

	descriptor struct {
		Project     Metadata `toml:"project"`
		BuildSystem struct {
			Requires []string `toml:"requires"`
		} `toml:"build-system"`
		Tool struct {
			Contenv struct {
				Envs map[string]map[string]any `toml:"envs"`
			} `toml:"contenv"`
		} `toml:"tool"`
	}
)

// Find walks up from dir until it finds a directory containing pyproject.toml
// and returns that directory.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if info, statErr := os.Stat(filepath.Join(abs, DescriptorName)); statErr == nil && !info.IsDir() {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrDescriptorNotFound, dir)
		}
		abs = parent
	}
}

// Load reads the descriptor in root.
func Load(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(abs, DescriptorName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDescriptorNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.Root = abs
	p.Path = path
	return p, nil
}

// Parse decodes descriptor content. Root and Path are left empty.
func Parse(data []byte) (*Project, error) {
	var d descriptor
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if d.Project.Name == "" {
		return nil, ErrMissingName
	}

	envs := d.Tool.Contenv.Envs
	if envs == nil {
		envs = make(map[string]map[string]any)
	}
	return &Project{
		Metadata:      d.Project,
		BuildRequires: d.BuildSystem.Requires,
		envs:          envs,
	}, nil
}

// EnvNames returns the declared environment names in sorted order. The
// default environment is always present, declared or not.
func (p *Project) EnvNames() []string {
	names := slices.Collect(maps.Keys(p.envs))
	if !slices.Contains(names, DefaultEnvName) {
		names = append(names, DefaultEnvName)
	}
	slices.Sort(names)
	return names
}

// EnvConfig returns the options of environment name merged over those of its
// template chain. Keys set by an environment replace inherited keys; the
// template key itself is reported as the environment's direct template.
func (p *Project) EnvConfig(name string) (map[string]any, error) {
	return p.resolve(name, nil)
}

func (p *Project) resolve(name string, seen []string) (map[string]any, error) {
	if slices.Contains(seen, name) {
		return nil, fmt.Errorf("%w: %v", ErrTemplateCycle, append(seen, name))
	}
	seen = append(seen, name)

	own, ok := p.envs[name]
	if !ok {
		if name != DefaultEnvName {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEnvironment, name)
		}
		own = map[string]any{}
	}

	template, err := templateOf(name, own)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any)
	if template != "" {
		inherited, err := p.resolve(template, seen)
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, inherited)
	}
	maps.Copy(merged, own)
	merged[templateKey] = template
	return merged, nil
}

// templateOf returns the template name of env, or "" when it inherits nothing.
func templateOf(name string, own map[string]any) (string, error) {
	raw, ok := own[templateKey]
	if !ok {
		if name == DefaultEnvName {
			return "", nil
		}
		return DefaultEnvName, nil
	}
	template, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("Field `%s.%s.%s` must be a string", EnvTablePrefix, name, templateKey)
	}
	if template == name {
		return "", nil
	}
	return template, nil
}
