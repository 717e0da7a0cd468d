// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"strings"
)

const (
	// DefaultImageTemplate is used when image is unset.
	DefaultImageTemplate = "python:{version}"

	// VersionPlaceholder is replaced with the Python version in the image template.
	VersionPlaceholder = "{version}"
)

// DefaultCommand keeps a container alive when command is unset.
var DefaultCommand = []string{"/bin/sleep", "infinity"}

// ContainerConfig is the validated option set of a container environment.
// It is immutable once returned by ResolveContainerConfig.
type ContainerConfig struct {
	// ImageTemplate is the image option, before version substitution
	ImageTemplate string `yaml:"image"`
	// Command is the container's long-running command
	Command []string `yaml:"command"`
	// StartOnCreation keeps the container running from creation to removal
	StartOnCreation bool `yaml:"start-on-creation"`
	// Shell is the interactive shell
	Shell string `yaml:"shell"`
	// PythonVersion is the normalized Python version
	PythonVersion string `yaml:"python"`
	// BaseImage is ImageTemplate with the version substituted
	BaseImage string `yaml:"base-image"`
}

// OptionTypes reports the expected kind of each container-specific option.
func OptionTypes() map[string]string {
	return map[string]string{
		"image":             "string",
		"command":           "array",
		"start-on-creation": "boolean",
		"shell":             "string",
		"python":            "string",
	}
}

// ResolveContainerConfig validates the container options of env and derives
// the effective configuration. hostPython is consulted only when python is
// unset or empty. The first invalid option is reported as a *FieldError.
func ResolveContainerConfig(env string, cfg map[string]any, hostPython func() string) (*ContainerConfig, error) {
	image, err := stringOption(env, cfg, "image", DefaultImageTemplate)
	if err != nil {
		return nil, err
	}

	python, err := stringOption(env, cfg, "python", "")
	if err != nil {
		return nil, err
	}
	if python == "" && hostPython != nil {
		python = hostPython()
	}
	python = NormalizePythonVersion(python)

	command := append([]string(nil), DefaultCommand...)
	if _, ok := cfg["command"]; ok {
		if command, err = stringListOption(env, cfg, "command", "Argument"); err != nil {
			return nil, err
		}
	}

	startOnCreation, err := boolOption(env, cfg, "start-on-creation", false)
	if err != nil {
		return nil, err
	}

	baseImage := strings.ReplaceAll(image, VersionPlaceholder, python)

	shell, err := stringOption(env, cfg, "shell", "")
	if err != nil {
		return nil, err
	}
	if shell == "" {
		shell = defaultShell(baseImage)
	}

	return &ContainerConfig{
		ImageTemplate:   image,
		Command:         command,
		StartOnCreation: startOnCreation,
		Shell:           shell,
		PythonVersion:   python,
		BaseImage:       baseImage,
	}, nil
}

// NormalizePythonVersion expands compact versions: "311" becomes "3.11".
// Dotted or single-digit values are returned unchanged.
func NormalizePythonVersion(v string) string {
	if len(v) < 2 {
		return v
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return v
		}
	}
	return v[:1] + "." + v[1:]
}

func defaultShell(baseImage string) string {
	if strings.Contains(baseImage, "alpine") {
		return "/bin/ash"
	}
	return "/bin/bash"
}
