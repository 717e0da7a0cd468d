// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ModeEnvironment renders the image backing a long-lived development environment.
	ModeEnvironment Mode = "environment"
	// ModeBuilder renders the image of a throwaway builder that has the project copied in.
	ModeBuilder Mode = "builder"

	// BaseImagePlaceholder is replaced with the base image when rendering.
	BaseImagePlaceholder = "{base_image}"

	// DockerfileName is the file name rendered Dockerfiles are written under.
	DockerfileName = "Dockerfile"
)

// ErrInvalidMode is returned when a Mode is not recognized.
var ErrInvalidMode = errors.New("invalid dockerfile mode")

//go:embed templates/*.Dockerfile
var templates embed.FS

// Mode selects the Dockerfile template.
type Mode string

// Validate returns an error if the Mode is not environment or builder.
func (m Mode) Validate() error {
	switch m {
	case ModeEnvironment, ModeBuilder:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
}

// RenderDockerfile returns the Dockerfile for baseImage in the given mode.
// The base image is substituted literally; it is not validated.
func RenderDockerfile(baseImage string, mode Mode) (string, error) {
	if err := mode.Validate(); err != nil {
		return "", err
	}
	tmpl, err := templates.ReadFile("templates/" + string(mode) + ".Dockerfile")
	if err != nil {
		return "", fmt.Errorf("read %s template: %w", mode, err)
	}
	return strings.ReplaceAll(string(tmpl), BaseImagePlaceholder, baseImage), nil
}

// WriteDockerfile writes content to dir/Dockerfile, replacing any previous
// file, and returns the path written.
func WriteDockerfile(dir, content string) (string, error) {
	path := filepath.Join(dir, DockerfileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write Dockerfile: %w", err)
	}
	return path, nil
}
