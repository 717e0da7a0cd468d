// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"regexp"
	"strings"

	"github.com/contenv/contenv/internal/container"
)

const (
	// ProjectPath is where the project is mounted (or copied) in the container.
	ProjectPath = "/home/project"

	// ImageTagSuffix is the tag of every image built for an environment.
	ImageTagSuffix = "contenv"
)

var imageIDUnsafe = regexp.MustCompile(`[^\w.-]`)

// Identity holds the names derived from a project, an environment and its base image.
type Identity struct {
	BaseImage        string                  `yaml:"base-image"`
	ImageID          string                  `yaml:"image-id"`
	Image            container.ImageTag      `yaml:"image"`
	BuilderImage     container.ImageTag      `yaml:"builder-image"`
	Container        container.ContainerName `yaml:"container"`
	BuilderContainer container.ContainerName `yaml:"builder-container"`
	ProjectPath      string                  `yaml:"project-path"`
}

// NewIdentity derives the names for environment env of project projectName.
func NewIdentity(projectName, env, baseImage string) Identity {
	image := strings.ReplaceAll(baseImage, ":", "_") + ":" + ImageTagSuffix
	name := projectName + "_" + env
	return Identity{
		BaseImage:        baseImage,
		ImageID:          imageIDUnsafe.ReplaceAllString(baseImage, "_"),
		Image:            container.ImageTag(image),
		BuilderImage:     container.ImageTag(image + "_builder"),
		Container:        container.ContainerName(name),
		BuilderContainer: container.ContainerName(name + "_builder"),
		ProjectPath:      ProjectPath,
	}
}
