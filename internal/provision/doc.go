// SPDX-License-Identifier: MPL-2.0

// Package provision prepares the build inputs for environment images.
//
// It renders Dockerfiles from embedded templates, manages the persistent
// per-image build directory used for runtime images and the temporary
// directories used for one-off builder images, and moves build artifacts
// out of those directories once a build completes.
//
//	content, err := provision.RenderDockerfile("python:3.12", provision.ModeEnvironment)
//	dir, err := provision.PersistentBuildDir(dataDir, imageID)
//	path, err := provision.WriteDockerfile(dir, content)
package provision
