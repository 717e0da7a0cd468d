// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/provision"
)

const artifactsDirName = "artifacts"

// BuildEnvironment builds a throwaway builder image with the project copied
// in, creates and starts a builder container from it, installs dependencies
// and then calls fn. When fn succeeds the contents of the builder's dist
// directory are moved to scope.OutputDir. The builder container and the
// temporary build context are removed on every path; failures to remove the
// container are logged and never returned.
func (e *ContainerEnvironment) BuildEnvironment(ctx context.Context, dependencies []string, fn func(*BuildScope) error) error {
	tmpDir, cleanupDir, err := provision.TempBuildDir("")
	if err != nil {
		return err
	}
	defer cleanupDir()

	dockerfile, err := provision.RenderDockerfile(e.config.BaseImage, provision.ModeBuilder)
	if err != nil {
		return err
	}
	dockerfilePath, err := provision.WriteDockerfile(tmpDir, dockerfile)
	if err != nil {
		return err
	}

	e.logger.Debug("building builder image", "env", e.name, "image", e.identity.BuilderImage)
	if err := e.engine.Build(ctx, e.buildOptions(e.root, dockerfilePath, e.identity.BuilderImage)); err != nil {
		return err
	}

	defer e.removeBuilder(context.WithoutCancel(ctx))

	err = e.engine.Create(ctx, container.CreateOptions{
		Name:    e.identity.BuilderContainer,
		Image:   e.identity.BuilderImage,
		WorkDir: ProjectPath,
		Env:     e.ContainerEnvVars(),
		Command: e.config.Command,
	})
	if err != nil {
		return err
	}
	if err := e.engine.Start(ctx, e.identity.BuilderContainer); err != nil {
		return err
	}
	if len(dependencies) > 0 {
		if err := e.check(ctx, e.identity.BuilderContainer, e.pipInstall(dependencies...)); err != nil {
			return err
		}
	}

	scope := &BuildScope{}
	if err := fn(scope); err != nil {
		return err
	}

	return e.collectArtifacts(ctx, tmpDir, scope.OutputDir)
}

// RunBuild sets the scope's output directory and runs the build inside the
// builder container, returning the build's exit code.
func (e *ContainerEnvironment) RunBuild(ctx context.Context, scope *BuildScope, req BuildRequest) (int, error) {
	if scope == nil {
		return 0, errors.New("build must run inside a build environment")
	}
	scope.OutputDir = req.Directory
	if scope.OutputDir == "" {
		scope.OutputDir = filepath.Join(e.root, "dist")
	}

	result, err := e.engine.Exec(ctx, e.identity.BuilderContainer, buildCommand(req), e.streamOptions())
	if err != nil {
		return 0, err
	}
	return result.ExitCode, nil
}

func (e *ContainerEnvironment) collectArtifacts(ctx context.Context, tmpDir, outputDir string) error {
	if outputDir == "" {
		outputDir = filepath.Join(e.root, "dist")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	local := filepath.Join(tmpDir, artifactsDirName)
	src := e.identity.BuilderContainer.String() + ":" + ProjectPath + "/dist"
	if err := e.engine.Copy(ctx, src, local); err != nil {
		return err
	}

	moved, err := provision.MoveArtifacts(local, outputDir)
	e.logger.Debug("collected build artifacts", "env", e.name, "dir", outputDir, "artifacts", moved)
	return err
}

func (e *ContainerEnvironment) removeBuilder(ctx context.Context) {
	name := e.identity.BuilderContainer
	if err := e.engine.Stop(ctx, name, 0); err != nil {
		e.logger.Debug("failed to stop builder container", "container", name, "err", err)
	}
	if err := e.engine.Remove(ctx, name, false); err != nil {
		e.logger.Debug("failed to remove builder container", "container", name, "err", err)
	}
}
