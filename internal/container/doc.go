// SPDX-License-Identifier: MPL-2.0

// Package container provides a unified abstraction layer for container engines (Docker/Podman).
//
// The Engine interface covers the lifecycle operations a development environment needs:
// Build, Create, Start, Stop, Remove, Exec, Copy and ListNames. Two implementations are
// provided, DockerEngine and PodmanEngine, both embedding BaseCLIEngine for shared CLI
// argument construction and process execution.
//
// Every operation shells out to the engine binary and blocks until it exits. A non-zero
// exit status is reported as a *CommandError carrying the captured output; nothing is
// retried. Exec is the exception: the exit status of the proxied command is returned in
// RunResult.ExitCode so callers can decide what a failure means.
//
// Engine selection uses NewEngine(EngineType) with automatic fallback if the preferred
// engine is unavailable. EngineTypeAuto defers to AutoDetectEngine, which tries Docker
// then Podman.
package container
