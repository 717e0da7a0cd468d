// SPDX-License-Identifier: MPL-2.0

// Package environment defines the Environment interface the CLI drives and
// the container-backed implementation registered under the "container" type.
//
// A ContainerEnvironment is constructed from a project, an environment name
// and that environment's resolved option table. Construction validates every
// option up front and derives the image and container names; nothing is
// resolved lazily afterwards. Lifecycle state is never cached: every question
// about the container is answered by asking the engine.
//
// Commands run in the container through the engine's exec verb. Each
// invocation carries the current environment variables of the host process,
// filtered by env-include/env-exclude and overlaid with env-vars.
package environment
