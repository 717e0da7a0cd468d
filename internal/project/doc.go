// SPDX-License-Identifier: MPL-2.0

// Package project loads the pyproject.toml descriptor of a Python project.
//
// Besides the core metadata and build requirements, it exposes the
// environment tables declared under [tool.contenv.envs.<name>], resolved
// through their template chain so every environment sees the options it
// inherits.
package project
