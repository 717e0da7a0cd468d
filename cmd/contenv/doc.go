// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for contenv.
//
// The root command wires configuration, logging and the container engine into
// an App, and every subcommand resolves the project and the requested
// environment through it before driving the environment lifecycle.
package cmd
