// SPDX-License-Identifier: MPL-2.0

// Package config handles host configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the contenv configuration directory
// ($XDG_CONFIG_HOME/contenv on Linux, ~/Library/Application Support/contenv on
// macOS, %APPDATA%\contenv on Windows) or from an explicit file. The file is
// validated against the embedded #Config schema before it is merged over the
// defaults, and CONTENV_* environment variables override both (for example
// CONTENV_CONTAINER_ENGINE or CONTENV_UI_VERBOSE).
package config
