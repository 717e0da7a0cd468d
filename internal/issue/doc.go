// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown guides.
//
// An ActionableError names the failed operation, the resource involved and
// suggested fixes, and may point at a catalog Issue. The CLI prints
// Format(verbose) and, in verbose mode, renders the catalog entry with glamour.
package issue
