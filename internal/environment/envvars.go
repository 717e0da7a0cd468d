// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/pattern"
)

// compileEnvPattern compiles a shell glob matched against whole variable names.
func compileEnvPattern(glob string) (*regexp.Regexp, error) {
	expr, err := pattern.Regexp(glob, 0)
	if err != nil {
		return nil, err
	}
	return regexp.Compile("^(?:" + expr + ")$")
}

func compileEnvPatterns(globs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(globs))
	for _, g := range globs {
		// Patterns were validated by ParseCommonOptions.
		if re, err := compileEnvPattern(g); err == nil {
			out = append(out, re)
		}
	}
	return out
}

func matchesAny(name string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// ResolveEnvVars computes the variables propagated into the container.
// When include is empty only overlay is returned. Otherwise every variable of
// environ whose name matches an include pattern and no exclude pattern is
// kept, and overlay is applied on top.
func ResolveEnvVars(environ []string, include, exclude []string, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(overlay))
	if len(include) > 0 {
		inc := compileEnvPatterns(include)
		exc := compileEnvPatterns(exclude)
		for _, kv := range environ {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || name == "" {
				continue
			}
			if matchesAny(name, inc) && !matchesAny(name, exc) {
				out[name] = value
			}
		}
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
