// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"fmt"

	"github.com/contenv/contenv/internal/project"
)

// ContainerType is the environment type served by ContainerEnvironment.
const ContainerType = "container"

// CommonOptions are the options every environment type understands.
type CommonOptions struct {
	Type         string
	Dependencies []string
	EnvVars      map[string]string
	EnvInclude   []string
	EnvExclude   []string
	DevMode      bool
	SkipInstall  bool
	Features     []string
	Template     string
}

// ParseCommonOptions validates and extracts the common options of env from cfg.
// extra-dependencies are appended to dependencies.
func ParseCommonOptions(env string, cfg map[string]any) (CommonOptions, error) {
	opts := CommonOptions{
		Type:     ContainerType,
		EnvVars:  map[string]string{},
		DevMode:  true,
		Template: project.DefaultEnvName,
	}

	var err error
	if opts.Type, err = stringOption(env, cfg, "type", opts.Type); err != nil {
		return opts, err
	}
	if opts.Dependencies, err = stringListOption(env, cfg, "dependencies", "Dependency"); err != nil {
		return opts, err
	}
	extra, err := stringListOption(env, cfg, "extra-dependencies", "Dependency")
	if err != nil {
		return opts, err
	}
	opts.Dependencies = append(opts.Dependencies, extra...)

	if opts.EnvVars, err = stringMapOption(env, cfg, "env-vars", "Environment variable"); err != nil {
		return opts, err
	}
	if opts.EnvInclude, err = patternListOption(env, cfg, "env-include"); err != nil {
		return opts, err
	}
	if opts.EnvExclude, err = patternListOption(env, cfg, "env-exclude"); err != nil {
		return opts, err
	}
	if opts.DevMode, err = boolOption(env, cfg, "dev-mode", opts.DevMode); err != nil {
		return opts, err
	}
	if opts.SkipInstall, err = boolOption(env, cfg, "skip-install", false); err != nil {
		return opts, err
	}
	if opts.Features, err = stringListOption(env, cfg, "features", "Feature"); err != nil {
		return opts, err
	}
	if t, ok := cfg["template"]; ok {
		s, isString := t.(string)
		if !isString {
			return opts, mustBe(env, "template", "a string")
		}
		opts.Template = s
	}
	return opts, nil
}

func stringOption(env string, cfg map[string]any, key, def string) (string, error) {
	raw, ok := cfg[key]
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", mustBe(env, key, "a string")
	}
	return s, nil
}

func boolOption(env string, cfg map[string]any, key string, def bool) (bool, error) {
	raw, ok := cfg[key]
	if !ok {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, mustBe(env, key, "a boolean")
	}
	return b, nil
}

// stringListOption accepts decoded TOML arrays ([]any) and []string values.
func stringListOption(env string, cfg map[string]any, key, label string) ([]string, error) {
	raw, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, itemMustBe(env, key, label, i+1, "a string")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, mustBe(env, key, "an array")
	}
}

func stringMapOption(env string, cfg map[string]any, key, label string) (map[string]string, error) {
	out := map[string]string{}
	raw, ok := cfg[key]
	if !ok {
		return out, nil
	}
	switch v := raw.(type) {
	case map[string]string:
		for k, s := range v {
			out[k] = s
		}
	case map[string]any:
		for k, item := range v {
			s, ok := item.(string)
			if !ok {
				path := FieldPath(env, key)
				return nil, &FieldError{
					Field:   path,
					Message: fmt.Sprintf("%s `%s` of field `%s` must be a string", label, k, path),
				}
			}
			out[k] = s
		}
	default:
		return nil, mustBe(env, key, "a mapping")
	}
	return out, nil
}

func patternListOption(env string, cfg map[string]any, key string) ([]string, error) {
	patterns, err := stringListOption(env, cfg, key, "Pattern")
	if err != nil {
		return nil, err
	}
	for i, p := range patterns {
		if _, err := compileEnvPattern(p); err != nil {
			path := FieldPath(env, key)
			return nil, &FieldError{
				Field:   path,
				Message: fmt.Sprintf("Pattern #%d of field `%s` is not a valid glob: %v", i+1, path, err),
			}
		}
	}
	return patterns, nil
}
