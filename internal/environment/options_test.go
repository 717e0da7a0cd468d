// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"errors"
	"slices"
	"testing"
)

func TestParseCommonOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := ParseCommonOptions("default", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Type != ContainerType {
		t.Errorf("Type = %q", opts.Type)
	}
	if !opts.DevMode || opts.SkipInstall {
		t.Errorf("DevMode/SkipInstall = %v/%v", opts.DevMode, opts.SkipInstall)
	}
	if opts.Template != "default" {
		t.Errorf("Template = %q", opts.Template)
	}
	if len(opts.Dependencies) != 0 || len(opts.EnvVars) != 0 {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

func TestParseCommonOptions_Values(t *testing.T) {
	t.Parallel()

	opts, err := ParseCommonOptions("lint", map[string]any{
		"dependencies":       []any{"pytest"},
		"extra-dependencies": []any{"ruff", "mypy"},
		"env-vars":           map[string]any{"FOO": "bar"},
		"env-include":        []any{"CI*"},
		"env-exclude":        []any{"CI_TOKEN"},
		"dev-mode":           false,
		"skip-install":       true,
		"features":           []any{"cli", "test"},
		"template":           "base",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(opts.Dependencies, []string{"pytest", "ruff", "mypy"}) {
		t.Errorf("Dependencies = %q", opts.Dependencies)
	}
	if opts.EnvVars["FOO"] != "bar" {
		t.Errorf("EnvVars = %v", opts.EnvVars)
	}
	if opts.DevMode || !opts.SkipInstall {
		t.Errorf("DevMode/SkipInstall = %v/%v", opts.DevMode, opts.SkipInstall)
	}
	if !slices.Equal(opts.Features, []string{"cli", "test"}) || opts.Template != "base" {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestParseCommonOptions_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  map[string]any
		want string
	}{
		{"type", map[string]any{"type": true}, "Field `tool.contenv.envs.e.type` must be a string"},
		{"dependencies", map[string]any{"dependencies": "pytest"}, "Field `tool.contenv.envs.e.dependencies` must be an array"},
		{"dependency item", map[string]any{"dependencies": []any{"a", int64(1)}}, "Dependency #2 of field `tool.contenv.envs.e.dependencies` must be a string"},
		{"extra dependency item", map[string]any{"extra-dependencies": []any{false}}, "Dependency #1 of field `tool.contenv.envs.e.extra-dependencies` must be a string"},
		{"env-vars", map[string]any{"env-vars": []any{}}, "Field `tool.contenv.envs.e.env-vars` must be a mapping"},
		{"env-vars value", map[string]any{"env-vars": map[string]any{"FOO": int64(1)}}, "Environment variable `FOO` of field `tool.contenv.envs.e.env-vars` must be a string"},
		{"dev-mode", map[string]any{"dev-mode": "no"}, "Field `tool.contenv.envs.e.dev-mode` must be a boolean"},
		{"features item", map[string]any{"features": []any{int64(3)}}, "Feature #1 of field `tool.contenv.envs.e.features` must be a string"},
		{"template", map[string]any{"template": int64(1)}, "Field `tool.contenv.envs.e.template` must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCommonOptions("e", tt.cfg)
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParseCommonOptions_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := ParseCommonOptions("e", map[string]any{"env-include": []any{"FOO", "[A-"}})
	if err == nil {
		t.Fatal("expected error for malformed glob")
	}
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "tool.contenv.envs.e.env-include" {
		t.Errorf("unexpected error %v", err)
	}
}
