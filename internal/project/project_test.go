// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/contenv/contenv/internal/testutil"
)

const samplePyproject = `
[build-system]
requires = ["hatchling"]
build-backend = "hatchling.build"

[project]
name = "demo"
version = "0.1.0"

[tool.contenv.envs.default]
image = "python:{version}-slim"
dependencies = ["pytest"]
env-vars = { FOO = "bar" }

[tool.contenv.envs.lint]
extra-dependencies = ["ruff"]
shell = "/bin/sh"

[tool.contenv.envs.bare]
template = "bare"
python = "3.11"

[tool.contenv.envs.child]
template = "lint"
start-on-creation = true
`

func TestLoad(t *testing.T) {
	t.Parallel()

	root := testutil.WriteProject(t, "demo", samplePyproject)
	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if p.Root != root {
		t.Errorf("Root = %q, want %q", p.Root, root)
	}
	if p.Path != filepath.Join(root, DescriptorName) {
		t.Errorf("Path = %q", p.Path)
	}
	if p.Metadata.Name != "demo" || p.Metadata.Version != "0.1.0" {
		t.Errorf("Metadata = %+v", p.Metadata)
	}
	if !slices.Equal(p.BuildRequires, []string{"hatchling"}) {
		t.Errorf("BuildRequires = %q", p.BuildRequires)
	}
	if want := []string{"bare", "child", "default", "lint"}; !slices.Equal(p.EnvNames(), want) {
		t.Errorf("EnvNames() = %q, want %q", p.EnvNames(), want)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Load(t.TempDir()); !errors.Is(err, ErrDescriptorNotFound) {
		t.Errorf("expected ErrDescriptorNotFound, got %v", err)
	}

	root := testutil.WriteProject(t, "noname", "[project]\nversion = \"1\"\n")
	if _, err := Load(root); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}

	root = testutil.WriteProject(t, "broken", "[project\n")
	if _, err := Load(root); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEnvConfig_Inheritance(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(samplePyproject))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	t.Run("default has no template", func(t *testing.T) {
		t.Parallel()
		cfg, err := p.EnvConfig("default")
		if err != nil {
			t.Fatalf("EnvConfig() error: %v", err)
		}
		if cfg["image"] != "python:{version}-slim" {
			t.Errorf("image = %v", cfg["image"])
		}
		if cfg["template"] != "" {
			t.Errorf("template = %v, want empty", cfg["template"])
		}
	})

	t.Run("inherits from default", func(t *testing.T) {
		t.Parallel()
		cfg, err := p.EnvConfig("lint")
		if err != nil {
			t.Fatalf("EnvConfig() error: %v", err)
		}
		if cfg["image"] != "python:{version}-slim" {
			t.Errorf("image should be inherited, got %v", cfg["image"])
		}
		if cfg["shell"] != "/bin/sh" {
			t.Errorf("shell = %v", cfg["shell"])
		}
		if cfg["template"] != "default" {
			t.Errorf("template = %v", cfg["template"])
		}
	})

	t.Run("self template inherits nothing", func(t *testing.T) {
		t.Parallel()
		cfg, err := p.EnvConfig("bare")
		if err != nil {
			t.Fatalf("EnvConfig() error: %v", err)
		}
		if _, ok := cfg["image"]; ok {
			t.Errorf("bare env should not inherit image, got %v", cfg["image"])
		}
		if cfg["python"] != "3.11" {
			t.Errorf("python = %v", cfg["python"])
		}
	})

	t.Run("chained templates", func(t *testing.T) {
		t.Parallel()
		cfg, err := p.EnvConfig("child")
		if err != nil {
			t.Fatalf("EnvConfig() error: %v", err)
		}
		if cfg["shell"] != "/bin/sh" || cfg["image"] != "python:{version}-slim" || cfg["start-on-creation"] != true {
			t.Errorf("unexpected merged config %v", cfg)
		}
		if cfg["template"] != "lint" {
			t.Errorf("template = %v, want lint", cfg["template"])
		}
	})

	t.Run("unknown environment", func(t *testing.T) {
		t.Parallel()
		if _, err := p.EnvConfig("missing"); !errors.Is(err, ErrUnknownEnvironment) {
			t.Errorf("expected ErrUnknownEnvironment, got %v", err)
		}
	})
}

func TestEnvConfig_ImplicitDefault(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte("[project]\nname = \"x\"\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	cfg, err := p.EnvConfig(DefaultEnvName)
	if err != nil {
		t.Fatalf("EnvConfig() error: %v", err)
	}
	if len(cfg) != 1 {
		t.Errorf("implicit default should only carry its template key, got %v", cfg)
	}
	if !slices.Equal(p.EnvNames(), []string{"default"}) {
		t.Errorf("EnvNames() = %q", p.EnvNames())
	}
}

func TestEnvConfig_TemplateErrors(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(`
[project]
name = "x"

[tool.contenv.envs.a]
template = "b"

[tool.contenv.envs.b]
template = "a"

[tool.contenv.envs.c]
template = 1
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if _, err := p.EnvConfig("a"); !errors.Is(err, ErrTemplateCycle) {
		t.Errorf("expected ErrTemplateCycle, got %v", err)
	}
	_, err = p.EnvConfig("c")
	if err == nil || err.Error() != "Field `tool.contenv.envs.c.template` must be a string" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	root := testutil.WriteProject(t, "demo", "[project]\nname = \"demo\"\n")
	nested := filepath.Join(root, "src", "demo")
	testutil.MustMkdirAll(t, nested, 0o755)

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got != root {
		t.Errorf("Find() = %q, want %q", got, root)
	}
}

func TestFind_NotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), DescriptorName)); err == nil {
		t.Skip("a pyproject.toml exists above the temp directory")
	}
	if _, err := Find(dir); !errors.Is(err, ErrDescriptorNotFound) {
		t.Errorf("expected ErrDescriptorNotFound, got %v", err)
	}
}
