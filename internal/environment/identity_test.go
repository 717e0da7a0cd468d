// SPDX-License-Identifier: MPL-2.0

package environment

import "testing"

func TestNewIdentity(t *testing.T) {
	t.Parallel()

	id := NewIdentity("my_app", "default", "python:3.12-alpine")

	checks := map[string][2]string{
		"BaseImage":        {id.BaseImage, "python:3.12-alpine"},
		"ImageID":          {id.ImageID, "python_3.12-alpine"},
		"Image":            {string(id.Image), "python_3.12-alpine:contenv"},
		"BuilderImage":     {string(id.BuilderImage), "python_3.12-alpine:contenv_builder"},
		"Container":        {string(id.Container), "my_app_default"},
		"BuilderContainer": {string(id.BuilderContainer), "my_app_default_builder"},
		"ProjectPath":      {id.ProjectPath, "/home/project"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
}

func TestNewIdentity_ImageIDSanitized(t *testing.T) {
	t.Parallel()

	id := NewIdentity("p", "e", "ghcr.io/org/python:3.12@sha256:abc")
	if id.ImageID != "ghcr.io_org_python_3.12_sha256_abc" {
		t.Errorf("ImageID = %q", id.ImageID)
	}
	if string(id.Image) != "ghcr.io/org/python_3.12@sha256_abc:contenv" {
		t.Errorf("Image = %q", id.Image)
	}
}
