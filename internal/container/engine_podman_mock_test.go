// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"testing"
)

func TestPodmanEngine_Name(t *testing.T) {
	engine, _ := newMockPodmanEngine(t)
	if engine.Name() != "podman" {
		t.Errorf("Name() = %q, want podman", engine.Name())
	}
}

func TestPodmanEngine_ImageExists(t *testing.T) {
	engine, recorder := newMockPodmanEngine(t)

	exists, err := engine.ImageExists(context.Background(), "i:contenv")
	if err != nil || !exists {
		t.Errorf("ImageExists() = %v, %v; want true, nil", exists, err)
	}
	recorder.AssertArgs(t, "image", "exists", "i:contenv")
}

func TestPodmanEngine_Version(t *testing.T) {
	engine, recorder := newMockPodmanEngine(t)
	recorder.Stdout = "5.2.0"

	v, err := engine.Version(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "5.2.0" {
		t.Errorf("Version() = %q", v)
	}
	recorder.AssertArgs(t, "version", "--format", "{{.Version}}")
}

func TestPodmanEngine_CreateVolumeUnlabeled(t *testing.T) {
	engine, recorder := newMockPodmanEngine(t)

	err := engine.Create(context.Background(), CreateOptions{
		Name:    "p_e",
		Image:   "i",
		Volumes: []VolumeMount{{HostPath: "/src", ContainerPath: "/home/project"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recorder.HasArgPair("--volume", "/src:/home/project") {
		t.Errorf("expected unlabeled volume, got %q", recorder.LastArgs())
	}
}

func TestSELinuxVolumeFormatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enabled bool
		mount   VolumeMount
		want    string
	}{
		{"disabled", false, VolumeMount{HostPath: "/a", ContainerPath: "/b"}, "/a:/b"},
		{"enabled adds z", true, VolumeMount{HostPath: "/a", ContainerPath: "/b"}, "/a:/b:z"},
		{"enabled keeps ro", true, VolumeMount{HostPath: "/a", ContainerPath: "/b", ReadOnly: true}, "/a:/b:ro,z"},
		{"existing label kept", true, VolumeMount{HostPath: "/a", ContainerPath: "/b", SELinux: SELinuxLabelPrivate}, "/a:/b:Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			format := SELinuxVolumeFormatter(func() bool { return tt.enabled })
			if got := format(tt.mount); got != tt.want {
				t.Errorf("format() = %q, want %q", got, tt.want)
			}
		})
	}
}
