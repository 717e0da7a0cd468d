// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/contenv/contenv/internal/issue"
)

func TestDockerEngine_Build(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	ctx := context.Background()

	t.Run("captured", func(t *testing.T) {
		recorder.Reset()
		err := engine.Build(ctx, BuildOptions{
			ContextDir: "/tmp/build",
			Dockerfile: "Dockerfile",
			Tag:        "python_3.12:contenv",
			Pull:       true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		recorder.AssertInvocationCount(t, 1)
		recorder.AssertCommandName(t, "/usr/bin/docker")
		recorder.AssertArgs(t, "build", "--pull", "-t", "python_3.12:contenv", "-f", "/tmp/build/Dockerfile", "/tmp/build")
	})

	t.Run("streamed", func(t *testing.T) {
		recorder.Reset()
		recorder.Stdout = "Step 1/4"
		defer func() { recorder.Stdout = "" }()

		var out bytes.Buffer
		err := engine.Build(ctx, BuildOptions{ContextDir: "/tmp/build", Tag: "t", Stdout: &out, Stderr: &out})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.String() != "Step 1/4" {
			t.Errorf("streamed output = %q, want %q", out.String(), "Step 1/4")
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		recorder.Reset()
		err := engine.Build(ctx, BuildOptions{ContextDir: "/tmp/build"})
		if !errors.Is(err, ErrInvalidImageTag) {
			t.Errorf("expected ErrInvalidImageTag, got %v", err)
		}
		recorder.AssertInvocationCount(t, 0)
	})
}

func TestDockerEngine_Build_FailureCarriesOutput(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	recorder.Stderr = "pull access denied"
	recorder.ExitCode = 1

	err := engine.Build(context.Background(), BuildOptions{ContextDir: "/ctx", Tag: "t"})
	if err == nil {
		t.Fatal("expected error")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError in chain, got %T: %v", err, err)
	}
	if cmdErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", cmdErr.ExitCode)
	}
	if !strings.Contains(cmdErr.Output, "pull access denied") {
		t.Errorf("Output = %q, want it to contain the engine stderr", cmdErr.Output)
	}
	if !errors.Is(err, ErrCommandFailed) {
		t.Error("expected errors.Is(err, ErrCommandFailed)")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.ImageBuildFailedId {
		t.Errorf("expected actionable error linked to the image build issue, got %v", err)
	}
}

func TestDockerEngine_CreateStartStopRemove(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	ctx := context.Background()

	if err := engine.Create(ctx, CreateOptions{Name: "p_e", Image: "i:contenv", Command: []string{"sleep", "infinity"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	recorder.AssertArgs(t, "create", "--name", "p_e", "i:contenv", "sleep", "infinity")

	if err := engine.Start(ctx, "p_e"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	recorder.AssertArgs(t, "start", "p_e")

	if err := engine.Stop(ctx, "p_e", 0); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	recorder.AssertArgs(t, "stop", "--time", "0", "p_e")

	if err := engine.Remove(ctx, "p_e", false); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	recorder.AssertArgs(t, "rm", "p_e")

	recorder.AssertInvocationCount(t, 4)
}

func TestDockerEngine_InvalidContainerName(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	ctx := context.Background()

	for name, err := range map[string]error{
		"start":  engine.Start(ctx, ""),
		"stop":   engine.Stop(ctx, "has space", time.Second),
		"remove": engine.Remove(ctx, "", true),
		"create": engine.Create(ctx, CreateOptions{Image: "i"}),
	} {
		if !errors.Is(err, ErrInvalidContainerName) {
			t.Errorf("%s: expected ErrInvalidContainerName, got %v", name, err)
		}
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestDockerEngine_Remove_Failure(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	recorder.FailOnCommand = "rm"
	recorder.Stderr = "Error response from daemon: You cannot remove a running container"

	err := engine.Remove(context.Background(), "p_e", false)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %v", err)
	}
	if !slices.Equal(cmdErr.Args, []string{"rm", "p_e"}) {
		t.Errorf("Args = %q", cmdErr.Args)
	}
	if !strings.Contains(err.Error(), "cannot remove a running container") {
		t.Errorf("error message %q should include engine output", err.Error())
	}
}

func TestDockerEngine_Exec(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	ctx := context.Background()

	t.Run("captured output", func(t *testing.T) {
		recorder.Reset()
		recorder.Stdout = "hello"
		defer func() { recorder.Stdout = "" }()

		result, err := engine.Exec(ctx, "p_e", []string{"echo", "hello"}, ExecOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ExitCode != 0 || result.Output != "hello" || result.ContainerName != "p_e" {
			t.Errorf("unexpected result %+v", result)
		}
		recorder.AssertArgs(t, "exec", "p_e", "echo", "hello")
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		recorder.Reset()
		recorder.ExitCode = 3
		defer func() { recorder.ExitCode = 0 }()

		result, err := engine.Exec(ctx, "p_e", []string{"false"}, ExecOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", result.ExitCode)
		}
	})

	t.Run("streamed output", func(t *testing.T) {
		recorder.Reset()
		recorder.Stdout = "streamed"
		defer func() { recorder.Stdout = "" }()

		var out bytes.Buffer
		result, err := engine.Exec(ctx, "p_e", []string{"ls"}, ExecOptions{Stdout: &out, Stderr: &out})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.String() != "streamed" {
			t.Errorf("stdout = %q", out.String())
		}
		if result.Output != "" {
			t.Errorf("Output should be empty when streaming, got %q", result.Output)
		}
	})
}

func TestDockerEngine_ListNames(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	recorder.StdoutFor["ps"] = "proj_default\nproj_default_builder\n\n"

	names, err := engine.ListNames(context.Background(), ListOptions{All: true, NameFilter: "proj_default"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"proj_default", "proj_default_builder"}
	if !slices.Equal(names, want) {
		t.Errorf("ListNames() = %q, want %q", names, want)
	}
	recorder.AssertArgs(t, "ps", "-a", "--format", "{{.Names}}", "--filter", "name=proj_default")
}

func TestDockerEngine_Copy(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)

	if err := engine.Copy(context.Background(), "c_builder:/home/project/dist", "/tmp/x/artifacts"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recorder.AssertArgs(t, "cp", "c_builder:/home/project/dist", "/tmp/x/artifacts")
}

func TestDockerEngine_ImageExists(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	ctx := context.Background()

	exists, err := engine.ImageExists(ctx, "i:contenv")
	if err != nil || !exists {
		t.Errorf("ImageExists() = %v, %v; want true, nil", exists, err)
	}
	recorder.AssertArgs(t, "image", "inspect", "i:contenv")

	recorder.FailOnCommand = "image"
	exists, err = engine.ImageExists(ctx, "missing:contenv")
	if err != nil || exists {
		t.Errorf("ImageExists() = %v, %v; want false, nil", exists, err)
	}
}

func TestDockerEngine_Version(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	recorder.Stdout = "27.3.1\n"

	v, err := engine.Version(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "27.3.1" {
		t.Errorf("Version() = %q, want 27.3.1", v)
	}
	recorder.AssertArgs(t, "version", "--format", "{{.Server.Version}}")
}

func TestDockerEngine_Available(t *testing.T) {
	engine, recorder := newMockDockerEngine(t)
	if !engine.Available() {
		t.Error("expected engine to be available")
	}

	recorder.ExitCode = 1
	if engine.Available() {
		t.Error("expected engine to be unavailable when version fails")
	}

	if NewDockerEngine(WithBinaryPath("")).Available() {
		t.Error("expected engine without binary to be unavailable")
	}
}
