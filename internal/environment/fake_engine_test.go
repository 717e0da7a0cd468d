// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/contenv/contenv/internal/container"
)

type (
	// fakeEngine is an in-memory container.Engine that tracks container state
	// closely enough to catch lifecycle ordering mistakes.
	fakeEngine struct {
		mu sync.Mutex

		// calls records "<verb> <target>" for every operation, in order
		calls      []string
		builds     []container.BuildOptions
		creates    []container.CreateOptions
		execs      []fakeExec
		containers map[string]*fakeContainer
		images     map[string]bool

		// exitCode returns the exit status of an exec'd command
		exitCode func(command []string) int
		// failOn makes the named verb fail with a command error
		failOn map[string]bool
		// artifacts are written into the destination of a cp from a container
		artifacts map[string]string
	}

	fakeContainer struct {
		running bool
		image   string
	}

	fakeExec struct {
		name    string
		command []string
		opts    container.ExecOptions
	}
)

var _ container.Engine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		containers: make(map[string]*fakeContainer),
		images:     make(map[string]bool),
		failOn:     make(map[string]bool),
		artifacts:  make(map[string]string),
	}
}

func (f *fakeEngine) record(verb, target string) error {
	f.calls = append(f.calls, verb+" "+target)
	if f.failOn[verb] {
		return f.fail(verb, target, "injected failure")
	}
	return nil
}

func (f *fakeEngine) fail(verb, target, msg string) error {
	return &container.CommandError{Binary: "docker", Args: []string{verb, target}, ExitCode: 1, Output: msg}
}

func (f *fakeEngine) Name() string    { return "docker" }
func (f *fakeEngine) Available() bool { return true }
func (f *fakeEngine) Version(context.Context) (string, error) { return "27.0.0", nil }

func (f *fakeEngine) Build(_ context.Context, opts container.BuildOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("build", string(opts.Tag)); err != nil {
		return err
	}
	if _, err := os.Stat(opts.Dockerfile); err != nil {
		return fmt.Errorf("dockerfile missing at build time: %w", err)
	}
	f.builds = append(f.builds, opts)
	f.images[string(opts.Tag)] = true
	return nil
}

func (f *fakeEngine) Create(_ context.Context, opts container.CreateOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create", string(opts.Name)); err != nil {
		return err
	}
	if _, ok := f.containers[string(opts.Name)]; ok {
		return f.fail("create", string(opts.Name), "container name already in use")
	}
	if !f.images[string(opts.Image)] {
		return f.fail("create", string(opts.Name), "no such image")
	}
	f.creates = append(f.creates, opts)
	f.containers[string(opts.Name)] = &fakeContainer{image: string(opts.Image)}
	return nil
}

func (f *fakeEngine) Start(_ context.Context, name container.ContainerName) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("start", string(name)); err != nil {
		return err
	}
	c, ok := f.containers[string(name)]
	if !ok {
		return f.fail("start", string(name), "No such container")
	}
	c.running = true
	return nil
}

func (f *fakeEngine) Stop(_ context.Context, name container.ContainerName, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("stop", string(name)); err != nil {
		return err
	}
	if timeout != 0 {
		return fmt.Errorf("unexpected stop timeout %s", timeout)
	}
	c, ok := f.containers[string(name)]
	if !ok {
		return f.fail("stop", string(name), "No such container")
	}
	c.running = false
	return nil
}

func (f *fakeEngine) Remove(_ context.Context, name container.ContainerName, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("rm", string(name)); err != nil {
		return err
	}
	c, ok := f.containers[string(name)]
	if !ok {
		return f.fail("rm", string(name), "No such container")
	}
	if c.running && !force {
		return f.fail("rm", string(name), "cannot remove a running container")
	}
	delete(f.containers, string(name))
	return nil
}

func (f *fakeEngine) Exec(_ context.Context, name container.ContainerName, command []string, opts container.ExecOptions) (*container.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("exec", string(name)); err != nil {
		return nil, err
	}
	c, ok := f.containers[string(name)]
	if !ok || !c.running {
		return nil, f.fail("exec", string(name), "container is not running")
	}
	f.execs = append(f.execs, fakeExec{name: string(name), command: command, opts: opts})

	code := 0
	if f.exitCode != nil {
		code = f.exitCode(command)
	}
	return &container.RunResult{ContainerName: name, ExitCode: code}, nil
}

func (f *fakeEngine) Copy(_ context.Context, src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("cp", src); err != nil {
		return err
	}
	name, _, ok := strings.Cut(src, ":")
	if !ok {
		return fmt.Errorf("fake engine only copies out of containers, got %q", src)
	}
	if _, exists := f.containers[name]; !exists {
		return f.fail("cp", name, "No such container")
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for file, content := range f.artifacts {
		if err := os.WriteFile(filepath.Join(dst, file), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// ListNames mimics the engine's name filter, which matches substrings.
func (f *fakeEngine) ListNames(_ context.Context, opts container.ListOptions) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ps", string(opts.NameFilter)); err != nil {
		return nil, err
	}
	var names []string
	for name, c := range f.containers {
		if !opts.All && !c.running {
			continue
		}
		if strings.Contains(name, string(opts.NameFilter)) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (f *fakeEngine) ImageExists(_ context.Context, image container.ImageTag) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.images[string(image)], nil
}

// addContainer registers a pre-existing container.
func (f *fakeEngine) addContainer(name string, running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers[name] = &fakeContainer{running: running}
}

func (f *fakeEngine) isRunning(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.containers[name]
	return ok && c.running
}

func (f *fakeEngine) exists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.containers[name]
	return ok
}

func (f *fakeEngine) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.execs = nil
}
