// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCommandFailed is the sentinel error wrapped by CommandError.
var ErrCommandFailed = errors.New("container engine command failed")

// CommandError is returned when an engine invocation exits unsuccessfully.
// Output holds whatever the process wrote to stderr and stdout when the
// output was captured; it is empty for streamed invocations.
type CommandError struct {
	Binary   string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "command %s %s failed", e.Binary, strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		fmt.Fprintf(&msg, " with exit code %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&msg, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg.WriteString(":\n")
		msg.WriteString(out)
	}
	return msg.String()
}

// Unwrap returns ErrCommandFailed and the underlying process error.
func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCommandFailed}
	}
	return []error{ErrCommandFailed, e.Err}
}

// IsNotFound reports whether err came from an engine command complaining that
// the referenced container or image does not exist.
func IsNotFound(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	out := strings.ToLower(cmdErr.Output)
	return strings.Contains(out, "no such container") ||
		strings.Contains(out, "no such object") ||
		strings.Contains(out, "no container with name")
}

// exitCodeOf extracts the process exit status from err.
// It returns -1 when err is not an *exec.ExitError.
func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
