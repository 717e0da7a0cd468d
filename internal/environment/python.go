// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const pythonProbeTimeout = 5 * time.Second

var pythonVersionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// DetectHostPython returns the major.minor version of the first python3 or
// python found on PATH, or fallback when neither answers.
func DetectHostPython(ctx context.Context, fallback string) string {
	for _, name := range []string{"python3", "python"} {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		if v := probePython(ctx, path); v != "" {
			return v
		}
	}
	return fallback
}

func probePython(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, pythonProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "-c", "import sys; print('%d.%d' % sys.version_info[:2])").Output()
	if err != nil {
		return ""
	}
	v := strings.TrimSpace(string(out))
	if !pythonVersionPattern.MatchString(v) {
		return ""
	}
	return v
}
