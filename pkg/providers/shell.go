package providers

import (
	"context"
	"fmt"
	"os/exec"
	goruntime "runtime"
	"strconv"
	"strings"

	"github.com/weftlabs/weft/pkg/ports"
)

// dangerousCommands is a coarse denylist of obviously destructive
// commands the shell kind refuses to run.
var dangerousCommands = []string{"rm -rf", "del /f", "format", "shutdown", "reboot"}

// Shell runs a command line through the platform shell.
// Fields: command, cwd (optional). Outputs: stdout, stderr, status.
// Stderr with no stdout is treated as a failure; stderr next to stdout
// is appended as a warning.
func Shell(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	command := strings.TrimSpace(req.Fields["command"])
	if command == "" {
		return nil, fmt.Errorf("empty command")
	}
	lower := strings.ToLower(command)
	for _, dangerous := range dangerousCommands {
		if strings.Contains(lower, dangerous) {
			return nil, fmt.Errorf("dangerous command blocked: %s", dangerous)
		}
	}

	var cmd *exec.Cmd
	if goruntime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	if cwd := strings.TrimSpace(req.Fields["cwd"]); cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	status := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to execute command: %w", runErr)
		}
		status = exitErr.ExitCode()
	}

	out := stdout.String()
	errOut := stderr.String()

	if errOut != "" && out == "" {
		return nil, fmt.Errorf("command failed: %s", strings.TrimSpace(errOut))
	}
	if errOut != "" {
		out = fmt.Sprintf("%s\n(Warning: %s)", out, strings.TrimSpace(errOut))
	}

	return map[string]string{
		"stdout": out,
		"stderr": errOut,
		"status": strconv.Itoa(status),
	}, nil
}
