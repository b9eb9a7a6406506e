package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/neontowel/gitix/internal/log"
)

// LookupPath is used to find executables in PATH. It's exposed as a package variable
// so tests can mock it and avoid depending on system binaries being installed.
var LookupPath = exec.LookPath

// CommandRunner executes an external command in dir and returns its stdout.
// A non-zero exit status is returned as an error carrying stderr.
type CommandRunner func(ctx context.Context, dir string, stdin io.Reader, args ...string) ([]byte, error)

func prepareAllowedCommand(ctx context.Context, args []string) (*exec.Cmd, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command provided")
	}

	switch args[0] {
	case "git":
		// #nosec G204 -- arguments for git command come from internal logic and are not shell interpolated
		return exec.CommandContext(ctx, "git", args[1:]...), nil
	default:
		return nil, fmt.Errorf("unsupported command %q", args[0])
	}
}

// ExecRunner is the default CommandRunner backed by os/exec.
func ExecRunner(ctx context.Context, dir string, stdin io.Reader, args ...string) ([]byte, error) {
	command := strings.Join(args, " ")
	log.Printf("run: %s (cwd=%s)", command, dir)

	if len(args) > 0 {
		if _, err := LookupPath(args[0]); err != nil {
			log.Printf("error: command not found: %s", args[0])
			return nil, fmt.Errorf("command not found: %s: %w", args[0], err)
		}
	}

	cmd, err := prepareAllowedCommand(ctx, args)
	if err != nil {
		return nil, err
	}
	cmd.Dir = dir
	cmd.Stdin = stdin
	// Never block on an interactive credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = fmt.Sprintf("exit %d", exitErr.ExitCode())
			}
			log.Printf("error: %s: %s", command, detail)
			return output, fmt.Errorf("%s: %s", command, detail)
		}
		log.Printf("error: %s: %v", command, err)
		return output, fmt.Errorf("%s: %w", command, err)
	}

	log.Printf("ok: %s", command)
	return output, nil
}
