package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Cmd describes one external tool invocation.
type Cmd struct {
	Path string
	Args []string
	Env  map[string]string // additional env vars
	Dir  string            // working directory
}

// outputTailLines bounds how much tool output an error carries.
const outputTailLines = 40

// RunCmd executes c, streaming output to the debug log and keeping a tail
// for diagnostics. Failures come back as a typed external-tool error with
// the exit code and captured tail; callers never inspect a bare exit status.
func RunCmd(ctx context.Context, log zerolog.Logger, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	// inherit environment
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return toolError{tool: c.Path, err: err}
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return toolError{tool: c.Path, err: err}
	}

	var tail []string
	s := bufio.NewScanner(stdout)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		line := s.Text()
		log.Debug().Str("tool", c.Path).Msg(line)
		tail = append(tail, line)
		if len(tail) > outputTailLines {
			tail = tail[1:]
		}
	}
	if err := cmd.Wait(); err != nil {
		return toolError{
			tool:   c.Path,
			exit:   cmd.ProcessState.ExitCode(),
			output: strings.Join(tail, "\n"),
			err:    err,
		}
	}
	return nil
}
