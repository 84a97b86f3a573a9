// Package alloy runs the Alloy checker over an emitted specification and
// parses its report.
package alloy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// CheckerEnv overrides the configured checker command line.
const CheckerEnv = "LITMUS_CHECKER"

// DefaultChecker is the command line used when nothing is configured.
// The wrapper reads the specification on stdin.
const DefaultChecker = "java -cp alloy:alloy/org.alloytools.alloy.dist.jar RunAlloy"

// ExitBrokenExpectation is the status the checker wrapper exits with when
// at least one query broke its expectation.
const ExitBrokenExpectation = 10

// ToolError is a nonzero exit of the checker. The output read before the
// exit is kept on the Report returned alongside it.
type ToolError struct {
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	if e.ExitCode == ExitBrokenExpectation {
		return "checker reported broken expectations"
	}
	msg := fmt.Sprintf("checker exited with code %d", e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

// Runner invokes the checker as a subprocess.
type Runner struct {
	Command []string
	// Dir is the working directory of the checker; empty means the
	// current one.
	Dir string
}

// ParseCommand splits a shell-style command line.
func ParseCommand(line string) ([]string, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("invalid checker command %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil, errors.New("empty checker command")
	}
	return args, nil
}

// NewRunner builds a Runner from a configured command line. The
// LITMUS_CHECKER environment variable takes precedence, and an empty
// configuration falls back to DefaultChecker.
func NewRunner(command, dir string) (*Runner, error) {
	if env := os.Getenv(CheckerEnv); env != "" {
		command = env
	}
	if command == "" {
		command = DefaultChecker
	}
	args, err := ParseCommand(command)
	if err != nil {
		return nil, err
	}
	return &Runner{Command: args, Dir: dir}, nil
}

// Run pipes spec to the checker and parses what it prints. A nonzero exit
// returns both the parsed report and a *ToolError.
func (r *Runner) Run(ctx context.Context, spec string) (*Report, error) {
	if len(r.Command) == 0 {
		return nil, errors.New("no checker command configured")
	}

	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdin = strings.NewReader(spec)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	report := ParseReport(stdout.String())
	report.Stderr = stderr.String()
	if err == nil {
		return report, nil
	}

	if ctx.Err() != nil {
		return report, fmt.Errorf("checker interrupted: %w", ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return report, &ToolError{ExitCode: exitErr.ExitCode(), Stderr: report.Stderr}
	}
	return nil, fmt.Errorf("starting checker: %w", err)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
