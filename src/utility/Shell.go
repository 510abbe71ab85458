package utility

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Shell provides command execution capabilities
type Shell struct {
	logger *zap.SugaredLogger
}

// Result contains the output of a command execution
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
	Command  string
}

// ExecOptions configures command execution
type ExecOptions struct {
	Timeout time.Duration
}

// NewShell creates a new Shell executor
func NewShell(logger *zap.SugaredLogger) *Shell {
	return &Shell{logger: logger}
}

// Execute runs a command with the given options
func (s *Shell) Execute(ctx context.Context, command string, opts *ExecOptions) (*Result, error) {
	if opts == nil {
		opts = &ExecOptions{Timeout: 30 * time.Second}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	execCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	startTime := time.Now()

	cmd := exec.CommandContext(execCtx, "bash", "-c", command)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	duration := time.Since(startTime)

	result := &Result{
		ExitCode: 0,
		Stdout:   strings.TrimSpace(stdoutBuf.String()),
		Stderr:   strings.TrimSpace(stderrBuf.String()),
		Duration: duration,
		Command:  command,
	}

	if execCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result, fmt.Errorf("command timed out after %v", opts.Timeout)
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			return result, fmt.Errorf("command failed: %w", err)
		}
	}

	s.logger.Debugf("exec %q: exit=%d in %s", command, result.ExitCode, duration.Round(time.Millisecond))
	return result, nil
}

// QuickExec is a convenience method for simple command execution
func (s *Shell) QuickExec(command string) (*Result, error) {
	return s.Execute(context.Background(), command, nil)
}

// ExecWithTimeout runs a command with a specific timeout
func (s *Shell) ExecWithTimeout(command string, timeout time.Duration) (*Result, error) {
	return s.Execute(context.Background(), command, &ExecOptions{Timeout: timeout})
}
