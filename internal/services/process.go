package services

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single external tool invocation.
type Command struct {
	Binary string
	Args   []string
	Dir    string
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Binary)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Process is a started tool that can be stopped and reaped.
type Process interface {
	Terminate() error
}

// Runner abstracts process execution for testability.
//
// Run blocks until the tool exits and reports its exit code. A non-nil error
// means the tool could not be launched or was interrupted.
type Runner interface {
	Run(ctx context.Context, cmd Command) (int, error)
	Start(ctx context.Context, cmd Command) (Process, error)
}

// ExecRunner launches real processes through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Command) (int, error) {
	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	c.Dir = cmd.Dir
	err := c.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, Wrap(ErrProcessLaunch, "", "start", cmd.Binary, err)
}

func (ExecRunner) Start(ctx context.Context, cmd Command) (Process, error) {
	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	c.Dir = cmd.Dir
	if err := c.Start(); err != nil {
		return nil, Wrap(ErrProcessLaunch, "", "start", cmd.Binary, err)
	}
	return &execProcess{cmd: c}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

// Terminate kills the process and waits for it so no zombie is left behind.
func (p *execProcess) Terminate() error {
	if p == nil || p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	// The exit status of a killed process is expected to be non-zero.
	_ = p.cmd.Wait()
	return nil
}
