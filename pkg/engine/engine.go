// Package engine starts an external inference engine on a cached model
// file. ggufy only guarantees a valid path; everything else is left to the
// engine binary.
package engine

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
)

// Request describes one engine invocation.
type Request struct {
	ModelPath   string
	ContextSize int
	MaxTokens   int
	// ExtraArgs are appended after the configured arguments.
	ExtraArgs []string
}

// Engine runs inference on a model file.
type Engine interface {
	Run(ctx context.Context, req Request) error
}

// ExecEngine runs a llama.cpp compatible command line program.
type ExecEngine struct {
	Command string
	Args    []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecEngine returns an ExecEngine attached to the process terminal.
func NewExecEngine(command string, args []string) *ExecEngine {
	return &ExecEngine{
		Command: command,
		Args:    args,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// BuildArgs returns the argument list passed to the engine for req.
func (e *ExecEngine) BuildArgs(req Request) []string {
	args := []string{"-m", req.ModelPath}
	if req.ContextSize > 0 {
		args = append(args, "-c", strconv.Itoa(req.ContextSize))
	}
	if req.MaxTokens > 0 {
		args = append(args, "-n", strconv.Itoa(req.MaxTokens))
	}
	args = append(args, e.Args...)
	return append(args, req.ExtraArgs...)
}

// Run starts the engine and waits for it to exit.
func (e *ExecEngine) Run(ctx context.Context, req Request) error {
	if e.Command == "" {
		return errors.ErrEngineNotConfigured
	}
	if !fsutil.FileExists(req.ModelPath) {
		return errors.Wrapf(errors.ErrInvalidPath, "model file %q", req.ModelPath)
	}

	cmd := exec.CommandContext(ctx, e.Command, e.BuildArgs(req)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "inference engine %s failed", e.Command)
	}
	return nil
}
