// Package execx runs external tools synchronously and captures their output.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrToolNotFound indicates the executable is not on the search path.
// This is a configuration error: the gate aborts before running anything.
var ErrToolNotFound = errors.New("executable not found")

// ErrToolFailed indicates a strict-mode invocation exited non-zero.
var ErrToolFailed = errors.New("command failed")

// Spec describes one external command invocation.
type Spec struct {
	// Name is the executable name or path, resolved against PATH.
	Name string

	// Args are the command arguments.
	Args []string

	// Dir is the working directory for the child process.
	Dir string

	// Env is an environment overlay applied on top of a copy of the
	// parent environment. The parent process environment is never mutated.
	Env map[string]string

	// Strict turns a non-zero exit code into an error.
	Strict bool
}

// Result holds the captured outcome of one invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout followed by stderr (when non-empty), which is
// the verbatim form persisted to the raw output log.
func (r Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// LookPath resolves name against PATH, wrapping ErrToolNotFound on failure.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return path, nil
}

// Run executes the spec and blocks until the child exits or ctx is done.
func Run(ctx context.Context, spec Spec) (Result, error) {
	path, err := LookPath(spec.Name)
	if err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = overlayEnv(os.Environ(), spec.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().
		Str("binary", path).
		Strs("args", spec.Args).
		Str("dir", spec.Dir).
		Msg("running command")

	runErr := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("%w: %s: %v", ErrToolFailed, spec.Name, ctx.Err())
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("%w: %s: %v", ErrToolFailed, spec.Name, runErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if spec.Strict && result.ExitCode != 0 {
		log.Error().
			Str("binary", spec.Name).
			Int("exit_code", result.ExitCode).
			Str("stderr", strings.TrimSpace(result.Stderr)).
			Msg("command failed")
		return result, fmt.Errorf("%w: %s exited %d", ErrToolFailed, spec.Name, result.ExitCode)
	}

	return result, nil
}

// overlayEnv copies base and applies overrides, replacing existing keys.
func overlayEnv(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}

	env := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		if _, replaced := overlay[key]; replaced {
			continue
		}
		env = append(env, kv)
	}
	for k, v := range overlay {
		env = append(env, k+"="+v)
	}
	return env
}
