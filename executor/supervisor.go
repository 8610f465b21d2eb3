package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// RawResult is the supervisor's view of one finished (or failed)
// subprocess, before output normalization.
type RawResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration

	// TimedOut is set when the deadline expired and the process group
	// was killed. Timeout holds the deadline that was enforced.
	TimedOut bool
	Timeout  time.Duration

	// SpawnErr is set when the process could not be started at all.
	SpawnErr error
}

// Supervisor owns the subprocess lifecycle: temp script creation,
// spawn in a dedicated process group, stdin piping, deadline
// enforcement by killing the whole group, output capture, and
// unconditional temp-file cleanup.
type Supervisor struct {
	logger  *zap.Logger
	tempDir string
}

// NewSupervisor creates a Supervisor writing script files under tempDir.
func NewSupervisor(logger *zap.Logger, tempDir string) *Supervisor {
	return &Supervisor{logger: logger, tempDir: tempDir}
}

// Run executes code under the given profile and returns the raw
// outcome. Every temp resource created here is released before Run
// returns, on all paths. Run blocks for up to the effective timeout and
// must therefore be called from the worker pool, never from the
// caller's own goroutine.
func (s *Supervisor) Run(ctx context.Context, profile Profile, code, stdin string, timeout time.Duration) RawResult {
	execID := xid.New().String()

	args := make([]string, len(profile.Command), len(profile.Command)+1)
	copy(args, profile.Command)

	if profile.Inline {
		args = append(args, code)
	} else {
		scriptPath := filepath.Join(s.tempDir, "code_"+execID+profile.Extension)
		if err := os.WriteFile(scriptPath, []byte(code), 0o600); err != nil {
			return RawResult{SpawnErr: fmt.Errorf("failed to write script file: %w", err)}
		}
		defer os.Remove(scriptPath)
		args = append(args, scriptPath)
	}

	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec // Launch commands come from the static profile table
	cmd.Dir = s.tempDir

	// New process group so a timeout kill reaps the whole subtree,
	// not just the immediate child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}

	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return RawResult{SpawnErr: fmt.Errorf("%w: %v", ErrSpawnFailed, err)}
	}

	pid := cmd.Process.Pid
	s.logger.Debug("process started",
		zap.String("exec_id", execID),
		zap.String("language", profile.Language),
		zap.Int("pid", pid),
		zap.Duration("timeout", timeout))

	// SIGKILL to the negated pid targets the group. Untrusted code
	// cannot be trusted to honor SIGTERM, so there is no grace period.
	var timedOut atomic.Bool
	timer := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		_ = syscall.Kill(-pid, syscall.SIGKILL)
	})
	defer timer.Stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = syscall.Kill(-pid, syscall.SIGKILL)
		case <-done:
		}
	}()

	// Wait drains both pipes fully before returning, which reaps the
	// child even on the kill paths.
	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	result := RawResult{
		Stdout:  stdoutBuf.String(),
		Stderr:  stderrBuf.String(),
		Elapsed: elapsed,
	}

	if timedOut.Load() {
		result.TimedOut = true
		result.Timeout = timeout
		result.ExitCode = -1
		s.logger.Warn("execution timed out, process group killed",
			zap.String("exec_id", execID),
			zap.String("language", profile.Language),
			zap.Duration("timeout", timeout))
		return result
	}

	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.SpawnErr = fmt.Errorf("wait failed: %w", waitErr)
			return result
		}
	}

	s.logger.Debug("process finished",
		zap.String("exec_id", execID),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("elapsed", elapsed))

	return result
}

// RunCheck runs the profile's syntax-check command against the code
// without executing it. The code is always written to a file because
// check commands operate on paths. Returns the checker's stderr when
// the check fails.
func (s *Supervisor) RunCheck(ctx context.Context, profile Profile, code string) (ok bool, detail string, err error) {
	if len(profile.CheckCommand) == 0 {
		return true, "", nil
	}

	scriptPath := filepath.Join(s.tempDir, "check_"+xid.New().String()+profile.Extension)
	if writeErr := os.WriteFile(scriptPath, []byte(code), 0o600); writeErr != nil {
		return false, "", fmt.Errorf("failed to write check file: %w", writeErr)
	}
	defer os.Remove(scriptPath)

	checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := append(append([]string{}, profile.CheckCommand...), scriptPath)
	cmd := exec.CommandContext(checkCtx, args[0], args[1:]...) //nolint:gosec // Check commands come from the static profile table
	cmd.Dir = s.tempDir

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()
	if runErr == nil {
		return true, "", nil
	}
	if _, isExit := runErr.(*exec.ExitError); isExit {
		return false, strings.TrimSpace(stderrBuf.String()), nil
	}
	return false, "", fmt.Errorf("syntax check failed to run: %w", runErr)
}
