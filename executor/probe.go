package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CommandRunner abstracts running a short host command so probes can be
// mocked in tests.
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner with os/exec.
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments.
func (RealCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Probe commands come from the static profile table

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
		} else {
			return "", "", 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

const (
	probeTimeout  = 5 * time.Second
	probeCacheTTL = 30 * time.Second
)

// Prober checks whether a language runtime binary is present and
// answering. Results are cached briefly so status calls and the
// pre-execution availability check never stack up probe latency.
// A probe failure means "unavailable", never a fatal error.
type Prober struct {
	logger *zap.Logger
	runner CommandRunner

	mu    sync.Mutex
	cache map[string]probeEntry
}

type probeEntry struct {
	available bool
	checkedAt time.Time
}

// ProberOption defines a functional option for Prober.
type ProberOption func(*Prober)

// WithProbeCommandRunner sets the CommandRunner used for probing.
func WithProbeCommandRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

// NewProber creates a Prober with the real command runner by default.
func NewProber(logger *zap.Logger, opts ...ProberOption) *Prober {
	p := &Prober{
		logger: logger,
		runner: RealCommandRunner{},
		cache:  make(map[string]probeEntry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsAvailable reports whether the runtime for the profile responds to a
// version query within the probe timeout.
func (p *Prober) IsAvailable(ctx context.Context, profile Profile) bool {
	p.mu.Lock()
	if entry, ok := p.cache[profile.Language]; ok && time.Since(entry.checkedAt) < probeCacheTTL {
		p.mu.Unlock()
		return entry.available
	}
	p.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, _, exitCode, err := p.runner.RunCommand(probeCtx, []string{profile.Command[0], "--version"})
	available := err == nil && exitCode == 0
	if err != nil {
		p.logger.Debug("runtime probe failed",
			zap.String("language", profile.Language),
			zap.String("binary", profile.Command[0]),
			zap.Error(err))
	}

	p.mu.Lock()
	p.cache[profile.Language] = probeEntry{available: available, checkedAt: time.Now()}
	p.mu.Unlock()

	return available
}
