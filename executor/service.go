package executor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Config holds the engine's tunables. Zero values fall back to the
// defaults noted on each field.
type Config struct {
	// Workers bounds concurrent subprocesses (default 2).
	Workers int

	// MaxOutputLength bounds each captured stream in bytes (default 10000).
	MaxOutputLength int

	// MaxCodeBytes is the screener's size ceiling (default 10240).
	MaxCodeBytes int

	// TempDir is the parent for the per-service working directory.
	// Empty means the OS default.
	TempDir string

	// Profiles is the language table. Empty means DefaultProfiles().
	Profiles map[string]Profile
}

// Request carries one execution call. It is owned by the caller and
// never retained past the call.
type Request struct {
	Code     string
	Language string        // empty: detect
	Stdin    string        // piped to the child when non-empty
	Timeout  time.Duration // zero: language default; clamped to the language ceiling
}

// Result is the structured outcome of Execute. Success=true implies
// ErrorKind is empty.
type Result struct {
	Success         bool
	Language        string
	Stdout          string
	Stderr          string
	ReturnCode      int
	ExecutionTime   time.Duration
	StdoutTruncated bool
	StderrTruncated bool

	// Timeout is the deadline that was enforced, set when ErrorKind is
	// KindTimeoutExpired so callers can tell "too slow" from "rejected".
	Timeout time.Duration

	ErrorKind    ErrorKind
	ErrorMessage string

	// Violations is populated on KindSecurityViolation.
	Violations []Violation
}

// ValidationResult is the outcome of Validate. No process running the
// user's code is ever spawned on this path.
type ValidationResult struct {
	Valid          bool        `json:"valid"`
	Warnings       []string    `json:"warnings"`
	Errors         []string    `json:"errors"`
	SecurityIssues []Violation `json:"security_issues"`
}

// LanguageInfo describes one supported language for diagnostics.
type LanguageInfo struct {
	Language      string        `json:"language"`
	Command       []string      `json:"command"`
	FileExtension string        `json:"file_extension"`
	Timeout       time.Duration `json:"timeout"`
	MaxTimeout    time.Duration `json:"max_timeout"`
	Available     bool          `json:"available"`
}

// Status reports the service's configuration and runtime availability.
type Status struct {
	SupportedLanguages   []string        `json:"supported_languages"`
	LanguageAvailability map[string]bool `json:"language_availability"`
	TempDirectory        string          `json:"temp_directory"`
	Workers              int             `json:"workers"`
	MaxOutputLength      int             `json:"max_output_length"`
	SecurityFeatures     []string        `json:"security_features"`
}

const validateWarnBytes = 50 * 1024

// Service is the execution facade. It owns the immutable language
// table, the screener, the prober, and the worker pool, and sequences
// them per request: detect, reject early, execute off-thread,
// normalize. Construct it explicitly and pass it by reference; there
// is no package-level instance.
type Service struct {
	logger     *zap.Logger
	profiles   map[string]Profile
	screener   *Screener
	prober     *Prober
	supervisor *Supervisor
	pool       *Pool

	tempDir         string
	maxOutputLength int
}

// ServiceOption defines a functional option for Service.
type ServiceOption func(*Service)

// WithProber replaces the availability prober, mainly for tests.
func WithProber(p *Prober) ServiceOption {
	return func(s *Service) {
		s.prober = p
	}
}

// NewService builds the facade. Failure to create the working
// directory is the one startup-fatal condition: callers should abort
// initialization rather than run without a place for temp scripts.
func NewService(logger *zap.Logger, cfg Config, opts ...ServiceOption) (*Service, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxOutputLength <= 0 {
		cfg.MaxOutputLength = 10000
	}
	if cfg.MaxCodeBytes <= 0 {
		cfg.MaxCodeBytes = 10240
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = DefaultProfiles()
	}

	tempDir, err := os.MkdirTemp(cfg.TempDir, "evolveui-exec-")
	if err != nil {
		return nil, fmt.Errorf("failed to create execution temp dir: %w", err)
	}

	s := &Service{
		logger:          logger,
		profiles:        cfg.Profiles,
		screener:        NewScreener(cfg.MaxCodeBytes),
		prober:          NewProber(logger),
		tempDir:         tempDir,
		maxOutputLength: cfg.MaxOutputLength,
	}
	s.supervisor = NewSupervisor(logger, tempDir)
	s.pool = NewPool(logger, s.supervisor, cfg.Workers)

	for _, opt := range opts {
		opt(s)
	}

	logger.Info("execution service initialized",
		zap.String("temp_dir", tempDir),
		zap.Int("workers", cfg.Workers),
		zap.Int("max_output_length", cfg.MaxOutputLength),
		zap.Strings("languages", s.Languages()))

	return s, nil
}

// Start launches the worker pool.
func (s *Service) Start() {
	s.pool.Start()
}

// Close stops the pool and removes the working directory.
func (s *Service) Close() error {
	s.pool.Stop()
	if err := os.RemoveAll(s.tempDir); err != nil {
		s.logger.Warn("could not remove temp directory", zap.String("temp_dir", s.tempDir), zap.Error(err))
		return err
	}
	return nil
}

// Languages returns the supported language identifiers, sorted.
func (s *Service) Languages() []string {
	langs := make([]string, 0, len(s.profiles))
	for lang := range s.profiles {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// DetectLanguage exposes the heuristic detector.
func (*Service) DetectLanguage(code string) string {
	return DetectLanguage(code)
}

// Execute runs one request through the full pipeline. All failures are
// folded into the Result; Execute itself never returns an error to keep
// the taxonomy in one place.
func (s *Service) Execute(ctx context.Context, req Request) Result {
	language := req.Language
	if language == "" {
		language = DetectLanguage(req.Code)
		s.logger.Debug("language detected", zap.String("language", language))
	}

	profile, ok := s.profiles[language]
	if !ok {
		return Result{
			Language:     language,
			ErrorKind:    KindUnsupportedLanguage,
			ErrorMessage: fmt.Sprintf("unsupported language: %s (supported: %v)", language, s.Languages()),
			ReturnCode:   -1,
		}
	}

	if !s.prober.IsAvailable(ctx, profile) {
		return Result{
			Language:     language,
			ErrorKind:    KindRuntimeUnavailable,
			ErrorMessage: fmt.Sprintf("runtime for %s is not available on this host", language),
			ReturnCode:   -1,
		}
	}

	verdict := s.screener.Screen(req.Code)
	if !verdict.Safe {
		s.logger.Warn("code rejected by security screening",
			zap.String("language", language),
			zap.Int("violations", len(verdict.Violations)))
		return Result{
			Language:     language,
			ErrorKind:    KindSecurityViolation,
			ErrorMessage: fmt.Sprintf("security screening rejected the code: %v", verdict.Violations),
			Violations:   verdict.Violations,
			ReturnCode:   -1,
		}
	}

	timeout := profile.EffectiveTimeout(req.Timeout)
	raw, err := s.pool.Submit(ctx, profile, req.Code, req.Stdin, timeout)
	if err != nil {
		return Result{
			Language:     language,
			ErrorKind:    KindExecutionError,
			ErrorMessage: fmt.Sprintf("execution aborted: %v", err),
			ReturnCode:   -1,
		}
	}

	return s.finalize(language, timeout, raw)
}

// finalize maps a RawResult onto the caller-facing Result and bounds
// the output streams.
func (s *Service) finalize(language string, timeout time.Duration, raw RawResult) Result {
	result := Result{
		Language:      language,
		ReturnCode:    raw.ExitCode,
		ExecutionTime: raw.Elapsed,
	}
	result.Stdout, result.Stderr, result.StdoutTruncated, result.StderrTruncated =
		NormalizeOutput(raw.Stdout, raw.Stderr, s.maxOutputLength)

	switch {
	case raw.SpawnErr != nil:
		result.ErrorKind = KindSpawnFailed
		result.ErrorMessage = raw.SpawnErr.Error()
		result.ReturnCode = -1
	case raw.TimedOut:
		result.ErrorKind = KindTimeoutExpired
		result.ErrorMessage = fmt.Sprintf("execution timed out after %s", timeout)
		result.Timeout = timeout
	case raw.ExitCode == 0:
		result.Success = true
	default:
		// The program itself failed; surface its stderr as the message.
		result.ErrorMessage = result.Stderr
	}

	return result
}

// Validate checks code without executing it: language support, the
// security screen, and a syntax-only parse where the language has a
// check command available.
func (s *Service) Validate(ctx context.Context, code, language string) ValidationResult {
	result := ValidationResult{
		Valid:          true,
		Warnings:       []string{},
		Errors:         []string{},
		SecurityIssues: []Violation{},
	}

	profile, ok := s.profiles[language]
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported language: %s", language))
		return result
	}

	verdict := s.screener.Screen(code)
	if !verdict.Safe {
		result.Valid = false
		result.SecurityIssues = verdict.Violations
	}

	if len(code) > validateWarnBytes {
		result.Warnings = append(result.Warnings, "code is very long and may hit execution limits")
	}

	if len(profile.CheckCommand) > 0 && s.prober.IsAvailable(ctx, profile) {
		checkOK, detail, err := s.supervisor.RunCheck(ctx, profile, code)
		switch {
		case err != nil:
			result.Warnings = append(result.Warnings, fmt.Sprintf("syntax check skipped: %v", err))
		case !checkOK:
			result.Valid = false
			msg := "syntax error"
			if detail != "" {
				msg = fmt.Sprintf("syntax error: %s", detail)
			}
			result.Errors = append(result.Errors, msg)
		}
	}

	return result
}

// LanguageInfo returns diagnostics for one language.
func (s *Service) LanguageInfo(ctx context.Context, language string) (LanguageInfo, error) {
	profile, ok := s.profiles[language]
	if !ok {
		return LanguageInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}
	return LanguageInfo{
		Language:      profile.Language,
		Command:       profile.Command,
		FileExtension: profile.Extension,
		Timeout:       profile.DefaultTimeout,
		MaxTimeout:    profile.MaxTimeout,
		Available:     s.prober.IsAvailable(ctx, profile),
	}, nil
}

// Status reports service configuration and per-language availability.
// Probe results are cached, so this stays cheap to poll.
func (s *Service) Status(ctx context.Context) Status {
	availability := make(map[string]bool, len(s.profiles))
	for lang, profile := range s.profiles {
		availability[lang] = s.prober.IsAvailable(ctx, profile)
	}
	return Status{
		SupportedLanguages:   s.Languages(),
		LanguageAvailability: availability,
		TempDirectory:        s.tempDir,
		Workers:              s.pool.workers,
		MaxOutputLength:      s.maxOutputLength,
		SecurityFeatures: []string{
			"pattern_filtering",
			"timeout_protection",
			"process_group_isolation",
			"output_truncation",
		},
	}
}
