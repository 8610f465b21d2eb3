package executor

import "errors"

// ErrorKind classifies why an execution request was rejected or
// aborted. A successful Result never carries a kind. A program that
// ran to completion with a nonzero exit code is a normal outcome, not
// an engine failure, and carries no kind either; the return code and
// stderr tell that story.
type ErrorKind string

// Error kinds, in the order the facade checks for them.
const (
	KindUnsupportedLanguage ErrorKind = "unsupported_language"
	KindRuntimeUnavailable  ErrorKind = "runtime_unavailable"
	KindSecurityViolation   ErrorKind = "security_violation"
	KindSyntaxError         ErrorKind = "syntax_error" // validate only
	KindTimeoutExpired      ErrorKind = "timeout_expired"
	KindSpawnFailed         ErrorKind = "spawn_failed"
	KindExecutionError      ErrorKind = "execution_error"
)

// Sentinel errors for callers that want to branch on failure class
// rather than inspect Result fields.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrRuntimeUnavailable  = errors.New("runtime unavailable")
	ErrSecurityViolation   = errors.New("security violation")
	ErrTimeoutExpired      = errors.New("execution timed out")
	ErrSpawnFailed         = errors.New("failed to spawn process")
)
